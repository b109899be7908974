package rspace

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSpaceGroup is returned by operations that require spacegroup
	// metadata when the dataset has none.
	ErrNoSpaceGroup = errors.New("dataset has no spacegroup")
	// ErrNoCell is returned by operations that require unit-cell metadata
	// when the dataset has none.
	ErrNoCell = errors.New("dataset has no unit cell")
	// ErrNoISym is returned when an observed-index mapping is requested
	// without an M/ISYM column to map through.
	ErrNoISym = errors.New("dataset has no M/ISYM column")
)

// ErrColumnNotFound indicates a lookup of a label that is not in the dataset.
type ErrColumnNotFound struct {
	Label string
}

func (e *ErrColumnNotFound) Error() string {
	return fmt.Sprintf("column not found: %q", e.Label)
}

// ErrDuplicateColumn indicates an attempt to add a label that already exists.
type ErrDuplicateColumn struct {
	Label string
}

func (e *ErrDuplicateColumn) Error() string {
	return fmt.Sprintf("duplicate column label: %q", e.Label)
}

// ErrLengthMismatch indicates column data whose length disagrees with the
// dataset's row count.
type ErrLengthMismatch struct {
	Label string
	Want  int
	Got   int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("column %q has %d values, dataset has %d rows", e.Label, e.Got, e.Want)
}

// ErrKindMismatch indicates column data whose storage class disagrees with
// the declared column type.
type ErrKindMismatch struct {
	Label string
	Type  ColumnType
}

func (e *ErrKindMismatch) Error() string {
	return fmt.Sprintf("column %q: data does not match kind of type %s", e.Label, e.Type)
}
