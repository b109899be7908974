package mtz

import "github.com/xtalgo/rspace"

type writeOptions struct {
	title       string
	projectName string
	crystalName string
	datasetName string
	skipProblem bool
	logger      *rspace.Logger
}

// WriteOption configures Write and WriteTo.
type WriteOption func(*writeOptions)

func defaultWriteOptions() writeOptions {
	return writeOptions{
		projectName: DefaultName,
		crystalName: DefaultName,
		datasetName: DefaultName,
		logger:      rspace.NoopLogger(),
	}
}

// WithTitle sets the TITLE header record.
func WithTitle(title string) WriteOption {
	return func(o *writeOptions) { o.title = title }
}

// WithProjectName sets the project name of the output dataset group.
// Empty keeps the default.
func WithProjectName(name string) WriteOption {
	return func(o *writeOptions) {
		if name != "" {
			o.projectName = name
		}
	}
}

// WithCrystalName sets the crystal name of the output dataset group.
// Empty keeps the default.
func WithCrystalName(name string) WriteOption {
	return func(o *writeOptions) {
		if name != "" {
			o.crystalName = name
		}
	}
}

// WithDatasetName sets the dataset name of the output dataset group.
// Empty keeps the default.
func WithDatasetName(name string) WriteOption {
	return func(o *writeOptions) {
		if name != "" {
			o.datasetName = name
		}
	}
}

// WithSkipProblemTypes controls handling of columns whose type has no MTZ
// code: when true they are skipped (and logged), when false (the default)
// the write fails with ErrProblemType.
func WithSkipProblemTypes(skip bool) WriteOption {
	return func(o *writeOptions) { o.skipProblem = skip }
}

// WithLogger sets the logger used for skip notices. Defaults to a no-op
// logger.
func WithLogger(logger *rspace.Logger) WriteOption {
	return func(o *writeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// validNames checks the project/crystal/dataset names: header records are
// whitespace-delimited ASCII, so names must be printable and blank-free.
func (o *writeOptions) validNames() error {
	for _, nv := range []struct{ field, value string }{
		{"project", o.projectName},
		{"crystal", o.crystalName},
		{"dataset", o.datasetName},
	} {
		if len(nv.value) > 64 {
			return &ErrInvalidName{Field: nv.field, Value: nv.value}
		}
		for _, r := range nv.value {
			if r <= ' ' || r > '~' {
				return &ErrInvalidName{Field: nv.field, Value: nv.value}
			}
		}
	}
	return nil
}
