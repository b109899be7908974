package rspace

import "fmt"

// Kind is the Go-side storage class of a column.
type Kind int

const (
	KindFloat32 Kind = iota
	KindInt32
	KindBool
)

// ColumnType is a physics-aware column dtype. Most types correspond to a
// one-character MTZ column type code; types without a code cannot be written
// to MTZ files and are "problem types" for the writer.
type ColumnType int

const (
	// TypeIntensity is a diffraction intensity ("J").
	TypeIntensity ColumnType = iota
	// TypeStddev is a standard deviation ("Q").
	TypeStddev
	// TypeAmplitude is a structure-factor amplitude ("F").
	TypeAmplitude
	// TypeAnomDifference is an anomalous difference ("D").
	TypeAnomDifference
	// TypeFriedelAmplitude is an F+/F- amplitude ("G").
	TypeFriedelAmplitude
	// TypeStddevFriedelAmplitude is the stddev of a G column ("L").
	TypeStddevFriedelAmplitude
	// TypeFriedelIntensity is an I+/I- intensity ("K").
	TypeFriedelIntensity
	// TypeStddevFriedelIntensity is the stddev of a K column ("M").
	TypeStddevFriedelIntensity
	// TypeNormalized is a normalized structure-factor amplitude ("E").
	TypeNormalized
	// TypePhase is a phase angle in degrees ("P").
	TypePhase
	// TypeWeight is a weight ("W").
	TypeWeight
	// TypeHLCoefficient is a Hendrickson-Lattman coefficient ("A").
	TypeHLCoefficient
	// TypeReal is a generic real quantity ("R").
	TypeReal
	// TypeHKLIndex is a Miller index component ("H", int32).
	TypeHKLIndex
	// TypeBatch is a batch / image number ("B", int32).
	TypeBatch
	// TypeMTZInt is a generic integer ("I", int32).
	TypeMTZInt
	// TypeISym is a packed partiality/symmetry number ("Y", int32).
	TypeISym
	// TypeBool is a boolean flag with no MTZ equivalent except via the
	// PARTIAL / M-ISYM packing on unmerged data.
	TypeBool
)

var columnTypeInfo = map[ColumnType]struct {
	name string
	code byte // 0 when the type has no MTZ code
	kind Kind
}{
	TypeIntensity:              {"Intensity", 'J', KindFloat32},
	TypeStddev:                 {"Stddev", 'Q', KindFloat32},
	TypeAmplitude:              {"SFAmplitude", 'F', KindFloat32},
	TypeAnomDifference:         {"AnomalousDifference", 'D', KindFloat32},
	TypeFriedelAmplitude:       {"FriedelSFAmplitude", 'G', KindFloat32},
	TypeStddevFriedelAmplitude: {"StddevFriedelSF", 'L', KindFloat32},
	TypeFriedelIntensity:       {"FriedelIntensity", 'K', KindFloat32},
	TypeStddevFriedelIntensity: {"StddevFriedelI", 'M', KindFloat32},
	TypeNormalized:             {"NormalizedSFAmplitude", 'E', KindFloat32},
	TypePhase:                  {"Phase", 'P', KindFloat32},
	TypeWeight:                 {"Weight", 'W', KindFloat32},
	TypeHLCoefficient:          {"HendricksonLattman", 'A', KindFloat32},
	TypeReal:                   {"MTZReal", 'R', KindFloat32},
	TypeHKLIndex:               {"HKLIndex", 'H', KindInt32},
	TypeBatch:                  {"Batch", 'B', KindInt32},
	TypeMTZInt:                 {"MTZInt", 'I', KindInt32},
	TypeISym:                   {"M/ISYM", 'Y', KindInt32},
	TypeBool:                   {"Bool", 0, KindBool},
}

// Code returns the MTZ type code for the column type. ok is false for types
// with no MTZ equivalent.
func (t ColumnType) Code() (byte, bool) {
	info, known := columnTypeInfo[t]
	if !known || info.code == 0 {
		return 0, false
	}
	return info.code, true
}

// Kind returns the storage class for the column type.
func (t ColumnType) Kind() Kind {
	return columnTypeInfo[t].kind
}

func (t ColumnType) String() string {
	if info, ok := columnTypeInfo[t]; ok {
		return info.name
	}
	return fmt.Sprintf("ColumnType(%d)", int(t))
}

// TypeForCode maps an MTZ type code to a ColumnType. The "H" code is
// included even though index columns never appear as data columns.
func TypeForCode(code byte) (ColumnType, bool) {
	for t, info := range columnTypeInfo {
		if info.code == code {
			return t, true
		}
	}
	return 0, false
}

// Column is a single labeled column. Exactly one of Float, Int, Bool is
// non-nil, according to Type.Kind().
type Column struct {
	Label string
	Type  ColumnType

	Float []float32
	Int   []int32
	Bool  []bool
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	switch c.Type.Kind() {
	case KindInt32:
		return len(c.Int)
	case KindBool:
		return len(c.Bool)
	default:
		return len(c.Float)
	}
}

// Copy returns a deep copy of the column.
func (c *Column) Copy() *Column {
	out := &Column{Label: c.Label, Type: c.Type}
	if c.Float != nil {
		out.Float = append([]float32(nil), c.Float...)
	}
	if c.Int != nil {
		out.Int = append([]int32(nil), c.Int...)
	}
	if c.Bool != nil {
		out.Bool = append([]bool(nil), c.Bool...)
	}
	return out
}
