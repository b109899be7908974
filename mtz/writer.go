package mtz

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/xtalgo/rspace"
	"github.com/xtalgo/rspace/internal/fsutil"
)

// Write writes the dataset to an MTZ file at path. The write is atomic
// (temp file plus rename) and paths ending in .gz are gzip-compressed.
//
// The dataset must carry both a spacegroup and a unit cell. Unmerged
// datasets are written in the M/ISYM convention without modifying the
// source table.
func Write(ds *rspace.DataSet, path string, opts ...WriteOption) error {
	return fsutil.Save(path, func(w io.Writer) error {
		return WriteTo(ds, w, opts...)
	})
}

// WriteTo writes the dataset as an MTZ byte stream. Output is fully
// deterministic for a given dataset and options.
func WriteTo(ds *rspace.DataSet, w io.Writer, opts ...WriteOption) error {
	o := defaultWriteOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if err := o.validNames(); err != nil {
		return err
	}
	if ds.SpaceGroup == nil {
		return rspace.ErrNoSpaceGroup
	}
	if ds.Cell == nil {
		return rspace.ErrNoCell
	}

	plan, err := buildPlan(ds, &o)
	if err != nil {
		return err
	}

	nrefl := ds.Len()
	ncol := 3 + len(plan.cols)

	// Fixed 80-byte preamble: magic, header location in words, machine
	// stamp, zero padding up to the data start.
	var pre [recordLen]byte
	copy(pre[:], magic)
	binary.LittleEndian.PutUint32(pre[4:8], uint32(dataStartWord+nrefl*ncol))
	pre[8], pre[9] = stampLE[0], stampLE[1]
	if _, err := w.Write(pre[:]); err != nil {
		return err
	}

	// Reflection records, row-major float32.
	data := make([]byte, 4*nrefl*ncol)
	off := 0
	put := func(v float32) {
		binary.LittleEndian.PutUint32(data[off:], math.Float32bits(v))
		off += 4
	}
	for r := 0; r < nrefl; r++ {
		h := plan.hkls[r]
		put(float32(h[0]))
		put(float32(h[1]))
		put(float32(h[2]))
		for _, col := range plan.cols {
			put(col[r])
		}
	}
	if _, err := w.Write(data); err != nil {
		return err
	}

	for _, rec := range buildRecords(ds, plan, &o) {
		var padded [recordLen]byte
		for i := range padded {
			padded[i] = ' '
		}
		copy(padded[:], rec)
		if _, err := w.Write(padded[:]); err != nil {
			return err
		}
	}
	return nil
}

// writePlan is the materialized column layout of one output file: index
// plus float32 data columns in final order.
type writePlan struct {
	hkls   []rspace.HKL
	labels []string
	codes  []byte
	cols   [][]float32
}

func (p *writePlan) add(label string, code byte, vals []float32) {
	p.labels = append(p.labels, label)
	p.codes = append(p.codes, code)
	p.cols = append(p.cols, vals)
}

// buildPlan resolves column selection and the unmerged M/ISYM packing.
// It never mutates ds.
func buildPlan(ds *rspace.DataSet, o *writeOptions) (*writePlan, error) {
	n := ds.Len()
	p := &writePlan{hkls: ds.HKLs}

	var isyms []int32
	var partial []bool
	misymPlaced := false

	if !ds.Merged {
		if col, ok := ds.Column(rspace.ISymLabel); ok {
			// Index already reduced by HKLToASU; reuse its bookkeeping.
			isyms = col.Int
		} else {
			hkls := make([]rspace.HKL, n)
			isyms = make([]int32, n)
			for i, h := range ds.HKLs {
				rep, isym := ds.SpaceGroup.ToASU(h)
				hkls[i], isyms[i] = rep, int32(isym)
			}
			p.hkls = hkls
		}
		if col, ok := ds.Column(rspace.PartialLabel); ok && col.Type == rspace.TypeBool {
			partial = col.Bool
		}
	}

	packMISym := func() error {
		vals := make([]float32, n)
		for i := range vals {
			v := isyms[i]
			if v < 1 || v > 255 {
				return &ErrISymRange{Row: i, Value: v}
			}
			if partial != nil && partial[i] {
				v += 256
			}
			vals[i] = float32(v)
		}
		p.add(rspace.ISymLabel, 'Y', vals)
		return nil
	}

	for _, col := range ds.Columns() {
		if !ds.Merged && (col.Label == rspace.ISymLabel || col.Label == rspace.PartialLabel) {
			// Both collapse into one packed column at the position of
			// whichever comes first.
			if !misymPlaced {
				if err := packMISym(); err != nil {
					return nil, err
				}
				misymPlaced = true
			}
			continue
		}
		code, ok := col.Type.Code()
		if !ok {
			if !o.skipProblem {
				return nil, &ErrProblemType{Label: col.Label, Type: col.Type}
			}
			o.logger.WithColumn(col.Label).Warn("skipping column with no MTZ type code",
				"type", col.Type.String())
			continue
		}
		vals := make([]float32, n)
		if col.Type.Kind() == rspace.KindInt32 {
			for i, v := range col.Int {
				vals[i] = float32(v)
			}
		} else {
			copy(vals, col.Float)
		}
		p.add(col.Label, code, vals)
	}
	if !ds.Merged && !misymPlaced {
		if err := packMISym(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func buildRecords(ds *rspace.DataSet, p *writePlan, o *writeOptions) []string {
	sg := ds.SpaceGroup
	cell := ds.Cell
	nrefl := ds.Len()
	ncol := 3 + len(p.cols)

	records := []string{
		"VERS MTZ:V1.1",
		strings.TrimRight("TITLE "+o.title, " "),
		fmt.Sprintf("NCOL %8d %12d %8d", ncol, nrefl, 0),
		fmt.Sprintf("CELL  %9.4f %9.4f %9.4f %9.4f %9.4f %9.4f",
			cell.A, cell.B, cell.C, cell.Alpha, cell.Beta, cell.Gamma),
		"SORT    0   0   0   0   0",
		fmt.Sprintf("SYMINF %3d %2d %c %5d '%s' %s",
			len(sg.Ops), sg.NumPrimitiveOps(), sg.Lattice(), sg.Number, sg.Name, sg.PointGroup),
	}
	for _, op := range sg.Ops {
		records = append(records, "SYMM "+op.Triplet())
	}

	rmin, rmax := math.Inf(1), 0.0
	for _, h := range p.hkls {
		s := cell.InvDSq(h)
		rmin = math.Min(rmin, s)
		rmax = math.Max(rmax, s)
	}
	if nrefl == 0 {
		rmin = 0
	}
	records = append(records,
		fmt.Sprintf("RESO %-20.12f %-20.12f", rmin, rmax),
		"VALM NAN",
	)

	colRec := func(label string, code byte, min, max float64, id int) string {
		return fmt.Sprintf("COLUMN %-30s %c %17.9g %17.9g %4d", label, code, min, max, id)
	}
	for axis := 0; axis < 3; axis++ {
		min, max := math.Inf(1), math.Inf(-1)
		for _, h := range p.hkls {
			min = math.Min(min, float64(h[axis]))
			max = math.Max(max, float64(h[axis]))
		}
		if nrefl == 0 {
			min, max = 0, 0
		}
		records = append(records, colRec(string("HKL"[axis]), 'H', min, max, 0))
	}
	for i, vals := range p.cols {
		min, max := math.Inf(1), math.Inf(-1)
		valid := false
		for _, v := range vals {
			f := float64(v)
			if math.IsNaN(f) {
				continue
			}
			min = math.Min(min, f)
			max = math.Max(max, f)
			valid = true
		}
		if !valid {
			min, max = 0, 0
		}
		records = append(records, colRec(p.labels[i], p.codes[i], min, max, 1))
	}

	dcell := fmt.Sprintf("%10.4f %10.4f %10.4f %10.4f %10.4f %10.4f",
		cell.A, cell.B, cell.C, cell.Alpha, cell.Beta, cell.Gamma)
	records = append(records,
		fmt.Sprintf("NDIF %8d", 2),
		fmt.Sprintf("PROJECT %7d %s", 0, baseDatasetName),
		fmt.Sprintf("CRYSTAL %7d %s", 0, baseDatasetName),
		fmt.Sprintf("DATASET %7d %s", 0, baseDatasetName),
		fmt.Sprintf("DCELL %7d %s", 0, dcell),
		fmt.Sprintf("DWAVEL %6d %10.5f", 0, 0.0),
		fmt.Sprintf("PROJECT %7d %s", 1, o.projectName),
		fmt.Sprintf("CRYSTAL %7d %s", 1, o.crystalName),
		fmt.Sprintf("DATASET %7d %s", 1, o.datasetName),
		fmt.Sprintf("DCELL %7d %s", 1, dcell),
		fmt.Sprintf("DWAVEL %6d %10.5f", 1, 0.0),
		"END",
		"MTZENDOFHEADERS",
	)
	return records
}
