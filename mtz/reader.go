package mtz

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xtalgo/rspace"
	"github.com/xtalgo/rspace/internal/fsutil"
	"github.com/xtalgo/rspace/symmetry"
)

// Read reads an MTZ file into a DataSet. Paths ending in .gz are
// decompressed transparently.
func Read(path string) (*rspace.DataSet, error) {
	var ds *rspace.DataSet
	err := fsutil.Load(path, func(r io.Reader) error {
		var err error
		ds, err = ReadFrom(r)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read mtz %s: %w", path, err)
	}
	return ds, nil
}

// ReadFrom reads an MTZ byte stream into a DataSet.
func ReadFrom(r io.Reader) (*rspace.DataSet, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	hdr, words, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return buildDataSet(hdr, words)
}

// ReadHeader parses only the ASCII header of an MTZ file, without
// materializing reflection data.
func ReadHeader(path string) (*Header, error) {
	var hdr *Header
	err := fsutil.Load(path, func(r io.Reader) error {
		raw, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		hdr, _, err = decode(raw)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read mtz header %s: %w", path, err)
	}
	return hdr, nil
}

// decode validates the preamble and returns the parsed header together with
// the reflection data as float32 words.
func decode(raw []byte) (*Header, []float32, error) {
	if len(raw) < recordLen {
		return nil, nil, ErrTruncated
	}
	if string(raw[:4]) != magic {
		return nil, nil, ErrInvalidMagic
	}
	if raw[8] != stampLE[0] || raw[9] != stampLE[1] {
		return nil, nil, fmt.Errorf("%w: got 0x%02x%02x", ErrUnsupportedStamp, raw[8], raw[9])
	}
	headerPos := int(binary.LittleEndian.Uint32(raw[4:8]))
	headerOffset := (headerPos - 1) * 4
	if headerOffset < recordLen || headerOffset > len(raw) {
		return nil, nil, fmt.Errorf("%w: header location %d out of range", ErrTruncated, headerPos)
	}

	hdr, err := parseHeader(raw[headerOffset:])
	if err != nil {
		return nil, nil, err
	}
	if hdr.NCol <= 0 || hdr.NRefl < 0 || hdr.NBatch < 0 {
		return nil, nil, &ErrBadRecord{
			Record: "NCOL",
			Reason: fmt.Sprintf("unusable counts %d %d %d", hdr.NCol, hdr.NRefl, hdr.NBatch),
		}
	}

	need := recordLen + 4*hdr.NCol*hdr.NRefl
	if need > headerOffset {
		return nil, nil, fmt.Errorf("%w: %d columns x %d reflections exceed data section",
			ErrTruncated, hdr.NCol, hdr.NRefl)
	}
	if len(hdr.Columns) != hdr.NCol {
		return nil, nil, &ErrBadRecord{
			Record: "NCOL",
			Reason: fmt.Sprintf("%d COLUMN records for %d declared columns", len(hdr.Columns), hdr.NCol),
		}
	}

	words := make([]float32, hdr.NCol*hdr.NRefl)
	for i := range words {
		bits := binary.LittleEndian.Uint32(raw[recordLen+4*i:])
		words[i] = math.Float32frombits(bits)
	}
	return hdr, words, nil
}

func parseHeader(raw []byte) (*Header, error) {
	hdr := &Header{}
	for off := 0; off < len(raw); off += recordLen {
		end := off + recordLen
		if end > len(raw) {
			end = len(raw)
		}
		rec := strings.TrimRight(string(raw[off:end]), " \x00")
		if rec == "" {
			continue
		}
		if strings.HasPrefix(rec, "MTZENDOFHEADERS") {
			return hdr, nil
		}
		if err := hdr.parseRecord(rec); err != nil {
			return nil, err
		}
	}
	return hdr, nil
}

func (h *Header) parseRecord(rec string) error {
	fields := strings.Fields(rec)
	key := fields[0]
	switch key {
	case "TITLE":
		h.Title = strings.TrimSpace(rec[len("TITLE"):])
	case "NCOL":
		if len(fields) < 4 {
			return &ErrBadRecord{Record: rec, Reason: "want 3 counts"}
		}
		vals, err := parseInts(fields[1:4])
		if err != nil {
			return &ErrBadRecord{Record: rec, Reason: err.Error()}
		}
		h.NCol, h.NRefl, h.NBatch = vals[0], vals[1], vals[2]
	case "CELL":
		cell, err := parseCell(fields[1:])
		if err != nil {
			return &ErrBadRecord{Record: rec, Reason: err.Error()}
		}
		h.Cell = cell
	case "SYMINF":
		if err := h.parseSymInf(rec); err != nil {
			return err
		}
	case "SYMM":
		op, err := symmetry.ParseSymOp(strings.TrimSpace(rec[len("SYMM"):]))
		if err != nil {
			return &ErrBadRecord{Record: rec, Reason: err.Error()}
		}
		h.SymOps = append(h.SymOps, op)
	case "RESO":
		if len(fields) >= 3 {
			h.ResoMin, _ = strconv.ParseFloat(fields[1], 64)
			h.ResoMax, _ = strconv.ParseFloat(fields[2], 64)
		}
	case "COLUMN":
		if len(fields) < 4 || len(fields[2]) != 1 {
			return &ErrBadRecord{Record: rec, Reason: "want label, type code, min, max"}
		}
		info := ColumnInfo{Label: fields[1], Code: fields[2][0]}
		info.Min, _ = strconv.ParseFloat(fields[3], 64)
		if len(fields) > 4 {
			info.Max, _ = strconv.ParseFloat(fields[4], 64)
		}
		if len(fields) > 5 {
			info.DatasetID, _ = strconv.Atoi(fields[5])
		}
		h.Columns = append(h.Columns, info)
	case "PROJECT", "CRYSTAL", "DATASET":
		if len(fields) < 2 {
			return &ErrBadRecord{Record: rec, Reason: "want dataset id"}
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return &ErrBadRecord{Record: rec, Reason: err.Error()}
		}
		name := ""
		if len(fields) > 2 {
			name = strings.Join(fields[2:], " ")
		}
		d := h.dataset(id)
		switch key {
		case "PROJECT":
			d.Project = name
		case "CRYSTAL":
			d.Crystal = name
		case "DATASET":
			d.Name = name
		}
	case "DCELL":
		if len(fields) >= 8 {
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				return &ErrBadRecord{Record: rec, Reason: err.Error()}
			}
			cell, err := parseCell(fields[2:8])
			if err != nil {
				return &ErrBadRecord{Record: rec, Reason: err.Error()}
			}
			h.dataset(id).Cell = cell
		}
	case "DWAVEL":
		if len(fields) >= 3 {
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				return &ErrBadRecord{Record: rec, Reason: err.Error()}
			}
			h.dataset(id).Wavelength, _ = strconv.ParseFloat(fields[2], 64)
		}
	default:
		// VERS, SORT, VALM, NDIF, END, MTZHIST, MTZBATS and anything
		// newer are irrelevant to the table representation.
	}
	return nil
}

// dataset returns the DatasetInfo for id, creating it on first sight.
func (h *Header) dataset(id int) *DatasetInfo {
	for i := range h.Datasets {
		if h.Datasets[i].ID == id {
			return &h.Datasets[i]
		}
	}
	h.Datasets = append(h.Datasets, DatasetInfo{ID: id})
	return &h.Datasets[len(h.Datasets)-1]
}

func (h *Header) parseSymInf(rec string) error {
	rest := rec[len("SYMINF"):]
	name := ""
	pg := ""
	if i := strings.Index(rest, "'"); i >= 0 {
		j := strings.LastIndex(rest, "'")
		if j <= i {
			return &ErrBadRecord{Record: rec, Reason: "unterminated spacegroup name"}
		}
		name = rest[i+1 : j]
		if after := strings.Fields(rest[j+1:]); len(after) > 0 {
			pg = after[0]
		}
		rest = rest[:i]
	}
	fields := strings.Fields(rest)
	if len(fields) < 4 {
		return &ErrBadRecord{Record: rec, Reason: "want counts, lattice, number"}
	}
	if name == "" && len(fields) > 4 {
		name = fields[4]
		if len(fields) > 5 {
			pg = fields[5]
		}
	}
	number, err := strconv.Atoi(fields[3])
	if err != nil {
		return &ErrBadRecord{Record: rec, Reason: err.Error()}
	}
	h.SpaceGroupNumber = number
	h.SpaceGroupName = name
	h.PointGroup = pg
	return nil
}

func parseInts(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseCell(fields []string) (*symmetry.UnitCell, error) {
	if len(fields) < 6 {
		return nil, fmt.Errorf("want 6 cell parameters, got %d", len(fields))
	}
	var vals [6]float64
	for i := 0; i < 6; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return symmetry.NewUnitCell(vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]), nil
}

// buildDataSet converts decoded header and data words into the table
// representation, undoing the unmerged M/ISYM packing when present.
func buildDataSet(hdr *Header, words []float32) (*rspace.DataSet, error) {
	ncol := hdr.NCol
	at := func(row, col int) float32 { return words[row*ncol+col] }

	posH, posK, posL := -1, -1, -1
	posY := -1
	for i, info := range hdr.Columns {
		switch {
		case info.Code == 'H' && info.Label == "H":
			posH = i
		case info.Code == 'H' && info.Label == "K":
			posK = i
		case info.Code == 'H' && info.Label == "L":
			posL = i
		case info.Code == 'Y':
			if posY >= 0 {
				return nil, ErrMultipleISym
			}
			posY = i
		}
	}
	if posH < 0 || posK < 0 || posL < 0 {
		return nil, ErrNoIndex
	}

	hkls := make([]rspace.HKL, hdr.NRefl)
	for r := range hkls {
		hkls[r] = rspace.HKL{
			int(at(r, posH)),
			int(at(r, posK)),
			int(at(r, posL)),
		}
	}

	ds := rspace.NewDataSet(hkls)
	ds.Cell = hdr.Cell
	ds.SpaceGroup = hdr.SpaceGroup()

	if posY >= 0 {
		if ds.SpaceGroup == nil {
			return nil, ErrNoSymmetry
		}
		ds.Merged = false
		// Undo the ASU reduction so the table shows observed indices.
		for r := range hkls {
			isym := int(at(r, posY)) % 256
			obs, err := ds.SpaceGroup.FromASU(hkls[r], isym)
			if err != nil {
				return nil, fmt.Errorf("column %s row %d: %w", hdr.Columns[posY].Label, r, err)
			}
			hkls[r] = obs
		}
	}

	for i, info := range hdr.Columns {
		switch i {
		case posH, posK, posL:
			continue
		}
		if i == posY {
			partial := make([]bool, hdr.NRefl)
			for r := range partial {
				partial[r] = int(at(r, i)) >= 256
			}
			if err := ds.AddBools(rspace.PartialLabel, partial); err != nil {
				return nil, err
			}
			continue
		}
		typ, ok := rspace.TypeForCode(info.Code)
		if !ok {
			return nil, &ErrBadRecord{
				Record: "COLUMN " + info.Label,
				Reason: fmt.Sprintf("unknown type code %q", string(info.Code)),
			}
		}
		var err error
		if typ.Kind() == rspace.KindInt32 {
			vals := make([]int32, hdr.NRefl)
			for r := range vals {
				vals[r] = int32(at(r, i))
			}
			err = ds.AddInts(info.Label, typ, vals)
		} else {
			vals := make([]float32, hdr.NRefl)
			for r := range vals {
				vals[r] = at(r, i)
			}
			err = ds.AddFloats(info.Label, typ, vals)
		}
		if err != nil {
			return nil, err
		}
	}
	return ds, nil
}
