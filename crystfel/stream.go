package crystfel

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/xtalgo/rspace"
	"github.com/xtalgo/rspace/internal/fsutil"
)

// Stream block markers, fixed by the CrystFEL format.
const (
	beginChunk   = "----- Begin chunk -----"
	endChunk     = "----- End chunk -----"
	beginCrystal = "--- Begin crystal"
	endCrystal   = "--- End crystal"
	beginRefl    = "Reflections measured after indexing"
	endRefl      = "End of reflections"
)

// ErrNotStream is returned for input paths without the .stream suffix.
var ErrNotStream = errors.New(`not a CrystFEL stream file: want ".stream" suffix`)

// ErrParse indicates a malformed stream line.
type ErrParse struct {
	Line   int
	Text   string
	Reason string
}

func (e *ErrParse) Error() string {
	return fmt.Sprintf("stream line %d %q: %s", e.Line, e.Text, e.Reason)
}

type readOptions struct {
	concurrency int
	logger      *rspace.Logger
}

// ReadOption configures Read.
type ReadOption func(*readOptions)

// WithConcurrency bounds the number of chunks parsed in parallel.
// Defaults to GOMAXPROCS.
func WithConcurrency(n int) ReadOption {
	return func(o *readOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *rspace.Logger) ReadOption {
	return func(o *readOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// observation is one parsed reflection row before assembly.
type observation struct {
	hkl      rspace.HKL
	i, sigI  float32
	fs, ss   float32
	s1       [3]float64
	ewaldOff float64
}

// crystal is one "Begin crystal" block.
type crystal struct {
	obs []observation
}

// chunk is the parse result of one stream chunk, preserving crystal order.
type chunk struct {
	crystals []crystal
}

// Read parses a CrystFEL stream file into an unmerged DataSet with columns
// I, sigmaI, BATCH, s1x, s1y, s1z, ewald_offset, XDET, YDET. BATCH numbers
// crystal blocks in file order starting at 0. The returned dataset carries
// no spacegroup or cell. Paths ending in .stream.gz are decompressed.
func Read(path string, opts ...ReadOption) (*rspace.DataSet, error) {
	o := readOptions{
		concurrency: runtime.GOMAXPROCS(0),
		logger:      rspace.NoopLogger(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	if !strings.HasSuffix(fsutil.TrimGzip(path), ".stream") {
		return nil, fmt.Errorf("%w: %s", ErrNotStream, path)
	}

	var raw []byte
	err := fsutil.Load(path, func(r io.Reader) error {
		var err error
		raw, err = io.ReadAll(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	sections, err := splitChunks(raw)
	if err != nil {
		return nil, err
	}

	chunks := make([]chunk, len(sections))
	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, sec := range sections {
		i, sec := i, sec
		g.Go(func() error {
			c, err := parseChunk(sec.text, sec.firstLine)
			if err != nil {
				return err
			}
			chunks[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := assemble(chunks)
	o.logger.WithPath(path).Debug("stream parsed",
		"chunks", len(chunks), "reflections", ds.Len())
	return ds, nil
}

// section is one chunk's raw text plus its first line number for error
// reporting.
type section struct {
	text      string
	firstLine int
}

// splitChunks cuts the stream into chunk bodies. Everything outside
// Begin/End chunk markers (the geometry and cell preambles) is skipped.
func splitChunks(raw []byte) ([]section, error) {
	var sections []section
	sc := bufio.NewScanner(strings.NewReader(string(raw)))
	sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	var cur strings.Builder
	inChunk := false
	firstLine := 0
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		switch strings.TrimSpace(line) {
		case beginChunk:
			inChunk = true
			firstLine = lineNo
			cur.Reset()
		case endChunk:
			if inChunk {
				sections = append(sections, section{text: cur.String(), firstLine: firstLine})
			}
			inChunk = false
		default:
			if inChunk {
				cur.WriteString(line)
				cur.WriteByte('\n')
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return sections, nil
}

func parseChunk(text string, firstLine int) (chunk, error) {
	var c chunk
	lambda := 0.0

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	lineNo := firstLine

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "photon_energy_eV"):
			fields := strings.Fields(line)
			if len(fields) < 3 {
				return c, &ErrParse{Line: lineNo, Text: line, Reason: "want photon_energy_eV = <value>"}
			}
			ev, err := strconv.ParseFloat(fields[2], 64)
			if err != nil || ev <= 0 {
				return c, &ErrParse{Line: lineNo, Text: line, Reason: "bad photon energy"}
			}
			lambda = hcEvAngstrom / ev
		case strings.HasPrefix(line, beginCrystal):
			cry, n, err := parseCrystal(sc, lineNo, lambda)
			if err != nil {
				return c, err
			}
			lineNo = n
			c.crystals = append(c.crystals, cry)
		}
	}
	return c, sc.Err()
}

// parseCrystal consumes one crystal block from the scanner, returning the
// parsed block and the line number of its End marker.
func parseCrystal(sc *bufio.Scanner, lineNo int, lambda float64) (crystal, int, error) {
	var cry crystal
	var basis reciprocalBasis
	haveBasis := [3]bool{}

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, endCrystal):
			return cry, lineNo, nil
		case strings.HasPrefix(line, "astar"):
			if err := parseBasisRow(line, lineNo, &basis.astar); err != nil {
				return cry, lineNo, err
			}
			haveBasis[0] = true
		case strings.HasPrefix(line, "bstar"):
			if err := parseBasisRow(line, lineNo, &basis.bstar); err != nil {
				return cry, lineNo, err
			}
			haveBasis[1] = true
		case strings.HasPrefix(line, beginRefl):
			if !haveBasis[0] || !haveBasis[1] || !haveBasis[2] {
				return cry, lineNo, &ErrParse{Line: lineNo, Text: line,
					Reason: "reflection list before reciprocal basis"}
			}
			if lambda <= 0 {
				return cry, lineNo, &ErrParse{Line: lineNo, Text: line,
					Reason: "reflection list in chunk without photon energy"}
			}
			obs, n, err := parseReflections(sc, lineNo, basis, lambda)
			if err != nil {
				return cry, lineNo, err
			}
			lineNo = n
			cry.obs = obs
		case strings.HasPrefix(line, "cstar"):
			if err := parseBasisRow(line, lineNo, &basis.cstar); err != nil {
				return cry, lineNo, err
			}
			haveBasis[2] = true
		}
	}
	return cry, lineNo, &ErrParse{Line: lineNo, Text: beginCrystal, Reason: "unterminated crystal block"}
}

// parseBasisRow parses "astar = +x +y +z nm^-1" into Angstrom^-1.
func parseBasisRow(line string, lineNo int, dst *[3]float64) error {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return &ErrParse{Line: lineNo, Text: line, Reason: "want <axis> = x y z nm^-1"}
	}
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[2+i], 64)
		if err != nil {
			return &ErrParse{Line: lineNo, Text: line, Reason: err.Error()}
		}
		dst[i] = v * nmInvToAngstromInv
	}
	return nil
}

func parseReflections(sc *bufio.Scanner, lineNo int, basis reciprocalBasis, lambda float64) ([]observation, int, error) {
	var obs []observation
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, endRefl) {
			return obs, lineNo, nil
		}
		if line == "" || strings.HasPrefix(line, "h ") {
			// Column caption row.
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 9 {
			return nil, lineNo, &ErrParse{Line: lineNo, Text: line, Reason: "want h k l I sigma(I) peak background fs/px ss/px"}
		}
		var hkl rspace.HKL
		for i := 0; i < 3; i++ {
			v, err := strconv.Atoi(fields[i])
			if err != nil {
				return nil, lineNo, &ErrParse{Line: lineNo, Text: line, Reason: err.Error()}
			}
			hkl[i] = v
		}
		vals := make([]float64, 6)
		for i := range vals {
			v, err := strconv.ParseFloat(fields[3+i], 64)
			if err != nil {
				return nil, lineNo, &ErrParse{Line: lineNo, Text: line, Reason: err.Error()}
			}
			vals[i] = v
		}
		s1, off := basis.scatteringVector(hkl, lambda)
		obs = append(obs, observation{
			hkl:      hkl,
			i:        float32(vals[0]),
			sigI:     float32(vals[1]),
			fs:       float32(vals[4]),
			ss:       float32(vals[5]),
			s1:       s1,
			ewaldOff: off,
		})
	}
	return nil, lineNo, &ErrParse{Line: lineNo, Text: beginRefl, Reason: "unterminated reflection list"}
}

// assemble flattens parsed chunks into one table, numbering crystal blocks
// in file order.
func assemble(chunks []chunk) *rspace.DataSet {
	total := 0
	for _, c := range chunks {
		for _, cry := range c.crystals {
			total += len(cry.obs)
		}
	}

	hkls := make([]rspace.HKL, 0, total)
	intensity := make([]float32, 0, total)
	sigI := make([]float32, 0, total)
	batch := make([]int32, 0, total)
	s1x := make([]float32, 0, total)
	s1y := make([]float32, 0, total)
	s1z := make([]float32, 0, total)
	ewald := make([]float32, 0, total)
	xdet := make([]float32, 0, total)
	ydet := make([]float32, 0, total)

	batchID := int32(0)
	for _, c := range chunks {
		for _, cry := range c.crystals {
			for _, ob := range cry.obs {
				hkls = append(hkls, ob.hkl)
				intensity = append(intensity, ob.i)
				sigI = append(sigI, ob.sigI)
				batch = append(batch, batchID)
				s1x = append(s1x, float32(ob.s1[0]))
				s1y = append(s1y, float32(ob.s1[1]))
				s1z = append(s1z, float32(ob.s1[2]))
				ewald = append(ewald, float32(ob.ewaldOff))
				xdet = append(xdet, ob.fs)
				ydet = append(ydet, ob.ss)
			}
			batchID++
		}
	}

	ds := rspace.NewDataSet(hkls)
	ds.Merged = false
	// The adds cannot fail: labels are distinct and lengths match by
	// construction.
	_ = ds.AddFloats("I", rspace.TypeIntensity, intensity)
	_ = ds.AddFloats("sigmaI", rspace.TypeStddev, sigI)
	_ = ds.AddInts("BATCH", rspace.TypeBatch, batch)
	_ = ds.AddFloats("s1x", rspace.TypeReal, s1x)
	_ = ds.AddFloats("s1y", rspace.TypeReal, s1y)
	_ = ds.AddFloats("s1z", rspace.TypeReal, s1z)
	_ = ds.AddFloats("ewald_offset", rspace.TypeReal, ewald)
	_ = ds.AddFloats("XDET", rspace.TypeReal, xdet)
	_ = ds.AddFloats("YDET", rspace.TypeReal, ydet)
	return ds
}
