package main

import (
	"fmt"
	"os"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/xtalgo/rspace/mtz"
)

var dumpJSON bool

var dumpCmd = &cobra.Command{
	Use:   "dump <file.mtz>",
	Short: "Print the header and column summary of an MTZ file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().BoolVar(&dumpJSON, "json", false, "Emit the header as JSON")
}

// dumpSummary is the JSON shape of a header dump.
type dumpSummary struct {
	Title       string            `json:"title,omitempty"`
	Reflections int               `json:"reflections"`
	Batches     int               `json:"batches"`
	SpaceGroup  string            `json:"spacegroup,omitempty"`
	SGNumber    int               `json:"spacegroup_number,omitempty"`
	Cell        []float64         `json:"cell,omitempty"`
	Columns     []mtz.ColumnInfo  `json:"columns"`
	Datasets    []mtz.DatasetInfo `json:"datasets"`
}

func runDump(cmd *cobra.Command, args []string) error {
	hdr, err := mtz.ReadHeader(args[0])
	if err != nil {
		return err
	}

	if dumpJSON {
		s := dumpSummary{
			Title:       hdr.Title,
			Reflections: hdr.NRefl,
			Batches:     hdr.NBatch,
			SpaceGroup:  hdr.SpaceGroupName,
			SGNumber:    hdr.SpaceGroupNumber,
			Columns:     hdr.Columns,
			Datasets:    hdr.Datasets,
		}
		if hdr.Cell != nil {
			s.Cell = []float64{hdr.Cell.A, hdr.Cell.B, hdr.Cell.C,
				hdr.Cell.Alpha, hdr.Cell.Beta, hdr.Cell.Gamma}
		}
		enc := gojson.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Printf("File:        %s\n", args[0])
	if hdr.Title != "" {
		fmt.Printf("Title:       %s\n", hdr.Title)
	}
	fmt.Printf("Reflections: %d\n", hdr.NRefl)
	if hdr.SpaceGroupName != "" {
		fmt.Printf("Spacegroup:  %s (#%d)\n", hdr.SpaceGroupName, hdr.SpaceGroupNumber)
	}
	if hdr.Cell != nil {
		fmt.Printf("Cell:        %.3f %.3f %.3f  %.2f %.2f %.2f\n",
			hdr.Cell.A, hdr.Cell.B, hdr.Cell.C, hdr.Cell.Alpha, hdr.Cell.Beta, hdr.Cell.Gamma)
	}
	fmt.Printf("Columns:\n")
	for _, col := range hdr.Columns {
		fmt.Printf("  %-30s %c %17.6g %17.6g\n", col.Label, col.Code, col.Min, col.Max)
	}
	return nil
}
