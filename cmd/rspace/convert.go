package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xtalgo/rspace"
	"github.com/xtalgo/rspace/crystfel"
	"github.com/xtalgo/rspace/mtz"
	"github.com/xtalgo/rspace/symmetry"
)

var (
	convertSpaceGroup int
	convertCell       []float64
	convertProject    string
	convertCrystal    string
	convertDataset    string
)

var convertCmd = &cobra.Command{
	Use:   "convert <in.stream> <out.mtz>",
	Short: "Convert a CrystFEL stream file to an unmerged MTZ file",
	Long: `Convert parses a CrystFEL stream file and writes the observations as an
unmerged MTZ file. Stream files carry no symmetry, so the target spacegroup
and unit cell must be given explicitly.`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().IntVar(&convertSpaceGroup, "spacegroup", 0, "Spacegroup number for the output file (required)")
	convertCmd.Flags().Float64SliceVar(&convertCell, "cell", nil, "Unit cell as a,b,c,alpha,beta,gamma (required)")
	convertCmd.Flags().StringVar(&convertProject, "project", "", "Project name for the output dataset")
	convertCmd.Flags().StringVar(&convertCrystal, "crystal", "", "Crystal name for the output dataset")
	convertCmd.Flags().StringVar(&convertDataset, "dataset", "", "Dataset name for the output dataset")
	_ = convertCmd.MarkFlagRequired("spacegroup")
	_ = convertCmd.MarkFlagRequired("cell")
}

func runConvert(cmd *cobra.Command, args []string) error {
	sg, err := symmetry.ByNumber(convertSpaceGroup)
	if err != nil {
		return err
	}
	if len(convertCell) != 6 {
		return fmt.Errorf("--cell wants 6 values, got %d", len(convertCell))
	}
	cell := symmetry.NewUnitCell(convertCell[0], convertCell[1], convertCell[2],
		convertCell[3], convertCell[4], convertCell[5])
	if !cell.IsValid() {
		return fmt.Errorf("unusable cell %s", cell)
	}

	logger := rspace.NewTextLogger(logLevel())
	ds, err := crystfel.Read(args[0], crystfel.WithLogger(logger))
	if err != nil {
		return err
	}
	ds.SpaceGroup = sg
	ds.Cell = cell

	if err := mtz.Write(ds, args[1],
		mtz.WithProjectName(convertProject),
		mtz.WithCrystalName(convertCrystal),
		mtz.WithDatasetName(convertDataset),
		mtz.WithLogger(logger),
	); err != nil {
		return err
	}

	logger.WithPath(args[1]).Info("wrote unmerged MTZ",
		"reflections", ds.Len(), "batches", countBatches(ds))
	return nil
}

func countBatches(ds *rspace.DataSet) int {
	col, ok := ds.Column("BATCH")
	if !ok {
		return 0
	}
	seen := make(map[int32]struct{})
	for _, b := range col.Int {
		seen[b] = struct{}{}
	}
	return len(seen)
}
