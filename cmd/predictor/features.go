package main

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/internship-predictor/internal/services"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Feature table tooling for model training",
}

var featuresExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Build the training feature table from a labelled resume dataset",
	Args:  cobra.NoArgs,
	RunE:  runFeaturesExport,
}

func init() {
	rootCmd.AddCommand(featuresCmd)
	featuresCmd.AddCommand(featuresExportCmd)

	featuresExportCmd.Flags().String("dataset", "", "labelled dataset CSV with Resume and Category columns")
	featuresExportCmd.Flags().String("out", "features.csv", "feature table CSV to write")
	featuresExportCmd.Flags().String("info", "feature_info.json", "feature info JSON to write")
	featuresExportCmd.Flags().Bool("balance", false, "oversample every class up to the largest one")
	featuresExportCmd.Flags().Uint64("seed", 42, "random seed for balancing")

	_ = featuresExportCmd.MarkFlagRequired("dataset")
}

func runFeaturesExport(cmd *cobra.Command, _ []string) error {
	_, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	flags := cmd.Flags()
	datasetPath, _ := flags.GetString("dataset")
	outPath, _ := flags.GetString("out")
	infoPath, _ := flags.GetString("info")
	balance, _ := flags.GetBool("balance")
	seed, _ := flags.GetUint64("seed")

	f, err := os.Open(datasetPath)
	if err != nil {
		return fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	records, err := services.ReadDataset(f)
	if err != nil {
		return err
	}
	log.Info("dataset loaded", zap.String("path", datasetPath), zap.Int("rows", len(records)))

	table := services.BuildTrainingTable(records)
	if balance {
		table = table.Balance(rand.New(rand.NewPCG(seed, seed)))
		log.Info("classes balanced", zap.Int("rows", len(table.Rows)))
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	if err := table.WriteCSV(out); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", outPath, err)
	}

	if err := services.WriteJSONFile(infoPath, services.FeatureInfo{AllColumns: table.Columns}); err != nil {
		return err
	}

	log.Info("feature table written",
		zap.String("out", outPath),
		zap.String("info", infoPath),
		zap.Int("columns", len(table.Columns)),
	)
	return nil
}
