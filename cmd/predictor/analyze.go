package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/internship-predictor/internal/app"
	"alfredoptarigan/internship-predictor/internal/models"
	"alfredoptarigan/internship-predictor/internal/services"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Classify a PDF or plain text resume with the local model",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()

	a, err := app.Build(ctx, cfg, log, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var outcome *services.Outcome
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		outcome, err = a.Predictor.AnalyzeDocument(ctx, data)
	} else {
		outcome, err = a.Predictor.AnalyzeText(ctx, string(data))
	}
	if err != nil {
		log.Error("analysis failed", zap.String("file", path), zap.Error(err))
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(models.NewPredictResponse(outcome.Result, outcome.Features))
}
