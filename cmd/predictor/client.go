package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"alfredoptarigan/internship-predictor/internal/logger"
	"alfredoptarigan/internship-predictor/internal/models"
)

var clientCmd = &cobra.Command{
	Use:   "client [pdf]",
	Short: "Check a running server and upload a resume PDF to it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClient,
}

func init() {
	rootCmd.AddCommand(clientCmd)

	clientCmd.Flags().String("server", "http://127.0.0.1:5000", "base URL of the prediction server")
}

func runClient(cmd *cobra.Command, args []string) error {
	server, _ := cmd.Flags().GetString("server")
	server = strings.TrimRight(server, "/")
	out := cmd.OutOrStdout()

	health, err := checkHealth(server)
	if err != nil {
		return err
	}
	printHealth(out, health)

	if !health.ModelLoaded {
		return errors.New("server has no model loaded")
	}

	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		prompt := promptui.Prompt{
			Label:    "Resume PDF path",
			Validate: validateResumePath,
		}
		path, err = prompt.Run()
		if err != nil {
			return fmt.Errorf("reading path: %w", err)
		}
	}

	if err := validateResumePath(path); err != nil {
		return err
	}

	fmt.Fprintf(out, "Sending '%s' to API...\n", path)
	result, err := uploadResume(server, path)
	if err != nil {
		return err
	}

	printPrediction(out, result)
	return nil
}

func validateResumePath(path string) error {
	path = strings.TrimSpace(path)
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file not found at '%s'", path)
	}
	if info.IsDir() {
		return fmt.Errorf("'%s' is a directory", path)
	}
	if info.Size() == 0 {
		return errors.New("file is empty")
	}
	return nil
}

func checkHealth(server string) (*models.HealthResponse, error) {
	agent := fiber.Get(server + "/health").Timeout(5 * time.Second)

	var health models.HealthResponse
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("cannot connect to server at %s: %w", server, errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("health check failed with status: %d", code)
	}
	if err := json.Unmarshal(body, &health); err != nil {
		return nil, fmt.Errorf("invalid health response: %w", err)
	}
	return &health, nil
}

func uploadResume(server, path string) (*models.PredictResponse, error) {
	agent := fiber.Post(server + "/upload_and_predict").Timeout(60 * time.Second)
	agent.SendFile(strings.TrimSpace(path), "resume").MultipartForm(nil)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("upload failed: %w", errors.Join(errs...))
	}

	if code != fiber.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error == "" {
			return nil, fmt.Errorf("API error (status %d): %s", code, logger.Truncate(string(body), 500))
		}
		return nil, fmt.Errorf("API error (status %d): %s", code, apiErr.Error)
	}

	var result models.PredictResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}
	return &result, nil
}

func printHealth(w io.Writer, h *models.HealthResponse) {
	fmt.Fprintln(w, "Server Health Check:")
	fmt.Fprintf(w, "   Status: %s\n", h.Status)
	fmt.Fprintf(w, "   Model loaded: %t\n", h.ModelLoaded)
	fmt.Fprintf(w, "   Companies loaded: %t\n", h.CompaniesLoaded)
	fmt.Fprintf(w, "   Feature info loaded: %t\n", h.FeatureInfoLoaded)

	if len(h.ModelInfo) == 0 {
		return
	}
	fmt.Fprintf(w, "   Model Type: %v\n", h.ModelInfo["model_type"])
	fmt.Fprintf(w, "   Features Count: %v\n", orNA(h.ModelInfo["features_count"]))
	if classes, ok := h.ModelInfo["class_names"].([]any); ok {
		fmt.Fprintf(w, "   Classes: %d\n", len(classes))
	}
	if f1, ok := h.ModelInfo["f1_weighted"]; ok {
		fmt.Fprintf(w, "   F1-Score: %v\n", orNA(f1))
		fmt.Fprintf(w, "   Precision: %v\n", orNA(h.ModelInfo["precision_weighted"]))
	}
}

func printPrediction(w io.Writer, r *models.PredictResponse) {
	fmt.Fprintln(w, "\nPrediction Results")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Predicted Internship: %s\n", r.PredictedInternship)
	fmt.Fprintf(w, "Confidence Level: %s\n", r.ConfidenceLevel)
	fmt.Fprintf(w, "Prediction Quality: %s\n", r.PredictionQuality)

	if len(r.TopPredictions) > 0 {
		fmt.Fprintln(w, "\nTop Predictions:")
		for _, p := range r.TopPredictions {
			fmt.Fprintf(w, "   - %s: %v%%\n", p.Category, p.Probability)
		}
	}

	f := r.ExtractedFeatures
	fmt.Fprintln(w, "\nExtracted Features:")
	fmt.Fprintf(w, "   Word Count: %d\n", f.WordCount)
	fmt.Fprintf(w, "   Unique Words: %d\n", f.UniqueWords)
	fmt.Fprintf(w, "   Skills: %s\n", strings.Join(f.DetectedSkills, ", "))
	fmt.Fprintf(w, "   Education: %s\n", strings.Join(f.Education, ", "))
	fmt.Fprintf(w, "   Years Experience: %d\n", f.YearsExperience)
	fmt.Fprintf(w, "   Projects Mentioned: %t\n", f.HasProjects)
	fmt.Fprintf(w, "   Internship Mentioned: %t\n", f.HasInternshipExperience)

	if len(f.CategoryKeywordHits) > 0 {
		fmt.Fprintln(w, "\nCategory Keyword Hits:")
		for _, category := range slices.Sorted(maps.Keys(f.CategoryKeywordHits)) {
			fmt.Fprintf(w, "   %s: %s\n", category, strings.Join(f.CategoryKeywordHits[category], ", "))
		}
	}
}

func orNA(v any) any {
	if v == nil {
		return "N/A"
	}
	return v
}
