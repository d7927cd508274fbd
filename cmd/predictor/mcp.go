package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/internship-predictor/internal/app"
	"alfredoptarigan/internship-predictor/internal/models"
	"alfredoptarigan/internship-predictor/internal/prediction"
	"alfredoptarigan/internship-predictor/internal/services"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the predictor as an MCP tool over stdio",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	a, err := app.Build(cmd.Context(), cfg, log, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.Predictor.ModelLoaded() {
		log.Warn("no model loaded, predict_internship will fail", zap.String("path", cfg.Model.Path))
	}

	s := server.NewMCPServer("internship-predictor", version)
	registerPredictInternship(s, a.Predictor, log)

	log.Info("serving MCP over stdio")
	return server.ServeStdio(s)
}

func registerPredictInternship(s *server.MCPServer, predictor services.PredictorService, log *zap.Logger) {
	tool := mcp.NewTool("predict_internship",
		mcp.WithDescription("Classify resume text into the best fitting internship category"),
	)
	tool.InputSchema = mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"resume_text": map[string]interface{}{"type": "string", "description": "Plain text of the resume"},
		},
		Required: []string{"resume_text"},
	}

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return predictInternship(ctx, predictor, log, request)
	})
}

func predictInternship(ctx context.Context, predictor services.PredictorService, log *zap.Logger, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	text, _ := args["resume_text"].(string)
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("resume_text is required"), nil
	}

	outcome, err := predictor.AnalyzeText(ctx, text)
	switch {
	case errors.Is(err, prediction.ErrModelNotLoaded):
		return mcp.NewToolResultError("Model not loaded"), nil
	case err != nil:
		log.Error("mcp prediction failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("Enhanced prediction failed: %v", err)), nil
	}

	body, err := json.Marshal(models.NewPredictResponse(outcome.Result, outcome.Features))
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(body)), nil
}
