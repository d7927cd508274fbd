package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/internship-predictor/internal/models"
	"alfredoptarigan/internship-predictor/internal/prediction"
	"alfredoptarigan/internship-predictor/internal/services"
)

type PredictHandler struct {
	predictor   services.PredictorService
	maxFileSize int64
	log         *zap.Logger
}

func NewPredictHandler(predictor services.PredictorService, maxFileSize int64, log *zap.Logger) *PredictHandler {
	return &PredictHandler{
		predictor:   predictor,
		maxFileSize: maxFileSize,
		log:         log,
	}
}

// HandleUploadAndPredict handles POST /upload_and_predict and POST /predict
func (h *PredictHandler) HandleUploadAndPredict(c *fiber.Ctx) error {
	if !h.predictor.ModelLoaded() {
		return predictionError(c, prediction.ErrModelNotLoaded)
	}

	// a missing field and a non-multipart body are the same to the client
	file, err := c.FormFile("resume")
	if err != nil {
		file = nil
	}

	if err := services.ValidateUpload(file, h.maxFileSize); err != nil {
		return uploadError(c, err, h.maxFileSize)
	}

	data, err := readUpload(file)
	if err != nil {
		return predictionError(c, err)
	}

	outcome, err := h.predictor.AnalyzeDocument(c.UserContext(), data)
	if err != nil {
		h.log.Warn("upload prediction failed", zap.String("filename", file.Filename), zap.Error(err))
		return predictionError(c, err)
	}

	return h.respond(c, models.SourceUpload, outcome)
}

// HandleAnalyze handles POST /api/v1/analyze
func (h *PredictHandler) HandleAnalyze(c *fiber.Ctx) error {
	if !h.predictor.ModelLoaded() {
		return predictionError(c, prediction.ErrModelNotLoaded)
	}

	var req models.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if strings.TrimSpace(req.ResumeText) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume_text is required",
		})
	}

	outcome, err := h.predictor.AnalyzeText(c.UserContext(), req.ResumeText)
	if err != nil {
		return predictionError(c, err)
	}

	return h.respond(c, models.SourceText, outcome)
}

func (h *PredictHandler) respond(c *fiber.Ctx, source models.PredictionSource, outcome *services.Outcome) error {
	resp := models.NewPredictResponse(outcome.Result, outcome.Features)

	record, err := h.predictor.RecordOutcome(c.UserContext(), source, outcome)
	if err != nil {
		h.log.Warn("failed to record prediction", zap.Error(err))
	} else if record != nil {
		resp.PredictionID = record.ID.String()
	}

	return c.JSON(resp)
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return data, nil
}

func uploadError(c *fiber.Ctx, err error, maxFileSize int64) error {
	msg := err.Error()
	switch {
	case errors.Is(err, services.ErrNoResume):
		msg = "No resume uploaded"
	case errors.Is(err, services.ErrNotPDF):
		msg = "Only PDF files allowed"
	case errors.Is(err, services.ErrFileTooLarge) && maxFileSize > 0:
		msg = fmt.Sprintf("File too large. Max size: %d bytes", maxFileSize)
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

func predictionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, prediction.ErrModelNotLoaded):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Model not loaded",
		})
	case errors.Is(err, prediction.ErrEmptyText):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to extract text",
		})
	case errors.Is(err, prediction.ErrMalformedUpload):
		return uploadError(c, err, 0)
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Enhanced prediction failed: %v", err),
		})
	}
}
