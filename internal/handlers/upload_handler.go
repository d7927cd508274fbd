package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/internship-predictor/internal/models"
	"alfredoptarigan/internship-predictor/internal/prediction"
	"alfredoptarigan/internship-predictor/internal/services"
)

type UploadHandler struct {
	predictor   services.PredictorService
	worker      services.Worker
	maxFileSize int64
	log         *zap.Logger
}

func NewUploadHandler(
	predictor services.PredictorService,
	worker services.Worker,
	maxFileSize int64,
	log *zap.Logger,
) *UploadHandler {
	return &UploadHandler{
		predictor:   predictor,
		worker:      worker,
		maxFileSize: maxFileSize,
		log:         log,
	}
}

// HandleSubmit handles POST /api/v1/predictions
func (h *UploadHandler) HandleSubmit(c *fiber.Ctx) error {
	file, err := c.FormFile("resume")
	if err != nil {
		file = nil
	}

	pred, err := h.predictor.SubmitUpload(c.UserContext(), file)
	if err != nil {
		switch {
		case errors.Is(err, prediction.ErrMalformedUpload):
			return uploadError(c, err, h.maxFileSize)
		case errors.Is(err, prediction.ErrModelNotLoaded):
			return predictionError(c, err)
		}
		h.log.Error("failed to create prediction job", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create prediction job",
		})
	}

	h.worker.EnqueueJob(pred.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.JobResponse{
		ID:     pred.ID.String(),
		Status: string(pred.Status),
	})
}
