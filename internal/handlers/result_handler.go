package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/internship-predictor/internal/models"
	"alfredoptarigan/internship-predictor/internal/repositories"
	"alfredoptarigan/internship-predictor/internal/services"
)

type ResultHandler struct {
	predictor services.PredictorService
	log       *zap.Logger
}

func NewResultHandler(predictor services.PredictorService, log *zap.Logger) *ResultHandler {
	return &ResultHandler{
		predictor: predictor,
		log:       log,
	}
}

// HandleGetResult handles GET /api/v1/predictions/:id
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid prediction ID format",
		})
	}

	pred, err := h.predictor.FindPrediction(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Prediction not found",
			})
		}
		h.log.Error("failed to load prediction", zap.String("prediction_id", id.String()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load prediction",
		})
	}

	response := models.ResultResponse{
		ID:     pred.ID.String(),
		Status: string(pred.Status),
	}

	switch pred.Status {
	case models.StatusCompleted:
		outcome, err := services.OutcomeFromRecord(pred)
		if err != nil {
			h.log.Error("stored prediction is unreadable", zap.String("prediction_id", id.String()), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to load prediction",
			})
		}
		result := models.NewPredictResponse(outcome.Result, outcome.Features)
		result.PredictionID = pred.ID.String()
		response.Result = &result
	case models.StatusFailed:
		response.ErrorMessage = pred.ErrorMessage
	}

	return c.JSON(response)
}
