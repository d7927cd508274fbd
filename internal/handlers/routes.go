package handlers

import (
	"errors"
	"math"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/internship-predictor/internal/services"
)

// Routes wires handlers to paths. Upload and Result are nil when persistence
// is disabled and their routes are then not registered.
type Routes struct {
	Predict *PredictHandler
	Health  *HealthHandler
	Upload  *UploadHandler
	Result  *ResultHandler
}

func (r Routes) Register(app *fiber.App) {
	app.Get("/", r.Health.HandleHome)
	app.Get("/health", r.Health.HandleHealth)
	app.Post("/upload_and_predict", r.Predict.HandleUploadAndPredict)
	app.Post("/predict", r.Predict.HandleUploadAndPredict)

	api := app.Group("/api/v1")
	api.Get("/health", r.Health.HandleHealth)
	api.Post("/analyze", r.Predict.HandleAnalyze)

	if r.Upload != nil && r.Result != nil {
		api.Post("/predictions", r.Upload.HandleSubmit)
		api.Get("/predictions/:id", r.Result.HandleGetResult)
	}
}

// multipart framing on top of the file itself
const bodyOverhead = 1 << 20

// BodyLimit is the request size fiber accepts for a given upload limit.
// Uploads up to it reach ValidateUpload; a non-positive limit lifts the cap.
func BodyLimit(maxFileSize int64) int {
	if maxFileSize <= 0 {
		return math.MaxInt32
	}
	return int(maxFileSize) + bodyOverhead
}

// NewErrorHandler renders errors that escape handlers as JSON. Bodies over
// BodyLimit are reported like any other oversized upload.
func NewErrorHandler(maxFileSize int64) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if errors.Is(err, fiber.ErrRequestEntityTooLarge) {
			return uploadError(c, services.ErrFileTooLarge, maxFileSize)
		}

		code := fiber.StatusInternalServerError

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
			"code":  code,
		})
	}
}
