package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/internship-predictor/internal/models"
	"alfredoptarigan/internship-predictor/internal/services"
)

type HealthHandler struct {
	predictor         services.PredictorService
	companies         *services.CompanyDirectory
	featureInfoLoaded bool
	asyncEnabled      bool
}

func NewHealthHandler(
	predictor services.PredictorService,
	companies *services.CompanyDirectory,
	featureInfoLoaded bool,
	asyncEnabled bool,
) *HealthHandler {
	return &HealthHandler{
		predictor:         predictor,
		companies:         companies,
		featureInfoLoaded: featureInfoLoaded,
		asyncEnabled:      asyncEnabled,
	}
}

// HandleHealth handles GET /health and GET /api/v1/health
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{
		Status:            "healthy",
		ModelLoaded:       h.predictor.ModelLoaded(),
		CompaniesLoaded:   h.companies != nil,
		FeatureInfoLoaded: h.featureInfoLoaded,
		ModelInfo:         models.NewModelInfo(h.predictor.Schema()),
	})
}

// HandleHome handles GET /
func (h *HealthHandler) HandleHome(c *fiber.Ctx) error {
	endpoints := fiber.Map{
		"/upload_and_predict": "POST - Upload resume PDF",
		"/health":             "GET - API health",
		"/api/v1/analyze":     "POST - Predict from resume text",
	}
	if h.asyncEnabled {
		endpoints["/api/v1/predictions"] = "POST - Queue resume PDF for prediction"
		endpoints["/api/v1/predictions/:id"] = "GET - Prediction status and result"
	}

	return c.JSON(fiber.Map{
		"message":   "Enhanced Resume Internship Predictor API",
		"version":   "2.0",
		"endpoints": endpoints,
	})
}
