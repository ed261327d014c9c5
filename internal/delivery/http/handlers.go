package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cropai/backend/internal/catalog"
	"github.com/cropai/backend/internal/domain"
	"github.com/cropai/backend/internal/service"
	"github.com/cropai/backend/pkg/metrics"
	"github.com/cropai/backend/pkg/utils"
)

const serviceVersion = "2.0.0"

// Handler contains all HTTP handlers
type Handler struct {
	recommender    *service.RecommenderService
	catalog        *catalog.Catalog
	metrics        *metrics.Collector
	maxUploadBytes int64
}

// NewHandler creates a new handler
func NewHandler(recommender *service.RecommenderService, cat *catalog.Catalog, collector *metrics.Collector, maxUploadMB int) *Handler {
	return &Handler{
		recommender:    recommender,
		catalog:        cat,
		metrics:        collector,
		maxUploadBytes: int64(maxUploadMB) << 20,
	}
}

// HealthCheck reports service status and model sidecar connectivity
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	models := h.recommender.Health(c.Context())

	status := "healthy"
	if !models.AllHealthy() {
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":        status,
		"service":       "cropai-backend",
		"models":        models,
		"models_loaded": models.AllHealthy(),
		"version":       serviceVersion,
		"timestamp":     time.Now().UTC(),
	})
}

// ClassifySoil classifies the soil type from an uploaded photograph
func (h *Handler) ClassifySoil(c *fiber.Ctx) error {
	img, err := h.readImageUpload(c)
	if err != nil {
		return err
	}

	pred, err := h.recommender.ClassifySoil(c.Context(), img)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"soil_type":  pred.SoilType,
		"confidence": utils.RoundTo(pred.Confidence, 2),
		"message":    fmt.Sprintf("Soil classified as %s with %.1f%% confidence", pred.SoilType, pred.Confidence),
	})
}

// Recommend returns crop recommendations for an already-known soil type
func (h *Handler) Recommend(c *fiber.Ctx) error {
	cat, ok := domain.ParseSoilCategory(c.FormValue("soil_type"))
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Invalid soil type. Must be one of: %s", joinCategories(h.catalog.SoilTypes())))
	}

	overrides, err := parseOverrides(c.FormValue("environmental_params"))
	if err != nil {
		return err
	}

	set, err := h.recommender.RecommendForCategory(c.Context(), cat, overrides, parseTopN(c.FormValue("top_n")))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":               true,
		"soil_type":             set.SoilType,
		"recommendations":       set.Recommendations,
		"soil_specific_crops":   set.SuitableCrops,
		"total_recommendations": len(set.Recommendations),
	})
}

// CompleteAnalysis runs the full pipeline from photograph to recommendations.
// A failed soil classification is reported as an analysis outcome rather than
// a bare error body, so clients always see the same payload shape.
func (h *Handler) CompleteAnalysis(c *fiber.Ctx) error {
	img, err := h.readImageUpload(c)
	if err != nil {
		return err
	}

	overrides, err := parseOverrides(c.FormValue("environmental_params"))
	if err != nil {
		return err
	}

	report, err := h.recommender.ClassifyAndRecommend(c.Context(), img, overrides, parseTopN(c.FormValue("top_n")))
	if err != nil {
		var classErr *domain.SoilClassificationError
		if errors.As(err, &classErr) {
			status := fiber.StatusBadGateway
			var timeoutErr *domain.ModelTimeoutError
			if errors.As(err, &timeoutErr) {
				status = fiber.StatusGatewayTimeout
			}
			return c.Status(status).JSON(fiber.Map{
				"success":         false,
				"error":           classErr.Error(),
				"soil_type":       nil,
				"soil_confidence": 0.0,
				"recommendations": []domain.CropRecommendation{},
			})
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success":                  true,
		"message":                  "Analysis completed successfully",
		"analysis_id":              report.AnalysisID,
		"soil_type":                report.SoilType,
		"soil_confidence":          utils.RoundTo(report.SoilConfidence, 2),
		"environmental_parameters": report.Parameters,
		"recommendations":          report.Recommendations,
		"soil_specific_crops":      report.SuitableCrops,
		"generated_at":             report.GeneratedAt,
	})
}

// GetSoilTypes returns the known soil types with their reference data
func (h *Handler) GetSoilTypes(c *fiber.Ctx) error {
	types := h.catalog.SoilTypes()

	return c.JSON(fiber.Map{
		"success":              true,
		"soil_types":           types,
		"soil_crop_mapping":    h.catalog.CropMappings(),
		"environmental_ranges": h.catalog.AllRanges(),
		"total_soil_types":     len(types),
	})
}

// GetStats returns system statistics
func (h *Handler) GetStats(c *fiber.Ctx) error {
	stats, err := h.recommender.Stats(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Crop model vocabulary unavailable")
	}
	stats.MaxFileSize = fmt.Sprintf("%dMB", h.maxUploadBytes>>20)

	return c.JSON(fiber.Map{
		"success":    true,
		"statistics": stats,
	})
}

// readImageUpload extracts and validates the uploaded soil photograph
func (h *Handler) readImageUpload(c *fiber.Ctx) (domain.SoilImage, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return domain.SoilImage{}, fiber.NewError(fiber.StatusBadRequest, "No image file provided")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return domain.SoilImage{}, fiber.NewError(fiber.StatusBadRequest, "Invalid file type. Please upload an image.")
	}

	if fileHeader.Size > h.maxUploadBytes {
		return domain.SoilImage{}, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("File too large. Maximum size is %dMB.", h.maxUploadBytes>>20))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return domain.SoilImage{}, fmt.Errorf("handlers: failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.SoilImage{}, fmt.Errorf("handlers: failed to read upload: %w", err)
	}

	h.metrics.UploadSizeBytes.Observe(float64(len(data)))

	return domain.SoilImage{
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// parseOverrides decodes the optional environmental_params form field
func parseOverrides(raw string) (*domain.ParameterOverrides, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var overrides domain.ParameterOverrides
	if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
		return nil, &domain.OverrideFormatError{Reason: "environmental_params must be a JSON object with numeric values"}
	}
	return &overrides, nil
}

// parseTopN reads the optional top_n form field, falling back to the default
func parseTopN(raw string) int {
	if raw == "" {
		return service.DefaultTopN
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return service.DefaultTopN
	}
	return n
}

func joinCategories(cats []domain.SoilCategory) string {
	labels := make([]string, len(cats))
	for i, cat := range cats {
		labels[i] = string(cat)
	}
	return strings.Join(labels, ", ")
}
