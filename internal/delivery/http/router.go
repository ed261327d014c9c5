package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cropai/backend/internal/catalog"
	"github.com/cropai/backend/internal/domain"
	"github.com/cropai/backend/internal/service"
	"github.com/cropai/backend/pkg/metrics"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, recommender *service.RecommenderService, cat *catalog.Catalog, collector *metrics.Collector, maxUploadMB int) {
	handler := NewHandler(recommender, cat, collector, maxUploadMB)

	app.Use(MetricsMiddleware(collector))

	// Prometheus exposition
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Analysis API
	api := app.Group("/api")
	{
		api.Post("/classify", handler.ClassifySoil)
		api.Post("/recommend", handler.Recommend)
		api.Post("/complete-analysis", handler.CompleteAnalysis)
		api.Get("/soil-types", handler.GetSoilTypes)
		api.Get("/health", handler.HealthCheck)
		api.Get("/stats", handler.GetStats)
	}
}

// MetricsMiddleware records request counts and durations per endpoint
func MetricsMiddleware(collector *metrics.Collector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		timer := collector.NewTimer(collector.APIRequestDuration.WithLabelValues(c.Path()))
		err := c.Next()
		timer.ObserveDuration()

		status := c.Response().StatusCode()
		if err != nil {
			status, _ = classifyError(err)
		}
		collector.RecordAPIRequest(c.Path(), c.Method(), strconv.Itoa(status))

		return err
	}
}

// NewErrorHandler builds the app-level error handler rendering typed domain
// errors as structured JSON with the right status code
func NewErrorHandler(collector *metrics.Collector) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, errType := classifyError(err)
		collector.RecordAPIError(errType, c.Path())

		message := err.Error()
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			message = fiberErr.Message
		}

		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   message,
		})
	}
}

// classifyError maps an error to its HTTP status and a metric label.
// Timeouts are matched before the stage errors that wrap them.
func classifyError(err error) (int, string) {
	var fiberErr *fiber.Error
	var formatErr *domain.OverrideFormatError
	var resolutionErr *domain.ParameterResolutionError
	var timeoutErr *domain.ModelTimeoutError
	var classificationErr *domain.SoilClassificationError
	var rankingErr *domain.RankingError

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, "http_error"
	case errors.As(err, &formatErr):
		return fiber.StatusBadRequest, "invalid_overrides"
	case errors.As(err, &resolutionErr):
		return fiber.StatusBadRequest, "unknown_soil_type"
	case errors.As(err, &timeoutErr):
		return fiber.StatusGatewayTimeout, "model_timeout"
	case errors.As(err, &classificationErr):
		return fiber.StatusBadGateway, "classification_failed"
	case errors.As(err, &rankingErr):
		return fiber.StatusBadGateway, "ranking_failed"
	default:
		return fiber.StatusInternalServerError, "internal"
	}
}
