package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cropai/backend/internal/catalog"
	"github.com/cropai/backend/internal/domain"
	"github.com/cropai/backend/pkg/logging"
	"github.com/cropai/backend/pkg/metrics"
)

// Upload formats advertised to clients; the analysis time estimate covers the
// two model round trips
var supportedImageFormats = []string{"JPG", "PNG", "WebP"}

const analysisTimeEstimate = "2-5 seconds"

// RecommenderService orchestrates soil classification, parameter resolution
// and crop ranking into comprehensive recommendations
type RecommenderService struct {
	soil     SoilClassifier
	crops    CropClassifier
	catalog  *catalog.Catalog
	resolver *ParameterResolver
	ranker   *CropRanker
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
}

// NewRecommenderService creates a new recommender service
func NewRecommenderService(
	soil SoilClassifier,
	crops CropClassifier,
	cat *catalog.Catalog,
	logger *logging.StructuredLogger,
	collector *metrics.Collector,
) *RecommenderService {
	return &RecommenderService{
		soil:     soil,
		crops:    crops,
		catalog:  cat,
		resolver: NewParameterResolver(cat),
		ranker:   NewCropRanker(crops, cat),
		logger:   logger,
		metrics:  collector,
	}
}

// ClassifySoil sends the photograph to the soil model. Any model failure is
// reported as a SoilClassificationError; a timeout stays inspectable inside it.
func (s *RecommenderService) ClassifySoil(ctx context.Context, img domain.SoilImage) (domain.SoilPrediction, error) {
	timer := s.metrics.NewTimer(s.metrics.ModelRequestDuration.WithLabelValues("soil"))
	pred, err := s.soil.Classify(ctx, img)
	timer.ObserveDuration()
	if err != nil {
		s.recordModelFailure(ctx, "soil", err)
		return domain.SoilPrediction{}, &domain.SoilClassificationError{
			Reason: "model returned no usable prediction",
			Err:    err,
		}
	}

	s.metrics.RecordSoilClassification(pred.SoilType.String())
	s.logger.Info(ctx, "[CLASSIFY] soil type predicted", logging.Fields{
		"soil_type":  pred.SoilType.String(),
		"confidence": pred.Confidence,
	})

	return pred, nil
}

// RecommendForCategory resolves parameters and ranks crops for an already-known
// soil category, skipping image classification
func (s *RecommenderService) RecommendForCategory(ctx context.Context, cat domain.SoilCategory, overrides *domain.ParameterOverrides, topN int) (domain.RecommendationSet, error) {
	params, err := s.resolver.Resolve(cat, overrides)
	if err != nil {
		return domain.RecommendationSet{}, err
	}

	timer := s.metrics.NewTimer(s.metrics.ModelRequestDuration.WithLabelValues("crop"))
	recs, err := s.ranker.Rank(ctx, cat, params, topN)
	timer.ObserveDuration()
	if err != nil {
		s.recordModelFailure(ctx, "crop", err)
		return domain.RecommendationSet{}, err
	}

	s.logger.Info(ctx, "[RECOMMEND] crops ranked", logging.Fields{
		"soil_type":       cat.String(),
		"recommendations": len(recs),
	})

	return domain.RecommendationSet{
		SoilType:        cat,
		Parameters:      params,
		Recommendations: recs,
		SuitableCrops:   s.catalog.SuitableCrops(cat),
	}, nil
}

// ClassifyAndRecommend runs the full pipeline: classify the photograph, resolve
// environmental parameters, rank crops and assemble the comprehensive report
func (s *RecommenderService) ClassifyAndRecommend(ctx context.Context, img domain.SoilImage, overrides *domain.ParameterOverrides, topN int) (domain.AnalysisReport, error) {
	timer := s.metrics.NewTimer(s.metrics.AnalysisDuration)
	defer timer.ObserveDuration()

	pred, err := s.ClassifySoil(ctx, img)
	if err != nil {
		s.metrics.RecordAnalysis("failed")
		return domain.AnalysisReport{}, err
	}

	set, err := s.RecommendForCategory(ctx, pred.SoilType, overrides, topN)
	if err != nil {
		s.metrics.RecordAnalysis("failed")
		return domain.AnalysisReport{}, err
	}

	report := domain.AnalysisReport{
		AnalysisID:      uuid.New().String(),
		SoilType:        pred.SoilType,
		SoilConfidence:  pred.Confidence,
		Parameters:      set.Parameters,
		Recommendations: set.Recommendations,
		SuitableCrops:   set.SuitableCrops,
		GeneratedAt:     time.Now().UTC(),
	}

	s.metrics.RecordAnalysis("completed")
	s.logger.Info(ctx, "[ANALYSIS] completed", logging.Fields{
		"analysis_id":     report.AnalysisID,
		"soil_type":       report.SoilType.String(),
		"confidence":      report.SoilConfidence,
		"recommendations": len(report.Recommendations),
	})

	return report, nil
}

// Health probes both model sidecars concurrently
func (s *RecommenderService) Health(ctx context.Context) domain.HealthStatus {
	var (
		status domain.HealthStatus
		wg     sync.WaitGroup
		mu     sync.Mutex
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		err := s.soil.Health(ctx)
		mu.Lock()
		defer mu.Unlock()
		status.SoilModel = toModelStatus(err)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		err := s.crops.Health(ctx)
		mu.Lock()
		defer mu.Unlock()
		status.CropModel = toModelStatus(err)
	}()

	wg.Wait()

	if !status.AllHealthy() {
		s.logger.Warn(ctx, "[HEALTH] model sidecar unavailable", logging.Fields{
			"soil_model": status.SoilModel.Healthy,
			"crop_model": status.CropModel.Healthy,
		})
	}

	return status
}

// Stats summarizes reference data and the crop model's vocabulary size.
// MaxFileSize is left for the delivery layer, which owns the upload limit.
func (s *RecommenderService) Stats(ctx context.Context) (domain.SystemStats, error) {
	labels, err := s.crops.Labels(ctx)
	if err != nil {
		return domain.SystemStats{}, fmt.Errorf("recommender: failed to fetch crop vocabulary: %w", err)
	}

	formats := make([]string, len(supportedImageFormats))
	copy(formats, supportedImageFormats)

	return domain.SystemStats{
		TotalSoilTypes:   len(s.catalog.SoilTypes()),
		TotalCrops:       len(labels),
		SupportedFormats: formats,
		AnalysisTime:     analysisTimeEstimate,
	}, nil
}

// recordModelFailure classifies a model error for metrics and logs it
func (s *RecommenderService) recordModelFailure(ctx context.Context, model string, err error) {
	var timeoutErr *domain.ModelTimeoutError
	if errors.As(err, &timeoutErr) {
		s.metrics.RecordModelTimeout(model)
	} else {
		s.metrics.RecordModelError(model, "call_failed")
	}
	s.logger.Error(ctx, "[MODEL] call failed", logging.Fields{"model": model}, err)
}

func toModelStatus(err error) domain.ModelStatus {
	if err != nil {
		return domain.ModelStatus{Healthy: false, Error: err.Error()}
	}
	return domain.ModelStatus{Healthy: true}
}
