package service

import (
	"context"
	"sort"

	"github.com/cropai/backend/internal/catalog"
	"github.com/cropai/backend/internal/domain"
)

// suitabilityBoost multiplies the probability of crops known to grow well
// in the given soil category
const suitabilityBoost = 1.5

// DefaultTopN is the recommendation list length used when the caller does not
// request a specific one
const DefaultTopN = 5

// CropRanker turns model probabilities into soil-aware crop recommendations
type CropRanker struct {
	classifier CropClassifier
	catalog    *catalog.Catalog
}

// NewCropRanker creates a new crop ranker
func NewCropRanker(classifier CropClassifier, cat *catalog.Catalog) *CropRanker {
	return &CropRanker{
		classifier: classifier,
		catalog:    cat,
	}
}

// Rank scores the crop vocabulary against the parameters and returns the topN
// crops by adjusted score, descending. Soil-suitable crops get their probability
// multiplied by the boost factor; adjusted scores are not renormalized and are
// not probabilities. Crops with equal scores keep the model's vocabulary order.
// A topN below 1 falls back to DefaultTopN.
func (r *CropRanker) Rank(ctx context.Context, cat domain.SoilCategory, params domain.EnvironmentalParameters, topN int) ([]domain.CropRecommendation, error) {
	if topN < 1 {
		topN = DefaultTopN
	}

	dist, err := r.classifier.PredictDistribution(ctx, params.FeatureVector())
	if err != nil {
		return nil, &domain.RankingError{Err: err}
	}

	suitable := make(map[string]struct{})
	for _, crop := range r.catalog.SuitableCrops(cat) {
		suitable[crop] = struct{}{}
	}

	recs := make([]domain.CropRecommendation, len(dist))
	for i, cp := range dist {
		_, ok := suitable[cp.Crop]
		score := cp.Probability
		if ok {
			score *= suitabilityBoost
		}
		recs[i] = domain.CropRecommendation{
			Crop:                cp.Crop,
			Score:               score,
			SoilSuitable:        ok,
			OriginalProbability: cp.Probability,
		}
	}

	// Stable sort keeps vocabulary order for equal scores
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})

	if len(recs) > topN {
		recs = recs[:topN]
	}

	return recs, nil
}
