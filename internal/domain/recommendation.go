package domain

import (
	"fmt"
	"math"
	"time"
)

// CropProbability pairs a crop label with the probability the model assigned it
type CropProbability struct {
	Crop        string  `json:"crop"`
	Probability float64 `json:"probability"`
}

// CropDistribution is the crop model's output over its full vocabulary.
// Slice order is the model's vocabulary order; the ranking engine relies on it
// as the tie-break for equal scores.
type CropDistribution []CropProbability

// sumTolerance absorbs float error in model softmax outputs
const sumTolerance = 0.01

// Validate checks the distribution is structurally sound: non-empty, no duplicate
// labels, probabilities in [0,1] and summing to 1 within tolerance
func (d CropDistribution) Validate() error {
	if len(d) == 0 {
		return fmt.Errorf("distribution is empty")
	}

	seen := make(map[string]struct{}, len(d))
	sum := 0.0
	for _, cp := range d {
		if cp.Crop == "" {
			return fmt.Errorf("distribution contains an empty crop label")
		}
		if _, dup := seen[cp.Crop]; dup {
			return fmt.Errorf("duplicate crop label %q", cp.Crop)
		}
		seen[cp.Crop] = struct{}{}
		if cp.Probability < 0 || cp.Probability > 1 {
			return fmt.Errorf("probability %v for %q outside [0,1]", cp.Probability, cp.Crop)
		}
		sum += cp.Probability
	}

	if math.Abs(sum-1.0) > sumTolerance {
		return fmt.Errorf("probabilities sum to %v, expected 1", sum)
	}
	return nil
}

// CropRecommendation is one ranked entry in a recommendation list. Score is the
// boosted probability and is not itself a probability.
type CropRecommendation struct {
	Crop                string  `json:"crop"`
	Score               float64 `json:"score"`
	SoilSuitable        bool    `json:"soil_suitable"`
	OriginalProbability float64 `json:"original_probability"`
}

// RecommendationSet is the ranking result for an already-known soil category
type RecommendationSet struct {
	SoilType        SoilCategory            `json:"soil_type"`
	Parameters      EnvironmentalParameters `json:"environmental_parameters"`
	Recommendations []CropRecommendation    `json:"recommendations"`
	SuitableCrops   []string                `json:"soil_specific_crops"`
}

// AnalysisReport is the comprehensive result of a full image-to-recommendation analysis
type AnalysisReport struct {
	AnalysisID      string                  `json:"analysis_id"`
	SoilType        SoilCategory            `json:"soil_type"`
	SoilConfidence  float64                 `json:"soil_confidence"`
	Parameters      EnvironmentalParameters `json:"environmental_parameters"`
	Recommendations []CropRecommendation    `json:"recommendations"`
	SuitableCrops   []string                `json:"soil_specific_crops"`
	GeneratedAt     time.Time               `json:"generated_at"`
}
