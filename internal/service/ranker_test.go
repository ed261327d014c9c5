package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/cropai/backend/internal/domain"
)

// fakeCropClassifier is a hand-rolled CropClassifier for tests
type fakeCropClassifier struct {
	dist        domain.CropDistribution
	labels      []string
	predictErr  error
	labelsErr   error
	healthErr   error
	gotFeatures [7]float64
	calls       int
}

func (f *fakeCropClassifier) PredictDistribution(ctx context.Context, features [7]float64) (domain.CropDistribution, error) {
	f.calls++
	f.gotFeatures = features
	if f.predictErr != nil {
		return nil, f.predictErr
	}
	return f.dist, nil
}

func (f *fakeCropClassifier) Labels(ctx context.Context) ([]string, error) {
	if f.labelsErr != nil {
		return nil, f.labelsErr
	}
	return f.labels, nil
}

func (f *fakeCropClassifier) Health(ctx context.Context) error {
	return f.healthErr
}

func testDistribution() domain.CropDistribution {
	return domain.CropDistribution{
		{Crop: "rice", Probability: 0.30},
		{Crop: "cotton", Probability: 0.25},
		{Crop: "wheat", Probability: 0.20},
		{Crop: "maize", Probability: 0.15},
		{Crop: "barley", Probability: 0.10},
	}
}

func TestRankBoostsSuitableCrops(t *testing.T) {
	// Probabilities are picked so every boosted score is exact in float64.
	crops := &fakeCropClassifier{dist: domain.CropDistribution{
		{Crop: "rice", Probability: 0.375},
		{Crop: "cotton", Probability: 0.25},
		{Crop: "wheat", Probability: 0.125},
		{Crop: "maize", Probability: 0.125},
		{Crop: "barley", Probability: 0.125},
	}}
	ranker := NewCropRanker(crops, newTestCatalog(t))

	// Black Soil suits cotton and wheat from this vocabulary, not rice.
	recs, err := ranker.Rank(context.Background(), domain.SoilBlack, domain.EnvironmentalParameters{}, 3)
	if err != nil {
		t.Fatalf("Rank returned error: %v", err)
	}

	if len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(recs))
	}

	// cotton 0.25*1.5=0.375 ties unboosted rice 0.375; rice precedes it in
	// vocabulary order.
	want := []domain.CropRecommendation{
		{Crop: "rice", Score: 0.375, SoilSuitable: false, OriginalProbability: 0.375},
		{Crop: "cotton", Score: 0.375, SoilSuitable: true, OriginalProbability: 0.25},
		{Crop: "wheat", Score: 0.1875, SoilSuitable: true, OriginalProbability: 0.125},
	}
	if !reflect.DeepEqual(recs, want) {
		t.Errorf("Rank = %+v, want %+v", recs, want)
	}
}

func TestRankBoostInvariant(t *testing.T) {
	crops := &fakeCropClassifier{dist: testDistribution()}
	ranker := NewCropRanker(crops, newTestCatalog(t))

	recs, err := ranker.Rank(context.Background(), domain.SoilBlack, domain.EnvironmentalParameters{}, 10)
	if err != nil {
		t.Fatalf("Rank returned error: %v", err)
	}

	for _, rec := range recs {
		want := rec.OriginalProbability
		if rec.SoilSuitable {
			want *= 1.5
		}
		if rec.Score != want {
			t.Errorf("%s: score %v does not match boost rule (suitable=%v, p=%v)",
				rec.Crop, rec.Score, rec.SoilSuitable, rec.OriginalProbability)
		}
	}

	for i := 1; i < len(recs); i++ {
		if recs[i].Score > recs[i-1].Score {
			t.Errorf("scores not descending at %d: %v > %v", i, recs[i].Score, recs[i-1].Score)
		}
	}
}

func TestRankEqualScoresKeepVocabularyOrder(t *testing.T) {
	// No Cinder Soil crop appears in this vocabulary, so nothing is boosted
	// and every score ties.
	crops := &fakeCropClassifier{dist: domain.CropDistribution{
		{Crop: "rice", Probability: 0.2},
		{Crop: "wheat", Probability: 0.2},
		{Crop: "maize", Probability: 0.2},
		{Crop: "barley", Probability: 0.2},
		{Crop: "jute", Probability: 0.2},
	}}
	ranker := NewCropRanker(crops, newTestCatalog(t))

	recs, err := ranker.Rank(context.Background(), domain.SoilCinder, domain.EnvironmentalParameters{}, 5)
	if err != nil {
		t.Fatalf("Rank returned error: %v", err)
	}

	wantOrder := []string{"rice", "wheat", "maize", "barley", "jute"}
	for i, rec := range recs {
		if rec.Crop != wantOrder[i] {
			t.Errorf("position %d: got %q, want %q (vocabulary order must break ties)", i, rec.Crop, wantOrder[i])
		}
		if rec.SoilSuitable {
			t.Errorf("%s should not be marked suitable for cinder soil", rec.Crop)
		}
	}
}

func TestRankDeterministic(t *testing.T) {
	crops := &fakeCropClassifier{dist: testDistribution()}
	ranker := NewCropRanker(crops, newTestCatalog(t))

	first, err := ranker.Rank(context.Background(), domain.SoilBlack, domain.EnvironmentalParameters{}, 5)
	if err != nil {
		t.Fatalf("Rank returned error: %v", err)
	}
	second, err := ranker.Rank(context.Background(), domain.SoilBlack, domain.EnvironmentalParameters{}, 5)
	if err != nil {
		t.Fatalf("Rank returned error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs produced different rankings:\n%+v\n%+v", first, second)
	}
}

func TestRankTopNHandling(t *testing.T) {
	tests := []struct {
		name    string
		topN    int
		wantLen int
	}{
		{"zero falls back to default", 0, 5},
		{"negative falls back to default", -3, 5},
		{"smaller than vocabulary", 2, 2},
		{"larger than vocabulary", 50, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crops := &fakeCropClassifier{dist: testDistribution()}
			ranker := NewCropRanker(crops, newTestCatalog(t))

			recs, err := ranker.Rank(context.Background(), domain.SoilBlack, domain.EnvironmentalParameters{}, tt.topN)
			if err != nil {
				t.Fatalf("Rank returned error: %v", err)
			}
			if len(recs) != tt.wantLen {
				t.Errorf("expected %d recommendations, got %d", tt.wantLen, len(recs))
			}
		})
	}
}

func TestRankPassesFeatureVectorInOrder(t *testing.T) {
	crops := &fakeCropClassifier{dist: testDistribution()}
	ranker := NewCropRanker(crops, newTestCatalog(t))

	params := domain.EnvironmentalParameters{
		Nitrogen: 75, Phosphorus: 45, Potassium: 50,
		Temperature: 28, Humidity: 75, PH: 6.8, Rainfall: 180,
	}

	if _, err := ranker.Rank(context.Background(), domain.SoilRed, params, 5); err != nil {
		t.Fatalf("Rank returned error: %v", err)
	}

	want := [7]float64{75, 45, 50, 28, 75, 6.8, 180}
	if crops.gotFeatures != want {
		t.Errorf("feature vector = %v, want %v (order N, P, K, temperature, humidity, pH, rainfall)",
			crops.gotFeatures, want)
	}
}

func TestRankClassifierFailure(t *testing.T) {
	crops := &fakeCropClassifier{predictErr: errors.New("connection refused")}
	ranker := NewCropRanker(crops, newTestCatalog(t))

	_, err := ranker.Rank(context.Background(), domain.SoilBlack, domain.EnvironmentalParameters{}, 5)
	if err == nil {
		t.Fatal("expected error when classifier fails, got nil")
	}

	var rankErr *domain.RankingError
	if !errors.As(err, &rankErr) {
		t.Fatalf("expected RankingError, got %T: %v", err, err)
	}
}

func TestRankTimeoutStaysInspectable(t *testing.T) {
	crops := &fakeCropClassifier{predictErr: &domain.ModelTimeoutError{Model: "crop"}}
	ranker := NewCropRanker(crops, newTestCatalog(t))

	_, err := ranker.Rank(context.Background(), domain.SoilBlack, domain.EnvironmentalParameters{}, 5)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var rankErr *domain.RankingError
	if !errors.As(err, &rankErr) {
		t.Fatalf("expected RankingError, got %T", err)
	}
	var timeoutErr *domain.ModelTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatal("timeout should stay inspectable through the ranking error")
	}
	if timeoutErr.Model != "crop" {
		t.Errorf("expected crop model timeout, got %q", timeoutErr.Model)
	}
}
