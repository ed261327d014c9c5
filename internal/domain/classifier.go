package domain

import "context"

// SoilImage is an uploaded soil photograph awaiting classification
type SoilImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SoilPrediction is the image model's output for a single photograph.
// Confidence is a percentage in [0,100].
type SoilPrediction struct {
	SoilType   SoilCategory `json:"soil_type"`
	Confidence float64      `json:"confidence"`
}

// SoilClassifier predicts a soil category from a photograph
// This follows the Dependency Inversion Principle - domain defines the interface
type SoilClassifier interface {
	// Classify sends the image to the soil model and returns its prediction
	Classify(ctx context.Context, img SoilImage) (SoilPrediction, error)

	// Health checks soil model connectivity
	Health(ctx context.Context) error
}

// CropClassifier scores the crop vocabulary against environmental measurements
type CropClassifier interface {
	// PredictDistribution returns per-crop probabilities for a feature vector
	// ordered N, P, K, temperature, humidity, pH, rainfall
	PredictDistribution(ctx context.Context, features [7]float64) (CropDistribution, error)

	// Labels returns the model's crop vocabulary
	Labels(ctx context.Context) ([]string, error)

	// Health checks crop model connectivity
	Health(ctx context.Context) error
}

// ModelStatus reports connectivity of one model sidecar
type ModelStatus struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// HealthStatus aggregates connectivity of both model sidecars
type HealthStatus struct {
	SoilModel ModelStatus `json:"soil_model"`
	CropModel ModelStatus `json:"crop_model"`
}

// AllHealthy reports whether both sidecars answered their health probes
func (h HealthStatus) AllHealthy() bool {
	return h.SoilModel.Healthy && h.CropModel.Healthy
}

// SystemStats summarizes reference data and service limits
type SystemStats struct {
	TotalSoilTypes   int      `json:"total_soil_types"`
	TotalCrops       int      `json:"total_crops"`
	SupportedFormats []string `json:"supported_formats"`
	MaxFileSize      string   `json:"max_file_size"`
	AnalysisTime     string   `json:"analysis_time"`
}
