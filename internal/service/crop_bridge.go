package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cropai/backend/internal/domain"
)

// CropBridge handles communication with the crop model sidecar
type CropBridge struct {
	serviceURL string
	httpClient *http.Client
	timeout    time.Duration
}

// NewCropBridge creates a new crop model bridge with a per-call time budget
func NewCropBridge(serviceURL string, timeout time.Duration) *CropBridge {
	return &CropBridge{
		serviceURL: serviceURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// predictRequest is the crop sidecar's scoring input
type predictRequest struct {
	Features []float64 `json:"features"`
}

// predictResponse carries the vocabulary and probabilities as parallel arrays,
// in the model's fixed vocabulary order
type predictResponse struct {
	Labels        []string  `json:"labels"`
	Probabilities []float64 `json:"probabilities"`
}

// PredictDistribution scores the crop vocabulary against a feature vector
// ordered N, P, K, temperature, humidity, pH, rainfall. A call that exceeds
// the time budget yields a domain.ModelTimeoutError.
func (b *CropBridge) PredictDistribution(ctx context.Context, features [7]float64) (domain.CropDistribution, error) {
	body, err := json.Marshal(predictRequest{Features: features[:]})
	if err != nil {
		return nil, fmt.Errorf("crop_bridge: failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/predict", b.serviceURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("crop_bridge: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return nil, &domain.ModelTimeoutError{Model: "crop", Budget: b.timeout}
		}
		return nil, fmt.Errorf("crop_bridge: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("crop_bridge: predict returned status %d", resp.StatusCode)
	}

	var payload predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("crop_bridge: failed to decode response: %w", err)
	}

	if len(payload.Labels) != len(payload.Probabilities) {
		return nil, fmt.Errorf("crop_bridge: %d labels but %d probabilities", len(payload.Labels), len(payload.Probabilities))
	}

	dist := make(domain.CropDistribution, len(payload.Labels))
	for i, label := range payload.Labels {
		dist[i] = domain.CropProbability{Crop: label, Probability: payload.Probabilities[i]}
	}

	if err := dist.Validate(); err != nil {
		return nil, fmt.Errorf("crop_bridge: invalid distribution: %w", err)
	}

	return dist, nil
}

// labelsResponse is the crop sidecar's vocabulary payload
type labelsResponse struct {
	Labels []string `json:"labels"`
}

// Labels returns the crop model's vocabulary
func (b *CropBridge) Labels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/labels", b.serviceURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("crop_bridge: failed to create labels request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &domain.ModelTimeoutError{Model: "crop", Budget: b.timeout}
		}
		return nil, fmt.Errorf("crop_bridge: labels request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("crop_bridge: labels returned status %d", resp.StatusCode)
	}

	var payload labelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("crop_bridge: failed to decode labels: %w", err)
	}

	if len(payload.Labels) == 0 {
		return nil, fmt.Errorf("crop_bridge: model reported an empty vocabulary")
	}

	return payload.Labels, nil
}

// Health checks crop model connectivity
func (b *CropBridge) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/health", b.serviceURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("crop_bridge: failed to create health request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("crop_bridge: health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("crop_bridge: health check returned status %d", resp.StatusCode)
	}

	return nil
}
