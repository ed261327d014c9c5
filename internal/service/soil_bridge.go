package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"github.com/cropai/backend/internal/domain"
	"github.com/cropai/backend/pkg/utils"
)

// SoilBridge handles communication with the soil image model sidecar
type SoilBridge struct {
	serviceURL string
	httpClient *http.Client
	timeout    time.Duration
}

// NewSoilBridge creates a new soil model bridge with a per-call time budget
func NewSoilBridge(serviceURL string, timeout time.Duration) *SoilBridge {
	return &SoilBridge{
		serviceURL: serviceURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// classifyResponse is the soil sidecar's classification payload
type classifyResponse struct {
	Success    bool    `json:"success"`
	SoilType   string  `json:"soil_type"`
	Confidence float64 `json:"confidence"`
	Message    string  `json:"message"`
	Error      string  `json:"error"`
}

// Classify sends the image to the soil model and returns its prediction.
// A call that exceeds the time budget yields a domain.ModelTimeoutError.
func (b *SoilBridge) Classify(ctx context.Context, img domain.SoilImage) (domain.SoilPrediction, error) {
	body, contentType, err := encodeImageForm(img)
	if err != nil {
		return domain.SoilPrediction{}, fmt.Errorf("soil_bridge: failed to encode image: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/classify", b.serviceURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return domain.SoilPrediction{}, fmt.Errorf("soil_bridge: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return domain.SoilPrediction{}, &domain.ModelTimeoutError{Model: "soil", Budget: b.timeout}
		}
		return domain.SoilPrediction{}, fmt.Errorf("soil_bridge: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.SoilPrediction{}, fmt.Errorf("soil_bridge: classify returned status %d", resp.StatusCode)
	}

	var payload classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.SoilPrediction{}, fmt.Errorf("soil_bridge: failed to decode response: %w", err)
	}

	if !payload.Success {
		reason := payload.Error
		if reason == "" {
			reason = payload.Message
		}
		if reason == "" {
			reason = "model reported failure"
		}
		return domain.SoilPrediction{}, fmt.Errorf("soil_bridge: %s", reason)
	}

	cat, ok := domain.ParseSoilCategory(payload.SoilType)
	if !ok {
		return domain.SoilPrediction{}, fmt.Errorf("soil_bridge: unknown soil label %q", payload.SoilType)
	}

	return domain.SoilPrediction{
		SoilType:   cat,
		Confidence: utils.Clamp(payload.Confidence, 0, 100),
	}, nil
}

// Health checks soil model connectivity
func (b *SoilBridge) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/health", b.serviceURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("soil_bridge: failed to create health request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("soil_bridge: health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("soil_bridge: health check returned status %d", resp.StatusCode)
	}

	return nil
}

// encodeImageForm packs the image into a multipart body under the "image" field,
// preserving the upload's original content type and filename
func encodeImageForm(img domain.SoilImage) (*bytes.Buffer, string, error) {
	filename := img.Filename
	if filename == "" {
		filename = "upload"
	}
	partType := img.ContentType
	if partType == "" {
		partType = "application/octet-stream"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	header.Set("Content-Type", partType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return &buf, writer.FormDataContentType(), nil
}

// isTimeout reports whether a request error was caused by the time budget,
// either through the call context or the client's own timeout
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}
