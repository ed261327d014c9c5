package domain

import (
	"fmt"
	"strings"
	"time"
)

// SoilClassificationError reports that an image produced no usable soil prediction.
// Callers render it as a failed analysis rather than crashing.
type SoilClassificationError struct {
	Reason string
	Err    error
}

func (e *SoilClassificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("soil classification failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("soil classification failed: %s", e.Reason)
}

func (e *SoilClassificationError) Unwrap() error { return e.Err }

// ParameterResolutionError reports a soil category the catalog has no defaults for
type ParameterResolutionError struct {
	SoilType SoilCategory
}

func (e *ParameterResolutionError) Error() string {
	return fmt.Sprintf("no environmental defaults for soil type %q", string(e.SoilType))
}

// OverrideFormatError reports malformed caller-supplied environmental parameters.
// It is a client error: the request can be corrected and retried.
type OverrideFormatError struct {
	Missing []string
	Reason  string
}

func (e *OverrideFormatError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("environmental overrides incomplete: missing %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("invalid environmental overrides: %s", e.Reason)
}

// RankingError reports that the crop classifier produced no usable distribution
type RankingError struct {
	Err error
}

func (e *RankingError) Error() string {
	return fmt.Sprintf("crop ranking failed: %v", e.Err)
}

func (e *RankingError) Unwrap() error { return e.Err }

// ModelTimeoutError reports a model call that exceeded its time budget.
// It travels wrapped inside the stage error so callers can distinguish
// timeouts from other model failures with errors.As.
type ModelTimeoutError struct {
	Model  string // "soil" or "crop"
	Budget time.Duration
}

func (e *ModelTimeoutError) Error() string {
	return fmt.Sprintf("%s model did not answer within %s", e.Model, e.Budget)
}
