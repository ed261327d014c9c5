package service

import (
	"github.com/cropai/backend/internal/domain"
)

// SoilClassifier is re-exported from domain for convenience
type SoilClassifier = domain.SoilClassifier

// CropClassifier is re-exported from domain for convenience
type CropClassifier = domain.CropClassifier
