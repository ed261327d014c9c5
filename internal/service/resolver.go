package service

import (
	"github.com/cropai/backend/internal/catalog"
	"github.com/cropai/backend/internal/domain"
)

// ParameterResolver produces a complete environmental parameter set for a soil
// category, either from caller measurements or from catalog defaults
type ParameterResolver struct {
	catalog *catalog.Catalog
}

// NewParameterResolver creates a new parameter resolver
func NewParameterResolver(cat *catalog.Catalog) *ParameterResolver {
	return &ParameterResolver{catalog: cat}
}

// Resolve returns the parameter set to score against. Caller measurements
// replace catalog defaults wholesale: either all seven variables are supplied
// or none, anything in between is an OverrideFormatError. Without measurements
// the midpoint of each catalog interval is used. A category the catalog does
// not know yields a ParameterResolutionError, never an empty set.
func (r *ParameterResolver) Resolve(cat domain.SoilCategory, overrides *domain.ParameterOverrides) (domain.EnvironmentalParameters, error) {
	ranges, ok := r.catalog.Ranges(cat)
	if !ok {
		return domain.EnvironmentalParameters{}, &domain.ParameterResolutionError{SoilType: cat}
	}

	if !overrides.IsEmpty() {
		return overrides.Complete()
	}

	return ranges.Defaults(), nil
}
