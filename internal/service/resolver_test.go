package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/cropai/backend/internal/catalog"
	"github.com/cropai/backend/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New()
	if err != nil {
		t.Fatalf("catalog.New() returned error: %v", err)
	}
	return c
}

func TestResolveDefaults(t *testing.T) {
	resolver := NewParameterResolver(newTestCatalog(t))

	tests := []struct {
		name      string
		cat       domain.SoilCategory
		overrides *domain.ParameterOverrides
		want      domain.EnvironmentalParameters
	}{
		{
			name: "black soil nil overrides",
			cat:  domain.SoilBlack,
			want: domain.EnvironmentalParameters{
				Nitrogen: 60, Phosphorus: 35, Potassium: 60,
				Temperature: 32.5, Humidity: 65, PH: 7.75, Rainfall: 125,
			},
		},
		{
			name:      "alluvial soil empty overrides treated as absent",
			cat:       domain.SoilAlluvial,
			overrides: &domain.ParameterOverrides{},
			want: domain.EnvironmentalParameters{
				Nitrogen: 75, Phosphorus: 45, Potassium: 45,
				Temperature: 27.5, Humidity: 75, PH: 7, Rainfall: 200,
			},
		},
		{
			name: "complete overrides returned unchanged",
			cat:  domain.SoilRed,
			overrides: &domain.ParameterOverrides{
				Nitrogen:    floatPtr(75),
				Phosphorus:  floatPtr(45),
				Potassium:   floatPtr(50),
				Temperature: floatPtr(28),
				Humidity:    floatPtr(75),
				PH:          floatPtr(6.8),
				Rainfall:    floatPtr(180),
			},
			want: domain.EnvironmentalParameters{
				Nitrogen: 75, Phosphorus: 45, Potassium: 50,
				Temperature: 28, Humidity: 75, PH: 6.8, Rainfall: 180,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Resolve(tt.cat, tt.overrides)
			if err != nil {
				t.Fatalf("Resolve returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveAllCategoriesHaveDefaults(t *testing.T) {
	resolver := NewParameterResolver(newTestCatalog(t))

	for _, cat := range domain.AllSoilCategories() {
		if _, err := resolver.Resolve(cat, nil); err != nil {
			t.Errorf("Resolve(%q, nil) returned error: %v", cat, err)
		}
	}
}

func TestResolveRejectsPartialOverrides(t *testing.T) {
	resolver := NewParameterResolver(newTestCatalog(t))

	overrides := &domain.ParameterOverrides{
		Nitrogen:    floatPtr(80),
		Temperature: floatPtr(25),
	}

	_, err := resolver.Resolve(domain.SoilBlack, overrides)
	if err == nil {
		t.Fatal("expected error for partial overrides, got nil")
	}

	var formatErr *domain.OverrideFormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected OverrideFormatError, got %T: %v", err, err)
	}

	wantMissing := []string{"P", "K", "humidity", "pH", "rainfall"}
	if len(formatErr.Missing) != len(wantMissing) {
		t.Fatalf("expected %d missing fields, got %v", len(wantMissing), formatErr.Missing)
	}
	for i, field := range wantMissing {
		if formatErr.Missing[i] != field {
			t.Errorf("missing[%d] = %q, want %q", i, formatErr.Missing[i], field)
		}
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("error message should name the missing fields: %v", err)
	}
}

func TestResolveUnknownCategory(t *testing.T) {
	resolver := NewParameterResolver(newTestCatalog(t))

	_, err := resolver.Resolve(domain.SoilCategory("Lunar Regolith"), nil)
	if err == nil {
		t.Fatal("expected error for unknown category, got nil")
	}

	var resErr *domain.ParameterResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ParameterResolutionError, got %T: %v", err, err)
	}
	if resErr.SoilType != "Lunar Regolith" {
		t.Errorf("error should carry the category, got %q", resErr.SoilType)
	}
}
