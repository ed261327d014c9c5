package domain

import "strings"

// SoilCategory identifies one of the fixed soil classes the image model predicts
type SoilCategory string

// The eight soil classes shared by the image model and the suitability catalog
const (
	SoilAlluvial SoilCategory = "Alluvial Soil"
	SoilBlack    SoilCategory = "Black Soil"
	SoilCinder   SoilCategory = "Cinder Soil"
	SoilClay     SoilCategory = "Clay Soil"
	SoilLaterite SoilCategory = "Laterite Soil"
	SoilPeat     SoilCategory = "Peat Soil"
	SoilRed      SoilCategory = "Red Soil"
	SoilYellow   SoilCategory = "Yellow Soil"
)

// AllSoilCategories returns the known categories in canonical order
func AllSoilCategories() []SoilCategory {
	return []SoilCategory{
		SoilAlluvial,
		SoilBlack,
		SoilCinder,
		SoilClay,
		SoilLaterite,
		SoilPeat,
		SoilRed,
		SoilYellow,
	}
}

// ParseSoilCategory matches a raw label against the known categories
func ParseSoilCategory(raw string) (SoilCategory, bool) {
	label := strings.TrimSpace(raw)
	for _, cat := range AllSoilCategories() {
		if string(cat) == label {
			return cat, true
		}
	}
	return "", false
}

// String returns the category label as the models report it
func (s SoilCategory) String() string {
	return string(s)
}
