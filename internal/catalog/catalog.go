package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/cropai/backend/internal/domain"
)

// Range is a closed [Min,Max] interval of plausible values for one variable
type Range struct {
	Min float64
	Max float64
}

// Midpoint returns the center of the interval, used as the default value
// when the caller supplies no measurement
func (r Range) Midpoint() float64 {
	return (r.Min + r.Max) / 2
}

// MarshalJSON emits the interval as a two-element array [min, max]
func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{r.Min, r.Max})
}

// ParameterRanges holds the plausible interval for every environmental variable
// of one soil category. A missing variable is unrepresentable.
type ParameterRanges struct {
	Nitrogen    Range `json:"N"`
	Phosphorus  Range `json:"P"`
	Potassium   Range `json:"K"`
	Temperature Range `json:"temperature"`
	Humidity    Range `json:"humidity"`
	PH          Range `json:"pH"`
	Rainfall    Range `json:"rainfall"`
}

// Defaults returns the midpoint of every interval as a complete parameter set
func (p ParameterRanges) Defaults() domain.EnvironmentalParameters {
	return domain.EnvironmentalParameters{
		Nitrogen:    p.Nitrogen.Midpoint(),
		Phosphorus:  p.Phosphorus.Midpoint(),
		Potassium:   p.Potassium.Midpoint(),
		Temperature: p.Temperature.Midpoint(),
		Humidity:    p.Humidity.Midpoint(),
		PH:          p.PH.Midpoint(),
		Rainfall:    p.Rainfall.Midpoint(),
	}
}

func (p ParameterRanges) intervals() []struct {
	name string
	r    Range
} {
	return []struct {
		name string
		r    Range
	}{
		{"N", p.Nitrogen},
		{"P", p.Phosphorus},
		{"K", p.Potassium},
		{"temperature", p.Temperature},
		{"humidity", p.Humidity},
		{"pH", p.PH},
		{"rainfall", p.Rainfall},
	}
}

// Soil-to-crop mapping based on agricultural knowledge
var soilCrops = map[domain.SoilCategory][]string{
	domain.SoilAlluvial: {"rice", "wheat", "sugarcane", "cotton", "jute", "maize", "pulses"},
	domain.SoilBlack:    {"cotton", "sugarcane", "wheat", "jowar", "sunflower", "groundnut", "pulses"},
	domain.SoilCinder:   {"coffee", "tea", "cardamom", "pepper", "coconut", "cashew"},
	domain.SoilClay:     {"rice", "wheat", "barley", "oats", "potatoes", "onions"},
	domain.SoilLaterite: {"cashew", "coconut", "rubber", "tea", "coffee", "cardamom"},
	domain.SoilPeat:     {"rice", "vegetables", "fruits", "flowers", "herbs"},
	domain.SoilRed:      {"groundnut", "potato", "rice", "ragi", "tobacco", "oilseeds", "pulses"},
	domain.SoilYellow:   {"wheat", "barley", "potato", "rice", "maize", "pulses"},
}

// Typical environmental parameter ranges per soil category
var soilRanges = map[domain.SoilCategory]ParameterRanges{
	domain.SoilAlluvial: {
		Nitrogen: Range{50, 100}, Phosphorus: Range{30, 60}, Potassium: Range{30, 60},
		Temperature: Range{20, 35}, Humidity: Range{60, 90}, PH: Range{6.0, 8.0}, Rainfall: Range{100, 300},
	},
	domain.SoilBlack: {
		Nitrogen: Range{40, 80}, Phosphorus: Range{20, 50}, Potassium: Range{40, 80},
		Temperature: Range{25, 40}, Humidity: Range{50, 80}, PH: Range{7.0, 8.5}, Rainfall: Range{50, 200},
	},
	domain.SoilCinder: {
		Nitrogen: Range{30, 60}, Phosphorus: Range{15, 40}, Potassium: Range{20, 50},
		Temperature: Range{15, 30}, Humidity: Range{70, 95}, PH: Range{5.5, 7.0}, Rainfall: Range{200, 400},
	},
	domain.SoilClay: {
		Nitrogen: Range{60, 100}, Phosphorus: Range{40, 70}, Potassium: Range{50, 90},
		Temperature: Range{15, 30}, Humidity: Range{60, 85}, PH: Range{6.5, 8.0}, Rainfall: Range{100, 250},
	},
	domain.SoilLaterite: {
		Nitrogen: Range{20, 50}, Phosphorus: Range{10, 30}, Potassium: Range{15, 40},
		Temperature: Range{20, 35}, Humidity: Range{60, 90}, PH: Range{5.0, 6.5}, Rainfall: Range{150, 300},
	},
	domain.SoilPeat: {
		Nitrogen: Range{80, 120}, Phosphorus: Range{30, 60}, Potassium: Range{20, 50},
		Temperature: Range{10, 25}, Humidity: Range{70, 95}, PH: Range{4.0, 6.0}, Rainfall: Range{200, 500},
	},
	domain.SoilRed: {
		Nitrogen: Range{30, 70}, Phosphorus: Range{20, 50}, Potassium: Range{25, 60},
		Temperature: Range{20, 35}, Humidity: Range{50, 80}, PH: Range{5.5, 7.5}, Rainfall: Range{50, 200},
	},
	domain.SoilYellow: {
		Nitrogen: Range{40, 80}, Phosphorus: Range{25, 55}, Potassium: Range{30, 70},
		Temperature: Range{15, 30}, Humidity: Range{60, 85}, PH: Range{6.0, 7.5}, Rainfall: Range{100, 300},
	},
}

// Catalog is the static soil suitability reference: which crops grow well in
// each soil category and which environmental conditions are typical for it.
// It is immutable after construction and safe for concurrent use.
type Catalog struct {
	crops  map[domain.SoilCategory][]string
	ranges map[domain.SoilCategory]ParameterRanges
	order  []domain.SoilCategory
}

// New builds the catalog and verifies the reference tables are complete:
// every known soil category must appear in both tables with a non-empty crop
// list and non-inverted intervals
func New() (*Catalog, error) {
	order := domain.AllSoilCategories()

	if len(soilCrops) != len(order) {
		return nil, fmt.Errorf("catalog: crop table has %d categories, expected %d", len(soilCrops), len(order))
	}
	if len(soilRanges) != len(order) {
		return nil, fmt.Errorf("catalog: range table has %d categories, expected %d", len(soilRanges), len(order))
	}

	for _, cat := range order {
		crops, ok := soilCrops[cat]
		if !ok {
			return nil, fmt.Errorf("catalog: no crop list for %q", cat)
		}
		if len(crops) == 0 {
			return nil, fmt.Errorf("catalog: empty crop list for %q", cat)
		}

		ranges, ok := soilRanges[cat]
		if !ok {
			return nil, fmt.Errorf("catalog: no environmental ranges for %q", cat)
		}
		for _, iv := range ranges.intervals() {
			if iv.r.Min > iv.r.Max {
				return nil, fmt.Errorf("catalog: inverted %s interval for %q", iv.name, cat)
			}
		}
	}

	return &Catalog{
		crops:  soilCrops,
		ranges: soilRanges,
		order:  order,
	}, nil
}

// SuitableCrops returns the crops that grow well in the given soil category.
// The result is a copy in fixed reference order; unknown categories yield nil.
func (c *Catalog) SuitableCrops(cat domain.SoilCategory) []string {
	crops, ok := c.crops[cat]
	if !ok {
		return nil
	}
	out := make([]string, len(crops))
	copy(out, crops)
	return out
}

// Ranges returns the typical environmental intervals for the given category
func (c *Catalog) Ranges(cat domain.SoilCategory) (ParameterRanges, bool) {
	r, ok := c.ranges[cat]
	return r, ok
}

// SoilTypes returns the known soil categories in canonical order
func (c *Catalog) SoilTypes() []domain.SoilCategory {
	out := make([]domain.SoilCategory, len(c.order))
	copy(out, c.order)
	return out
}

// CropMappings returns the full soil-to-crop table keyed by category label
func (c *Catalog) CropMappings() map[string][]string {
	out := make(map[string][]string, len(c.crops))
	for cat := range c.crops {
		out[string(cat)] = c.SuitableCrops(cat)
	}
	return out
}

// AllRanges returns the full environmental range table keyed by category label
func (c *Catalog) AllRanges() map[string]ParameterRanges {
	out := make(map[string]ParameterRanges, len(c.ranges))
	for cat, r := range c.ranges {
		out[string(cat)] = r
	}
	return out
}
