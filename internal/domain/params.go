package domain

// EnvironmentalParameters is a complete set of growing conditions for the crop model.
// Construction goes through the parameter resolver or ParameterOverrides.Complete,
// so a value exists for every variable by the time a set reaches the ranking engine.
type EnvironmentalParameters struct {
	Nitrogen    float64 `json:"N"`
	Phosphorus  float64 `json:"P"`
	Potassium   float64 `json:"K"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	PH          float64 `json:"pH"`
	Rainfall    float64 `json:"rainfall"`
}

// FeatureVector returns the parameters in the fixed order the crop model was trained on:
// N, P, K, temperature, humidity, pH, rainfall
func (p EnvironmentalParameters) FeatureVector() [7]float64 {
	return [7]float64{
		p.Nitrogen,
		p.Phosphorus,
		p.Potassium,
		p.Temperature,
		p.Humidity,
		p.PH,
		p.Rainfall,
	}
}

// ParameterOverrides carries caller-provided measurements; a nil field means the
// caller did not supply that variable
type ParameterOverrides struct {
	Nitrogen    *float64 `json:"N,omitempty"`
	Phosphorus  *float64 `json:"P,omitempty"`
	Potassium   *float64 `json:"K,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	PH          *float64 `json:"pH,omitempty"`
	Rainfall    *float64 `json:"rainfall,omitempty"`
}

// IsEmpty reports whether no variable was supplied at all
func (o *ParameterOverrides) IsEmpty() bool {
	if o == nil {
		return true
	}
	return o.Nitrogen == nil && o.Phosphorus == nil && o.Potassium == nil &&
		o.Temperature == nil && o.Humidity == nil && o.PH == nil && o.Rainfall == nil
}

// Complete converts the overrides into a full parameter set. Overrides replace
// soil defaults wholesale, so all seven variables must be present; otherwise an
// OverrideFormatError naming the missing fields is returned.
func (o *ParameterOverrides) Complete() (EnvironmentalParameters, error) {
	var missing []string
	fields := []struct {
		name  string
		value *float64
	}{
		{"N", o.Nitrogen},
		{"P", o.Phosphorus},
		{"K", o.Potassium},
		{"temperature", o.Temperature},
		{"humidity", o.Humidity},
		{"pH", o.PH},
		{"rainfall", o.Rainfall},
	}
	for _, f := range fields {
		if f.value == nil {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return EnvironmentalParameters{}, &OverrideFormatError{Missing: missing}
	}

	return EnvironmentalParameters{
		Nitrogen:    *o.Nitrogen,
		Phosphorus:  *o.Phosphorus,
		Potassium:   *o.Potassium,
		Temperature: *o.Temperature,
		Humidity:    *o.Humidity,
		PH:          *o.PH,
		Rainfall:    *o.Rainfall,
	}, nil
}
