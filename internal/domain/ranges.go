package domain

// Range is a closed interval [Min, Max].
type Range struct {
	Min float64 `json:"min" validate:"ltefield=Max"`
	Max float64 `json:"max"`
}

func (r Range) Contains(v float64) bool { return r.Min <= v && v <= r.Max }

// RangeSelection holds the four slider selections of one render pass.
type RangeSelection struct {
	Price      Range `json:"price"`
	Bedrooms   Range `json:"bedrooms"`
	Bathrooms  Range `json:"bathrooms"`
	SquareFeet Range `json:"square_feet"`
}

// Slider describes the bounds a range-selection control offers.
type Slider struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Step  float64 `json:"step"`
	Value Range   `json:"value"`
}

func (s Slider) Full() Range { return Range{Min: s.Min, Max: s.Max} }

var (
	PriceSlider      = Slider{Key: "price", Label: "Price", Min: 100000, Max: 1000000, Step: 10000, Value: Range{100000, 1000000}}
	BedroomsSlider   = Slider{Key: "bedrooms", Label: "Bedrooms", Min: 1, Max: 5, Step: 1, Value: Range{1, 5}}
	BathroomsSlider  = Slider{Key: "bathrooms", Label: "Bathrooms", Min: 1, Max: 3, Step: 1, Value: Range{1, 3}}
	SquareFeetSlider = Slider{Key: "sqft", Label: "SquareFeet", Min: 500, Max: 3500, Step: 100, Value: Range{500, 3500}}
)

func Sliders() []Slider {
	return []Slider{PriceSlider, BedroomsSlider, BathroomsSlider, SquareFeetSlider}
}

// DefaultSelection is the initial slider state: every slider at its full bounds.
func DefaultSelection() RangeSelection {
	return RangeSelection{
		Price:      PriceSlider.Value,
		Bedrooms:   BedroomsSlider.Value,
		Bathrooms:  BathroomsSlider.Value,
		SquareFeet: SquareFeetSlider.Value,
	}
}
