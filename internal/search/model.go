package search

// Restaurant is one merged, display-ready result. Created per search
// response and never mutated afterwards.
type Restaurant struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Address           string   `json:"address"`
	Rating            float64  `json:"rating"`
	PriceLevel        string   `json:"priceLevel"`
	Tags              []string `json:"tags"`
	Description       string   `json:"description"`
	RecommendedDishes []string `json:"recommendedDishes"`
	// Distance is a display label: an exact formatted distance, a
	// formatted estimate suffixed " (est)", "verified", or
	// "ai-estimate".
	Distance string  `json:"distance"`
	IsOpen   bool    `json:"isOpen"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// Request is the search endpoint's wire shape.
type Request struct {
	Location     string   `json:"location"`
	Keywords     string   `json:"keywords"`
	Radius       string   `json:"radius"`
	Limit        int      `json:"limit"`
	Model        string   `json:"model"`
	Language     string   `json:"language"`
	ExcludeNames []string `json:"excludeNames"`
	UserLat      *float64 `json:"userLat"`
	UserLng      *float64 `json:"userLng"`
	Context      string   `json:"context"`
}

func (r *Request) withDefaults() Request {
	out := *r
	if out.Radius == "" {
		out.Radius = "1km"
	}
	if out.Limit <= 0 {
		out.Limit = 6
	}
	if out.Language == "" {
		out.Language = "zh-TW"
	}
	return out
}
