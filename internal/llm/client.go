package llm

import (
	"context"
)

// RawRestaurant is one candidate exactly as the model emitted it.
// Pointer fields distinguish "omitted" from zero values so the merge
// step only substitutes defaults for genuinely missing data.
type RawRestaurant struct {
	Name              string   `json:"name"`
	Address           string   `json:"address"`
	Rating            *float64 `json:"rating"`
	PriceLevel        string   `json:"priceLevel"`
	Tags              []string `json:"tags"`
	Description       string   `json:"description"`
	RecommendedDishes []string `json:"recommendedDishes"`
	IsOpen            *bool    `json:"isOpen"`
	Lat               *float64 `json:"lat"`
	Lng               *float64 `json:"lng"`
}

// Client generates restaurant candidates for a prompt.
// Service depends ONLY on this interface.
type Client interface {
	GenerateRestaurants(ctx context.Context, model, prompt string) ([]RawRestaurant, error)
}
