package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultEndpoint = "https://places.googleapis.com/v1/places:searchText"

// Only the fields we merge into results. Keeps the response small and
// the billing SKU predictable.
const fieldMask = "places.displayName,places.formattedAddress,places.location," +
	"places.rating,places.userRatingCount,places.id,places.currentOpeningHours"

// Place is the best-match record returned by the text-search provider.
type Place struct {
	Name             string
	FormattedAddress string
	Lat              float64
	Lng              float64
	Rating           float64
	UserRatingCount  int
	PlaceID          string
	OpenNow          *bool
}

// Bias is an optional circular location bias for the search.
type Bias struct {
	Lat          float64
	Lng          float64
	RadiusMeters float64
}

type Client struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientWithEndpoint is used by tests to point at a fake provider.
func NewClientWithEndpoint(apiKey, endpoint string) *Client {
	c := NewClient(apiKey)
	c.endpoint = endpoint
	return c
}

// Enabled reports whether verification is configured at all.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Search returns at most one best-match place for the query, or nil
// when there is no match. Without an API key it returns (nil, nil):
// verification is silently disabled. Callers must treat any error as
// "unverified" and carry on.
func (c *Client) Search(ctx context.Context, query string, bias *Bias) (*Place, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	body := map[string]any{
		"textQuery":      query,
		"maxResultCount": 1,
	}
	if bias != nil {
		radius := bias.RadiusMeters
		if radius <= 0 {
			radius = 1000
		}
		body["locationBias"] = map[string]any{
			"circle": map[string]any{
				"center": map[string]any{
					"latitude":  bias.Lat,
					"longitude": bias.Lng,
				},
				"radius": radius,
			},
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places api error (%d): %s", resp.StatusCode, string(raw))
	}

	var result struct {
		Places []struct {
			ID          string `json:"id"`
			DisplayName struct {
				Text string `json:"text"`
			} `json:"displayName"`
			FormattedAddress string `json:"formattedAddress"`
			Location         struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"location"`
			Rating              float64 `json:"rating"`
			UserRatingCount     int     `json:"userRatingCount"`
			CurrentOpeningHours *struct {
				OpenNow bool `json:"openNow"`
			} `json:"currentOpeningHours"`
		} `json:"places"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}

	if len(result.Places) == 0 {
		return nil, nil
	}

	p := result.Places[0]
	place := &Place{
		Name:             p.DisplayName.Text,
		FormattedAddress: p.FormattedAddress,
		Lat:              p.Location.Latitude,
		Lng:              p.Location.Longitude,
		Rating:           p.Rating,
		UserRatingCount:  p.UserRatingCount,
		PlaceID:          p.ID,
	}
	if place.Name == "" {
		place.Name = query
	}
	if p.CurrentOpeningHours != nil {
		open := p.CurrentOpeningHours.OpenNow
		place.OpenNow = &open
	}

	return place, nil
}
