package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// responseSchema forces the model into a strict JSON array of
// restaurant objects. isOpen is deliberately not required.
var responseSchema = map[string]any{
	"type": "ARRAY",
	"items": map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"name":       map[string]any{"type": "STRING", "description": "Name of the restaurant"},
			"address":    map[string]any{"type": "STRING", "description": "Full address"},
			"rating":     map[string]any{"type": "NUMBER", "description": "Rating from 1.0 to 5.0"},
			"priceLevel": map[string]any{"type": "STRING", "description": "One of: '$', '$$', '$$$', '$$$$', or '-'"},
			"tags": map[string]any{
				"type":        "ARRAY",
				"items":       map[string]any{"type": "STRING"},
				"description": "2-3 short tags describing the food",
			},
			"description": map[string]any{"type": "STRING", "description": "Brief appetizing description in target language"},
			"recommendedDishes": map[string]any{
				"type":        "ARRAY",
				"items":       map[string]any{"type": "STRING"},
				"description": "Top 3 popular dishes",
			},
			"isOpen": map[string]any{"type": "BOOLEAN", "description": "Is likely open now?"},
			"lat":    map[string]any{"type": "NUMBER"},
			"lng":    map[string]any{"type": "NUMBER"},
		},
		"required": []string{
			"name", "address", "rating", "priceLevel", "tags",
			"description", "recommendedDishes", "lat", "lng",
		},
	},
}

type GeminiClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// NewGeminiClientWithBaseURL is used by tests to point at a fake API.
func NewGeminiClientWithBaseURL(apiKey, baseURL string) *GeminiClient {
	c := NewGeminiClient(apiKey)
	c.baseURL = baseURL
	return c
}

// GenerateRestaurants asks the model for restaurant candidates with a
// strict output schema. An empty (but well-formed) answer yields an
// empty slice, not an error.
func (g *GeminiClient) GenerateRestaurants(ctx context.Context, model, prompt string) ([]RawRestaurant, error) {
	if g.apiKey == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	if model == "" {
		return nil, errors.New("missing model identifier")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, model, g.apiKey)

	payload := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]any{
			// Low temperature favors deterministic, real places.
			"temperature":      0.2,
			"responseMimeType": "application/json",
			"responseSchema":   responseSchema,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini api error: %s", string(raw))
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return []RawRestaurant{}, nil
	}

	output := result.Candidates[0].Content.Parts[0].Text
	if output == "" {
		return []RawRestaurant{}, nil
	}

	var restaurants []RawRestaurant
	if err := json.Unmarshal([]byte(output), &restaurants); err != nil {
		return nil, errors.New("gemini returned non-json output")
	}

	return restaurants, nil
}
