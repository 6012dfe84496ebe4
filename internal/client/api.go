package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/TWCkaijin/Finder-For-FOOOOOD/internal/search"
)

// SearchParams is what the UI collects before a search.
type SearchParams struct {
	Location      string
	Keywords      string
	Radius        string
	Model         string
	Language      string
	UserLat       *float64
	UserLng       *float64
	ExcludedNames []string
	Context       string
}

// ProgressFunc receives human-readable progress chunks for the
// developer-mode diagnostic view. It is never called after the
// request's context is cancelled.
type ProgressFunc func(chunk string)

// API talks to the recommendation server.
type API struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewAPI(baseURL string) *API {
	return &API{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 120 * time.Second},
	}
}

// SetToken attaches a bearer token to subsequent requests. Empty
// clears it (guest mode).
func (a *API) SetToken(token string) {
	a.token = token
}

func emit(ctx context.Context, onProgress ProgressFunc, format string, args ...any) {
	if onProgress == nil || ctx.Err() != nil {
		return
	}
	ts := time.Now().Format("15:04:05")
	onProgress(fmt.Sprintf("[%s] ", ts) + fmt.Sprintf(format, args...) + "\n")
}

// FetchRestaurants performs one search request. Cancellation
// propagates through ctx; a cancelled request reports ctx's error.
func (a *API) FetchRestaurants(ctx context.Context, params SearchParams, limit int, excludeNames []string, onProgress ProgressFunc) ([]search.Restaurant, error) {
	emit(ctx, onProgress, "Sending request to server (%s)...", params.Model)

	payload, err := json.Marshal(search.Request{
		Location:     params.Location,
		Keywords:     params.Keywords,
		Radius:       params.Radius,
		Limit:        limit,
		Model:        params.Model,
		Language:     params.Language,
		ExcludeNames: excludeNames,
		UserLat:      params.UserLat,
		UserLng:      params.UserLng,
		Context:      params.Context,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/ai/search", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		emit(ctx, onProgress, "ERROR: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	emit(ctx, onProgress, "Processing server response...")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &body) == nil && body.Error != "" {
			emit(ctx, onProgress, "ERROR: %s", body.Error)
			return nil, errors.New(body.Error)
		}
		err := fmt.Errorf("server error: %s", resp.Status)
		emit(ctx, onProgress, "ERROR: %v", err)
		return nil, err
	}

	var restaurants []search.Restaurant
	if err := json.Unmarshal(raw, &restaurants); err != nil {
		return nil, err
	}

	emit(ctx, onProgress, "SUCCESS: received %d items.", len(restaurants))
	return restaurants, nil
}
