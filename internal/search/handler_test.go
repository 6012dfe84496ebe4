package search

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TWCkaijin/Finder-For-FOOOOOD/internal/llm"

	"github.com/gin-gonic/gin"
)

var errTest = errors.New("gemini api error: 500 boom")

func searchRouter(service *Service) http.Handler {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/ai/search", NewHandler(service).Search)
	return r
}

func TestSearchEndpoint_RoundTrip(t *testing.T) {
	items := make([]llm.RawRestaurant, 6)
	for i := range items {
		items[i] = rawItem("Restaurant-" + string(rune('A'+i)))
	}
	service := NewService(&fakeLLM{restaurants: items}, &fakeVerifier{}, nil, "gemini-2.0-flash-exp")

	body, _ := json.Marshal(map[string]any{
		"location": "Taipei 101",
		"radius":   "1km",
		"limit":    6,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/ai/search", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	searchRouter(service).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var got []Restaurant
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not a restaurant array: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("expected 6 restaurants, got %d", len(got))
	}

	for _, r := range got {
		if r.Name == "" || r.ID == "" {
			t.Errorf("restaurant missing name/id: %+v", r)
		}
		if r.Rating < 1 || r.Rating > 5 {
			t.Errorf("rating out of range: %v", r.Rating)
		}
		if math.IsNaN(r.Lat) || math.IsInf(r.Lat, 0) || math.IsNaN(r.Lng) || math.IsInf(r.Lng, 0) {
			t.Errorf("non-finite coordinates: %v,%v", r.Lat, r.Lng)
		}
	}
}

func TestSearchEndpoint_MissingLocation(t *testing.T) {
	service := NewService(&fakeLLM{}, &fakeVerifier{}, nil, "m")

	req := httptest.NewRequest(http.MethodPost, "/api/ai/search", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	searchRouter(service).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSearchEndpoint_UpstreamFailure(t *testing.T) {
	service := NewService(&fakeLLM{err: errTest}, &fakeVerifier{}, nil, "m")

	body := []byte(`{"location":"Taipei 101"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/ai/search", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	searchRouter(service).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp["error"] == "" {
		t.Fatalf("expected {error: message}, got %s", w.Body.String())
	}
}
