package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/TWCkaijin/Finder-For-FOOOOOD/internal/geo"
	"github.com/TWCkaijin/Finder-For-FOOOOOD/internal/llm"
	"github.com/TWCkaijin/Finder-For-FOOOOOD/internal/places"

	"github.com/google/uuid"
)

// historyCap bounds how many stored recommendations feed the prompt's
// exclusion list.
const historyCap = 50

// Verifier cross-checks a candidate against an authoritative places
// lookup. (nil, nil) means "no match / verification unavailable".
type Verifier interface {
	Search(ctx context.Context, query string, bias *places.Bias) (*places.Place, error)
}

// HistorySource supplies previously recommended names for exclusion.
type HistorySource interface {
	RecommendedHistory(ctx context.Context, uid string) ([]string, error)
}

type Service struct {
	llm          llm.Client
	verifier     Verifier
	history      HistorySource
	defaultModel string
}

func NewService(llmClient llm.Client, verifier Verifier, history HistorySource, defaultModel string) *Service {
	return &Service{
		llm:          llmClient,
		verifier:     verifier,
		history:      history,
		defaultModel: defaultModel,
	}
}

// Search runs the full pipeline: exclusion gathering, prompt build,
// model call, concurrent verification, merge. An empty result is a
// valid "no results" outcome, not an error.
func (s *Service) Search(ctx context.Context, req Request, userID string) ([]Restaurant, error) {
	if req.Location == "" {
		return nil, errors.New("location is required")
	}
	r := req.withDefaults()

	center := resolveCenter(r)
	exclude := s.buildExclusions(ctx, r, userID)

	prompt := llm.BuildSearchPrompt(llm.PromptParams{
		Location:     r.Location,
		Keywords:     r.Keywords,
		Radius:       r.Radius,
		Limit:        r.Limit,
		Language:     r.Language,
		ExcludeNames: exclude,
		Context:      r.Context,
	})

	model := r.Model
	if model == "" {
		model = s.defaultModel
	}

	raw, err := s.llm.GenerateRestaurants(ctx, model, prompt)
	if err != nil {
		log.Printf("[SEARCH] generation failed: %v", err)
		return nil, fmt.Errorf("%s", llm.UserMessage(err, r.Language))
	}

	return s.mergeAll(ctx, r, raw, center), nil
}

// resolveCenter picks the distance/bias center: explicit caller
// coordinates first, else a "lat,lng" pattern inside the location
// text, else none.
func resolveCenter(r Request) *places.Bias {
	radius := geo.ParseRadiusMeters(r.Radius)

	if r.UserLat != nil && r.UserLng != nil {
		return &places.Bias{Lat: *r.UserLat, Lng: *r.UserLng, RadiusMeters: radius}
	}
	if lat, lng, ok := geo.ParseLatLng(r.Location); ok {
		return &places.Bias{Lat: lat, Lng: lng, RadiusMeters: radius}
	}
	return nil
}

// buildExclusions unions caller exclusions with the user's stored
// recommendation history (most recent entries first-capped). History
// failures are logged and never abort the search.
func (s *Service) buildExclusions(ctx context.Context, r Request, userID string) []string {
	names := append([]string(nil), r.ExcludeNames...)

	if userID != "" && s.history != nil {
		stored, err := s.history.RecommendedHistory(ctx, userID)
		if err != nil {
			log.Printf("[SEARCH] history lookup failed for %s: %v", userID, err)
		} else {
			if len(stored) > historyCap {
				stored = stored[len(stored)-historyCap:]
			}
			names = append(names, stored...)
		}
	}

	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// mergeAll verifies every candidate concurrently and merges the
// answers. Verification is best-effort throughout.
func (s *Service) mergeAll(ctx context.Context, r Request, raw []llm.RawRestaurant, center *places.Bias) []Restaurant {
	verified := make([]*places.Place, len(raw))

	if s.verifier != nil {
		var wg sync.WaitGroup
		for i, item := range raw {
			if item.Name == "" {
				continue
			}
			wg.Add(1)
			go func(i int, item llm.RawRestaurant) {
				defer wg.Done()

				query := item.Name + " " + item.Address
				if item.Address == "" {
					query = item.Name + " " + r.Location
				}

				place, err := s.verifier.Search(ctx, query, center)
				if err != nil {
					log.Printf("[SEARCH] verification failed for %q: %v", item.Name, err)
					return
				}
				verified[i] = place
			}(i, item)
		}
		wg.Wait()
	}

	// The model sometimes lists the same restaurant under two names;
	// once both verify to one place they carry the same id, so the
	// later duplicate is collapsed.
	results := make([]Restaurant, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, item := range raw {
		merged := merge(r, item, verified[i], center)
		if seen[merged.ID] {
			log.Printf("[SEARCH] collapsing duplicate candidate %q (id %s)", item.Name, merged.ID)
			continue
		}
		seen[merged.ID] = true
		results = append(results, merged)
	}
	return results
}

func merge(r Request, item llm.RawRestaurant, place *places.Place, center *places.Bias) Restaurant {
	out := Restaurant{
		Name:              item.Name,
		Address:           item.Address,
		Rating:            4.0,
		PriceLevel:        FormatPriceLevel(item.PriceLevel, r.Language),
		Tags:              item.Tags,
		Description:       item.Description,
		RecommendedDishes: item.RecommendedDishes,
		IsOpen:            item.IsOpen == nil || *item.IsOpen,
		Lat:               geo.FallbackLat,
		Lng:               geo.FallbackLng,
	}

	if out.Name == "" {
		out.Name = "Unknown"
	}
	if out.Address == "" {
		out.Address = r.Location
	}
	if item.Rating != nil {
		out.Rating = *item.Rating
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if len(out.Tags) > 3 {
		out.Tags = out.Tags[:3]
	}
	if out.RecommendedDishes == nil {
		out.RecommendedDishes = []string{}
	}

	if place != nil {
		// Provider fields are authoritative.
		out.ID = place.PlaceID
		if out.ID == "" {
			out.ID = uuid.New().String()
		}
		out.Name = place.Name
		if place.FormattedAddress != "" {
			out.Address = place.FormattedAddress
		}
		out.Lat = place.Lat
		out.Lng = place.Lng
		if place.Rating > 0 {
			out.Rating = place.Rating
		}
		if place.OpenNow != nil {
			out.IsOpen = *place.OpenNow
		}

		if center != nil {
			km := geo.HaversineKm(center.Lat, center.Lng, place.Lat, place.Lng)
			out.Distance = geo.FormatDistance(km)
		} else {
			out.Distance = "verified"
		}
		return out
	}

	out.ID = uuid.New().String()
	if item.Lat != nil && item.Lng != nil {
		out.Lat = *item.Lat
		out.Lng = *item.Lng
		if center != nil {
			km := geo.HaversineKm(center.Lat, center.Lng, out.Lat, out.Lng)
			out.Distance = geo.FormatDistance(km) + " (est)"
			return out
		}
	}
	out.Distance = "ai-estimate"
	return out
}
