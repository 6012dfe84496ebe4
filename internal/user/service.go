package user

import (
	"context"
	"errors"
	"log"
	"math"
	"time"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// load fetches the user's document, applying the one-time migration
// for the legacy double-nested preferences shape. Readers downstream
// never compensate for it.
func (s *Service) load(ctx context.Context, uid string) (map[string]any, error) {
	doc, err := s.repo.GetDoc(ctx, uid)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return map[string]any{}, nil
	}

	if outer, ok := doc["preferences"].(map[string]any); ok {
		if inner, ok := outer["preferences"].(map[string]any); ok {
			doc["preferences"] = inner
			if err := s.repo.SaveDoc(ctx, uid, doc); err != nil {
				return nil, err
			}
			log.Printf("[USER] migrated double-nested preferences for %s", uid)
		}
	}

	return doc, nil
}

// GetPreferences returns the stored document, empty when the user has
// never written anything. Missing documents are not an error.
func (s *Service) GetPreferences(ctx context.Context, uid string) (map[string]any, error) {
	return s.load(ctx, uid)
}

// SavePreferences merges a partial preferences object into the stored
// document. Fields absent from the partial update are left untouched.
func (s *Service) SavePreferences(ctx context.Context, uid string, partial map[string]any) error {
	if len(partial) == 0 {
		return errors.New("empty preferences payload")
	}

	sanitizePreferences(partial)

	doc, err := s.load(ctx, uid)
	if err != nil {
		return err
	}

	replaceRatings(doc, partial)
	doc = deepMerge(doc, partial)
	return s.repo.SaveDoc(ctx, uid, doc)
}

// replaceRatings drops stored rating entries that the partial update
// re-rates. A new rating replaces the old one wholesale instead of
// merging into it, so a dropped comment does not survive a re-rate.
func replaceRatings(doc, partial map[string]any) {
	pairs := [][2]map[string]any{
		{doc, partial},
		{asMap(doc["preferences"]), asMap(partial["preferences"])},
	}
	for _, p := range pairs {
		stored, incoming := asMap(p[0]["ratings"]), asMap(p[1]["ratings"])
		if stored == nil || incoming == nil {
			continue
		}
		for id := range incoming {
			delete(stored, id)
		}
	}
}

// sanitizePreferences enforces set semantics on the blacklist and the
// 1-5 integer range on rating entries, wherever they appear in the
// partial update (top level or under a "preferences" key).
func sanitizePreferences(partial map[string]any) {
	for _, scope := range []map[string]any{partial, asMap(partial["preferences"])} {
		if scope == nil {
			continue
		}

		if bl := stringSlice(scope["blacklist"]); bl != nil {
			scope["blacklist"] = arrayUnion(nil, bl)
		}

		if ratings := asMap(scope["ratings"]); ratings != nil {
			for id, entry := range ratings {
				m := asMap(entry)
				if m == nil {
					continue
				}
				if v, ok := m["rating"].(float64); !ok || v < 1 || v > 5 || v != math.Trunc(v) {
					log.Printf("[USER] dropping out-of-range rating for %s", id)
					delete(ratings, id)
				}
			}
		}
	}
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// SyncProfile upserts profile fields plus server timestamps. Called on
// every login so the document exists before any other write.
func (s *Service) SyncProfile(ctx context.Context, uid, email, displayName, photoURL string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	return s.SavePreferences(ctx, uid, map[string]any{
		"email":       email,
		"displayName": displayName,
		"photoURL":    photoURL,
		"lastLogin":   now,
		"updatedAt":   now,
	})
}

// AppendHistory set-unions keywords and restaurant names into the
// user's history. History only grows.
func (s *Service) AppendHistory(ctx context.Context, uid string, keywords, restaurantNames []string) error {
	if len(keywords) == 0 && len(restaurantNames) == 0 {
		return nil
	}

	doc, err := s.load(ctx, uid)
	if err != nil {
		return err
	}

	if len(keywords) > 0 {
		doc["searchKeywords"] = arrayUnion(stringSlice(doc["searchKeywords"]), keywords)
	}
	if len(restaurantNames) > 0 {
		doc["recommendedHistory"] = arrayUnion(stringSlice(doc["recommendedHistory"]), restaurantNames)
	}

	return s.repo.SaveDoc(ctx, uid, doc)
}

// GetHistory returns accumulated history with empty-slice defaults.
func (s *Service) GetHistory(ctx context.Context, uid string) (*History, error) {
	doc, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}

	h := &History{
		SearchKeywords:     stringSlice(doc["searchKeywords"]),
		RecommendedHistory: stringSlice(doc["recommendedHistory"]),
	}
	if h.SearchKeywords == nil {
		h.SearchKeywords = []string{}
	}
	if h.RecommendedHistory == nil {
		h.RecommendedHistory = []string{}
	}
	return h, nil
}

// RecommendedHistory feeds the search orchestrator's exclusion gate.
func (s *Service) RecommendedHistory(ctx context.Context, uid string) ([]string, error) {
	h, err := s.GetHistory(ctx, uid)
	if err != nil {
		return nil, err
	}
	return h.RecommendedHistory, nil
}
