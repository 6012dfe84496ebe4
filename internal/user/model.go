package user

// Rating is a resolved review for one restaurant. Re-rating the same
// restaurant replaces the prior entry (last write wins).
type Rating struct {
	RestaurantID string `json:"restaurantId"`
	Name         string `json:"name"`
	Rating       int    `json:"rating"` // 1-5
	Comment      string `json:"comment,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}

// PendingReview marks a restaurant the user visited but has not rated.
type PendingReview struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
}

// Preferences is the typed view of the stored user document's
// preference fields. The document itself is schemaless and merged
// field by field; this struct documents the known shape.
type Preferences struct {
	Language       string            `json:"language,omitempty"`
	DefaultModel   string            `json:"defaultModel,omitempty"`
	Blacklist      []string          `json:"blacklist,omitempty"`
	Ratings        map[string]Rating `json:"ratings,omitempty"`
	PendingReviews []PendingReview   `json:"pendingReviews,omitempty"`
	DevMode        bool              `json:"devMode,omitempty"`
}

// History accumulates append-only set unions. It grows monotonically;
// the search path caps how much of it reaches the prompt.
type History struct {
	SearchKeywords     []string `json:"searchKeywords"`
	RecommendedHistory []string `json:"recommendedHistory"`
}
