package user

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func currentUID(c *gin.Context) (string, bool) {
	uid := c.GetString("userID")
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	return uid, true
}

// --------------------------------------------------
// GET /api/user/preferences
// --------------------------------------------------
func (h *Handler) GetPreferences(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	// Empty object instead of 404 to keep first login simple.
	doc, err := h.service.GetPreferences(c.Request.Context(), uid)
	if err != nil {
		log.Printf("[USER] fetching preferences failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

// --------------------------------------------------
// POST /api/user/preferences
// --------------------------------------------------
func (h *Handler) SavePreferences(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var partial map[string]any
	if err := c.ShouldBindJSON(&partial); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.service.SavePreferences(c.Request.Context(), uid, partial); err != nil {
		log.Printf("[USER] saving preferences failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Preferences saved successfully"})
}

// --------------------------------------------------
// POST /api/user/sync
// --------------------------------------------------
func (h *Handler) Sync(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		PhotoURL    string `json:"photoURL"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.service.SyncProfile(c.Request.Context(), uid, req.Email, req.DisplayName, req.PhotoURL); err != nil {
		log.Printf("[USER] profile sync failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User synced successfully", "uid": uid})
}

// --------------------------------------------------
// POST /api/user/history
// --------------------------------------------------
func (h *Handler) AppendHistory(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	// keywords accepts either a single string or an array.
	var req struct {
		Keywords        json.RawMessage `json:"keywords"`
		RestaurantNames []string        `json:"restaurantNames"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	keywords := decodeKeywords(req.Keywords)

	if err := h.service.AppendHistory(c.Request.Context(), uid, keywords, req.RestaurantNames); err != nil {
		log.Printf("[HISTORY] append failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "History updated successfully"})
}

func decodeKeywords(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		if one == "" {
			return nil
		}
		return []string{one}
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	return nil
}

// --------------------------------------------------
// GET /api/user/history
// --------------------------------------------------
func (h *Handler) GetHistory(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	history, err := h.service.GetHistory(c.Request.Context(), uid)
	if err != nil {
		log.Printf("[HISTORY] fetch failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	log.Printf("[HISTORY] Found %d keywords, %d restaurants for %s",
		len(history.SearchKeywords), len(history.RecommendedHistory), uid)

	c.JSON(http.StatusOK, history)
}
