package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"studyflow-backend/internal/analytics"
	"studyflow-backend/internal/middleware"
	"studyflow-backend/internal/models"
	"studyflow-backend/internal/repository"
)

const statsCacheTTL = 60 * time.Second

// StatsHandler serves the dashboard aggregation. The full event log is
// folded on demand; the result is cached briefly and invalidated whenever a
// new event lands.
type StatsHandler struct {
	eventRepo *repository.EventRepo
	redis     *redis.Client
}

func NewStatsHandler(eventRepo *repository.EventRepo, redisClient *redis.Client) *StatsHandler {
	return &StatsHandler{eventRepo: eventRepo, redis: redisClient}
}

func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	cacheKey := fmt.Sprintf("stats:%s", userID.String())

	if cached, err := h.redis.Get(r.Context(), cacheKey).Result(); err == nil {
		var stats models.UserStats
		if json.Unmarshal([]byte(cached), &stats) == nil {
			writeJSON(w, http.StatusOK, stats)
			return
		}
	}

	events, err := h.eventRepo.ListByUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load activity", r))
		return
	}

	stats := analytics.ComputeStats(events, time.Now())

	if data, err := json.Marshal(stats); err == nil {
		h.redis.Set(r.Context(), cacheKey, string(data), statsCacheTTL)
	}

	writeJSON(w, http.StatusOK, stats)
}

// History returns the raw event log so the client can render its own views.
func (h *StatsHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	events, err := h.eventRepo.ListByUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load activity", r))
		return
	}
	if events == nil {
		events = []models.StudyEvent{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}
