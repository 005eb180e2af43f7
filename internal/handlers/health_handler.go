package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Varun5711/taskapi/internal/models"
)

const healthPingTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	environment string
	started     time.Time
	now         func() time.Time
	redis       Pinger
}

func NewHealthHandler(environment string) *HealthHandler {
	return &HealthHandler{
		environment: environment,
		started:     time.Now(),
		now:         time.Now,
	}
}

// WithRedis adds a Redis reachability field to every health response.
func (h *HealthHandler) WithRedis(p Pinger) *HealthHandler {
	h.redis = p
	return h
}

type HealthResponse struct {
	Status      string  `json:"status"`
	Timestamp   string  `json:"timestamp"`
	Uptime      float64 `json:"uptime"`
	Environment string  `json:"environment"`
	Redis       string  `json:"redis,omitempty"`
}

// Health answers 200 with status UP while the process serves requests. A Redis
// outage only shows in the redis field.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	resp := HealthResponse{
		Status:      "UP",
		Timestamp:   now.UTC().Format(time.RFC3339Nano),
		Uptime:      now.Sub(h.started).Seconds(),
		Environment: h.environment,
	}

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()

		resp.Redis = "UP"
		if err := h.redis.Ping(ctx); err != nil {
			resp.Redis = "DOWN"
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// NotFound answers every unmatched method and path.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusNotFound, models.Response{
		Success: false,
		Message: MsgRouteNotFound,
		Path:    r.URL.Path,
	})
}
