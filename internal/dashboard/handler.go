package dashboard

import (
	"context"
	"net/http"

	"github.com/ayush/sports-events-hub/internal/httpx"
	"github.com/ayush/sports-events-hub/internal/middleware"
	"github.com/ayush/sports-events-hub/internal/models"
)

// PreferenceReader is satisfied by *preferences.Service.
type PreferenceReader interface {
	Read(ctx context.Context, username string) models.Preferences
}

// Handler serves the dashboard event lists.
type Handler struct {
	engine *Engine
	prefs  PreferenceReader
}

func NewHandler(engine *Engine, prefs PreferenceReader) *Handler {
	return &Handler{engine: engine, prefs: prefs}
}

// Filtered returns events for the caller's selected leagues and teams.
func (h *Handler) Filtered(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.engine.Filtered)
}

// Current returns the deduplicated, capped list of current events.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.engine.Current)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, run func(context.Context, models.Preferences) Result) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	res := run(r.Context(), h.prefs.Read(r.Context(), user.Username))
	body := map[string]interface{}{
		"success":       true,
		"status":        res.Status,
		"events":        res.Events,
		"count":         len(res.Events),
		"failedSources": res.Failed,
	}
	if res.Message != "" {
		body["message"] = res.Message
	}
	httpx.WriteJSON(w, http.StatusOK, body)
}
