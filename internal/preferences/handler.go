package preferences

import (
	"log/slog"
	"net/http"

	"github.com/ayush/sports-events-hub/internal/httpx"
	"github.com/ayush/sports-events-hub/internal/middleware"
	"github.com/ayush/sports-events-hub/internal/models"
)

// Handler holds preference HTTP handlers. All routes require auth.
type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Get returns the caller's preferences.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"preferences": h.svc.Read(r.Context(), user.Username),
	})
}

// Save replaces the caller's preferences with the request body.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req models.Preferences
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.svc.Save(r.Context(), user.Username, req)
	if err != nil {
		h.log.Error("save preferences", "username", user.Username, "error", err)
		httpx.Fail(w, http.StatusInternalServerError, "Failed to save preferences")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Preferences saved successfully",
		"preferences": saved,
	})
}

// Reset clears the caller's preferences.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := h.svc.Reset(r.Context(), user.Username); err != nil {
		h.log.Error("reset preferences", "username", user.Username, "error", err)
		httpx.Fail(w, http.StatusInternalServerError, "Failed to reset preferences")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Preferences reset",
	})
}
