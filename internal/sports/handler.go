package sports

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/sports-events-hub/internal/httpx"
	"github.com/ayush/sports-events-hub/internal/models"
)

// Handler exposes the sports catalog used by the preference picker.
type Handler struct {
	client *Client
	log    *slog.Logger
}

func NewHandler(client *Client, log *slog.Logger) *Handler {
	return &Handler{client: client, log: log}
}

// Sports lists every sport.
func (h *Handler) Sports(w http.ResponseWriter, r *http.Request) {
	sports, err := h.client.Sports(r.Context())
	h.respond(w, sports, len(sports), err, "Failed to fetch sports")
}

// Leagues lists the leagues of {sport}.
func (h *Handler) Leagues(w http.ResponseWriter, r *http.Request) {
	leagues, err := h.client.Leagues(r.Context(), chi.URLParam(r, "sport"))
	h.respond(w, leagues, len(leagues), err, "Failed to fetch leagues")
}

// SearchTeams searches teams by the q query parameter.
func (h *Handler) SearchTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.client.SearchTeams(r.Context(), r.URL.Query().Get("q"))
	if errors.Is(err, ErrInvalidQuery) {
		httpx.Fail(w, http.StatusBadRequest,
			"Invalid team name. Use only letters, numbers, spaces and basic punctuation (max 50 characters).")
		return
	}
	h.respond(w, teams, len(teams), err, "Failed to search teams")
}

// LeagueTeams lists the teams of league {id}.
func (h *Handler) LeagueTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.client.TeamsForLeague(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, teams, len(teams), err, "Failed to fetch teams")
}

// TeamEvents lists upcoming events of team {id}, normalized.
func (h *Handler) TeamEvents(w http.ResponseWriter, r *http.Request) {
	raw, err := h.client.UpcomingEventsForTeam(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrInvalidQuery) {
		httpx.Fail(w, http.StatusBadRequest, "Invalid team")
		return
	}
	events := make([]models.Event, 0, len(raw))
	for _, e := range raw {
		events = append(events, e.Normalize())
	}
	h.respond(w, events, len(events), err, "Failed to fetch team events")
}

func (h *Handler) respond(w http.ResponseWriter, data interface{}, count int, err error, failMsg string) {
	if err != nil {
		h.log.Warn(failMsg, "error", err)
		httpx.Fail(w, http.StatusBadGateway, failMsg)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
		"count":   count,
	})
}
