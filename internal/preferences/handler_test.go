package preferences

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/sports-events-hub/internal/logging"
	"github.com/ayush/sports-events-hub/internal/middleware"
	"github.com/ayush/sports-events-hub/internal/models"
)

func authed(req *http.Request, username string) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), models.Profile{Username: username}))
}

func TestHandler_SaveThenGet(t *testing.T) {
	svc, _ := newFileService(t)
	h := NewHandler(svc, logging.Discard())

	body := `{"selectedSports":["Soccer"],"selectedTeams":["133604"],"selectedLeagues":[{"id":"4328","name":"English Premier League","sport":"Soccer"}]}`
	w := httptest.NewRecorder()
	h.Save(w, authed(httptest.NewRequest(http.MethodPost, "/api/preferences", strings.NewReader(body)), "alice"))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.Get(w, authed(httptest.NewRequest(http.MethodGet, "/api/preferences", nil), "alice"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success     bool               `json:"success"`
		Preferences models.Preferences `json:"preferences"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []models.Selection{{ID: "133604"}}, resp.Preferences.SelectedTeams)
	assert.Equal(t, "English Premier League", resp.Preferences.SelectedLeagues[0].Name)
}

func TestHandler_RequiresUser(t *testing.T) {
	svc, _ := newFileService(t)
	h := NewHandler(svc, logging.Discard())

	w := httptest.NewRecorder()
	h.Get(w, httptest.NewRequest(http.MethodGet, "/api/preferences", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_SaveBadBody(t *testing.T) {
	svc, _ := newFileService(t)
	h := NewHandler(svc, logging.Discard())

	w := httptest.NewRecorder()
	h.Save(w, authed(httptest.NewRequest(http.MethodPost, "/api/preferences", strings.NewReader(`{"selectedTeams":[true]}`)), "alice"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
