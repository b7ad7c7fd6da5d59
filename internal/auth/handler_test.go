package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/sports-events-hub/internal/logging"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	svc, _, _ := newTestService(t)
	return NewHandler(svc, true, logging.Discard())
}

func post(h http.HandlerFunc, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", SessionCookie)
	return nil
}

const aliceBody = `{"username":"alice","email":"alice@example.com","password":"secret1","acceptTerms":true}`

func TestHandler_RegisterLoginCheckLogout(t *testing.T) {
	h := newTestHandler(t)

	w := post(h.Register, "/api/auth/register", aliceBody)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["success"])

	w = post(h.Login, "/api/auth/login", `{"username":"alice","password":"secret1","rememberMe":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 30*24*60*60, cookie.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: cookie.Value})
	cw := httptest.NewRecorder()
	h.Check(cw, req)
	require.Equal(t, http.StatusOK, cw.Code)
	body := decodeBody(t, cw)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "alice", body["user"].(map[string]interface{})["username"])

	w = post(h.Logout, "/api/auth/logout", "", &http.Cookie{Name: SessionCookie, Value: cookie.Value})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, -1, sessionCookie(t, w).MaxAge)

	cw = httptest.NewRecorder()
	h.Check(cw, req)
	assert.Equal(t, http.StatusUnauthorized, cw.Code)
	assert.Equal(t, "Invalid session", decodeBody(t, cw)["message"])
}

func TestHandler_RegisterErrors(t *testing.T) {
	h := newTestHandler(t)

	w := post(h.Register, "/api/auth/register", `{"username":"a!","email":"x@y.z","password":"secret1","acceptTerms":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["message"], "Username must be")

	require.Equal(t, http.StatusCreated, post(h.Register, "/api/auth/register", aliceBody).Code)
	w = post(h.Register, "/api/auth/register", aliceBody)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Username already exists", decodeBody(t, w)["message"])

	w = post(h.Register, "/api/auth/register", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_LoginFailures(t *testing.T) {
	h := newTestHandler(t)
	require.Equal(t, http.StatusCreated, post(h.Register, "/api/auth/register", aliceBody).Code)

	w := post(h.Login, "/api/auth/login", `{"username":"alice","password":"nope-nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())

	w = post(h.Login, "/api/auth/login", `{"username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_LoginDefaultSessionLength(t *testing.T) {
	h := newTestHandler(t)
	require.Equal(t, http.StatusCreated, post(h.Register, "/api/auth/register", aliceBody).Code)

	w := post(h.Login, "/api/auth/login", `{"username":"alice","password":"secret1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 24*60*60, sessionCookie(t, w).MaxAge)
}

func TestHandler_CheckWithoutCookie(t *testing.T) {
	h := newTestHandler(t)

	w := httptest.NewRecorder()
	h.Check(w, httptest.NewRequest(http.MethodGet, "/api/auth/check", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authenticated", decodeBody(t, w)["message"])
}

func TestHandler_CheckUsername(t *testing.T) {
	h := newTestHandler(t)
	require.Equal(t, http.StatusCreated, post(h.Register, "/api/auth/register", aliceBody).Code)

	check := func(name string) bool {
		w := httptest.NewRecorder()
		h.CheckUsername(w, httptest.NewRequest(http.MethodGet, "/api/auth/check-username?username="+name, nil))
		require.Equal(t, http.StatusOK, w.Code)
		return decodeBody(t, w)["available"].(bool)
	}

	assert.False(t, check("ALICE"))
	assert.True(t, check("bob_99"))
	assert.False(t, check("no"))
}
