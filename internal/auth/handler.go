package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ayush/sports-events-hub/internal/httpx"
	"github.com/ayush/sports-events-hub/internal/models"
)

const SessionCookie = "sessionId"

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc          *Service
	secureCookie bool
	log          *slog.Logger
}

func NewHandler(svc *Service, secureCookie bool, log *slog.Logger) *Handler {
	return &Handler{svc: svc, secureCookie: secureCookie, log: log}
}

// Register creates a new user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.svc.RegisterUser(r.Context(), req)
	var verr *ValidationError
	if errors.As(err, &verr) {
		status := http.StatusBadRequest
		if verr.Kind == UsernameTaken || verr.Kind == EmailTaken {
			status = http.StatusConflict
		}
		httpx.Fail(w, status, verr.Message)
		return
	}
	if err != nil {
		h.log.Error("register", "error", err)
		httpx.Fail(w, http.StatusInternalServerError, "Registration failed. Please try again.")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Registration successful",
		"user":    user,
	})
}

// Login authenticates a user and creates a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.Fail(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.svc.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		httpx.Fail(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		h.log.Error("login", "username", req.Username, "error", err)
		httpx.Fail(w, http.StatusInternalServerError, "Login failed. Please try again.")
		return
	}

	sess, err := h.svc.CreateSession(r.Context(), user, req.RememberMe)
	if err != nil {
		h.log.Error("create session", "username", req.Username, "error", err)
		httpx.Fail(w, http.StatusInternalServerError, "session creation failed")
		return
	}

	h.setCookie(w, sess.Token, sess.ExpiresAt.Sub(sess.CreatedAt))
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Login successful",
		"user":    user,
	})
}

// Check reports whether the request carries a valid session.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.ValidateSession(r.Context(), tokenFrom(r))
	if err != nil {
		if errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrSessionNotFound) {
			h.clearCookie(w)
		}
		httpx.WriteJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"authenticated": false,
			"message":       SessionMessage(err),
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user":          user,
	})
}

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DestroySession(r.Context(), tokenFrom(r)); err != nil {
		h.log.Error("logout", "error", err)
		httpx.Fail(w, http.StatusInternalServerError, "Logout failed")
		return
	}

	h.clearCookie(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out successfully",
	})
}

// CheckUsername reports whether a username can still be registered.
func (h *Handler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("username")
	if !ValidUsername(name) {
		httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"available": false,
			"message":   "Username must be 3-20 characters and contain only letters, numbers, and underscores",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"available": h.svc.CheckUsernameAvailable(r.Context(), name),
	})
}

// SessionMessage turns a ValidateSession error into a user-facing message.
func SessionMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoToken):
		return "Not authenticated"
	case errors.Is(err, ErrSessionNotFound):
		return "Invalid session"
	case errors.Is(err, ErrSessionExpired):
		return "Session expired"
	default:
		return "Session check failed"
	}
}

func tokenFrom(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *Handler) setCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl / time.Second),
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
