package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dongwook32/web-hub/internal/services"
	"github.com/dongwook32/web-hub/types"
	"github.com/go-chi/chi/v5"
)

const sessionCookie = "kbuhub_session"

// AuthHandler provides session endpoints and the session middleware.
type AuthHandler struct {
	sessions *services.SessionService
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(sessions *services.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// AuthRouter registers session routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Get("/auth/status", handler.Status)
	r.Post("/login", handler.Login)
	r.Post("/logout", handler.Logout)
}

// RequireSession enforces a valid session on API routes; requests
// without one get a structured 401.
func (h *AuthHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.resolve(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// RequireAdmin denies non-admin sessions on API routes. Must run after
// RequireSession.
func (h *AuthHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := userFromContext(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !user.IsAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdminPage gates page routes: anything but a valid admin
// session redirects to the login entry point instead of erroring.
func (h *AuthHandler) RequireAdminPage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.resolve(r)
		if err != nil || !user.IsAdmin {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// Status reports whether the request carries a valid session. Always
// responds 200; expired or absent sessions read as logged out.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	user, err := h.resolve(r)
	if err != nil {
		writeJSON(w, http.StatusOK, StatusResponse{IsLoggedIn: false})
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{IsLoggedIn: true, User: &user})
}

// Login verifies credentials and establishes the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, token, err := h.sessions.Login(r.Context(), req.StudentID, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, LoginResponse{
				Success: false,
				Error:   "student id or password does not match",
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	h.setCookie(w, token, h.sessions.TTL())
	writeJSON(w, http.StatusOK, LoginResponse{Success: true, User: &user})
}

// Logout destroys the session cookie. Idempotent: logging out without
// a session is not an error.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) resolve(r *http.Request) (types.User, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return types.User{}, err
	}
	return h.sessions.Resolve(r.Context(), cookie.Value)
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
	})
}

type LoginRequest struct {
	StudentID string `json:"studentId"`
	Password  string `json:"password"`
}

type LoginResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	User    *types.User `json:"user,omitempty"`
}

type StatusResponse struct {
	IsLoggedIn bool        `json:"isLoggedIn"`
	User       *types.User `json:"user,omitempty"`
}
