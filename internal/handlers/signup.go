package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dongwook32/web-hub/internal/services"
	"github.com/dongwook32/web-hub/internal/store"
	"github.com/go-chi/chi/v5"
)

// SignupHandler exposes the email-verification-gated signup flow.
type SignupHandler struct {
	signups   *services.SignupService
	shellPath string
}

// NewSignupHandler constructs a handler with the provided dependencies.
func NewSignupHandler(signups *services.SignupService, shellPath string) *SignupHandler {
	return &SignupHandler{signups: signups, shellPath: shellPath}
}

// SendVerification begins email verification: issues a token and mails
// the verification link. A delivery failure is a 500, reported once.
func (h *SignupHandler) SendVerification(w http.ResponseWriter, r *http.Request) {
	var req SendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	v, err := h.signups.BeginVerification(r.Context(), req.Email)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	case errors.Is(err, services.ErrEmailDomain):
		writeError(w, http.StatusBadRequest, "a school email address is required")
	case errors.Is(err, services.ErrEmailTaken):
		writeError(w, http.StatusConflict, "an account already exists for this email")
	case v.ID != 0:
		// Token was created but the mail did not go out.
		writeError(w, http.StatusInternalServerError, "failed to send verification email")
	default:
		writeError(w, http.StatusInternalServerError, "failed to start verification")
	}
}

// Complete exchanges a verification token plus profile fields for an
// account.
func (h *SignupHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req CompleteSignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	signup := services.SignupRequest{
		Token:     req.Token,
		StudentID: req.StudentID,
		Name:      req.Name,
		Nickname:  req.Nickname,
		Password:  req.Password,
		Status:    req.Status,
	}
	if strings.TrimSpace(req.Birthdate) != "" {
		birthdate, err := time.Parse("2006-01-02", req.Birthdate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid birthdate")
			return
		}
		signup.Birthdate = &birthdate
	}

	user, err := h.signups.CompleteSignup(r.Context(), signup)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, user)
	case errors.Is(err, services.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "missing required fields")
	case errors.Is(err, services.ErrInvalidToken):
		writeError(w, http.StatusBadRequest, "invalid or expired verification session")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "student id or nickname already in use")
	default:
		writeError(w, http.StatusInternalServerError, "failed to create account")
	}
}

// Check reports whether a token is still pending, for the signup form.
func (h *SignupHandler) Check(w http.ResponseWriter, r *http.Request) {
	v, err := h.signups.VerifyToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeJSON(w, http.StatusOK, VerifyResponse{Valid: false})
		return
	}
	writeJSON(w, http.StatusOK, VerifyResponse{Valid: true, Email: v.Email})
}

// VerifyPage serves the application shell for a pending token so the
// client-side router can render the signup form bound to it. Dead
// tokens bounce back to the landing page.
func (h *SignupHandler) VerifyPage(w http.ResponseWriter, r *http.Request) {
	if _, err := h.signups.VerifyToken(r.Context(), chi.URLParam(r, "token")); err != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	http.ServeFile(w, r, h.shellPath)
}

type SendVerificationRequest struct {
	Email string `json:"email"`
}

type CompleteSignupRequest struct {
	Token     string `json:"token"`
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Nickname  string `json:"nickname"`
	Password  string `json:"password"`
	Birthdate string `json:"birthdate,omitempty"`
	Status    string `json:"status,omitempty"`
}

type VerifyResponse struct {
	Valid bool   `json:"valid"`
	Email string `json:"email,omitempty"`
}
