package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dongwook32/web-hub/internal/services"
	"github.com/dongwook32/web-hub/internal/store"
	"github.com/go-chi/chi/v5"
)

// AdminHandler serves the admin page and the user administration API.
type AdminHandler struct {
	users     *services.UserService
	shellPath string
}

func NewAdminHandler(users *services.UserService, shellPath string) *AdminHandler {
	return &AdminHandler{users: users, shellPath: shellPath}
}

// Page serves the application shell for the admin view. Access control
// is applied by the page middleware before this handler runs.
func (h *AdminHandler) Page(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, h.shellPath)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// ToggleAdmin flips the admin flag of the target user and returns the
// updated record.
func (h *AdminHandler) ToggleAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.users.ToggleAdmin(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
