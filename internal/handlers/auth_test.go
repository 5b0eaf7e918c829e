package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dongwook32/web-hub/internal/services"
	"github.com/dongwook32/web-hub/internal/store"
	"github.com/dongwook32/web-hub/types"
)

type userSourceStub struct {
	users map[int]types.User
}

func newUserSourceStub(users ...types.User) *userSourceStub {
	stub := &userSourceStub{users: map[int]types.User{}}
	for _, u := range users {
		stub.users[u.ID] = u
	}
	return stub
}

func (s *userSourceStub) GetByID(ctx context.Context, id int) (types.User, error) {
	u, ok := s.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *userSourceStub) GetByStudentID(ctx context.Context, studentID string) (types.User, error) {
	for _, u := range s.users {
		if u.StudentID == studentID {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newAuthRig(t *testing.T, users ...types.User) (*chi.Mux, *AuthHandler) {
	t.Helper()
	sessions := services.NewSessionService(newUserSourceStub(users...), "test-secret")
	handler := NewAuthHandler(sessions)

	router := chi.NewRouter()
	AuthRouter(router, handler)
	router.With(handler.RequireSession).Get("/me", func(w http.ResponseWriter, r *http.Request) {
		user, err := userFromContext(r.Context())
		require.NoError(t, err)
		writeJSON(w, http.StatusOK, user)
	})
	router.With(handler.RequireSession, handler.RequireAdmin).Get("/admin-only", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"ok": "1"})
	})
	return router, handler
}

func doJSON(t *testing.T, router http.Handler, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestStatusWithoutSession(t *testing.T) {
	router, _ := newAuthRig(t)

	rec := doJSON(t, router, http.MethodGet, "/auth/status", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.False(t, status.IsLoggedIn)
	require.Nil(t, status.User)
}

func TestLoginLifecycle(t *testing.T) {
	user := types.User{ID: 1, StudentID: "2022001", Nickname: "kim1", PasswordHash: mustHash(t, "pw")}
	router, _ := newAuthRig(t, user)

	rec := doJSON(t, router, http.MethodPost, "/login", `{"studentId":"2022001","password":"pw"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var login LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.True(t, login.Success)
	require.NotNil(t, login.User)

	cookie := sessionCookieFrom(t, rec)
	require.True(t, cookie.HttpOnly)
	require.Positive(t, cookie.MaxAge)

	// the cookie now authenticates status and protected routes
	rec = doJSON(t, router, http.MethodGet, "/auth/status", "", []*http.Cookie{cookie})
	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.True(t, status.IsLoggedIn)
	require.Equal(t, "kim1", status.User.Nickname)

	rec = doJSON(t, router, http.MethodGet, "/me", "", []*http.Cookie{cookie})
	require.Equal(t, http.StatusOK, rec.Code)

	// logout clears the cookie
	rec = doJSON(t, router, http.MethodPost, "/logout", "", []*http.Cookie{cookie})
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := sessionCookieFrom(t, rec)
	require.Empty(t, cleared.Value)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	user := types.User{ID: 1, StudentID: "2022001", PasswordHash: mustHash(t, "pw")}
	router, _ := newAuthRig(t, user)

	for _, body := range []string{
		`{"studentId":"2022001","password":"wrong"}`,
		`{"studentId":"9999999","password":"pw"}`,
	} {
		rec := doJSON(t, router, http.MethodPost, "/login", body, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var login LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
		require.False(t, login.Success)
		require.Equal(t, "student id or password does not match", login.Error)
		require.Empty(t, rec.Result().Cookies())
	}
}

func TestRequireSessionBlocksAnonymous(t *testing.T) {
	router, _ := newAuthRig(t)

	rec := doJSON(t, router, http.MethodGet, "/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	require.Equal(t, "unauthorized", errResp.Error)
}

func TestRequireAdminBlocksRegularUser(t *testing.T) {
	regular := types.User{ID: 1, StudentID: "2022001", PasswordHash: mustHash(t, "pw")}
	admin := types.User{ID: 2, StudentID: "2022002", IsAdmin: true, PasswordHash: mustHash(t, "pw")}
	router, _ := newAuthRig(t, regular, admin)

	rec := doJSON(t, router, http.MethodPost, "/login", `{"studentId":"2022001","password":"pw"}`, nil)
	cookie := sessionCookieFrom(t, rec)
	rec = doJSON(t, router, http.MethodGet, "/admin-only", "", []*http.Cookie{cookie})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/login", `{"studentId":"2022002","password":"pw"}`, nil)
	cookie = sessionCookieFrom(t, rec)
	rec = doJSON(t, router, http.MethodGet, "/admin-only", "", []*http.Cookie{cookie})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdminPageRedirects(t *testing.T) {
	sessions := services.NewSessionService(newUserSourceStub(), "test-secret")
	handler := NewAuthHandler(sessions)

	router := chi.NewRouter()
	router.With(handler.RequireAdminPage).Get("/admin", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := doJSON(t, router, http.MethodGet, "/admin", "", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
}
