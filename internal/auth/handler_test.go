package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hermes-renovation/hermes/internal/auth"
	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/shared"
	_ "github.com/hermes-renovation/hermes/testing"
)

type stubRepo struct {
	users  map[string]*auth.User
	nextID int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: map[string]*auth.User{}, nextID: 1}
}

func (s *stubRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	if u, ok := s.users[email]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) FindByID(_ context.Context, id int64) (*auth.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) Create(_ context.Context, user *auth.User) (*auth.User, error) {
	copied := *user
	copied.ID = s.nextID
	copied.IsActive = true
	s.nextID++
	s.users[copied.Email] = &copied
	return &copied, nil
}

func (s *stubRepo) UpdateProfileFields(_ context.Context, id int64, fullName, phone, avatarURL string) (*auth.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			if fullName != "" {
				u.FullName = fullName
			}
			if phone != "" {
				u.Phone = phone
			}
			if avatarURL != "" {
				u.AvatarURL = avatarURL
			}
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) RecordLogin(_ context.Context, _ int64, _ string, _ time.Time) error {
	return nil
}

func (s *stubRepo) FindPrincipal(_ context.Context, userID int64) (authz.Principal, error) {
	for _, u := range s.users {
		if u.ID == userID {
			return authz.Principal{UserID: u.ID, Role: u.Role, IsStaff: u.IsStaff}, nil
		}
	}
	return authz.Principal{}, shared.ErrNotFound
}

func newHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	handler := auth.NewHandler(nil, auth.NewService(repo, nil), sessionManager, csrfManager)
	return handler, sessionManager
}

func chiRouter(h *auth.Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/auth", h.MountRoutes)
	return r
}

func withSession(t *testing.T, sm *shared.SessionManager, req *http.Request) (*http.Request, *shared.Session) {
	t.Helper()
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess)), sess
}

func TestLoginSetsSessionUserAndReturnsCSRFToken(t *testing.T) {
	repo := newStubRepo()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo.users["sara@example.com"] = &auth.User{
		ID: 7, Email: "sara@example.com", FullName: "Sara",
		Role: authz.RoleHomeowner, PasswordHash: string(hashed), IsActive: true,
	}

	handler, sm := newHandler(t, repo)
	r := chiRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"sara@example.com","password":"correct-horse"}`))
	req.Header.Set("Content-Type", "application/json")
	req, sess := withSession(t, sm, req)

	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	require.NoError(t, sm.Commit(req.Context(), res, req, sess))

	require.Equal(t, http.StatusOK, res.Code)

	var body struct {
		User      map[string]any `json:"user"`
		CSRFToken string         `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.NotEmpty(t, body.CSRFToken)
	require.EqualValues(t, 7, body.User["id"])
	require.Equal(t, "7", sess.User())
	require.Contains(t, res.Header().Get("Set-Cookie"), "test_session=")
}

func TestLoginRejectsBadPassword(t *testing.T) {
	repo := newStubRepo()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo.users["sara@example.com"] = &auth.User{
		ID: 7, Email: "sara@example.com", Role: authz.RoleHomeowner,
		PasswordHash: string(hashed), IsActive: true,
	}

	handler, sm := newHandler(t, repo)
	r := chiRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"sara@example.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	req, sess := withSession(t, sm, req)

	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Empty(t, sess.User())
}

func TestRegisterDowngradesAdminRole(t *testing.T) {
	repo := newStubRepo()
	handler, sm := newHandler(t, repo)
	r := chiRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"email":"ali@example.com","full_name":"Ali","password":"secret1","password_confirm":"secret1","role":"ADMIN"}`))
	req.Header.Set("Content-Type", "application/json")
	req, _ = withSession(t, sm, req)

	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	require.Equal(t, http.StatusCreated, res.Code)
	require.Equal(t, authz.RoleHomeowner, repo.users["ali@example.com"].Role)
}

func TestRegisterRejectsMismatchedConfirmation(t *testing.T) {
	handler, sm := newHandler(t, newStubRepo())
	r := chiRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"email":"ali@example.com","full_name":"Ali","password":"secret1","password_confirm":"other"}`))
	req.Header.Set("Content-Type", "application/json")
	req, _ = withSession(t, sm, req)

	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestCSRFEndpointIssuesStableToken(t *testing.T) {
	handler, sm := newHandler(t, newStubRepo())
	r := chiRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/auth/csrf", nil)
	req, sess := withSession(t, sm, req)

	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.NotEmpty(t, body["csrf_token"])
	require.Equal(t, sess.Get(shared.CSRFSessionKey), body["csrf_token"])

	// A second call reuses the session token instead of rotating it.
	second := httptest.NewRequest(http.MethodGet, "/auth/csrf", nil)
	second = second.WithContext(shared.ContextWithSession(second.Context(), sess))
	secondRes := httptest.NewRecorder()
	r.ServeHTTP(secondRes, second)

	var secondBody map[string]string
	require.NoError(t, json.Unmarshal(secondRes.Body.Bytes(), &secondBody))
	require.Equal(t, body["csrf_token"], secondBody["csrf_token"])
}
