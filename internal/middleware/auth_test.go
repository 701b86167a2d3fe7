package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegeman/travel-journal/internal/domain"
	"github.com/collegeman/travel-journal/internal/middleware"
)

// mockUserFinder is a test double for the token lookup.
type mockUserFinder struct {
	getByToken func(ctx context.Context, token uuid.UUID) (domain.User, error)
}

func (m *mockUserFinder) GetByToken(ctx context.Context, token uuid.UUID) (domain.User, error) {
	return m.getByToken(ctx, token)
}

var _ middleware.UserFinder = (*mockUserFinder)(nil)

// knownUserFinder returns a UserFinder that recognizes exactly one token.
func knownUserFinder(token uuid.UUID, user domain.User) *mockUserFinder {
	return &mockUserFinder{
		getByToken: func(_ context.Context, got uuid.UUID) (domain.User, error) {
			if got == token {
				return user, nil
			}
			return domain.User{}, domain.ErrNotFound
		},
	}
}

// echoUserHandler writes the authenticated user's id, proving the user made it
// into the request context.
var echoUserHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]int64{"id": user.ID})
})

func TestAuth_BearerHeader(t *testing.T) {
	token := uuid.New()
	h := middleware.NewAuth(knownUserFinder(token, domain.User{ID: 7}))(echoUserHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/trips", nil)
	req.Header.Set("Authorization", "Bearer "+token.String())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body["id"])
}

// EventSource cannot set request headers, so the token may ride in the query
// string instead.
func TestAuth_TokenQueryParam(t *testing.T) {
	token := uuid.New()
	h := middleware.NewAuth(knownUserFinder(token, domain.User{ID: 7}))(echoUserHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/trips/42/events?mode=sse&token="+token.String(), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_HeaderWinsOverQueryParam(t *testing.T) {
	token := uuid.New()
	h := middleware.NewAuth(knownUserFinder(token, domain.User{ID: 7}))(echoUserHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/trips?token="+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer "+token.String())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_MissingToken(t *testing.T) {
	h := middleware.NewAuth(&mockUserFinder{})(echoUserHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/trips", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestAuth_MalformedToken(t *testing.T) {
	h := middleware.NewAuth(&mockUserFinder{})(echoUserHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/trips", nil)
	req.Header.Set("Authorization", "Bearer not-a-uuid")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_UnknownToken(t *testing.T) {
	h := middleware.NewAuth(knownUserFinder(uuid.New(), domain.User{ID: 7}))(echoUserHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/trips", nil)
	req.Header.Set("Authorization", "Bearer "+uuid.NewString())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserFrom_EmptyContext(t *testing.T) {
	_, ok := middleware.UserFrom(context.Background())

	assert.False(t, ok)
}
