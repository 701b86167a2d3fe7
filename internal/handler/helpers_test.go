package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/collegeman/travel-journal/internal/domain"
	"github.com/collegeman/travel-journal/internal/handler"
	"github.com/collegeman/travel-journal/internal/middleware"
)

// testUser is the authenticated user injected into every test request.
var testUser = domain.User{ID: 7, Email: "alice@example.com", DisplayName: "Alice"}

// services bundles the Server's dependencies so each test sets only the
// mocks it exercises; the rest stay nil and panic loudly if touched.
type services struct {
	trips   handler.TripServicer
	stops   handler.StopServicer
	items   handler.ItemServicer
	collabs handler.CollaboratorServicer
	media   handler.MediaServicer
	feed    handler.FeedServicer
}

// newTestHandler wires a Server with the given mocks behind a shim that
// injects testUser into the request context, standing in for the auth
// middleware.
func newTestHandler(svcs services) http.Handler {
	srv := handler.NewServer(svcs.trips, svcs.stops, svcs.items, svcs.collabs,
		svcs.media, svcs.feed, handler.DefaultStreamConfig())
	routes := srv.Routes()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		routes.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), testUser)))
	})
}

// jsonBody marshals v into a request body reader.
func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	return bytes.NewReader(b)
}

// decodeError decodes the JSON error envelope and returns its code.
func decodeError(t *testing.T, body *bytes.Buffer) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return resp.Error.Code
}
