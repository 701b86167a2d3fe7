package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegeman/travel-journal/internal/domain"
	"github.com/collegeman/travel-journal/internal/handler"
)

// mockItemServicer is a test double for handler.ItemServicer.
type mockItemServicer struct {
	create       func(ctx context.Context, userID int64, item domain.Item) (domain.Item, error)
	getByID      func(ctx context.Context, userID, tripID, itemID int64) (domain.Item, error)
	listByTripID func(ctx context.Context, userID, tripID int64, kind domain.ItemKind) ([]domain.Item, error)
	update       func(ctx context.Context, userID int64, item domain.Item) (domain.Item, error)
	delete       func(ctx context.Context, userID, tripID, itemID int64) error
}

func (m *mockItemServicer) Create(ctx context.Context, userID int64, item domain.Item) (domain.Item, error) {
	return m.create(ctx, userID, item)
}
func (m *mockItemServicer) GetByID(ctx context.Context, userID, tripID, itemID int64) (domain.Item, error) {
	return m.getByID(ctx, userID, tripID, itemID)
}
func (m *mockItemServicer) ListByTripID(ctx context.Context, userID, tripID int64, kind domain.ItemKind) ([]domain.Item, error) {
	return m.listByTripID(ctx, userID, tripID, kind)
}
func (m *mockItemServicer) Update(ctx context.Context, userID int64, item domain.Item) (domain.Item, error) {
	return m.update(ctx, userID, item)
}
func (m *mockItemServicer) Delete(ctx context.Context, userID, tripID, itemID int64) error {
	return m.delete(ctx, userID, tripID, itemID)
}

var _ handler.ItemServicer = (*mockItemServicer)(nil)

func itemFixture(tripID int64, kind domain.ItemKind) domain.Item {
	return domain.Item{
		ID:        21,
		TripID:    tripID,
		Kind:      kind,
		Title:     "Day one",
		Body:      "Drove down Highway 1",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestCreateItem_201(t *testing.T) {
	fixture := itemFixture(42, domain.ItemEntry)
	svc := &mockItemServicer{
		create: func(_ context.Context, _ int64, item domain.Item) (domain.Item, error) {
			assert.Equal(t, domain.ItemEntry, item.Kind)
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{"kind": "entry", "title": "Day one"})
	req := httptest.NewRequest(http.MethodPost, "/trips/42/items", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newTestHandler(services{items: svc}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateItem_422_BadKind(t *testing.T) {
	svc := &mockItemServicer{
		create: func(_ context.Context, _ int64, _ domain.Item) (domain.Item, error) {
			return domain.Item{}, domain.ErrValidation
		},
	}

	body := jsonBody(t, map[string]any{"kind": "podcast", "title": "Nope"})
	req := httptest.NewRequest(http.MethodPost, "/trips/42/items", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newTestHandler(services{items: svc}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_error", decodeError(t, rec.Body))
}

func TestListItems_200_KindFilter(t *testing.T) {
	svc := &mockItemServicer{
		listByTripID: func(_ context.Context, _, tripID int64, kind domain.ItemKind) ([]domain.Item, error) {
			assert.Equal(t, domain.ItemExpense, kind)
			return []domain.Item{itemFixture(tripID, domain.ItemExpense)}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/trips/42/items?kind=expense", nil)
	rec := httptest.NewRecorder()

	newTestHandler(services{items: svc}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []domain.Item `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, domain.ItemExpense, resp.Data[0].Kind)
}

func TestGetItem_404(t *testing.T) {
	svc := &mockItemServicer{
		getByID: func(_ context.Context, _, _, _ int64) (domain.Item, error) {
			return domain.Item{}, domain.ErrNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/trips/42/items/999", nil)
	rec := httptest.NewRecorder()

	newTestHandler(services{items: svc}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec.Body))
}

func TestUpdateItem_200(t *testing.T) {
	fixture := itemFixture(42, domain.ItemSong)
	svc := &mockItemServicer{
		update: func(_ context.Context, _ int64, item domain.Item) (domain.Item, error) {
			assert.Equal(t, int64(21), item.ID)
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{"title": "Road song"})
	req := httptest.NewRequest(http.MethodPut, "/trips/42/items/21", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newTestHandler(services{items: svc}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteItem_204(t *testing.T) {
	svc := &mockItemServicer{
		delete: func(_ context.Context, _, _, itemID int64) error {
			assert.Equal(t, int64(21), itemID)
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/trips/42/items/21", nil)
	rec := httptest.NewRecorder()

	newTestHandler(services{items: svc}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
