package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegeman/travel-journal/internal/domain"
	"github.com/collegeman/travel-journal/internal/service"
)

func TestFeedService_Authorize_ViewerAllowed(t *testing.T) {
	svc := service.NewFeedService(&mockEventRepo{}, grantRole(domain.RoleViewer))

	assert.NoError(t, svc.Authorize(context.Background(), 7, 42))
}

func TestFeedService_Authorize_NoAccess(t *testing.T) {
	svc := service.NewFeedService(&mockEventRepo{}, denyAccess())

	err := svc.Authorize(context.Background(), 7, 42)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestFeedService_QuerySince_PassesCursorAndLimit(t *testing.T) {
	since := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	events := &mockEventRepo{
		querySince: func(_ context.Context, tripID int64, gotSince time.Time, limit int) ([]domain.Event, error) {
			assert.Equal(t, int64(42), tripID)
			assert.Equal(t, since, gotSince)
			assert.Equal(t, 100, limit)
			return []domain.Event{{ID: 1, TripID: 42, EventType: "stop.created"}}, nil
		},
	}
	svc := service.NewFeedService(events, grantRole(domain.RoleViewer))

	got, err := svc.QuerySince(context.Background(), 42, since, 100)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "stop.created", got[0].EventType)
}

func TestFeedService_QuerySince_NeverNil(t *testing.T) {
	events := &mockEventRepo{
		querySince: func(_ context.Context, _ int64, _ time.Time, _ int) ([]domain.Event, error) {
			return nil, nil
		},
	}
	svc := service.NewFeedService(events, grantRole(domain.RoleViewer))

	got, err := svc.QuerySince(context.Background(), 42, time.Now(), 100)

	require.NoError(t, err)
	assert.NotNil(t, got)
}
