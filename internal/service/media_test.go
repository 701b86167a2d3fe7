package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegeman/travel-journal/internal/domain"
	"github.com/collegeman/travel-journal/internal/service"
)

func tripAnchoredMedia() domain.Media {
	return domain.Media{
		ID:       31,
		TripID:   ptr(int64(42)),
		Filename: "sunset.jpg",
		MimeType: "image/jpeg",
	}
}

// newMediaService wires a MediaService whose producer shares the same event
// repo, so tests can assert on all appended events in one place.
func newMediaService(media *mockMediaRepo, roles *mockCollaboratorRepo, events *mockEventRepo, refs *mockTripRefRepo) *service.MediaService {
	if refs == nil {
		refs = &mockTripRefRepo{}
	}
	producer := service.NewEventProducer(events, refs, nil)
	return service.NewMediaService(media, roles, producer)
}

// ---- Create ----------------------------------------------------------------

func TestMediaService_Create_AppendsEvent(t *testing.T) {
	media := &mockMediaRepo{
		create: func(_ context.Context, m domain.Media) (domain.Media, error) {
			m.ID = 31
			return m, nil
		},
	}
	events := &mockEventRepo{}
	svc := newMediaService(media, grantRole(domain.RoleContributor), events, nil)

	got, err := svc.Create(context.Background(), 7, tripAnchoredMedia())

	require.NoError(t, err)
	assert.Equal(t, int64(31), got.ID)
	require.Len(t, events.appended, 1)
	e := events.appended[0]
	assert.Equal(t, "media.created", e.EventType)
	assert.Equal(t, int64(42), e.TripID)
	assert.Equal(t, int64(31), e.ObjectID)
	assert.Equal(t, "sunset.jpg", e.Payload["filename"])
	assert.Equal(t, "image/jpeg", e.Payload["mime_type"])
}

func TestMediaService_Create_ParentResolvesTrip(t *testing.T) {
	media := &mockMediaRepo{
		create: func(_ context.Context, m domain.Media) (domain.Media, error) {
			m.ID = 31
			return m, nil
		},
	}
	events := &mockEventRepo{}
	refs := &mockTripRefRepo{refs: map[domain.ObjectType]map[int64]int64{
		domain.ObjectStop: {11: 42},
	}}
	svc := newMediaService(media, grantRole(domain.RoleContributor), events, refs)

	kind := domain.ObjectStop
	m := domain.Media{
		ParentKind: &kind,
		ParentID:   ptr(int64(11)),
		Filename:   "campsite.jpg",
	}
	_, err := svc.Create(context.Background(), 7, m)

	require.NoError(t, err)
	require.Len(t, events.appended, 1)
	assert.Equal(t, int64(42), events.appended[0].TripID)
}

func TestMediaService_Create_UnanchoredSkipsEvent(t *testing.T) {
	media := &mockMediaRepo{
		create: func(_ context.Context, m domain.Media) (domain.Media, error) {
			m.ID = 31
			return m, nil
		},
	}
	events := &mockEventRepo{}
	// No roleFor stub: an unanchored record must not trigger an access check.
	svc := newMediaService(media, &mockCollaboratorRepo{}, events, nil)

	got, err := svc.Create(context.Background(), 7, domain.Media{Filename: "orphan.jpg"})

	require.NoError(t, err)
	assert.Equal(t, int64(31), got.ID)
	assert.Empty(t, events.appended, "a record outside any trip produces no event")
}

func TestMediaService_Create_FilenameRequired(t *testing.T) {
	svc := newMediaService(&mockMediaRepo{}, grantRole(domain.RoleOwner), &mockEventRepo{}, nil)

	m := tripAnchoredMedia()
	m.Filename = "  "
	_, err := svc.Create(context.Background(), 7, m)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMediaService_Create_UnknownParentKind(t *testing.T) {
	svc := newMediaService(&mockMediaRepo{}, grantRole(domain.RoleOwner), &mockEventRepo{}, nil)

	kind := domain.ObjectType("playlist")
	m := tripAnchoredMedia()
	m.ParentKind = &kind
	m.ParentID = ptr(int64(1))
	_, err := svc.Create(context.Background(), 7, m)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMediaService_Create_ViewerForbidden(t *testing.T) {
	events := &mockEventRepo{}
	svc := newMediaService(&mockMediaRepo{}, grantRole(domain.RoleViewer), events, nil)

	_, err := svc.Create(context.Background(), 7, tripAnchoredMedia())

	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, events.appended)
}

// ---- ListByTripID ----------------------------------------------------------

func TestMediaService_ListByTripID_NeverNil(t *testing.T) {
	media := &mockMediaRepo{
		listByTripID: func(_ context.Context, _ int64) ([]domain.Media, error) {
			return nil, nil
		},
	}
	svc := newMediaService(media, grantRole(domain.RoleViewer), &mockEventRepo{}, nil)

	got, err := svc.ListByTripID(context.Background(), 7, 42)

	require.NoError(t, err)
	assert.NotNil(t, got)
}

// ---- Delete ----------------------------------------------------------------

func TestMediaService_Delete_EventBeforeRemoval(t *testing.T) {
	events := &mockEventRepo{}
	media := &mockMediaRepo{
		getByID: func(_ context.Context, _ int64) (domain.Media, error) {
			return tripAnchoredMedia(), nil
		},
		delete: func(_ context.Context, _ int64) error {
			require.Len(t, events.appended, 1, "delete event must land before the row is removed")
			return nil
		},
	}
	svc := newMediaService(media, grantRole(domain.RoleContributor), events, nil)

	require.NoError(t, svc.Delete(context.Background(), 7, 31))

	require.Len(t, events.appended, 1)
	e := events.appended[0]
	assert.Equal(t, "media.deleted", e.EventType)
	assert.Equal(t, int64(42), e.TripID)
	assert.Equal(t, "sunset.jpg", e.Payload["filename"])
}

func TestMediaService_Delete_UnanchoredSkipsEvent(t *testing.T) {
	events := &mockEventRepo{}
	deleted := false
	media := &mockMediaRepo{
		getByID: func(_ context.Context, _ int64) (domain.Media, error) {
			return domain.Media{ID: 31, Filename: "orphan.jpg"}, nil
		},
		delete: func(_ context.Context, _ int64) error {
			deleted = true
			return nil
		},
	}
	svc := newMediaService(media, &mockCollaboratorRepo{}, events, nil)

	require.NoError(t, svc.Delete(context.Background(), 7, 31))

	assert.True(t, deleted)
	assert.Empty(t, events.appended)
}

func TestMediaService_Delete_NotFound(t *testing.T) {
	media := &mockMediaRepo{
		getByID: func(_ context.Context, _ int64) (domain.Media, error) {
			return domain.Media{}, domain.ErrNotFound
		},
	}
	svc := newMediaService(media, grantRole(domain.RoleOwner), &mockEventRepo{}, nil)

	err := svc.Delete(context.Background(), 7, 999)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
