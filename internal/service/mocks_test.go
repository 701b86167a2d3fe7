package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/collegeman/travel-journal/internal/domain"
	"github.com/collegeman/travel-journal/internal/repo"
)

// Hand-written test doubles for the repo interfaces. Set only the function
// fields a test needs; an unset field that gets called panics, which is the
// desired failure mode for an unexpected interaction.

// mockEventRepo records every appended event so tests can assert on the
// event side effects of a service call.
type mockEventRepo struct {
	appended   []repo.AppendEvent
	appendErr  error
	querySince func(ctx context.Context, tripID int64, since time.Time, limit int) ([]domain.Event, error)
	cleanup    func(ctx context.Context, retention time.Duration) (int64, error)
}

func (m *mockEventRepo) Append(_ context.Context, e repo.AppendEvent) (int64, error) {
	if m.appendErr != nil {
		return 0, m.appendErr
	}
	m.appended = append(m.appended, e)
	return int64(len(m.appended)), nil
}

func (m *mockEventRepo) QuerySince(ctx context.Context, tripID int64, since time.Time, limit int) ([]domain.Event, error) {
	return m.querySince(ctx, tripID, since, limit)
}

func (m *mockEventRepo) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	return m.cleanup(ctx, retention)
}

var _ repo.EventRepo = (*mockEventRepo)(nil)

// mockCollaboratorRepo stubs role resolution; most tests only set roleFor.
type mockCollaboratorRepo struct {
	listByTrip func(ctx context.Context, tripID int64) ([]domain.Collaborator, error)
	add        func(ctx context.Context, tripID, userID int64, role domain.Role) (domain.Collaborator, error)
	remove     func(ctx context.Context, tripID, userID int64) error
	roleFor    func(ctx context.Context, tripID, userID int64) (domain.Role, error)
}

func (m *mockCollaboratorRepo) ListByTrip(ctx context.Context, tripID int64) ([]domain.Collaborator, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockCollaboratorRepo) Add(ctx context.Context, tripID, userID int64, role domain.Role) (domain.Collaborator, error) {
	return m.add(ctx, tripID, userID, role)
}
func (m *mockCollaboratorRepo) Remove(ctx context.Context, tripID, userID int64) error {
	return m.remove(ctx, tripID, userID)
}
func (m *mockCollaboratorRepo) RoleFor(ctx context.Context, tripID, userID int64) (domain.Role, error) {
	return m.roleFor(ctx, tripID, userID)
}

var _ repo.CollaboratorRepo = (*mockCollaboratorRepo)(nil)

// grantRole returns a CollaboratorRepo that reports the given role for every
// lookup. Use denyAccess for the no-access case.
func grantRole(role domain.Role) *mockCollaboratorRepo {
	return &mockCollaboratorRepo{
		roleFor: func(_ context.Context, _, _ int64) (domain.Role, error) {
			return role, nil
		},
	}
}

// denyAccess returns a CollaboratorRepo that reports no access for every
// lookup.
func denyAccess() *mockCollaboratorRepo {
	return &mockCollaboratorRepo{
		roleFor: func(_ context.Context, _, _ int64) (domain.Role, error) {
			return "", domain.ErrNotFound
		},
	}
}

type mockTripRepo struct {
	create      func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID     func(ctx context.Context, id int64) (domain.Trip, error)
	listForUser func(ctx context.Context, userID int64) ([]domain.Trip, error)
	update      func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete      func(ctx context.Context, id int64) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id int64) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) ListForUser(ctx context.Context, userID int64) ([]domain.Trip, error) {
	return m.listForUser(ctx, userID)
}
func (m *mockTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripRepo) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

type mockStopRepo struct {
	create       func(ctx context.Context, stop domain.Stop) (domain.Stop, error)
	getByID      func(ctx context.Context, tripID, stopID int64) (domain.Stop, error)
	listByTripID func(ctx context.Context, tripID int64) ([]domain.Stop, error)
	update       func(ctx context.Context, stop domain.Stop) (domain.Stop, error)
	delete       func(ctx context.Context, tripID, stopID int64) error
}

func (m *mockStopRepo) Create(ctx context.Context, stop domain.Stop) (domain.Stop, error) {
	return m.create(ctx, stop)
}
func (m *mockStopRepo) GetByID(ctx context.Context, tripID, stopID int64) (domain.Stop, error) {
	return m.getByID(ctx, tripID, stopID)
}
func (m *mockStopRepo) ListByTripID(ctx context.Context, tripID int64) ([]domain.Stop, error) {
	return m.listByTripID(ctx, tripID)
}
func (m *mockStopRepo) Update(ctx context.Context, stop domain.Stop) (domain.Stop, error) {
	return m.update(ctx, stop)
}
func (m *mockStopRepo) Delete(ctx context.Context, tripID, stopID int64) error {
	return m.delete(ctx, tripID, stopID)
}

var _ repo.StopRepo = (*mockStopRepo)(nil)

type mockItemRepo struct {
	create       func(ctx context.Context, item domain.Item) (domain.Item, error)
	getByID      func(ctx context.Context, tripID, itemID int64) (domain.Item, error)
	listByTripID func(ctx context.Context, tripID int64, kind domain.ItemKind) ([]domain.Item, error)
	update       func(ctx context.Context, item domain.Item) (domain.Item, error)
	delete       func(ctx context.Context, tripID, itemID int64) error
}

func (m *mockItemRepo) Create(ctx context.Context, item domain.Item) (domain.Item, error) {
	return m.create(ctx, item)
}
func (m *mockItemRepo) GetByID(ctx context.Context, tripID, itemID int64) (domain.Item, error) {
	return m.getByID(ctx, tripID, itemID)
}
func (m *mockItemRepo) ListByTripID(ctx context.Context, tripID int64, kind domain.ItemKind) ([]domain.Item, error) {
	return m.listByTripID(ctx, tripID, kind)
}
func (m *mockItemRepo) Update(ctx context.Context, item domain.Item) (domain.Item, error) {
	return m.update(ctx, item)
}
func (m *mockItemRepo) Delete(ctx context.Context, tripID, itemID int64) error {
	return m.delete(ctx, tripID, itemID)
}

var _ repo.ItemRepo = (*mockItemRepo)(nil)

type mockMediaRepo struct {
	create       func(ctx context.Context, m domain.Media) (domain.Media, error)
	getByID      func(ctx context.Context, id int64) (domain.Media, error)
	listByTripID func(ctx context.Context, tripID int64) ([]domain.Media, error)
	delete       func(ctx context.Context, id int64) error
}

func (m *mockMediaRepo) Create(ctx context.Context, media domain.Media) (domain.Media, error) {
	return m.create(ctx, media)
}
func (m *mockMediaRepo) GetByID(ctx context.Context, id int64) (domain.Media, error) {
	return m.getByID(ctx, id)
}
func (m *mockMediaRepo) ListByTripID(ctx context.Context, tripID int64) ([]domain.Media, error) {
	return m.listByTripID(ctx, tripID)
}
func (m *mockMediaRepo) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}

var _ repo.MediaRepo = (*mockMediaRepo)(nil)

type mockUserRepo struct {
	getByToken func(ctx context.Context, token uuid.UUID) (domain.User, error)
	getByEmail func(ctx context.Context, email string) (domain.User, error)
	create     func(ctx context.Context, email, displayName string) (domain.User, error)
}

func (m *mockUserRepo) GetByToken(ctx context.Context, token uuid.UUID) (domain.User, error) {
	return m.getByToken(ctx, token)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return m.getByEmail(ctx, email)
}
func (m *mockUserRepo) Create(ctx context.Context, email, displayName string) (domain.User, error) {
	return m.create(ctx, email, displayName)
}

var _ repo.UserRepo = (*mockUserRepo)(nil)

// mockTripRefRepo resolves object trip references from a static table keyed
// by kind and object id.
type mockTripRefRepo struct {
	refs map[domain.ObjectType]map[int64]int64
}

func (m *mockTripRefRepo) TripIDForObject(_ context.Context, kind domain.ObjectType, objectID int64) (int64, error) {
	if tripID, ok := m.refs[kind][objectID]; ok {
		return tripID, nil
	}
	return 0, domain.ErrNotFound
}

var _ repo.TripRefRepo = (*mockTripRefRepo)(nil)
