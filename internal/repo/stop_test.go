package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegeman/travel-journal/internal/domain"
	"github.com/collegeman/travel-journal/internal/repo"
)

// stopFixture returns a Stop ready for insertion against the given tripID.
func stopFixture(tripID int64) domain.Stop {
	return domain.Stop{
		TripID:    tripID,
		Name:      "Big Sur Campground",
		Location:  "Big Sur, CA",
		ArrivedAt: time.Date(2026, 6, 2, 10, 0, 0, 0, time.UTC),
		Notes:     "Great spot",
	}
}

func TestStopRepo_Create(t *testing.T) {
	tx := newTestTx(t)
	stops := repo.NewStopRepo(tx)
	ctx := context.Background()

	parent := mustCreateTrip(t, tx)
	input := stopFixture(parent.ID)

	got, err := stops.Create(ctx, input)

	require.NoError(t, err)
	assert.Positive(t, got.ID, "ID should be DB-generated")
	assert.Equal(t, parent.ID, got.TripID)
	assert.Equal(t, input.Name, got.Name)
	assert.Equal(t, input.Location, got.Location)
	assert.True(t, got.ArrivedAt.Equal(input.ArrivedAt), "ArrivedAt mismatch")
	assert.Nil(t, got.DepartedAt, "DepartedAt should be nil when not provided")
	assert.Equal(t, input.Notes, got.Notes)
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should be set by DB")
	assert.False(t, got.UpdatedAt.IsZero(), "UpdatedAt should be set by DB")
}

func TestStopRepo_Create_WithDepartedAt(t *testing.T) {
	tx := newTestTx(t)
	stops := repo.NewStopRepo(tx)
	ctx := context.Background()

	parent := mustCreateTrip(t, tx)
	input := stopFixture(parent.ID)
	departed := time.Date(2026, 6, 4, 9, 0, 0, 0, time.UTC)
	input.DepartedAt = &departed

	got, err := stops.Create(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, got.DepartedAt, "DepartedAt should be set")
	assert.True(t, got.DepartedAt.Equal(departed), "DepartedAt mismatch")
}

func TestStopRepo_GetByID(t *testing.T) {
	tx := newTestTx(t)
	stops := repo.NewStopRepo(tx)
	ctx := context.Background()

	parent := mustCreateTrip(t, tx)
	created, err := stops.Create(ctx, stopFixture(parent.ID))
	require.NoError(t, err)

	got, err := stops.GetByID(ctx, parent.ID, created.ID)

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Name, got.Name)
}

func TestStopRepo_GetByID_WrongTrip(t *testing.T) {
	tx := newTestTx(t)
	stops := repo.NewStopRepo(tx)
	ctx := context.Background()

	parent := mustCreateTrip(t, tx)
	other := mustCreateTrip(t, tx)
	created, err := stops.Create(ctx, stopFixture(parent.ID))
	require.NoError(t, err)

	_, err = stops.GetByID(ctx, other.ID, created.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStopRepo_ListByTripID(t *testing.T) {
	tx := newTestTx(t)
	stops := repo.NewStopRepo(tx)
	ctx := context.Background()

	parent := mustCreateTrip(t, tx)
	other := mustCreateTrip(t, tx)

	first := stopFixture(parent.ID)
	second := stopFixture(parent.ID)
	second.Name = "Morro Bay"
	second.ArrivedAt = first.ArrivedAt.Add(48 * time.Hour)
	_, err := stops.Create(ctx, second)
	require.NoError(t, err)
	_, err = stops.Create(ctx, first)
	require.NoError(t, err)
	_, err = stops.Create(ctx, stopFixture(other.ID))
	require.NoError(t, err)

	got, err := stops.ListByTripID(ctx, parent.ID)

	require.NoError(t, err)
	require.Len(t, got, 2, "should return only stops for the given trip")
	assert.Equal(t, first.Name, got[0].Name, "stops come back in visit order")
	assert.Equal(t, second.Name, got[1].Name)
}

func TestStopRepo_ListByTripID_Empty(t *testing.T) {
	tx := newTestTx(t)
	stops := repo.NewStopRepo(tx)

	parent := mustCreateTrip(t, tx)

	got, err := stops.ListByTripID(context.Background(), parent.ID)

	require.NoError(t, err)
	assert.Len(t, got, 0)
}

func TestStopRepo_Update(t *testing.T) {
	tx := newTestTx(t)
	stops := repo.NewStopRepo(tx)
	ctx := context.Background()

	parent := mustCreateTrip(t, tx)
	created, err := stops.Create(ctx, stopFixture(parent.ID))
	require.NoError(t, err)

	created.Name = "Updated Name"
	created.Location = "Monterey, CA"
	departed := time.Date(2026, 6, 5, 8, 0, 0, 0, time.UTC)
	created.DepartedAt = &departed

	updated, err := stops.Update(ctx, created)

	require.NoError(t, err)
	assert.Equal(t, "Updated Name", updated.Name)
	assert.Equal(t, "Monterey, CA", updated.Location)
	require.NotNil(t, updated.DepartedAt)
	assert.True(t, updated.DepartedAt.Equal(departed))
}

func TestStopRepo_Update_WrongTrip(t *testing.T) {
	tx := newTestTx(t)
	stops := repo.NewStopRepo(tx)
	ctx := context.Background()

	parent := mustCreateTrip(t, tx)
	other := mustCreateTrip(t, tx)
	created, err := stops.Create(ctx, stopFixture(parent.ID))
	require.NoError(t, err)

	created.TripID = other.ID
	_, err = stops.Update(ctx, created)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStopRepo_Delete(t *testing.T) {
	tx := newTestTx(t)
	stops := repo.NewStopRepo(tx)
	ctx := context.Background()

	parent := mustCreateTrip(t, tx)
	created, err := stops.Create(ctx, stopFixture(parent.ID))
	require.NoError(t, err)

	err = stops.Delete(ctx, parent.ID, created.ID)
	require.NoError(t, err)

	_, err = stops.GetByID(ctx, parent.ID, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStopRepo_Delete_WrongTrip(t *testing.T) {
	tx := newTestTx(t)
	stops := repo.NewStopRepo(tx)
	ctx := context.Background()

	parent := mustCreateTrip(t, tx)
	other := mustCreateTrip(t, tx)
	created, err := stops.Create(ctx, stopFixture(parent.ID))
	require.NoError(t, err)

	err = stops.Delete(ctx, other.ID, created.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
