package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"coworking/internal/db/dbtest"
	"coworking/internal/model"
)

func seedUser(t *testing.T, repo UserRepository, email, username string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		Username:     username,
		PasswordHash: "hash",
		Role:         model.RoleUser,
		IsActive:     true,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func newReservation(ownerID uint, space model.SpaceName, start time.Time) *model.Reservation {
	return &model.Reservation{
		UserID:        ownerID,
		SpaceName:     space,
		StartDatetime: start,
		EndDatetime:   start.Add(time.Hour),
		Status:        model.ReservationStatusActive,
	}
}

func TestReservationRepository_OwnershipScoping(t *testing.T) {
	gormDB := dbtest.Open(t)
	users := NewUserRepository(gormDB)
	repo := NewReservationRepository(gormDB)
	ctx := context.Background()

	alice := seedUser(t, users, "alice@example.com", "alice")
	bob := seedUser(t, users, "bob@example.com", "bob")

	r := newReservation(alice.ID, model.SpaceDesk1, time.Now().Add(time.Hour).UTC())
	require.NoError(t, repo.Create(ctx, r))
	require.NotZero(t, r.ID)

	found, err := repo.FindByIDForOwner(ctx, r.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SpaceDesk1, found.SpaceName)

	_, err = repo.FindByIDForOwner(ctx, r.ID, bob.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.UpdateFields(ctx, r.ID, bob.ID, map[string]interface{}{"space_name": model.SpaceDesk2}))
	found, err = repo.FindByIDForOwner(ctx, r.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SpaceDesk1, found.SpaceName, "foreign owner must not patch the row")

	moved, err := repo.TransitionStatus(ctx, r.ID, bob.ID, model.ReservationStatusActive, model.ReservationStatusCancelled)
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestReservationRepository_TransitionStatus(t *testing.T) {
	gormDB := dbtest.Open(t)
	users := NewUserRepository(gormDB)
	repo := NewReservationRepository(gormDB)
	ctx := context.Background()

	owner := seedUser(t, users, "owner@example.com", "owner")
	r := newReservation(owner.ID, model.SpaceConferenceHall, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, r))

	moved, err := repo.TransitionStatus(ctx, r.ID, owner.ID, model.ReservationStatusActive, model.ReservationStatusCancelled)
	require.NoError(t, err)
	assert.True(t, moved)

	moved, err = repo.TransitionStatus(ctx, r.ID, owner.ID, model.ReservationStatusActive, model.ReservationStatusCancelled)
	require.NoError(t, err)
	assert.False(t, moved, "second cancel finds no active row")

	moved, err = repo.TransitionStatus(ctx, r.ID, owner.ID, model.ReservationStatusCancelled, model.ReservationStatusActive)
	require.NoError(t, err)
	assert.True(t, moved)

	found, err := repo.FindByIDForOwner(ctx, r.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusActive, found.Status)
}

func TestReservationRepository_ListByOwner(t *testing.T) {
	gormDB := dbtest.Open(t)
	users := NewUserRepository(gormDB)
	repo := NewReservationRepository(gormDB)
	ctx := context.Background()

	owner := seedUser(t, users, "owner@example.com", "owner")
	other := seedUser(t, users, "other@example.com", "other")
	base := time.Now().Add(time.Hour).UTC()

	later := newReservation(owner.ID, model.SpaceDesk1, base.Add(24*time.Hour))
	earlier := newReservation(owner.ID, model.SpaceDesk1, base)
	cancelled := newReservation(owner.ID, model.SpaceMeetingRoomA, base.Add(2*time.Hour))
	foreign := newReservation(other.ID, model.SpaceDesk1, base)
	for _, r := range []*model.Reservation{later, earlier, cancelled, foreign} {
		require.NoError(t, repo.Create(ctx, r))
	}
	_, err := repo.TransitionStatus(ctx, cancelled.ID, owner.ID, model.ReservationStatusActive, model.ReservationStatusCancelled)
	require.NoError(t, err)

	active, err := repo.ListByOwner(ctx, owner.ID, false)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, earlier.ID, active[0].ID)
	assert.Equal(t, later.ID, active[1].ID)

	all, err := repo.ListByOwner(ctx, owner.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := repo.ListByOwner(ctx, 9999, true)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
