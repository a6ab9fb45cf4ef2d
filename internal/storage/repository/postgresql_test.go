//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/safezone/internal/models"
	"github.com/magabrotheeeer/safezone/internal/storage"
)

var (
	base = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	ruaX = models.Address{State: "SP", City: "São Paulo", Neighborhood: "Centro", Street: "Rua X", Number: "10"}
)

func TestStorage_Users(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	f := NewTestDataFactory(s)

	u := f.CreateUser(t, "maria@example.com", ruaX, base)

	t.Run("get by id and email", func(t *testing.T) {
		got, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, got.Email)
		assert.Equal(t, []string{"Ana", "Bruno"}, got.ResidentNames)
		assert.Equal(t, ruaX, got.Address)
		assert.True(t, got.CreatedAt.Equal(base))

		got, err = s.GetUserByEmail(ctx, "maria@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.GetUserByID(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = s.GetUserByEmail(ctx, "missing@example.com")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := u
		dup.ID = uuid.NewString()
		assert.ErrorIs(t, s.CreateUser(ctx, dup), storage.ErrDuplicate)
	})

	t.Run("update access", func(t *testing.T) {
		expires := base.Add(time.Hour)
		require.NoError(t, s.UpdateUserAccess(ctx, u.ID, models.AccessUpdate{IsAdmin: true, IsVIP: true, VIPExpiresAt: &expires}))

		got, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, got.IsAdmin)
		assert.True(t, got.IsVIP)
		require.NotNil(t, got.VIPExpiresAt)
		assert.True(t, got.VIPExpiresAt.Equal(expires))

		assert.ErrorIs(t, s.UpdateUserAccess(ctx, "missing", models.AccessUpdate{}), storage.ErrNotFound)
	})
}

func TestStorage_NeighboursAndList(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	f := NewTestDataFactory(s)

	other := ruaX
	other.Number = "99"
	elsewhere := ruaX
	elsewhere.Street = "Rua Y"

	a := f.CreateUser(t, "a@example.com", ruaX, base)
	b := f.CreateUser(t, "b@example.com", other, base.Add(time.Minute))
	f.CreateUser(t, "c@example.com", elsewhere, base.Add(2*time.Minute))

	ids, err := s.FindNeighbours(ctx, ruaX, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "c@example.com", users[0].Email)
}

func TestStorage_Subscriptions(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	f := NewTestDataFactory(s)

	u := f.CreateUser(t, "maria@example.com", ruaX, base)
	sub := f.CreateSubscription(t, u.ID, models.StatusTrial, base)

	t.Run("second open subscription is a duplicate", func(t *testing.T) {
		again := sub
		again.ID = uuid.NewString()
		assert.ErrorIs(t, s.CreateSubscription(ctx, again), storage.ErrDuplicate)
	})

	t.Run("read open and by owner", func(t *testing.T) {
		got, err := s.GetOpenSubscription(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, sub.ID, got.ID)
		assert.Equal(t, 30.0, got.Amount)
		require.NotNil(t, got.GracePeriodEnd)
		assert.True(t, got.GracePeriodEnd.Equal(*sub.GracePeriodEnd))

		_, err = s.GetSubscription(ctx, sub.ID, "someone-else")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("conditional update", func(t *testing.T) {
		first := base.Add(36 * 24 * time.Hour)
		second := first.Add(time.Hour)

		require.NoError(t, s.UpdateSubscription(ctx, sub.ID, models.SubscriptionUpdate{
			From: models.StatusTrial, Status: models.StatusBlocked, BlockedAt: &first,
		}))
		require.NoError(t, s.UpdateSubscription(ctx, sub.ID, models.SubscriptionUpdate{
			From: models.StatusTrial, Status: models.StatusBlocked, BlockedAt: &second,
		}))

		got, err := s.GetSubscription(ctx, sub.ID, u.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusBlocked, got.Status)
		require.NotNil(t, got.BlockedAt)
		assert.True(t, got.BlockedAt.Equal(first))
	})

	t.Run("confirm clears blocked_at", func(t *testing.T) {
		now := base.Add(40 * 24 * time.Hour)
		next := now.Add(30 * 24 * time.Hour)
		isTrial := false
		require.NoError(t, s.UpdateSubscription(ctx, sub.ID, models.SubscriptionUpdate{
			Status: models.StatusActive, LastPaymentDate: &now, NextPayment: &next, IsTrial: &isTrial, ClearBlockedAt: true,
		}))

		got, err := s.GetSubscription(ctx, sub.ID, u.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, got.Status)
		assert.Nil(t, got.BlockedAt)
		assert.False(t, got.IsTrial)
		assert.True(t, got.NextPayment.Equal(next))
	})

	t.Run("missing subscription", func(t *testing.T) {
		err := s.UpdateSubscription(ctx, "missing", models.SubscriptionUpdate{Status: models.StatusActive})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("reactivating cancelled while another is open", func(t *testing.T) {
		cancelledAt := base
		require.NoError(t, s.UpdateSubscription(ctx, sub.ID, models.SubscriptionUpdate{
			Status: models.StatusCancelled, CancelledAt: &cancelledAt,
		}))
		_, err := s.GetOpenSubscription(ctx, u.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		f.CreateSubscription(t, u.ID, models.StatusTrial, base)

		err = s.UpdateSubscription(ctx, sub.ID, models.SubscriptionUpdate{Status: models.StatusActive})
		assert.ErrorIs(t, err, storage.ErrDuplicate)
	})
}

func TestStorage_Alerts(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	f := NewTestDataFactory(s)

	a := f.CreateUser(t, "a@example.com", ruaX, base)
	b := f.CreateUser(t, "b@example.com", ruaX, base)

	var lastID string
	for i := 0; i < 12; i++ {
		lastID = uuid.NewString()
		require.NoError(t, s.CreateAlert(ctx, models.Alert{
			ID: lastID, Type: models.AlertRobbery, UserID: a.ID, UserName: "Ana",
			Address: ruaX, Location: models.Location{Lat: -23.55, Lng: -46.63},
			Timestamp: base.Add(time.Duration(i) * time.Minute), IsActive: true,
		}))
	}

	require.NoError(t, s.CreateNotification(ctx, models.EmergencyNotification{
		ID: uuid.NewString(), AlertID: lastID, AlertType: models.AlertRobbery,
		RequesterName: a.Name, RequesterAddress: ruaX.String(),
		TargetUsers: []string{b.ID}, IsSilentForRequester: true, CreatedAt: base,
	}))
	assert.Equal(t, []string{b.ID}, notificationTargets(t, s, lastID))

	list, err := s.ListActiveAlerts(ctx, ruaX, 10)
	require.NoError(t, err)
	require.Len(t, list, 10)
	assert.Equal(t, lastID, list[0].ID)
	assert.Equal(t, -23.55, list[0].Location.Lat)

	ok, err := s.DeactivateAlert(ctx, lastID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.DeactivateAlert(ctx, lastID, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.DeactivateAlert(ctx, lastID, a.ID)
	require.NoError(t, err)
	assert.False(t, ok, "already stopped alert")

	list, err = s.ListActiveAlerts(ctx, ruaX, 10)
	require.NoError(t, err)
	assert.NotEqual(t, lastID, list[0].ID)
}

func TestStorage_HelpAndStats(t *testing.T) {
	s, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	f := NewTestDataFactory(s)

	u := f.CreateUser(t, "a@example.com", ruaX, base)
	f.CreateSubscription(t, u.ID, models.StatusTrial, base)

	for i, id := range []string{"h1", "h2"} {
		require.NoError(t, s.CreateHelpMessage(ctx, models.HelpMessage{
			ID: id, UserID: u.ID, UserName: u.Name, UserEmail: u.Email, UserAddress: ruaX.String(),
			Message: "ajuda", Status: models.HelpPending, CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	ok, err := s.RespondHelpMessage(ctx, "h1", "resolvido", base.Add(3*time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.RespondHelpMessage(ctx, "missing", "x", base)
	require.NoError(t, err)
	assert.False(t, ok)

	msgs, err := s.ListHelpMessages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "h2", msgs[0].ID)
	require.NotNil(t, msgs[1].AdminResponse)
	assert.Equal(t, "resolvido", *msgs[1].AdminResponse)
	assert.Equal(t, models.HelpResolved, msgs[1].Status)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{
		TotalUsers:          1,
		TotalSubscriptions:  1,
		TrialSubscriptions:  1,
		PendingHelpMessages: 1,
	}, st)
}
