//go:build integration

package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/safezone/internal/migrations"
	"github.com/magabrotheeeer/safezone/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(ctx, dsn)
	require.NoError(t, err)

	root, err := filepath.Abs("../../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, filepath.Join(root, "migrations")))

	cleanup := func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}

// TestDataFactory создаёт тестовые данные.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создаёт фабрику тестовых данных.
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создаёт пользователя по адресу addr.
func (f *TestDataFactory) CreateUser(t *testing.T, email string, addr models.Address, createdAt time.Time) models.User {
	t.Helper()
	u := models.User{
		ID:            uuid.NewString(),
		Name:          "Resident " + email,
		Email:         email,
		PasswordHash:  "hash",
		Address:       addr,
		ResidentNames: []string{"Ana", "Bruno"},
		CreatedAt:     createdAt,
	}
	require.NoError(t, f.storage.CreateUser(context.Background(), u))
	return u
}

// CreateSubscription создаёт подписку со статусом status.
func (f *TestDataFactory) CreateSubscription(t *testing.T, userID string, status models.SubscriptionStatus, start time.Time) models.Subscription {
	t.Helper()
	trialEnd := start.Add(30 * 24 * time.Hour)
	grace := trialEnd.Add(5 * 24 * time.Hour)
	sub := models.Subscription{
		ID:             uuid.NewString(),
		UserID:         userID,
		PaymentMethod:  models.PaymentPix,
		Status:         status,
		StartDate:      start,
		TrialEndDate:   trialEnd,
		NextPayment:    trialEnd,
		PaymentDueDate: &grace,
		GracePeriodEnd: &grace,
		IsTrial:        true,
		Amount:         30,
		BillingCycle:   "monthly",
		CreatedAt:      start,
	}
	require.NoError(t, f.storage.CreateSubscription(context.Background(), sub))
	return sub
}

// notificationTargets читает получателей рассылки по тревоге.
func notificationTargets(t *testing.T, s *Storage, alertID string) []string {
	t.Helper()
	var targets []string
	err := s.DB.QueryRow(`SELECT target_users FROM emergency_notifications WHERE alert_id = $1`, alertID).
		Scan(s.textArray(&targets))
	require.NoError(t, err)
	return targets
}
