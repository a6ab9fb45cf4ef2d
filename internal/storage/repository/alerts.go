package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/safezone/internal/models"
)

// CreateAlert сохраняет тревогу.
func (s *Storage) CreateAlert(ctx context.Context, a models.Alert) error {
	const op = "storage.CreateAlert"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO alerts (id, type, user_id, user_name, state, city, neighborhood, street, number,
			      lat, lng, raised_at, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := s.DB.ExecContext(ctx, query,
		a.ID, a.Type, a.UserID, a.UserName, a.State, a.City, a.Neighborhood, a.Street, a.Number,
		a.Location.Lat, a.Location.Lng, a.Timestamp, a.IsActive)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// CreateNotification сохраняет запись рассылки тревоги.
func (s *Storage) CreateNotification(ctx context.Context, n models.EmergencyNotification) error {
	const op = "storage.CreateNotification"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	targets := n.TargetUsers
	if targets == nil {
		targets = []string{}
	}
	query := `INSERT INTO emergency_notifications (id, alert_id, alert_type, requester_name,
			      requester_address, target_users, is_silent_for_requester, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.DB.ExecContext(ctx, query,
		n.ID, n.AlertID, n.AlertType, n.RequesterName, n.RequesterAddress, targets,
		n.IsSilentForRequester, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// ListActiveAlerts возвращает активные тревоги улицы, новые первыми.
func (s *Storage) ListActiveAlerts(ctx context.Context, addr models.Address, limit int) ([]*models.Alert, error) {
	const op = "storage.ListActiveAlerts"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, type, user_id, user_name, state, city, neighborhood, street, number,
			      lat, lng, raised_at, is_active
			  FROM alerts
			  WHERE state = $1 AND city = $2 AND neighborhood = $3 AND street = $4 AND is_active
			  ORDER BY raised_at DESC
			  LIMIT $5`
	rows, err := s.DB.QueryContext(ctx, query, addr.State, addr.City, addr.Neighborhood, addr.Street, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]*models.Alert, 0)
	for rows.Next() {
		a := &models.Alert{}
		if err := rows.Scan(&a.ID, &a.Type, &a.UserID, &a.UserName,
			&a.State, &a.City, &a.Neighborhood, &a.Street, &a.Number,
			&a.Location.Lat, &a.Location.Lng, &a.Timestamp, &a.IsActive); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.Timestamp = a.Timestamp.UTC()
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeactivateAlert выключает активную тревогу, если её создал userID.
// Для уже остановленной тревоги возвращает false.
func (s *Storage) DeactivateAlert(ctx context.Context, id, userID string) (bool, error) {
	const op = "storage.DeactivateAlert"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE alerts SET is_active = FALSE WHERE id = $1 AND user_id = $2 AND is_active`, id, userID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}
