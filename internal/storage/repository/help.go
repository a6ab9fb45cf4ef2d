package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/safezone/internal/models"
)

// CreateHelpMessage сохраняет обращение в поддержку.
func (s *Storage) CreateHelpMessage(ctx context.Context, m models.HelpMessage) error {
	const op = "storage.CreateHelpMessage"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO help_messages (id, user_id, user_name, user_email, user_address, message,
			      status, admin_response, created_at, resolved_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.DB.ExecContext(ctx, query,
		m.ID, m.UserID, m.UserName, m.UserEmail, m.UserAddress, m.Message,
		m.Status, m.AdminResponse, m.CreatedAt, m.ResolvedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// ListHelpMessages возвращает все обращения, новые первыми.
func (s *Storage) ListHelpMessages(ctx context.Context) ([]*models.HelpMessage, error) {
	const op = "storage.ListHelpMessages"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, user_name, user_email, user_address, message, status,
			      admin_response, created_at, resolved_at
			  FROM help_messages ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]*models.HelpMessage, 0)
	for rows.Next() {
		m := &models.HelpMessage{}
		var response sql.NullString
		var resolvedAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.UserID, &m.UserName, &m.UserEmail, &m.UserAddress, &m.Message,
			&m.Status, &response, &m.CreatedAt, &resolvedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if response.Valid {
			m.AdminResponse = &response.String
		}
		m.CreatedAt = m.CreatedAt.UTC()
		m.ResolvedAt = timePtr(resolvedAt)
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RespondHelpMessage сохраняет ответ администратора и закрывает обращение.
// Возвращает false, если обращения нет.
func (s *Storage) RespondHelpMessage(ctx context.Context, id, response string, resolvedAt time.Time) (bool, error) {
	const op = "storage.RespondHelpMessage"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	query := `UPDATE help_messages SET admin_response = $2, status = $3, resolved_at = $4 WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query, id, response, models.HelpResolved, resolvedAt)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// Stats считает сводку для панели администратора одним запросом.
func (s *Storage) Stats(ctx context.Context) (models.Stats, error) {
	const op = "storage.Stats"
	if err := checkCtx(ctx, op); err != nil {
		return models.Stats{}, err
	}

	query := `SELECT
			      (SELECT COUNT(*) FROM users),
			      (SELECT COUNT(*) FROM subscriptions),
			      (SELECT COUNT(*) FROM subscriptions WHERE status = 'active'),
			      (SELECT COUNT(*) FROM subscriptions WHERE status = 'trial'),
			      (SELECT COUNT(*) FROM subscriptions WHERE status = 'blocked'),
			      (SELECT COUNT(*) FROM alerts),
			      (SELECT COUNT(*) FROM help_messages WHERE status = 'pending')`
	var st models.Stats
	if err := s.DB.QueryRowContext(ctx, query).Scan(
		&st.TotalUsers, &st.TotalSubscriptions, &st.ActiveSubscriptions, &st.TrialSubscriptions,
		&st.BlockedSubscriptions, &st.TotalAlerts, &st.PendingHelpMessages); err != nil {
		return models.Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}
