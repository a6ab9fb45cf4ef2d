package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/safezone/internal/models"
)

const userColumns = `id, name, email, password_hash, state, city, neighborhood, street, number,
	resident_names, is_admin, is_vip, vip_expires_at, created_at`

// CreateUser сохраняет нового пользователя.
func (s *Storage) CreateUser(ctx context.Context, user models.User) error {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	names := user.ResidentNames
	if names == nil {
		names = []string{}
	}
	query := `INSERT INTO users (` + userColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := s.DB.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash,
		user.State, user.City, user.Neighborhood, user.Street, user.Number,
		names, user.IsAdmin, user.IsVIP, user.VIPExpiresAt, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// GetUserByID возвращает пользователя по ID.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUserByID"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := s.scanUser(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := s.scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// UpdateUserAccess меняет флаги администратора и VIP одной записью.
func (s *Storage) UpdateUserAccess(ctx context.Context, id string, upd models.AccessUpdate) error {
	const op = "storage.UpdateUserAccess"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE users SET is_admin = $2, is_vip = $3, vip_expires_at = $4 WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query, id, upd.IsAdmin, upd.IsVIP, upd.VIPExpiresAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, mapError(sql.ErrNoRows))
	}
	return nil
}

// FindNeighbours возвращает ID жителей той же улицы, кроме excludeUserID.
func (s *Storage) FindNeighbours(ctx context.Context, addr models.Address, excludeUserID string) ([]string, error) {
	const op = "storage.FindNeighbours"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id FROM users
			  WHERE state = $1 AND city = $2 AND neighborhood = $3 AND street = $4 AND id <> $5
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, addr.State, addr.City, addr.Neighborhood, addr.Street, excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}

// ListUsers возвращает всех пользователей, новые первыми.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.UserSummary, error) {
	const op = "storage.ListUsers"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, name, email, neighborhood, is_admin, is_vip, created_at
			  FROM users ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]*models.UserSummary, 0)
	for rows.Next() {
		u := &models.UserSummary{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Neighborhood, &u.IsAdmin, &u.IsVIP, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		u.CreatedAt = u.CreatedAt.UTC()
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func (s *Storage) scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var vipExpires sql.NullTime
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.State, &u.City, &u.Neighborhood, &u.Street, &u.Number,
		s.textArray(&u.ResidentNames), &u.IsAdmin, &u.IsVIP, &vipExpires, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.VIPExpiresAt = timePtr(vipExpires)
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}
