package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/ghostmode/internal/domain"
)

type AdminUserRepo struct {
	pool *pgxpool.Pool
}

func NewAdminUserRepo(pool *pgxpool.Pool) *AdminUserRepo {
	return &AdminUserRepo{pool: pool}
}

const adminColumns = `id, email, password_hash, name, role, ghost_mode, created_at, updated_at`

func (r *AdminUserRepo) Create(ctx context.Context, u *domain.AdminUser) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO admin_users (`+adminColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.GhostMode, u.CreatedAt, u.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("adminUserRepo.Create: %w", domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("adminUserRepo.Create: %w", err)
	}

	return nil
}

func (r *AdminUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error) {
	return r.getOne(ctx, "adminUserRepo.GetByID", `SELECT `+adminColumns+` FROM admin_users WHERE id = $1`, id)
}

func (r *AdminUserRepo) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	return r.getOne(ctx, "adminUserRepo.GetByEmail", `SELECT `+adminColumns+` FROM admin_users WHERE email = $1`, email)
}

func (r *AdminUserRepo) getOne(ctx context.Context, caller, query string, arg any) (*domain.AdminUser, error) {
	u, err := scanAdmin(r.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", caller, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", caller, err)
	}

	return u, nil
}

func (r *AdminUserRepo) SetGhostMode(ctx context.Context, id uuid.UUID, enabled bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE admin_users SET ghost_mode = $1, updated_at = now() WHERE id = $2`,
		enabled, id,
	)
	if err != nil {
		return fmt.Errorf("adminUserRepo.SetGhostMode: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("adminUserRepo.SetGhostMode: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *AdminUserRepo) List(ctx context.Context) ([]*domain.AdminUser, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+adminColumns+` FROM admin_users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("adminUserRepo.List: %w", err)
	}
	defer rows.Close()

	var users []*domain.AdminUser
	for rows.Next() {
		u, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("adminUserRepo.List: scan: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("adminUserRepo.List: rows: %w", err)
	}

	return users, nil
}

func scanAdmin(row pgx.Row) (*domain.AdminUser, error) {
	var u domain.AdminUser
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.GhostMode,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
