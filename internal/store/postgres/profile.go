package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/ghostmode/internal/domain"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Profile, error) {
	out := make(map[string]*domain.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id::text, username, avatar_url, is_suspended, suspended_at,
		        is_paused, paused_at, pause_end_at, pause_reason
		 FROM profiles WHERE id::text = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("profileRepo.GetByIDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Profile
		var username, reason *string
		if err := rows.Scan(&p.ID, &username, &p.AvatarURL, &p.IsSuspended, &p.SuspendedAt,
			&p.IsPaused, &p.PausedAt, &p.PauseEndAt, &reason); err != nil {
			return nil, fmt.Errorf("profileRepo.GetByIDs: scan: %w", err)
		}
		p.Username = derefStr(username)
		p.PauseReason = derefStr(reason)
		out[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("profileRepo.GetByIDs: rows: %w", err)
	}

	return out, nil
}

// Suspend keeps the first suspension timestamp, so repeating it changes nothing.
func (r *ProfileRepo) Suspend(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET is_suspended = true, suspended_at = COALESCE(suspended_at, $1)
		 WHERE id::text = $2`,
		at, id,
	)
	if err != nil {
		return fmt.Errorf("profileRepo.Suspend: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profileRepo.Suspend: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ProfileRepo) Unsuspend(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET is_suspended = false, suspended_at = NULL WHERE id::text = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("profileRepo.Unsuspend: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profileRepo.Unsuspend: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ProfileRepo) Pause(ctx context.Context, id string, at, until time.Time, reason string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET is_paused = true, paused_at = $1, pause_end_at = $2, pause_reason = $3
		 WHERE id::text = $4`,
		at, until, nilIfEmpty(reason), id,
	)
	if err != nil {
		return fmt.Errorf("profileRepo.Pause: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profileRepo.Pause: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ProfileRepo) Unpause(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET is_paused = false, paused_at = NULL, pause_end_at = NULL, pause_reason = NULL
		 WHERE id::text = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("profileRepo.Unpause: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profileRepo.Unpause: %w", domain.ErrNotFound)
	}

	return nil
}
