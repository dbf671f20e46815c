package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/ghostmode/internal/domain"
)

type DatingAdRepo struct {
	pool *pgxpool.Pool
}

func NewDatingAdRepo(pool *pgxpool.Pool) *DatingAdRepo {
	return &DatingAdRepo{pool: pool}
}

const adColumns = `id::text, user_id::text, title, description, original_description, location, tags, photos,
	is_active, moderation_status, pre_moderation_status, pre_moderation_active, created_at`

// rememberAdState keeps the owner-set state when an ad is first hidden.
const rememberAdState = `
	pre_moderation_status = CASE WHEN moderation_status IN ('banned', 'shadowbanned', 'paused', 'deleted')
		THEN pre_moderation_status ELSE moderation_status END,
	pre_moderation_active = CASE WHEN moderation_status IN ('banned', 'shadowbanned', 'paused', 'deleted')
		THEN pre_moderation_active ELSE is_active END`

const reinstateAdState = `
	moderation_status = COALESCE(pre_moderation_status, 'approved'),
	is_active = COALESCE(pre_moderation_active, true),
	pre_moderation_status = NULL, pre_moderation_active = NULL`

func (r *DatingAdRepo) ListRecent(ctx context.Context, f domain.ActivityFilter) ([]*domain.DatingAd, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+adColumns+` FROM dating_ads
		 WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		 ORDER BY created_at DESC
		 LIMIT $2`,
		sinceArg(f), limitArg(f.Limit),
	)
	if err != nil {
		return nil, fmt.Errorf("datingAdRepo.ListRecent: %w", err)
	}
	defer rows.Close()

	var ads []*domain.DatingAd
	for rows.Next() {
		a, err := scanAd(rows)
		if err != nil {
			return nil, fmt.Errorf("datingAdRepo.ListRecent: scan: %w", err)
		}
		ads = append(ads, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("datingAdRepo.ListRecent: rows: %w", err)
	}

	return ads, nil
}

func (r *DatingAdRepo) GetByID(ctx context.Context, id string) (*domain.DatingAd, error) {
	a, err := scanAd(r.pool.QueryRow(ctx, `SELECT `+adColumns+` FROM dating_ads WHERE id::text = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("datingAdRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("datingAdRepo.GetByID: %w", err)
	}

	return a, nil
}

func (r *DatingAdRepo) Hide(ctx context.Context, id, moderationStatus string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE dating_ads SET `+rememberAdState+`, is_active = false, moderation_status = $1
		 WHERE id::text = $2`,
		moderationStatus, id,
	)
	if err != nil {
		return fmt.Errorf("datingAdRepo.Hide: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("datingAdRepo.Hide: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *DatingAdRepo) Reinstate(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE dating_ads SET `+reinstateAdState+` WHERE id::text = $1`, id)
	if err != nil {
		return fmt.Errorf("datingAdRepo.Reinstate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("datingAdRepo.Reinstate: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *DatingAdRepo) HideByOwner(ctx context.Context, userID string, from []string, moderationStatus string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE dating_ads SET `+rememberAdState+`, is_active = false, moderation_status = $1
		 WHERE user_id::text = $2
		   AND (cardinality($3::text[]) = 0 AND moderation_status <> 'deleted' AND moderation_status <> $1
		        OR moderation_status = ANY($3))`,
		moderationStatus, userID, nonNil(from),
	)
	if err != nil {
		return 0, fmt.Errorf("datingAdRepo.HideByOwner: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *DatingAdRepo) ReinstateByOwner(ctx context.Context, userID, from string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE dating_ads SET `+reinstateAdState+` WHERE user_id::text = $1 AND moderation_status = $2`,
		userID, from,
	)
	if err != nil {
		return 0, fmt.Errorf("datingAdRepo.ReinstateByOwner: %w", err)
	}

	return tag.RowsAffected(), nil
}

// UpdateDescription keeps the first pre-moderation text in original_description.
func (r *DatingAdRepo) UpdateDescription(ctx context.Context, id, description string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE dating_ads SET original_description = COALESCE(original_description, description), description = $1
		 WHERE id::text = $2`,
		description, id,
	)
	if err != nil {
		return fmt.Errorf("datingAdRepo.UpdateDescription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("datingAdRepo.UpdateDescription: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *DatingAdRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM dating_ads WHERE id::text = $1`, id)
	if err != nil {
		return fmt.Errorf("datingAdRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("datingAdRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanAd(row pgx.Row) (*domain.DatingAd, error) {
	var a domain.DatingAd
	var title, description, location, status *string

	if err := row.Scan(&a.ID, &a.UserID, &title, &description, &a.OriginalDescription, &location,
		&a.Tags, &a.Photos, &a.IsActive, &status, &a.PreModerationStatus, &a.PreModerationActive, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Title = derefStr(title)
	a.Description = derefStr(description)
	a.Location = derefStr(location)
	a.ModerationStatus = derefStr(status)
	a.Tags = nonNil(a.Tags)
	a.Photos = nonNil(a.Photos)

	return &a, nil
}
