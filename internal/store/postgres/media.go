package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/ghostmode/internal/domain"
)

var ErrUnsupportedKind = errors.New("postgres: unsupported content kind") //nolint:gochecknoglobals // sentinel error

// MediaRepo serves posts, stories, videos and audios. The four tables share
// one column layout; the table name is chosen from a fixed set by kind.
type MediaRepo struct {
	pool *pgxpool.Pool
}

func NewMediaRepo(pool *pgxpool.Pool) *MediaRepo {
	return &MediaRepo{pool: pool}
}

const mediaColumns = `id::text, user_id::text, creator_id::text, content, original_content, media_urls,
	visibility, pre_moderation_visibility, is_ppv, ppv_price, views_count, likes_count, comments_count, created_at`

// rememberVisibility keeps the owner-set visibility when a row is first hidden.
// SET expressions read the pre-update row, so it may sit beside visibility = $1.
const rememberVisibility = `pre_moderation_visibility = CASE
	WHEN visibility IN ('deleted', 'shadowbanned', 'banned', 'paused') THEN pre_moderation_visibility
	ELSE visibility END`

func mediaTable(kind domain.ContentKind) (string, error) {
	for _, k := range domain.MediaKinds() {
		if k == kind {
			return k.Table(), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
}

func (r *MediaRepo) ListRecent(ctx context.Context, kind domain.ContentKind, f domain.ActivityFilter) ([]*domain.MediaContent, error) {
	table, err := mediaTable(kind)
	if err != nil {
		return nil, fmt.Errorf("mediaRepo.ListRecent: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+mediaColumns+` FROM `+table+`
		 WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		 ORDER BY created_at DESC
		 LIMIT $2`,
		sinceArg(f), limitArg(f.Limit),
	)
	if err != nil {
		return nil, fmt.Errorf("mediaRepo.ListRecent: %w", err)
	}
	defer rows.Close()

	var out []*domain.MediaContent
	for rows.Next() {
		m, err := scanMedia(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("mediaRepo.ListRecent: scan: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mediaRepo.ListRecent: rows: %w", err)
	}

	return out, nil
}

func (r *MediaRepo) GetByID(ctx context.Context, kind domain.ContentKind, id string) (*domain.MediaContent, error) {
	table, err := mediaTable(kind)
	if err != nil {
		return nil, fmt.Errorf("mediaRepo.GetByID: %w", err)
	}

	m, err := scanMedia(r.pool.QueryRow(ctx,
		`SELECT `+mediaColumns+` FROM `+table+` WHERE id::text = $1`, id,
	), kind)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("mediaRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("mediaRepo.GetByID: %w", err)
	}

	return m, nil
}

func (r *MediaRepo) Hide(ctx context.Context, kind domain.ContentKind, id string, v domain.Visibility) error {
	table, err := mediaTable(kind)
	if err != nil {
		return fmt.Errorf("mediaRepo.Hide: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE `+table+` SET `+rememberVisibility+`, visibility = $1 WHERE id::text = $2`,
		string(v), id,
	)
	if err != nil {
		return fmt.Errorf("mediaRepo.Hide: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mediaRepo.Hide: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *MediaRepo) Reinstate(ctx context.Context, kind domain.ContentKind, id string) error {
	table, err := mediaTable(kind)
	if err != nil {
		return fmt.Errorf("mediaRepo.Reinstate: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE `+table+` SET visibility = COALESCE(pre_moderation_visibility, 'public'), pre_moderation_visibility = NULL
		 WHERE id::text = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mediaRepo.Reinstate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mediaRepo.Reinstate: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *MediaRepo) HideByOwner(ctx context.Context, kind domain.ContentKind, userID string, from []domain.Visibility, v domain.Visibility) (int64, error) {
	table, err := mediaTable(kind)
	if err != nil {
		return 0, fmt.Errorf("mediaRepo.HideByOwner: %w", err)
	}

	states := make([]string, 0, len(from))
	for _, s := range from {
		states = append(states, string(s))
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE `+table+` SET `+rememberVisibility+`, visibility = $1
		 WHERE COALESCE(creator_id, user_id)::text = $2
		   AND (cardinality($3::text[]) = 0 AND visibility <> 'deleted' AND visibility <> $1
		        OR visibility = ANY($3))`,
		string(v), userID, states,
	)
	if err != nil {
		return 0, fmt.Errorf("mediaRepo.HideByOwner: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *MediaRepo) ReinstateByOwner(ctx context.Context, kind domain.ContentKind, userID string, from domain.Visibility) (int64, error) {
	table, err := mediaTable(kind)
	if err != nil {
		return 0, fmt.Errorf("mediaRepo.ReinstateByOwner: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE `+table+` SET visibility = COALESCE(pre_moderation_visibility, 'public'), pre_moderation_visibility = NULL
		 WHERE COALESCE(creator_id, user_id)::text = $1 AND visibility = $2`,
		userID, string(from),
	)
	if err != nil {
		return 0, fmt.Errorf("mediaRepo.ReinstateByOwner: %w", err)
	}

	return tag.RowsAffected(), nil
}

// UpdateContent keeps the first pre-moderation text in original_content.
func (r *MediaRepo) UpdateContent(ctx context.Context, kind domain.ContentKind, id, content string) error {
	table, err := mediaTable(kind)
	if err != nil {
		return fmt.Errorf("mediaRepo.UpdateContent: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE `+table+` SET original_content = COALESCE(original_content, content), content = $1
		 WHERE id::text = $2`,
		content, id,
	)
	if err != nil {
		return fmt.Errorf("mediaRepo.UpdateContent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mediaRepo.UpdateContent: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *MediaRepo) Delete(ctx context.Context, kind domain.ContentKind, id string) error {
	table, err := mediaTable(kind)
	if err != nil {
		return fmt.Errorf("mediaRepo.Delete: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id::text = $1`, id)
	if err != nil {
		return fmt.Errorf("mediaRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mediaRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanMedia(row pgx.Row, kind domain.ContentKind) (*domain.MediaContent, error) {
	m := domain.MediaContent{Kind: kind}
	var content *string
	var visibility string
	var preVisibility *string
	var ppvPrice *float64

	if err := row.Scan(&m.ID, &m.UserID, &m.CreatorID, &content, &m.OriginalContent, &m.Media,
		&visibility, &preVisibility, &m.IsPPV, &ppvPrice, &m.Views, &m.Likes, &m.Comments, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Content = derefStr(content)
	m.Visibility = domain.Visibility(visibility)
	if preVisibility != nil {
		pv := domain.Visibility(*preVisibility)
		m.PreModerationVisibility = &pv
	}
	m.Media = nonNil(m.Media)
	if ppvPrice != nil {
		m.PPVAmount = *ppvPrice
	}

	return &m, nil
}
