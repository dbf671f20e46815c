package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/ghostmode/internal/domain"
)

type DirectMessageRepo struct {
	pool *pgxpool.Pool
}

func NewDirectMessageRepo(pool *pgxpool.Pool) *DirectMessageRepo {
	return &DirectMessageRepo{pool: pool}
}

const messageColumns = `id::text, sender_id::text, recipient_id::text, content, original_content, media_urls, created_at`

func (r *DirectMessageRepo) ListRecent(ctx context.Context, f domain.ActivityFilter) ([]*domain.DirectMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+messageColumns+` FROM direct_messages
		 WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		 ORDER BY created_at DESC
		 LIMIT $2`,
		sinceArg(f), limitArg(f.Limit),
	)
	if err != nil {
		return nil, fmt.Errorf("directMessageRepo.ListRecent: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.DirectMessage
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("directMessageRepo.ListRecent: scan: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directMessageRepo.ListRecent: rows: %w", err)
	}

	return msgs, nil
}

func (r *DirectMessageRepo) GetByID(ctx context.Context, id string) (*domain.DirectMessage, error) {
	m, err := scanMessage(r.pool.QueryRow(ctx, `SELECT `+messageColumns+` FROM direct_messages WHERE id::text = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("directMessageRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("directMessageRepo.GetByID: %w", err)
	}

	return m, nil
}

func (r *DirectMessageRepo) Redact(ctx context.Context, id, replacement string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE direct_messages SET original_content = COALESCE(original_content, content), content = $1
		 WHERE id::text = $2`,
		replacement, id,
	)
	if err != nil {
		return fmt.Errorf("directMessageRepo.Redact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("directMessageRepo.Redact: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *DirectMessageRepo) RestoreOriginal(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE direct_messages SET content = COALESCE(original_content, content), original_content = NULL
		 WHERE id::text = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("directMessageRepo.RestoreOriginal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("directMessageRepo.RestoreOriginal: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *DirectMessageRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM direct_messages WHERE id::text = $1`, id)
	if err != nil {
		return fmt.Errorf("directMessageRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("directMessageRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanMessage(row pgx.Row) (*domain.DirectMessage, error) {
	var m domain.DirectMessage
	var content *string

	if err := row.Scan(&m.ID, &m.SenderID, &m.RecipientID, &content, &m.OriginalContent, &m.Media, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Content = derefStr(content)
	m.Media = nonNil(m.Media)

	return &m, nil
}
