package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/ghostmode/internal/domain"
)

type LiveStreamRepo struct {
	pool *pgxpool.Pool
}

func NewLiveStreamRepo(pool *pgxpool.Pool) *LiveStreamRepo {
	return &LiveStreamRepo{pool: pool}
}

const streamColumns = `id::text, user_id::text, title, status, viewer_count, thumbnail_url, started_at, ended_at, created_at`

func (r *LiveStreamRepo) ListRecent(ctx context.Context, f domain.ActivityFilter) ([]*domain.LiveStream, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+streamColumns+` FROM live_streams
		 WHERE ($1::timestamptz IS NULL OR COALESCE(started_at, created_at) >= $1)
		 ORDER BY COALESCE(started_at, created_at) DESC
		 LIMIT $2`,
		sinceArg(f), limitArg(f.Limit),
	)
	if err != nil {
		return nil, fmt.Errorf("liveStreamRepo.ListRecent: %w", err)
	}
	defer rows.Close()

	var streams []*domain.LiveStream
	for rows.Next() {
		s, err := scanStream(rows)
		if err != nil {
			return nil, fmt.Errorf("liveStreamRepo.ListRecent: scan: %w", err)
		}
		streams = append(streams, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("liveStreamRepo.ListRecent: rows: %w", err)
	}

	return streams, nil
}

func (r *LiveStreamRepo) GetByID(ctx context.Context, id string) (*domain.LiveStream, error) {
	s, err := scanStream(r.pool.QueryRow(ctx, `SELECT `+streamColumns+` FROM live_streams WHERE id::text = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("liveStreamRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("liveStreamRepo.GetByID: %w", err)
	}

	return s, nil
}

func (r *LiveStreamRepo) End(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE live_streams SET status = 'ended', ended_at = COALESCE(ended_at, now()) WHERE id::text = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("liveStreamRepo.End: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("liveStreamRepo.End: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *LiveStreamRepo) EndByOwner(ctx context.Context, userID string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE live_streams SET status = 'ended', ended_at = COALESCE(ended_at, now())
		 WHERE user_id::text = $1 AND status = 'live'`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("liveStreamRepo.EndByOwner: %w", err)
	}

	return tag.RowsAffected(), nil
}

func scanStream(row pgx.Row) (*domain.LiveStream, error) {
	var s domain.LiveStream
	var title *string
	var viewers *int

	if err := row.Scan(&s.ID, &s.UserID, &title, &s.Status, &viewers, &s.Thumbnail,
		&s.StartedAt, &s.EndedAt, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Title = derefStr(title)
	if viewers != nil {
		s.ViewerCount = *viewers
	}

	return &s, nil
}

type CallRepo struct {
	pool *pgxpool.Pool
}

func NewCallRepo(pool *pgxpool.Pool) *CallRepo {
	return &CallRepo{pool: pool}
}

const callColumns = `id::text, caller_id::text, recipient_id::text, call_type, status, participant_count,
	started_at, ended_at, created_at`

func (r *CallRepo) ListRecent(ctx context.Context, f domain.ActivityFilter) ([]*domain.Call, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+callColumns+` FROM calls
		 WHERE ($1::timestamptz IS NULL OR COALESCE(started_at, created_at) >= $1)
		 ORDER BY COALESCE(started_at, created_at) DESC
		 LIMIT $2`,
		sinceArg(f), limitArg(f.Limit),
	)
	if err != nil {
		return nil, fmt.Errorf("callRepo.ListRecent: %w", err)
	}
	defer rows.Close()

	var calls []*domain.Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("callRepo.ListRecent: scan: %w", err)
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("callRepo.ListRecent: rows: %w", err)
	}

	return calls, nil
}

func (r *CallRepo) GetByID(ctx context.Context, id string) (*domain.Call, error) {
	c, err := scanCall(r.pool.QueryRow(ctx, `SELECT `+callColumns+` FROM calls WHERE id::text = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("callRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("callRepo.GetByID: %w", err)
	}

	return c, nil
}

func (r *CallRepo) End(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE calls SET status = 'ended', ended_at = COALESCE(ended_at, now()) WHERE id::text = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("callRepo.End: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("callRepo.End: %w", domain.ErrNotFound)
	}

	return nil
}

func scanCall(row pgx.Row) (*domain.Call, error) {
	var c domain.Call
	var recipient, callType *string
	var participants *int

	if err := row.Scan(&c.ID, &c.CallerID, &recipient, &callType, &c.Status, &participants,
		&c.StartedAt, &c.EndedAt, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.RecipientID = derefStr(recipient)
	c.CallType = derefStr(callType)
	if participants != nil {
		c.ParticipantCount = *participants
	}

	return &c, nil
}
