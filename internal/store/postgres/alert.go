package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/ghostmode/internal/domain"
)

type ReportRepo struct {
	pool *pgxpool.Pool
}

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

func (r *ReportRepo) Create(ctx context.Context, rep *domain.Report) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO reports (reporter_id, reported_user_id, content_type, content_id, reason, description, status, is_urgent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, now()))
		 RETURNING id::text`,
		nilIfEmpty(rep.ReporterID), nilIfEmpty(rep.ReportedUserID), rep.ContentType, rep.ContentID,
		rep.Reason, nilIfEmpty(rep.Description), rep.Status, rep.IsUrgent, nilIfZero(rep.CreatedAt),
	).Scan(&rep.ID)
	if err != nil {
		return fmt.Errorf("reportRepo.Create: %w", err)
	}

	return nil
}

func (r *ReportRepo) ListPending(ctx context.Context, limit int) ([]*domain.Report, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, reporter_id::text, reported_user_id::text, content_type, content_id::text,
		        reason, description, status, is_urgent, created_at
		 FROM reports WHERE status = 'pending'
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limitArg(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("reportRepo.ListPending: %w", err)
	}
	defer rows.Close()

	var reports []*domain.Report
	for rows.Next() {
		var rep domain.Report
		var reporter, reported, contentType, contentID, reason, description *string
		if err := rows.Scan(&rep.ID, &reporter, &reported, &contentType, &contentID,
			&reason, &description, &rep.Status, &rep.IsUrgent, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("reportRepo.ListPending: scan: %w", err)
		}
		rep.ReporterID = derefStr(reporter)
		rep.ReportedUserID = derefStr(reported)
		rep.ContentType = derefStr(contentType)
		rep.ContentID = derefStr(contentID)
		rep.Reason = derefStr(reason)
		rep.Description = derefStr(description)
		reports = append(reports, &rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reportRepo.ListPending: rows: %w", err)
	}

	return reports, nil
}

type FlaggedContentRepo struct {
	pool *pgxpool.Pool
}

func NewFlaggedContentRepo(pool *pgxpool.Pool) *FlaggedContentRepo {
	return &FlaggedContentRepo{pool: pool}
}

func (r *FlaggedContentRepo) ListPending(ctx context.Context, limit int) ([]*domain.FlaggedContent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, user_id::text, content_type, content_id::text, reason, severity, status, created_at
		 FROM flagged_content WHERE status = 'pending'
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limitArg(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("flaggedContentRepo.ListPending: %w", err)
	}
	defer rows.Close()

	var flagged []*domain.FlaggedContent
	for rows.Next() {
		var f domain.FlaggedContent
		var userID, contentType, contentID, reason, severity *string
		if err := rows.Scan(&f.ID, &userID, &contentType, &contentID, &reason, &severity,
			&f.Status, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("flaggedContentRepo.ListPending: scan: %w", err)
		}
		f.UserID = derefStr(userID)
		f.ContentType = derefStr(contentType)
		f.ContentID = derefStr(contentID)
		f.Reason = derefStr(reason)
		f.Severity = domain.Severity(derefStr(severity))
		flagged = append(flagged, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("flaggedContentRepo.ListPending: rows: %w", err)
	}

	return flagged, nil
}

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO notifications (user_id, type, title, message, created_at)
		 VALUES ($1, $2, $3, $4, COALESCE($5, now()))
		 RETURNING id::text`,
		n.UserID, n.Type, n.Title, n.Message, nilIfZero(n.CreatedAt),
	).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("notificationRepo.Create: %w", err)
	}

	return nil
}
