package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/ghostmode/internal/domain"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Record(ctx context.Context, entry *domain.AuditEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("auditRepo.Record: marshal details: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO audit_log (id, actor_id, actor_name, action, target_id, target_type,
		                        owner_user_id, owner_username, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID, entry.ActorID, entry.ActorName, entry.Action, nilIfEmpty(entry.TargetID),
		nilIfEmpty(entry.TargetType), nilIfEmpty(entry.OwnerUserID), nilIfEmpty(entry.OwnerUsername),
		details, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("auditRepo.Record: %w", err)
	}

	return nil
}

const auditColumns = `id, actor_id, actor_name, action, target_id, target_type, owner_user_id, owner_username, details, created_at`

func (r *AuditRepo) List(ctx context.Context, limit, offset int) ([]*domain.AuditEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+auditColumns+` FROM audit_log
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limitArg(limit), max(offset, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.List: %w", err)
	}
	defer rows.Close()

	return scanAuditEntries(rows, "auditRepo.List")
}

func (r *AuditRepo) ListByTarget(ctx context.Context, targetID string) ([]*domain.AuditEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+auditColumns+` FROM audit_log
		 WHERE target_id = $1
		 ORDER BY created_at DESC`,
		targetID,
	)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.ListByTarget: %w", err)
	}
	defer rows.Close()

	return scanAuditEntries(rows, "auditRepo.ListByTarget")
}

func scanAuditEntries(rows pgx.Rows, caller string) ([]*domain.AuditEntry, error) {
	var entries []*domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var targetID, targetType, ownerID, ownerName *string
		var details []byte
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorName, &e.Action, &targetID, &targetType,
			&ownerID, &ownerName, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		e.TargetID = derefStr(targetID)
		e.TargetType = derefStr(targetType)
		e.OwnerUserID = derefStr(ownerID)
		e.OwnerUsername = derefStr(ownerName)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("%s: details: %w", caller, err)
			}
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return entries, nil
}
