package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/ghostmode/internal/domain"
)

// defaultListLimit bounds list queries whose caller passed no limit.
const defaultListLimit = 100

type Store struct {
	pool          *pgxpool.Pool
	profiles      *ProfileRepo
	media         *MediaRepo
	ads           *DatingAdRepo
	messages      *DirectMessageRepo
	streams       *LiveStreamRepo
	calls         *CallRepo
	reports       *ReportRepo
	flagged       *FlaggedContentRepo
	notifications *NotificationRepo
	audit         *AuditRepo
	admins        *AdminUserRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:          pool,
		profiles:      NewProfileRepo(pool),
		media:         NewMediaRepo(pool),
		ads:           NewDatingAdRepo(pool),
		messages:      NewDirectMessageRepo(pool),
		streams:       NewLiveStreamRepo(pool),
		calls:         NewCallRepo(pool),
		reports:       NewReportRepo(pool),
		flagged:       NewFlaggedContentRepo(pool),
		notifications: NewNotificationRepo(pool),
		audit:         NewAuditRepo(pool),
		admins:        NewAdminUserRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres.Store.Ping: %w", err)
	}
	return nil
}

func (s *Store) Profiles() domain.ProfileRepository              { return s.profiles }
func (s *Store) MediaContent() domain.MediaContentRepository     { return s.media }
func (s *Store) DatingAds() domain.DatingAdRepository            { return s.ads }
func (s *Store) DirectMessages() domain.DirectMessageRepository  { return s.messages }
func (s *Store) LiveStreams() domain.LiveStreamRepository        { return s.streams }
func (s *Store) Calls() domain.CallRepository                    { return s.calls }
func (s *Store) Reports() domain.ReportRepository                { return s.reports }
func (s *Store) FlaggedContent() domain.FlaggedContentRepository { return s.flagged }
func (s *Store) Notifications() domain.NotificationRepository    { return s.notifications }
func (s *Store) Audit() domain.AuditRepository                   { return s.audit }
func (s *Store) AdminUsers() domain.AdminUserRepository          { return s.admins }

// --- Helpers ---

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func sinceArg(f domain.ActivityFilter) *time.Time {
	if f.Since.IsZero() {
		return nil
	}
	return &f.Since
}

func nilIfZero(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func limitArg(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
