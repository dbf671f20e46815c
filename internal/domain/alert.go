package domain

import (
	"context"
	"time"
)

type AlertKind string

const (
	AlertViolation AlertKind = "violation"
	AlertRisk      AlertKind = "risk"
)

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Alert is a normalized pending report or flagged-content record.
type Alert struct {
	ID          string    `json:"id"`
	Kind        AlertKind `json:"kind"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	ContentType string    `json:"content_type"`
	ContentID   string    `json:"content_id"`
	Reason      string    `json:"reason"`
	Severity    Severity  `json:"severity"`
	CreatedAt   time.Time `json:"created_at"`
	Urgent      bool      `json:"urgent"`
}

// Report is a row of the reports table.
type Report struct {
	ID             string
	ReporterID     string
	ReportedUserID string
	ContentType    string
	ContentID      string
	Reason         string
	Description    string
	Status         string // "pending", "reviewed", "dismissed"
	IsUrgent       bool
	CreatedAt      time.Time
}

// FlaggedContent is a row of the flagged_content table.
type FlaggedContent struct {
	ID          string
	UserID      string
	ContentType string
	ContentID   string
	Reason      string
	Severity    Severity
	Status      string // "pending", "resolved"
	CreatedAt   time.Time
}

const ReportStatusPending = "pending"

type ReportRepository interface {
	Create(ctx context.Context, r *Report) error
	ListPending(ctx context.Context, limit int) ([]*Report, error)
}

type FlaggedContentRepository interface {
	ListPending(ctx context.Context, limit int) ([]*FlaggedContent, error)
}

// Notification is a message delivered to a platform user.
type Notification struct {
	ID        string
	UserID    string
	Type      string // "warning", "moderation"
	Title     string
	Message   string
	CreatedAt time.Time
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
}
