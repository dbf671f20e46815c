package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/ghostmode/internal/activity"
	"github.com/gosuda/ghostmode/internal/alerts"
	"github.com/gosuda/ghostmode/internal/domain"
	"github.com/gosuda/ghostmode/internal/moderation"
	"github.com/gosuda/ghostmode/internal/surveillance"
)

// AuthService abstracts admin account operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, email, password, name, role string) (*domain.AdminUser, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
	GetAdmin(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error)
	ListAdmins(ctx context.Context) ([]*domain.AdminUser, error)
	SetGhostMode(ctx context.Context, id uuid.UUID, enabled bool) (*domain.AdminUser, error)
}

// ActivityFeed is satisfied by *activity.Aggregator.
type ActivityFeed interface {
	Aggregate(ctx context.Context, class domain.ActivityClass) (activity.Feed, error)
	Search(ctx context.Context, class domain.ActivityClass, term string) (activity.Feed, error)
}

// ContentCatalog is satisfied by *activity.Catalog.
type ContentCatalog interface {
	Items(ctx context.Context, kind domain.ContentKind, term string) ([]domain.ContentItem, error)
}

// AlertFeed is satisfied by *alerts.Builder.
type AlertFeed interface {
	Refresh(ctx context.Context) (alerts.AlertFeed, error)
}

// TargetResolver is satisfied by *activity.Resolver.
type TargetResolver interface {
	Resolve(ctx context.Context, kind domain.TargetKind, id string) (domain.Target, error)
}

// Dispatcher is satisfied by *moderation.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, req moderation.Request) (moderation.Result, error)
}

// Surveillance is satisfied by *surveillance.Controller.
type Surveillance interface {
	State(ctx context.Context, adminID uuid.UUID) (domain.SurveillanceState, error)
	Start(ctx context.Context, caller surveillance.Caller, session domain.Session) (domain.SurveillanceState, error)
	Stop(ctx context.Context, caller surveillance.Caller) error
	Teardown(ctx context.Context, caller surveillance.Caller) error
}
