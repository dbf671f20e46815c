package v1_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/ghostmode/internal/activity"
	"github.com/gosuda/ghostmode/internal/alerts"
	"github.com/gosuda/ghostmode/internal/domain"
	"github.com/gosuda/ghostmode/internal/moderation"
	"github.com/gosuda/ghostmode/internal/server/middleware"
	"github.com/gosuda/ghostmode/internal/surveillance"
)

// ---------------------------------------------------------------------------
// Context helpers: inject the authenticated admin for DoCtx
// ---------------------------------------------------------------------------

func adminCtx(id uuid.UUID, role string) context.Context {
	return middleware.WithAdmin(context.Background(), id, role)
}

func fixtureAdmin(role string, ghost bool) *domain.AdminUser {
	return &domain.AdminUser{
		ID:        uuid.New(),
		Email:     role + "@ghost.example",
		Name:      "Root " + role,
		Role:      role,
		GhostMode: ghost,
	}
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc     func(ctx context.Context, email, password, name, role string) (*domain.AdminUser, error)
	loginFunc        func(ctx context.Context, email, password string) (string, string, error)
	refreshTokenFunc func(ctx context.Context, refreshToken string) (string, error)
	getAdminFunc     func(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error)
	listAdminsFunc   func(ctx context.Context) ([]*domain.AdminUser, error)
	setGhostModeFunc func(ctx context.Context, id uuid.UUID, enabled bool) (*domain.AdminUser, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password, name, role string) (*domain.AdminUser, error) {
	return m.registerFunc(ctx, email, password, name, role)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, string, error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

func (m *mockAuthService) GetAdmin(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error) {
	return m.getAdminFunc(ctx, id)
}

func (m *mockAuthService) ListAdmins(ctx context.Context) ([]*domain.AdminUser, error) {
	return m.listAdminsFunc(ctx)
}

func (m *mockAuthService) SetGhostMode(ctx context.Context, id uuid.UUID, enabled bool) (*domain.AdminUser, error) {
	return m.setGhostModeFunc(ctx, id, enabled)
}

// authFor returns an AuthService whose GetAdmin always yields admin.
func authFor(admin *domain.AdminUser) *mockAuthService {
	return &mockAuthService{
		getAdminFunc: func(_ context.Context, id uuid.UUID) (*domain.AdminUser, error) {
			if id != admin.ID {
				return nil, domain.ErrNotFound
			}
			return admin, nil
		},
	}
}

// ---------------------------------------------------------------------------
// Mock feeds
// ---------------------------------------------------------------------------

type mockActivityFeed struct {
	aggregateFunc func(ctx context.Context, class domain.ActivityClass) (activity.Feed, error)
	searchFunc    func(ctx context.Context, class domain.ActivityClass, term string) (activity.Feed, error)
}

func (m *mockActivityFeed) Aggregate(ctx context.Context, class domain.ActivityClass) (activity.Feed, error) {
	return m.aggregateFunc(ctx, class)
}

func (m *mockActivityFeed) Search(ctx context.Context, class domain.ActivityClass, term string) (activity.Feed, error) {
	return m.searchFunc(ctx, class, term)
}

type mockCatalog struct {
	itemsFunc func(ctx context.Context, kind domain.ContentKind, term string) ([]domain.ContentItem, error)
}

func (m *mockCatalog) Items(ctx context.Context, kind domain.ContentKind, term string) ([]domain.ContentItem, error) {
	return m.itemsFunc(ctx, kind, term)
}

type mockAlertFeed struct {
	refreshFunc func(ctx context.Context) (alerts.AlertFeed, error)
}

func (m *mockAlertFeed) Refresh(ctx context.Context) (alerts.AlertFeed, error) {
	return m.refreshFunc(ctx)
}

// ---------------------------------------------------------------------------
// Mock moderation
// ---------------------------------------------------------------------------

type mockResolver struct {
	resolveFunc func(ctx context.Context, kind domain.TargetKind, id string) (domain.Target, error)
}

func (m *mockResolver) Resolve(ctx context.Context, kind domain.TargetKind, id string) (domain.Target, error) {
	return m.resolveFunc(ctx, kind, id)
}

type mockDispatcher struct {
	dispatchFunc func(ctx context.Context, req moderation.Request) (moderation.Result, error)
}

func (m *mockDispatcher) Dispatch(ctx context.Context, req moderation.Request) (moderation.Result, error) {
	return m.dispatchFunc(ctx, req)
}

// ---------------------------------------------------------------------------
// Mock Surveillance
// ---------------------------------------------------------------------------

type mockSurveillance struct {
	stateFunc    func(ctx context.Context, adminID uuid.UUID) (domain.SurveillanceState, error)
	startFunc    func(ctx context.Context, caller surveillance.Caller, session domain.Session) (domain.SurveillanceState, error)
	stopFunc     func(ctx context.Context, caller surveillance.Caller) error
	teardownFunc func(ctx context.Context, caller surveillance.Caller) error
}

func (m *mockSurveillance) State(ctx context.Context, adminID uuid.UUID) (domain.SurveillanceState, error) {
	return m.stateFunc(ctx, adminID)
}

func (m *mockSurveillance) Start(ctx context.Context, caller surveillance.Caller, session domain.Session) (domain.SurveillanceState, error) {
	return m.startFunc(ctx, caller, session)
}

func (m *mockSurveillance) Stop(ctx context.Context, caller surveillance.Caller) error {
	return m.stopFunc(ctx, caller)
}

func (m *mockSurveillance) Teardown(ctx context.Context, caller surveillance.Caller) error {
	return m.teardownFunc(ctx, caller)
}

// ---------------------------------------------------------------------------
// Mock AuditRepository
// ---------------------------------------------------------------------------

type mockAuditRepo struct {
	recordFunc       func(ctx context.Context, e *domain.AuditEntry) error
	listFunc         func(ctx context.Context, limit, offset int) ([]*domain.AuditEntry, error)
	listByTargetFunc func(ctx context.Context, targetID string) ([]*domain.AuditEntry, error)
}

func (m *mockAuditRepo) Record(ctx context.Context, e *domain.AuditEntry) error {
	return m.recordFunc(ctx, e)
}

func (m *mockAuditRepo) List(ctx context.Context, limit, offset int) ([]*domain.AuditEntry, error) {
	return m.listFunc(ctx, limit, offset)
}

func (m *mockAuditRepo) ListByTarget(ctx context.Context, targetID string) ([]*domain.AuditEntry, error) {
	return m.listByTargetFunc(ctx, targetID)
}
