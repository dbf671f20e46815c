package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/ghostmode/internal/api/v1"
	"github.com/gosuda/ghostmode/internal/domain"
	"github.com/gosuda/ghostmode/internal/store/memstore"
	"github.com/gosuda/ghostmode/internal/surveillance"
)

func streamResolver() *mockResolver {
	return &mockResolver{
		resolveFunc: func(_ context.Context, kind domain.TargetKind, id string) (domain.Target, error) {
			switch kind {
			case domain.TargetStream:
				return domain.Session{ID: id, Type: domain.SessionStream, UserID: "u1", Username: "alice"}, nil
			case domain.TargetVideo:
				return domain.ContentItem{ID: id, Kind: domain.ContentVideo, UserID: "u2", Visibility: domain.VisibilityPublic}, nil
			}
			return nil, domain.ErrNotFound
		},
	}
}

func TestSurveillance_StartStopOverController(t *testing.T) {
	t.Parallel()

	s := memstore.New()
	ctrl := surveillance.NewController(s.Surveillance(), s.Audit())
	admin := fixtureAdmin(domain.RoleSuperAdmin, true)
	ctx := adminCtx(admin.ID, admin.Role)

	_, api := humatest.New(t)
	v1.RegisterSurveillanceRoutes(api, authFor(admin), streamResolver(), ctrl)

	resp := api.PostCtx(ctx, "/surveillance/start", map[string]any{
		"session_type": "stream",
		"session_id":   "ls1",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var st domain.SurveillanceState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.True(t, st.IsWatching)
	require.NotNil(t, st.Session)
	assert.Equal(t, "ls1", st.Session.ID)

	resp = api.GetCtx(ctx, "/surveillance")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.True(t, st.IsWatching)

	resp = api.PostCtx(ctx, "/surveillance/stop")
	require.Equal(t, http.StatusOK, resp.Code)

	entries := s.AuditEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.AuditStartSurveillance, entries[0].Action)
	assert.Equal(t, domain.AuditStopSurveillance, entries[1].Action)
}

func TestSurveillance_StartForbidden(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		admin *domain.AdminUser
	}{
		{"ghost_mode_off", fixtureAdmin(domain.RoleSuperAdmin, false)},
		{"not_super_admin", fixtureAdmin(domain.RoleAdmin, true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := memstore.New()
			ctrl := surveillance.NewController(s.Surveillance(), s.Audit())
			_, api := humatest.New(t)
			v1.RegisterSurveillanceRoutes(api, authFor(tt.admin), streamResolver(), ctrl)

			resp := api.PostCtx(adminCtx(tt.admin.ID, tt.admin.Role), "/surveillance/start", map[string]any{
				"session_type": "stream",
				"session_id":   "ls1",
			})

			assert.Equal(t, http.StatusForbidden, resp.Code)
			assert.Empty(t, s.AuditEntries())
		})
	}
}

func TestSurveillance_ContentSessionUsesKind(t *testing.T) {
	t.Parallel()

	admin := fixtureAdmin(domain.RoleSuperAdmin, true)
	var watched domain.Session
	_, api := humatest.New(t)
	watch := &mockSurveillance{
		startFunc: func(_ context.Context, _ surveillance.Caller, session domain.Session) (domain.SurveillanceState, error) {
			watched = session
			now := time.Now()
			return domain.SurveillanceState{IsWatching: true, Session: &session, StartedAt: &now}, nil
		},
	}
	v1.RegisterSurveillanceRoutes(api, authFor(admin), streamResolver(), watch)

	resp := api.PostCtx(adminCtx(admin.ID, admin.Role), "/surveillance/start", map[string]any{
		"session_type": "content",
		"session_id":   "v1",
		"content_kind": "video",
	})

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, domain.SessionContent, watched.Type)
	assert.Equal(t, domain.ContentVideo, watched.ContentKind)
}

func TestSurveillance_SessionNotFound(t *testing.T) {
	t.Parallel()

	admin := fixtureAdmin(domain.RoleSuperAdmin, true)
	_, api := humatest.New(t)
	v1.RegisterSurveillanceRoutes(api, authFor(admin), streamResolver(), &mockSurveillance{})

	resp := api.PostCtx(adminCtx(admin.ID, admin.Role), "/surveillance/start", map[string]any{
		"session_type": "call",
		"session_id":   "c404",
	})

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSurveillance_IdleState(t *testing.T) {
	t.Parallel()

	admin := fixtureAdmin(domain.RoleModerator, false)
	_, api := humatest.New(t)
	watch := &mockSurveillance{
		stateFunc: func(_ context.Context, id uuid.UUID) (domain.SurveillanceState, error) {
			assert.Equal(t, admin.ID, id)
			return domain.SurveillanceState{}, nil
		},
	}
	v1.RegisterSurveillanceRoutes(api, authFor(admin), streamResolver(), watch)

	resp := api.GetCtx(adminCtx(admin.ID, admin.Role), "/surveillance")

	require.Equal(t, http.StatusOK, resp.Code)
	var st domain.SurveillanceState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.False(t, st.IsWatching)
	assert.Nil(t, st.Session)
}
