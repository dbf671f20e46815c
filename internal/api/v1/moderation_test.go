package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/ghostmode/internal/activity"
	v1 "github.com/gosuda/ghostmode/internal/api/v1"
	"github.com/gosuda/ghostmode/internal/domain"
	"github.com/gosuda/ghostmode/internal/moderation"
	"github.com/gosuda/ghostmode/internal/store/memstore"
)

func postTarget(id string) domain.ContentItem {
	return domain.ContentItem{ID: id, Kind: domain.ContentPost, UserID: "u1", CreatorUsername: "alice", Visibility: domain.VisibilityPublic}
}

func TestModerate_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		resolveErr error
		dispErr    error
		wantStatus int
	}{
		{"target_missing", fmt.Errorf("activity.Resolver.Resolve: %w", domain.ErrNotFound), nil, http.StatusNotFound},
		{"edit_rejected", nil, moderation.ErrEditRejected, http.StatusUnprocessableEntity},
		{"owner_unresolved", nil, moderation.ErrOwnerUnresolved, http.StatusUnprocessableEntity},
		{"not_restorable", nil, moderation.ErrNotRestorable, http.StatusUnprocessableEntity},
		{"invalid_duration", nil, moderation.ErrInvalidDuration, http.StatusUnprocessableEntity},
		{"row_vanished", nil, &moderation.MutationError{Action: domain.ActionDelete, TargetKind: domain.TargetPost, TargetID: "p1", Step: "set_visibility", Err: domain.ErrNotFound}, http.StatusNotFound},
		{"primary_failed", nil, &moderation.MutationError{Action: domain.ActionDelete, TargetKind: domain.TargetPost, TargetID: "p1", Step: "set_visibility", Err: errors.New("deadlock")}, http.StatusInternalServerError},
		{"audit_failed", nil, fmt.Errorf("moderation: %w", moderation.ErrAuditWriteFailed), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			admin := fixtureAdmin(domain.RoleModerator, false)
			_, api := humatest.New(t)
			resolver := &mockResolver{
				resolveFunc: func(_ context.Context, _ domain.TargetKind, id string) (domain.Target, error) {
					if tt.resolveErr != nil {
						return nil, tt.resolveErr
					}
					return postTarget(id), nil
				},
			}
			disp := &mockDispatcher{
				dispatchFunc: func(_ context.Context, req moderation.Request) (moderation.Result, error) {
					return moderation.Result{Action: req.Action}, tt.dispErr
				},
			}
			v1.RegisterModerationRoutes(api, authFor(admin), resolver, disp)

			resp := api.PostCtx(adminCtx(admin.ID, admin.Role), "/moderation/actions", map[string]any{
				"target_kind": "post",
				"target_id":   "p1",
				"action":      "delete",
			})

			require.Equal(t, tt.wantStatus, resp.Code)

			var errBody map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
			assert.Contains(t, errBody["detail"], "delete on post p1")
		})
	}
}

func TestModerate_PassesRequest(t *testing.T) {
	t.Parallel()

	admin := fixtureAdmin(domain.RoleAdmin, false)
	_, api := humatest.New(t)
	resolver := &mockResolver{
		resolveFunc: func(_ context.Context, kind domain.TargetKind, id string) (domain.Target, error) {
			assert.Equal(t, domain.TargetPost, kind)
			return postTarget(id), nil
		},
	}
	disp := &mockDispatcher{
		dispatchFunc: func(_ context.Context, req moderation.Request) (moderation.Result, error) {
			assert.Equal(t, admin.ID, req.Actor.ID)
			assert.Equal(t, admin.Name, req.Actor.Name)
			assert.Equal(t, domain.ActionPause, req.Action)
			assert.Equal(t, 7, req.DurationDays)
			assert.Equal(t, "spam wave", req.Detail)
			assert.Equal(t, "p9", req.Target.TargetID())
			return moderation.Result{Action: req.Action, TargetID: "p9", TargetKind: domain.TargetPost, Audited: true}, nil
		},
	}
	v1.RegisterModerationRoutes(api, authFor(admin), resolver, disp)

	resp := api.PostCtx(adminCtx(admin.ID, admin.Role), "/moderation/actions", map[string]any{
		"target_kind":   "post",
		"target_id":     "p9",
		"action":        "pause",
		"detail":        "spam wave",
		"duration_days": 7,
	})

	require.Equal(t, http.StatusOK, resp.Code)
	var got moderation.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.True(t, got.Audited)
	assert.Equal(t, "p9", got.TargetID)
}

func TestModerate_UnknownActionRejectedBySchema(t *testing.T) {
	t.Parallel()

	admin := fixtureAdmin(domain.RoleAdmin, false)
	_, api := humatest.New(t)
	v1.RegisterModerationRoutes(api, authFor(admin), &mockResolver{}, &mockDispatcher{})

	resp := api.PostCtx(adminCtx(admin.ID, admin.Role), "/moderation/actions", map[string]any{
		"target_kind": "post",
		"target_id":   "p1",
		"action":      "nuke",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

// TestModerate_BanThroughStore drives a ban end to end over the in-memory store.
func TestModerate_BanThroughStore(t *testing.T) {
	t.Parallel()

	s := memstore.New()
	s.PutProfile(domain.Profile{ID: "u1", Username: "alice"})
	s.PutMedia(domain.MediaContent{ID: "p1", Kind: domain.ContentPost, UserID: "u1", Content: "hello", Visibility: domain.VisibilityPublic, CreatedAt: time.Now()})
	s.PutMedia(domain.MediaContent{ID: "v1", Kind: domain.ContentVideo, UserID: "u1", Visibility: domain.VisibilityPublic, CreatedAt: time.Now()})

	profiles := activity.NewProfileDirectory(s.Profiles(), 16, time.Minute)
	resolver := activity.NewResolver(activity.Repositories{
		Streams:  s.LiveStreams(),
		Calls:    s.Calls(),
		Messages: s.DirectMessages(),
		Ads:      s.DatingAds(),
		Media:    s.MediaContent(),
	}, profiles)
	disp := moderation.NewDispatcher(moderation.Stores{
		Profiles:      s.Profiles(),
		Media:         s.MediaContent(),
		Ads:           s.DatingAds(),
		Messages:      s.DirectMessages(),
		Streams:       s.LiveStreams(),
		Calls:         s.Calls(),
		Reports:       s.Reports(),
		Notifications: s.Notifications(),
		Audit:         s.Audit(),
	}, moderation.WithProfileInvalidation(profiles.Forget))

	admin := fixtureAdmin(domain.RoleAdmin, false)
	_, api := humatest.New(t)
	v1.RegisterModerationRoutes(api, authFor(admin), resolver, disp)

	resp := api.PostCtx(adminCtx(admin.ID, admin.Role), "/moderation/actions", map[string]any{
		"target_kind": "post",
		"target_id":   "p1",
		"action":      "ban",
		"detail":      "csam report",
	})

	require.Equal(t, http.StatusOK, resp.Code)

	p, ok := s.Profile("u1")
	require.True(t, ok)
	assert.True(t, p.IsSuspended)

	for _, id := range []struct {
		kind domain.ContentKind
		id   string
	}{{domain.ContentPost, "p1"}, {domain.ContentVideo, "v1"}} {
		m, ok := s.Media(id.kind, id.id)
		require.True(t, ok)
		assert.Equal(t, domain.VisibilityBanned, m.Visibility, id.id)
	}

	entries := s.AuditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, string(domain.ActionBan), entries[0].Action)
	assert.Equal(t, "p1", entries[0].TargetID)
	assert.Equal(t, "u1", entries[0].OwnerUserID)
	assert.Equal(t, admin.ID, entries[0].ActorID)
}
