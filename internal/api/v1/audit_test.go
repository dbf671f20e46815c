package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/ghostmode/internal/api/v1"
	"github.com/gosuda/ghostmode/internal/domain"
)

func TestListAudit(t *testing.T) {
	t.Parallel()

	t.Run("default_page", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		repo := &mockAuditRepo{
			listFunc: func(_ context.Context, limit, offset int) ([]*domain.AuditEntry, error) {
				assert.Equal(t, 50, limit)
				assert.Equal(t, 0, offset)
				return []*domain.AuditEntry{{ID: uuid.New(), Action: string(domain.ActionBan), TargetID: "p1"}}, nil
			},
		}
		v1.RegisterAuditRoutes(api, repo)

		resp := api.Get("/audit")

		require.Equal(t, http.StatusOK, resp.Code)
		var got []domain.AuditEntry
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		require.Len(t, got, 1)
		assert.Equal(t, "p1", got[0].TargetID)
	})

	t.Run("explicit_page", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		repo := &mockAuditRepo{
			listFunc: func(_ context.Context, limit, offset int) ([]*domain.AuditEntry, error) {
				assert.Equal(t, 10, limit)
				assert.Equal(t, 20, offset)
				return nil, nil
			},
		}
		v1.RegisterAuditRoutes(api, repo)

		resp := api.Get("/audit?limit=10&offset=20")

		require.Equal(t, http.StatusOK, resp.Code)
		assert.JSONEq(t, "[]", resp.Body.String())
	})

	t.Run("limit_out_of_range", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterAuditRoutes(api, &mockAuditRepo{})

		resp := api.Get("/audit?limit=10000")

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("store_failure", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		repo := &mockAuditRepo{
			listFunc: func(_ context.Context, _, _ int) ([]*domain.AuditEntry, error) {
				return nil, errors.New("timeout")
			},
		}
		v1.RegisterAuditRoutes(api, repo)

		resp := api.Get("/audit")

		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}

func TestListAuditByTarget(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	repo := &mockAuditRepo{
		listByTargetFunc: func(_ context.Context, targetID string) ([]*domain.AuditEntry, error) {
			assert.Equal(t, "m7", targetID)
			return []*domain.AuditEntry{
				{ID: uuid.New(), Action: string(domain.ActionRestore), TargetID: targetID},
				{ID: uuid.New(), Action: string(domain.ActionDelete), TargetID: targetID},
			}, nil
		},
	}
	v1.RegisterAuditRoutes(api, repo)

	resp := api.Get("/audit/targets/m7")

	require.Equal(t, http.StatusOK, resp.Code)
	var got []domain.AuditEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 2)
	assert.Equal(t, string(domain.ActionRestore), got[0].Action)
}
