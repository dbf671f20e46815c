package surveillance_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/ghostmode/internal/domain"
	"github.com/gosuda/ghostmode/internal/store/memstore"
	"github.com/gosuda/ghostmode/internal/surveillance"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newController(t *testing.T) (*surveillance.Controller, *memstore.Store, *clock) {
	t.Helper()

	s := memstore.New()
	clk := &clock{now: time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)}
	c := surveillance.NewController(s.Surveillance(), s.Audit()).WithClock(clk.Now)
	return c, s, clk
}

func superAdmin() surveillance.Caller {
	return surveillance.Caller{ID: uuid.New(), Name: "root", Role: domain.RoleSuperAdmin, GhostMode: true}
}

var (
	sessionA = domain.Session{ID: "ls1", Type: domain.SessionStream, UserID: "u1", Username: "alice"}
	sessionB = domain.Session{ID: "m7", Type: domain.SessionChat, UserID: "u2"}
)

func TestStart_RequiresGhostModeAndSuperAdmin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		caller surveillance.Caller
		reason error
	}{
		{"ghost mode off", surveillance.Caller{ID: uuid.New(), Role: domain.RoleSuperAdmin}, surveillance.ErrGhostModeDisabled},
		{"plain admin", surveillance.Caller{ID: uuid.New(), Role: domain.RoleAdmin, GhostMode: true}, surveillance.ErrNotSuperAdmin},
		{"moderator", surveillance.Caller{ID: uuid.New(), Role: domain.RoleModerator, GhostMode: true}, surveillance.ErrNotSuperAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, s, _ := newController(t)
			_, err := c.Start(t.Context(), tt.caller, sessionA)
			require.Error(t, err)

			var authErr *surveillance.AuthorizationError
			require.ErrorAs(t, err, &authErr)
			assert.ErrorIs(t, err, tt.reason)
			assert.ErrorIs(t, err, domain.ErrForbidden)

			st, err := c.State(t.Context(), tt.caller.ID)
			require.NoError(t, err)
			assert.False(t, st.IsWatching)
			assert.Empty(t, s.AuditEntries())
		})
	}
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	c, s, clk := newController(t)
	caller := superAdmin()

	st, err := c.Start(t.Context(), caller, sessionA)
	require.NoError(t, err)
	assert.True(t, st.IsWatching)
	require.NotNil(t, st.Session)
	assert.Equal(t, "ls1", st.Session.ID)

	clk.Advance(90 * time.Second)
	require.NoError(t, c.Stop(t.Context(), caller))

	st, err = c.State(t.Context(), caller.ID)
	require.NoError(t, err)
	assert.False(t, st.IsWatching)
	assert.Nil(t, st.Session)

	entries := s.AuditEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.AuditStartSurveillance, entries[0].Action)
	assert.Equal(t, "ls1", entries[0].TargetID)
	assert.Equal(t, "alice", entries[0].OwnerUsername)
	assert.Equal(t, domain.AuditStopSurveillance, entries[1].Action)
	assert.Equal(t, int64(90), entries[1].Details["duration_seconds"])
	assert.Equal(t, surveillance.ReasonManual, entries[1].Details["reason"])
}

func TestStop_IdleIsNoop(t *testing.T) {
	t.Parallel()

	c, s, _ := newController(t)
	caller := superAdmin()

	require.NoError(t, c.Stop(t.Context(), caller))
	require.NoError(t, c.Stop(t.Context(), caller))
	assert.Empty(t, s.AuditEntries())
}

func TestStart_SwitchStopsPreviousWatch(t *testing.T) {
	t.Parallel()

	c, s, clk := newController(t)
	caller := superAdmin()

	_, err := c.Start(t.Context(), caller, sessionA)
	require.NoError(t, err)
	clk.Advance(10 * time.Second)

	st, err := c.Start(t.Context(), caller, sessionB)
	require.NoError(t, err)
	require.NotNil(t, st.Session)
	assert.Equal(t, "m7", st.Session.ID)

	entries := s.AuditEntries()
	require.Len(t, entries, 3)

	stop, start := entries[1], entries[2]
	assert.Equal(t, domain.AuditStopSurveillance, stop.Action)
	assert.Equal(t, "ls1", stop.TargetID)
	assert.Equal(t, surveillance.ReasonSwitch, stop.Details["reason"])
	assert.Equal(t, int64(10), stop.Details["duration_seconds"])

	assert.Equal(t, domain.AuditStartSurveillance, start.Action)
	assert.Equal(t, "m7", start.TargetID)
	assert.Equal(t, domain.DefaultUsername, start.OwnerUsername)

	current, err := c.State(t.Context(), caller.ID)
	require.NoError(t, err)
	assert.Equal(t, "m7", current.Session.ID)
}

func TestTeardown(t *testing.T) {
	t.Parallel()

	c, s, _ := newController(t)
	caller := superAdmin()

	_, err := c.Start(t.Context(), caller, sessionA)
	require.NoError(t, err)

	// Ghost mode may already be off when the admin signs out.
	caller.GhostMode = false
	require.NoError(t, c.Teardown(t.Context(), caller))

	st, err := c.State(t.Context(), caller.ID)
	require.NoError(t, err)
	assert.False(t, st.IsWatching)

	entries := s.AuditEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, surveillance.ReasonSignOut, entries[1].Details["reason"])
}

func TestAdminsAreIndependent(t *testing.T) {
	t.Parallel()

	c, _, _ := newController(t)
	a, b := superAdmin(), superAdmin()

	_, err := c.Start(t.Context(), a, sessionA)
	require.NoError(t, err)
	_, err = c.Start(t.Context(), b, sessionB)
	require.NoError(t, err)

	require.NoError(t, c.Stop(t.Context(), a))

	stA, err := c.State(t.Context(), a.ID)
	require.NoError(t, err)
	assert.False(t, stA.IsWatching)

	stB, err := c.State(t.Context(), b.ID)
	require.NoError(t, err)
	assert.True(t, stB.IsWatching)
}

func TestStart_AuditFailureLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	c, s, _ := newController(t)
	caller := superAdmin()
	s.Fail("audit.Record", errors.New("disk full"))

	_, err := c.Start(t.Context(), caller, sessionA)
	require.Error(t, err)

	st, err := c.State(t.Context(), caller.ID)
	require.NoError(t, err)
	assert.False(t, st.IsWatching)
}

func TestConcurrentStartsLeaveOneWatch(t *testing.T) {
	t.Parallel()

	c, s, _ := newController(t)
	caller := superAdmin()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess := sessionA
			if i%2 == 1 {
				sess = sessionB
			}
			_, _ = c.Start(t.Context(), caller, sess)
		}()
	}
	wg.Wait()

	st, err := c.State(t.Context(), caller.ID)
	require.NoError(t, err)
	assert.True(t, st.IsWatching)

	starts, stops := 0, 0
	for _, e := range s.AuditEntries() {
		switch e.Action {
		case domain.AuditStartSurveillance:
			starts++
		case domain.AuditStopSurveillance:
			stops++
		}
	}
	assert.Equal(t, 8, starts)
	assert.Equal(t, 7, stops)
}
