package activity

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/ghostmode/internal/domain"
)

// ProfileDirectory joins owner profiles onto source rows. Lookups are cached
// and a failing profile read degrades to default usernames instead of failing
// the fetch.
type ProfileDirectory struct {
	repo  domain.ProfileRepository
	cache *expirable.LRU[string, domain.Profile]
}

func NewProfileDirectory(repo domain.ProfileRepository, capacity int, ttl time.Duration) *ProfileDirectory {
	return &ProfileDirectory{
		repo:  repo,
		cache: expirable.NewLRU[string, domain.Profile](capacity, nil, ttl),
	}
}

// Lookup returns the profiles it could resolve. Missing ids are absent from
// the result.
func (d *ProfileDirectory) Lookup(ctx context.Context, ids []string) map[string]domain.Profile {
	out := make(map[string]domain.Profile, len(ids))
	var missing []string
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" || id == domain.UnknownOwner {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := d.cache.Get(id); ok {
			out[id] = p
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out
	}

	fetched, err := d.repo.GetByIDs(ctx, missing)
	if err != nil {
		profileJoinFailures.Inc()
		log.Warn().Err(err).Int("ids", len(missing)).Msg("activity: owner profile join failed")
		return out
	}
	for id, p := range fetched {
		if p == nil {
			continue
		}
		d.cache.Add(id, *p)
		out[id] = *p
	}
	return out
}

// Forget drops cached profiles so the next lookup reads them fresh.
func (d *ProfileDirectory) Forget(ids ...string) {
	for _, id := range ids {
		d.cache.Remove(id)
	}
}

func ownerFields(profiles map[string]domain.Profile, id string) (string, *string) {
	p, ok := profiles[id]
	if !ok || p.Username == "" {
		return domain.DefaultUsername, nil
	}
	return p.Username, p.AvatarURL
}

func nonNilMedia(media []string) []string {
	if media == nil {
		return []string{}
	}
	return media
}
