package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/gosuda/ghostmode/internal/domain"
)

var ErrUnknownTargetKind = errors.New("activity: unknown target kind")

// Resolver loads a moderation target by kind and id, projected the same way
// the feed projects it.
type Resolver struct {
	streams  domain.LiveStreamRepository
	calls    domain.CallRepository
	messages domain.DirectMessageRepository
	ads      domain.DatingAdRepository
	media    domain.MediaContentRepository
	profiles *ProfileDirectory
}

// Repositories groups the tables the resolver reads.
type Repositories struct {
	Streams  domain.LiveStreamRepository
	Calls    domain.CallRepository
	Messages domain.DirectMessageRepository
	Ads      domain.DatingAdRepository
	Media    domain.MediaContentRepository
}

func NewResolver(repos Repositories, profiles *ProfileDirectory) *Resolver {
	return &Resolver{
		streams:  repos.Streams,
		calls:    repos.Calls,
		messages: repos.Messages,
		ads:      repos.Ads,
		media:    repos.Media,
		profiles: profiles,
	}
}

// Resolve returns a Session for live kinds and a ContentItem for stored kinds.
func (r *Resolver) Resolve(ctx context.Context, kind domain.TargetKind, id string) (domain.Target, error) {
	switch kind {
	case domain.TargetStream:
		row, err := r.streams.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("activity.Resolver.Resolve: %w", err)
		}
		return streamSession(row, r.profiles.Lookup(ctx, []string{row.UserID})), nil

	case domain.TargetCall:
		row, err := r.calls.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("activity.Resolver.Resolve: %w", err)
		}
		return callSession(row, r.profiles.Lookup(ctx, []string{row.CallerID, row.RecipientID})), nil

	case domain.TargetChat:
		row, err := r.messages.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("activity.Resolver.Resolve: %w", err)
		}
		return chatSession(row, r.profiles.Lookup(ctx, []string{row.SenderID, row.RecipientID})), nil

	case domain.TargetAd:
		row, err := r.ads.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("activity.Resolver.Resolve: %w", err)
		}
		return adItem(row, r.profiles.Lookup(ctx, []string{row.UserID})), nil

	case domain.TargetPost, domain.TargetStory, domain.TargetVideo, domain.TargetAudio:
		ck, _ := kind.ContentKind()
		row, err := r.media.GetByID(ctx, ck, id)
		if err != nil {
			return nil, fmt.Errorf("activity.Resolver.Resolve: %w", err)
		}
		return mediaItem(row, r.profiles.Lookup(ctx, []string{mediaOwner(row)})), nil
	}
	return nil, fmt.Errorf("activity.Resolver.Resolve: %w: %q", ErrUnknownTargetKind, kind)
}

// AsSession projects any target into the feed shape.
func AsSession(t domain.Target) domain.Session {
	switch v := t.(type) {
	case domain.Session:
		return v
	case domain.ContentItem:
		return v.AsSession()
	}
	return domain.Session{ID: t.TargetID()}
}
