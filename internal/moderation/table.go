package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/ghostmode/internal/domain"
)

// RedactedPlaceholder replaces the text of a deleted chat message.
const RedactedPlaceholder = "[removed by moderator]"

const tableProfiles = "profiles"

// step is one mutation of a dispatch table cell. The first step of a cell is
// the primary mutation; the rest are cascades.
type step struct {
	name  string
	table string
	// when gates a cascade on the plan; nil always runs.
	when func(p *plan) bool
	run  func(ctx context.Context, s Stores, p *plan) (int64, error)
}

type cell struct {
	steps []step
	// auditFirst writes the audit entry before any step runs.
	auditFirst bool
}

type cellKey struct {
	action domain.Action
	kind   domain.TargetKind
}

var (
	mediaTargets = []domain.TargetKind{domain.TargetPost, domain.TargetStory, domain.TargetVideo, domain.TargetAudio}
	adTarget     = []domain.TargetKind{domain.TargetAd}
	chatTarget   = []domain.TargetKind{domain.TargetChat}
	streamTarget = []domain.TargetKind{domain.TargetStream}
	callTarget   = []domain.TargetKind{domain.TargetCall}
	allTargets   = []domain.TargetKind{
		domain.TargetPost, domain.TargetStory, domain.TargetVideo, domain.TargetAudio,
		domain.TargetAd, domain.TargetStream, domain.TargetCall, domain.TargetChat,
	}
)

var dispatchTable = buildTable()

func buildTable() map[cellKey]cell {
	t := make(map[cellKey]cell)
	set := func(a domain.Action, kinds []domain.TargetKind, c cell) {
		for _, k := range kinds {
			t[cellKey{a, k}] = c
		}
	}

	set(domain.ActionFlag, allTargets, cell{steps: []step{insertReport()}})
	set(domain.ActionWarn, allTargets, cell{steps: []step{warnOwner()}})

	set(domain.ActionBan, allTargets, cell{steps: join(
		[]step{suspendOwner()},
		ownerMediaSteps("hide", nil, domain.VisibilityBanned),
		[]step{hideOwnerAds("deactivate_ads", nil, domain.AdStatusBanned), endOwnerStreams()},
	)})

	set(domain.ActionShadowban, mediaTargets, cell{steps: []step{hideTarget(domain.VisibilityShadowbanned)}})
	set(domain.ActionShadowban, adTarget, cell{steps: []step{hideAd(domain.AdStatusShadowbanned)}})

	set(domain.ActionPause, allTargets, cell{steps: join(
		[]step{pauseOwner()},
		ownerMediaSteps("pause", []domain.Visibility{domain.VisibilityPublic}, domain.VisibilityPaused),
		[]step{hideOwnerAds("pause_ads", []string{domain.AdStatusApproved}, domain.AdStatusPaused)},
	)})
	set(domain.ActionUnpause, allTargets, cell{steps: join(
		[]step{unpauseOwner()},
		reinstateOwnerMedia("unpause", domain.VisibilityPaused),
		[]step{reinstateOwnerAds("unpause_ads", domain.AdStatusPaused)},
	)})

	set(domain.ActionRestore, mediaTargets, cell{steps: join(
		[]step{reinstateTarget()},
		liftBanSteps(),
	)})
	set(domain.ActionRestore, adTarget, cell{steps: join(
		[]step{reinstateAd()},
		liftBanSteps(),
	)})
	set(domain.ActionRestore, chatTarget, cell{steps: []step{restoreMessage()}})

	set(domain.ActionDelete, mediaTargets, cell{steps: []step{hideTarget(domain.VisibilityDeleted)}})
	set(domain.ActionDelete, adTarget, cell{steps: []step{hideAd(domain.AdStatusDeleted)}})
	set(domain.ActionDelete, chatTarget, cell{steps: []step{redactMessage()}})
	set(domain.ActionDelete, streamTarget, cell{steps: []step{endStream()}})
	set(domain.ActionDelete, callTarget, cell{steps: []step{endCall()}})

	set(domain.ActionForceDelete, mediaTargets, cell{auditFirst: true, steps: []step{deleteMedia()}})
	set(domain.ActionForceDelete, adTarget, cell{auditFirst: true, steps: []step{deleteAd()}})
	set(domain.ActionForceDelete, chatTarget, cell{auditFirst: true, steps: []step{deleteMessage()}})

	set(domain.ActionEdit, mediaTargets, cell{steps: []step{editMedia()}})
	set(domain.ActionEdit, adTarget, cell{steps: []step{editAd()}})
	set(domain.ActionEdit, chatTarget, cell{steps: []step{editMessage()}})

	return t
}

// Supported reports whether the dispatch table defines a cell for action on kind.
func Supported(action domain.Action, kind domain.TargetKind) bool {
	if action == domain.ActionView {
		return true
	}
	_, ok := dispatchTable[cellKey{action, kind}]
	return ok
}

func join(groups ...[]step) []step {
	var out []step
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func mediaKind(p *plan) (domain.ContentKind, error) {
	ck, ok := p.kind.ContentKind()
	if !ok || ck == domain.ContentAd {
		return "", fmt.Errorf("target kind %q is not a media kind", p.kind)
	}
	return ck, nil
}

// ---------------------------------------------------------------------------
// Owner steps
// ---------------------------------------------------------------------------

func insertReport() step {
	return step{name: "insert_report", table: "reports", run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		reason := p.req.Detail
		if reason == "" {
			reason = "flagged by moderator"
		}
		r := &domain.Report{
			ID:             uuid.NewString(),
			ReporterID:     p.req.Actor.ID.String(),
			ReportedUserID: p.owner.ID,
			ContentType:    string(p.kind),
			ContentID:      p.req.Target.TargetID(),
			Reason:         reason,
			Status:         domain.ReportStatusPending,
			CreatedAt:      p.now,
		}
		if err := s.Reports.Create(ctx, r); err != nil {
			return 0, err
		}
		p.details["report_id"] = r.ID
		return 1, nil
	}}
}

func warnOwner() step {
	return step{name: "notify_owner", table: "notifications", run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		if !p.owner.Known() {
			return 0, ErrOwnerUnresolved
		}
		msg := p.req.Detail
		if msg == "" {
			msg = "Your " + string(p.kind) + " was reviewed by a moderator and violates the community guidelines."
		}
		n := &domain.Notification{
			ID:        uuid.NewString(),
			UserID:    p.owner.ID,
			Type:      "warning",
			Title:     "Community guidelines warning",
			Message:   msg,
			CreatedAt: p.now,
		}
		if err := s.Notifications.Create(ctx, n); err != nil {
			return 0, err
		}
		return 1, nil
	}}
}

func suspendOwner() step {
	return step{name: "suspend_owner", table: tableProfiles, run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		return 1, s.Profiles.Suspend(ctx, p.owner.ID, p.now)
	}}
}

func pauseOwner() step {
	return step{name: "pause_owner", table: tableProfiles, run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		until := p.now.Add(time.Duration(p.req.DurationDays) * 24 * time.Hour)
		return 1, s.Profiles.Pause(ctx, p.owner.ID, p.now, until, p.req.Detail)
	}}
}

func unpauseOwner() step {
	return step{name: "unpause_owner", table: tableProfiles, run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		return 1, s.Profiles.Unpause(ctx, p.owner.ID)
	}}
}

// ownerMediaSteps hide the owner's rows in every media table. Each row keeps
// its owner-set visibility for a later reinstatement.
func ownerMediaSteps(verb string, from []domain.Visibility, to domain.Visibility) []step {
	kinds := domain.MediaKinds()
	out := make([]step, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, step{
			name:  verb + "_" + k.Table(),
			table: k.Table(),
			run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
				return s.Media.HideByOwner(ctx, k, p.owner.ID, from, to)
			},
		})
	}
	return out
}

func reinstateOwnerMedia(verb string, from domain.Visibility) []step {
	kinds := domain.MediaKinds()
	out := make([]step, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, step{
			name:  verb + "_" + k.Table(),
			table: k.Table(),
			run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
				return s.Media.ReinstateByOwner(ctx, k, p.owner.ID, from)
			},
		})
	}
	return out
}

func hideOwnerAds(name string, from []string, status string) step {
	return step{name: name, table: domain.ContentAd.Table(), run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		return s.Ads.HideByOwner(ctx, p.owner.ID, from, status)
	}}
}

func reinstateOwnerAds(name, from string) step {
	return step{name: name, table: domain.ContentAd.Table(), run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		return s.Ads.ReinstateByOwner(ctx, p.owner.ID, from)
	}}
}

func endOwnerStreams() step {
	return step{name: "end_live_streams", table: "live_streams", run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		return s.Streams.EndByOwner(ctx, p.owner.ID)
	}}
}

// liftBanSteps undo a ban when the restored target itself was banned.
func liftBanSteps() []step {
	wasBanned := func(p *plan) bool {
		return p.owner.Known() && p.prior == domain.VisibilityBanned
	}
	out := []step{{
		name:  "unsuspend_owner",
		table: tableProfiles,
		when:  wasBanned,
		run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
			return 1, s.Profiles.Unsuspend(ctx, p.owner.ID)
		},
	}}
	for _, st := range reinstateOwnerMedia("unban", domain.VisibilityBanned) {
		st.when = wasBanned
		out = append(out, st)
	}
	ads := reinstateOwnerAds("unban_ads", domain.AdStatusBanned)
	ads.when = wasBanned
	return append(out, ads)
}

// ---------------------------------------------------------------------------
// Target steps
// ---------------------------------------------------------------------------

func hideTarget(v domain.Visibility) step {
	return step{name: "set_visibility_" + string(v), run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		ck, err := mediaKind(p)
		if err != nil {
			return 0, err
		}
		p.touch(ck.Table())
		return 1, s.Media.Hide(ctx, ck, p.req.Target.TargetID(), v)
	}}
}

// reinstateTarget returns the target to the visibility its owner had set.
func reinstateTarget() step {
	return step{name: "reinstate_visibility", run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		ck, err := mediaKind(p)
		if err != nil {
			return 0, err
		}
		p.touch(ck.Table())
		return 1, s.Media.Reinstate(ctx, ck, p.req.Target.TargetID())
	}}
}

func hideAd(status string) step {
	return step{name: "set_ad_status_" + status, table: domain.ContentAd.Table(), run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		return 1, s.Ads.Hide(ctx, p.req.Target.TargetID(), status)
	}}
}

func reinstateAd() step {
	return step{name: "reinstate_ad", table: domain.ContentAd.Table(), run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		return 1, s.Ads.Reinstate(ctx, p.req.Target.TargetID())
	}}
}

func redactMessage() step {
	return step{name: "redact_message", table: "direct_messages", run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		return 1, s.Messages.Redact(ctx, p.req.Target.TargetID(), RedactedPlaceholder)
	}}
}

func restoreMessage() step {
	return step{name: "restore_message", table: "direct_messages", run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		return 1, s.Messages.RestoreOriginal(ctx, p.req.Target.TargetID())
	}}
}

func editMessage() step {
	return step{name: "edit_message", table: "direct_messages", run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		return 1, s.Messages.Redact(ctx, p.req.Target.TargetID(), p.req.Detail)
	}}
}

func endStream() step {
	return step{name: "end_stream", table: "live_streams", run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		return 1, s.Streams.End(ctx, p.req.Target.TargetID())
	}}
}

func endCall() step {
	return step{name: "end_call", table: "calls", run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		return 1, s.Calls.End(ctx, p.req.Target.TargetID())
	}}
}

func deleteMedia() step {
	return step{name: "delete_row", run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		ck, err := mediaKind(p)
		if err != nil {
			return 0, err
		}
		p.touch(ck.Table())
		return 1, s.Media.Delete(ctx, ck, p.req.Target.TargetID())
	}}
}

func deleteAd() step {
	return step{name: "delete_row", table: domain.ContentAd.Table(), run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		return 1, s.Ads.Delete(ctx, p.req.Target.TargetID())
	}}
}

func deleteMessage() step {
	return step{name: "delete_row", table: "direct_messages", run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		return 1, s.Messages.Delete(ctx, p.req.Target.TargetID())
	}}
}

func editMedia() step {
	return step{name: "edit_content", run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		ck, err := mediaKind(p)
		if err != nil {
			return 0, err
		}
		p.touch(ck.Table())
		return 1, s.Media.UpdateContent(ctx, ck, p.req.Target.TargetID(), p.req.Detail)
	}}
}

func editAd() step {
	return step{name: "edit_description", table: domain.ContentAd.Table(), run: func(ctx context.Context, s Stores, p *plan) (int64, error) {
		return 1, s.Ads.UpdateDescription(ctx, p.req.Target.TargetID(), p.req.Detail)
	}}
}

// isNotFound reports whether a step failed because its row no longer exists.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
