package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/ghostmode/internal/activity"
	"github.com/gosuda/ghostmode/internal/domain"
	"github.com/gosuda/ghostmode/internal/moderation"
)

type ModerationActionInput struct {
	Body struct {
		TargetKind   string `json:"target_kind" enum:"post,story,video,audio,ad,stream,call,chat" doc:"Kind of the target"`
		TargetID     string `json:"target_id" minLength:"1" maxLength:"128" doc:"Target id"`
		Action       string `json:"action" enum:"flag,warn,ban,shadowban,delete,force_delete,restore,edit,pause,unpause,view" doc:"Moderation verb"`
		Detail       string `json:"detail,omitempty" maxLength:"5000" doc:"Replacement content for edit, reason otherwise"`
		DurationDays int    `json:"duration_days,omitempty" minimum:"0" maximum:"3650" doc:"Pause length in days"`
	}
}

type ModerationActionOutput struct {
	Body moderation.Result
}

func RegisterModerationRoutes(api huma.API, authSvc AuthService, resolver TargetResolver, dispatcher Dispatcher) {
	huma.Register(api, huma.Operation{
		OperationID: "moderate",
		Method:      http.MethodPost,
		Path:        "/moderation/actions",
		Summary:     "Apply a moderation action to a target",
		Tags:        []string{"Moderation"},
	}, func(ctx context.Context, input *ModerationActionInput) (*ModerationActionOutput, error) {
		admin, err := currentAdmin(ctx, authSvc)
		if err != nil {
			return nil, err
		}

		kind := domain.TargetKind(input.Body.TargetKind)
		action := domain.Action(input.Body.Action)
		label := fmt.Sprintf("%s on %s %s", action, kind, input.Body.TargetID)

		target, err := resolver.Resolve(ctx, kind, input.Body.TargetID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				return nil, huma.Error404NotFound(label + ": target not found")
			case errors.Is(err, activity.ErrUnknownTargetKind):
				return nil, huma.Error400BadRequest(label + ": unknown target kind")
			}
			return nil, huma.Error500InternalServerError(label+": failed to load target", err)
		}

		res, err := dispatcher.Dispatch(ctx, moderation.Request{
			Actor:        moderation.Actor{ID: admin.ID, Name: admin.Name},
			Target:       target,
			Action:       action,
			Detail:       input.Body.Detail,
			DurationDays: input.Body.DurationDays,
		})
		if err != nil {
			return nil, dispatchError(label, err)
		}

		return &ModerationActionOutput{Body: res}, nil
	})
}

func dispatchError(label string, err error) error {
	var mutErr *moderation.MutationError
	switch {
	case errors.Is(err, moderation.ErrEditRejected),
		errors.Is(err, moderation.ErrInvalidDuration),
		errors.Is(err, moderation.ErrNotRestorable),
		errors.Is(err, moderation.ErrOwnerUnresolved):
		return huma.Error422UnprocessableEntity(label+": "+err.Error(), err)
	case errors.Is(err, moderation.ErrUnknownAction), errors.Is(err, moderation.ErrMissingTarget):
		return huma.Error400BadRequest(label+": "+err.Error(), err)
	case errors.As(err, &mutErr) && errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(label + ": target vanished during " + mutErr.Step)
	}
	return huma.Error500InternalServerError(label+" failed", err)
}
