package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/ghostmode/internal/activity"
	"github.com/gosuda/ghostmode/internal/domain"
	"github.com/gosuda/ghostmode/internal/surveillance"
)

type SurveillanceOutput struct {
	Body domain.SurveillanceState
}

type StartSurveillanceInput struct {
	Body struct {
		SessionType string `json:"session_type" enum:"stream,call,chat,bodycontact,content" doc:"Session type"`
		SessionID   string `json:"session_id" minLength:"1" maxLength:"128" doc:"Session id"`
		ContentKind string `json:"content_kind,omitempty" enum:"post,story,video,audio" doc:"Stored kind of a content session"`
	}
}

// sessionTarget maps a watchable session type onto the kind the resolver loads.
func sessionTarget(st domain.SessionType, ck domain.ContentKind) (domain.TargetKind, bool) {
	switch st {
	case domain.SessionStream:
		return domain.TargetStream, true
	case domain.SessionCall:
		return domain.TargetCall, true
	case domain.SessionChat:
		return domain.TargetChat, true
	case domain.SessionBodyContact:
		return domain.TargetAd, true
	case domain.SessionContent:
		if ck == "" {
			return domain.TargetPost, true
		}
		k := domain.TargetKind(ck)
		return k, k.Valid() && k != domain.TargetAd
	}
	return "", false
}

func RegisterSurveillanceRoutes(api huma.API, authSvc AuthService, resolver TargetResolver, watch Surveillance) {
	huma.Register(api, huma.Operation{
		OperationID: "get-surveillance",
		Method:      http.MethodGet,
		Path:        "/surveillance",
		Summary:     "Current surveillance state of the signed-in admin",
		Tags:        []string{"Surveillance"},
	}, func(ctx context.Context, _ *struct{}) (*SurveillanceOutput, error) {
		admin, err := currentAdmin(ctx, authSvc)
		if err != nil {
			return nil, err
		}

		st, err := watch.State(ctx, admin.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to read surveillance state", err)
		}
		return &SurveillanceOutput{Body: st}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "start-surveillance",
		Method:      http.MethodPost,
		Path:        "/surveillance/start",
		Summary:     "Start watching a session",
		Tags:        []string{"Surveillance"},
	}, func(ctx context.Context, input *StartSurveillanceInput) (*SurveillanceOutput, error) {
		admin, err := currentAdmin(ctx, authSvc)
		if err != nil {
			return nil, err
		}

		kind, ok := sessionTarget(domain.SessionType(input.Body.SessionType), domain.ContentKind(input.Body.ContentKind))
		if !ok {
			return nil, huma.Error400BadRequest("unsupported session type")
		}

		target, err := resolver.Resolve(ctx, kind, input.Body.SessionID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("session not found")
			}
			return nil, huma.Error500InternalServerError("failed to load session", err)
		}

		st, err := watch.Start(ctx, callerOf(admin), activity.AsSession(target))
		if err != nil {
			var authErr *surveillance.AuthorizationError
			if errors.As(err, &authErr) {
				return nil, huma.Error403Forbidden(authErr.Reason.Error())
			}
			return nil, huma.Error500InternalServerError("failed to start surveillance", err)
		}
		return &SurveillanceOutput{Body: st}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "stop-surveillance",
		Method:      http.MethodPost,
		Path:        "/surveillance/stop",
		Summary:     "Stop watching",
		Tags:        []string{"Surveillance"},
	}, func(ctx context.Context, _ *struct{}) (*SurveillanceOutput, error) {
		admin, err := currentAdmin(ctx, authSvc)
		if err != nil {
			return nil, err
		}

		if err := watch.Stop(ctx, callerOf(admin)); err != nil {
			return nil, huma.Error500InternalServerError("failed to stop surveillance", err)
		}
		return &SurveillanceOutput{Body: domain.SurveillanceState{}}, nil
	})
}
