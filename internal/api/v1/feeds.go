package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/ghostmode/internal/activity"
	"github.com/gosuda/ghostmode/internal/alerts"
	"github.com/gosuda/ghostmode/internal/domain"
)

type ActivityInput struct {
	Class string `query:"class" enum:"all,streams,calls,chats,bodycontact,content" default:"all" doc:"Activity class"`
	Query string `query:"q" maxLength:"200" doc:"Case-insensitive match on username or content"`
}

type ActivityOutput struct {
	Body activity.Feed
}

type ContentInput struct {
	Kind  string `query:"kind" enum:"post,story,video,audio,ad" doc:"Content kind; empty lists every kind"`
	Query string `query:"q" maxLength:"200" doc:"Case-insensitive match on creator or content"`
}

type ContentOutput struct {
	Body []domain.ContentItem
}

type AlertsOutput struct {
	Body alerts.AlertFeed
}

func RegisterFeedRoutes(api huma.API, feed ActivityFeed, catalog ContentCatalog, alertFeed AlertFeed) {
	huma.Register(api, huma.Operation{
		OperationID: "get-activity",
		Method:      http.MethodGet,
		Path:        "/activity",
		Summary:     "Aggregate recent platform activity",
		Tags:        []string{"Activity"},
	}, func(ctx context.Context, input *ActivityInput) (*ActivityOutput, error) {
		class := domain.ActivityClass(input.Class)
		term := strings.TrimSpace(input.Query)

		var (
			f   activity.Feed
			err error
		)
		if term == "" {
			f, err = feed.Aggregate(ctx, class)
		} else {
			f, err = feed.Search(ctx, class, term)
		}
		if err != nil {
			if errors.Is(err, activity.ErrUnknownClass) {
				return nil, huma.Error400BadRequest("unknown activity class")
			}
			return nil, huma.Error500InternalServerError("failed to aggregate activity", err)
		}
		if f.Sessions == nil {
			f.Sessions = []domain.Session{}
		}

		return &ActivityOutput{Body: f}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-content",
		Method:      http.MethodGet,
		Path:        "/content",
		Summary:     "List stored content for moderation",
		Tags:        []string{"Activity"},
	}, func(ctx context.Context, input *ContentInput) (*ContentOutput, error) {
		items, err := catalog.Items(ctx, domain.ContentKind(input.Kind), strings.TrimSpace(input.Query))
		if err != nil {
			if errors.Is(err, activity.ErrUnknownContentKind) {
				return nil, huma.Error400BadRequest("unknown content kind")
			}
			return nil, huma.Error500InternalServerError("failed to list content", err)
		}
		if items == nil {
			items = []domain.ContentItem{}
		}

		return &ContentOutput{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-alerts",
		Method:      http.MethodGet,
		Path:        "/alerts",
		Summary:     "Pending reports and flagged content",
		Tags:        []string{"Alerts"},
	}, func(ctx context.Context, _ *struct{}) (*AlertsOutput, error) {
		f, err := alertFeed.Refresh(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to build alert feed", err)
		}
		if f.Alerts == nil {
			f.Alerts = []domain.Alert{}
		}

		return &AlertsOutput{Body: f}, nil
	})
}
