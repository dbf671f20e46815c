package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/ghostmode/internal/domain"
)

type ListAuditInput struct {
	Limit  int `query:"limit" minimum:"1" maximum:"500" default:"50" doc:"Max results"`
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Offset for pagination"`
}

type ListAuditByTargetInput struct {
	TargetID string `path:"targetID" minLength:"1" doc:"Target id"`
}

type ListAuditOutput struct {
	Body []*domain.AuditEntry
}

func RegisterAuditRoutes(api huma.API, audit domain.AuditRepository) {
	huma.Register(api, huma.Operation{
		OperationID: "list-audit",
		Method:      http.MethodGet,
		Path:        "/audit",
		Summary:     "List audit log entries, newest first",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *ListAuditInput) (*ListAuditOutput, error) {
		entries, err := audit.List(ctx, input.Limit, input.Offset)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list audit log", err)
		}
		if entries == nil {
			entries = []*domain.AuditEntry{}
		}
		return &ListAuditOutput{Body: entries}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-audit-by-target",
		Method:      http.MethodGet,
		Path:        "/audit/targets/{targetID}",
		Summary:     "List audit log entries for one target",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *ListAuditByTargetInput) (*ListAuditOutput, error) {
		entries, err := audit.ListByTarget(ctx, input.TargetID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list audit log", err)
		}
		if entries == nil {
			entries = []*domain.AuditEntry{}
		}
		return &ListAuditOutput{Body: entries}, nil
	})
}
