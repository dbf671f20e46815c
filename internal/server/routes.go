package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/ghostmode/internal/api/v1"
	"github.com/gosuda/ghostmode/internal/api/ws"
)

func registerAuthRoutes(api huma.API, d Deps) {
	v1.RegisterAuthRoutes(api, d.Auth)
}

func registerAPIRoutes(api huma.API, d Deps) {
	v1.RegisterSessionRoutes(api, d.Auth, d.Surveillance)
	v1.RegisterAdminRoutes(api, d.Auth)
	v1.RegisterFeedRoutes(api, d.Feed, d.Catalog, d.Alerts)
	v1.RegisterModerationRoutes(api, d.Auth, d.Resolver, d.Dispatcher)
	v1.RegisterAuditRoutes(api, d.Audit)
	v1.RegisterSurveillanceRoutes(api, d.Auth, d.Resolver, d.Surveillance)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/activity", hub.ServeActivity)
}
