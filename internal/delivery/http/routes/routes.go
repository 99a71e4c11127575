package routes

import (
	"talenthub/internal/delivery/http/handler"
	v1 "talenthub/internal/delivery/http/routes/v1"
	"talenthub/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health *handler.HealthHandler
	ws     *ws.Handler
	api    v1.Handlers
	guards handler.Guards
}

func NewRegistry(health *handler.HealthHandler, wsHandler *ws.Handler, api v1.Handlers, guards handler.Guards) *Registry {
	return &Registry{health: health, ws: wsHandler, api: api, guards: guards}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerRealtime(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	r.health.RegisterRoutes(app)
}

func (r *Registry) registerRealtime(app *fiber.App) {
	if r.ws != nil {
		r.ws.RegisterRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	v1.Register(api.Group("/v1"), r.api, r.guards)
}
