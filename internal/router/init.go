package router

import (
	"github.com/oksasatya/go-ddd-user-service/internal/container"
	handlers "github.com/oksasatya/go-ddd-user-service/internal/interface/http"
	"github.com/oksasatya/go-ddd-user-service/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-user-service/internal/router/modules"
)

// InitModules wires every feature module from the container into the registry.
func InitModules(r *Registry, c *container.Container) {
	cfg := c.Config

	handler := handlers.NewUserHandler(c.UserService(), c.Logger)

	var bypass middleware.AllowFunc
	if cfg.RateLimitBypassPrivate {
		bypass = middleware.AllowPrivateIP()
	}
	r.Add(modules.NewUserModule(handler, c.Redis, cfg.RateLimitCreatePerMin, bypass))

	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
}
