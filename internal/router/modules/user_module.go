package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-user-service/internal/interface/http"
	"github.com/oksasatya/go-ddd-user-service/internal/interface/middleware"
)

// UserModule exposes the user routes:
// POST /users (rate limited), GET /users, GET /users/search, GET /users/:id.
type UserModule struct {
	Handler       *handlers.UserHandler
	Redis         *redis.Client
	CreatePerMin  int
	RateLimitSkip middleware.AllowFunc
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client, createPerMin int, skip middleware.AllowFunc) *UserModule {
	return &UserModule{Handler: h, Redis: rdb, CreatePerMin: createPerMin, RateLimitSkip: skip}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	createLimiter := middleware.RateLimit(m.Redis, m.CreatePerMin, time.Minute, middleware.KeyByIPAndRoute(), m.RateLimitSkip)

	users := rg.Group("/users")
	users.POST("", createLimiter, m.Handler.Create)
	users.GET("", m.Handler.List)
	users.GET("/search", m.Handler.Search)
	users.GET("/:id", m.Handler.Get)
}
