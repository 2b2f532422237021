package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-service/config"
	"github.com/oksasatya/go-ddd-user-service/internal/application"
	"github.com/oksasatya/go-ddd-user-service/internal/domain/repository"
)

// Container carries the components built at startup to the router.
// main owns every handle in it and releases them on shutdown; nothing here is global.
type Container struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Redis    *redis.Client // optional; nil disables rate limiting
	UserRepo repository.UserRepository
	Indexer  application.UserIndexer  // optional
	Jobs     application.JobPublisher // optional
}

// UserService builds the user service from the container's components.
func (c *Container) UserService() *application.Service {
	return application.NewService(c.UserRepo, c.Indexer, c.Jobs, c.Logger, c.Config.AppName)
}
