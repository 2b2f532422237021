package application

import (
	"context"
	"expvar"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-service/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-user-service/internal/domain/repository"
	"github.com/oksasatya/go-ddd-user-service/pkg/helpers"
	"github.com/oksasatya/go-ddd-user-service/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ddd-user-service/pkg/mailer/templates"
)

var (
	usersCreated      = expvar.NewInt("users_created")
	usersCreateFailed = expvar.NewInt("users_create_failed")
)

// UserIndexer keeps a searchable copy of users.
type UserIndexer interface {
	Index(ctx context.Context, u *entity.User) error
	Search(ctx context.Context, q string, size int) ([]*entity.User, error)
}

// JobPublisher enqueues background jobs. *helpers.RabbitPublisher satisfies it.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type Service struct {
	Repo    repo.UserRepository
	NewID   func() string
	Indexer UserIndexer  // optional
	Jobs    JobPublisher // optional
	Logger  *logrus.Logger
	AppName string
}

func NewService(repo repo.UserRepository, indexer UserIndexer, jobs JobPublisher, logger *logrus.Logger, appName string) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Service{
		Repo:    repo,
		NewID:   helpers.NewUserID,
		Indexer: indexer,
		Jobs:    jobs,
		Logger:  logger,
		AppName: appName,
	}
}

type CreateUserInput struct {
	Email string
	Name  string
}

// UserResponse is the outward shape of a user.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID(),
		Email:     u.Email(),
		Name:      u.Name(),
		CreatedAt: u.CreatedAt(),
		UpdatedAt: u.UpdatedAt(),
	}
}

// CreateUser registers a new user.
//
// The email lookup and the insert are separate statements, so two concurrent
// requests for the same email can both pass the lookup. The unique constraint
// on users.email rejects the loser, which the repository reports as a conflict.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*UserResponse, error) {
	existing, err := s.Repo.FindByEmail(ctx, in.Email)
	if err != nil {
		usersCreateFailed.Add(1)
		return nil, err
	}
	if existing != nil {
		usersCreateFailed.Add(1)
		return nil, entity.NewConflictError(entity.MsgEmailTaken)
	}

	u, err := entity.NewUser(s.NewID(), in.Email, in.Name)
	if err != nil {
		usersCreateFailed.Add(1)
		return nil, err
	}

	created, err := s.Repo.Create(ctx, u)
	if err != nil {
		usersCreateFailed.Add(1)
		s.Logger.WithError(err).WithField("user_id", u.ID()).Warn("create user failed")
		return nil, err
	}
	usersCreated.Add(1)

	s.afterCreate(ctx, created)

	resp := toResponse(created)
	return &resp, nil
}

// afterCreate runs best-effort side effects; failures are only logged.
func (s *Service) afterCreate(ctx context.Context, u *entity.User) {
	if s.Indexer != nil {
		if err := s.Indexer.Index(ctx, u); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID()).Warn("es index failed")
		}
	}
	if s.Jobs != nil {
		job := mailer.EmailJob{
			To:       u.Email(),
			Template: mailtpl.Welcome,
			Data: mailtpl.WelcomeData{
				Name:      u.Name(),
				Email:     u.Email(),
				AppName:   s.AppName,
				CreatedAt: u.CreatedAt(),
			}.ToMap(),
		}
		if err := s.Jobs.PublishJSON(ctx, job); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID()).Warn("enqueue welcome email failed")
		}
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID(), "email": u.Email()}).Info("user created")
}

// GetUser returns the user with the given id.
func (s *Service) GetUser(ctx context.Context, id string) (*UserResponse, error) {
	u, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, entity.NewNotFoundError(entity.MsgUserNotFound)
	}
	resp := toResponse(u)
	return &resp, nil
}

// ListUsers returns all users, newest first.
func (s *Service) ListUsers(ctx context.Context) ([]UserResponse, error) {
	users, err := s.Repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	return out, nil
}

// SearchUsers queries the search index. Without an index it returns no results.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]UserResponse, error) {
	if s.Indexer == nil {
		return []UserResponse{}, nil
	}
	users, err := s.Indexer.Search(ctx, q, size)
	if err != nil {
		return nil, err
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	return out, nil
}
