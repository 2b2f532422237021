// Package memory holds an in-process UserRepository used for local runs
// without Postgres and as the backing store in handler and service tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/go-ddd-user-service/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-service/internal/domain/repository"
)

var errDuplicateID = errors.New("duplicate key value violates primary key")

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*entity.User)}
}

// Len reports the number of stored users.
func (r *UserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID()]; ok {
		return nil, entity.NewStorageError("create user", errDuplicateID)
	}
	for _, existing := range r.users {
		if existing.Email() == u.Email() {
			return nil, entity.NewConflictError(entity.MsgEmailTaken)
		}
	}
	r.users[u.ID()] = u
	return u, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.users[id], nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byEmail(email), nil
}

func (r *UserRepository) byEmail(email string) *entity.User {
	for _, u := range r.users {
		if u.Email() == email {
			return u
		}
	}
	return nil
}

func (r *UserRepository) FindAll(_ context.Context) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].ID() > out[j].ID()
		}
		return out[i].CreatedAt().After(out[j].CreatedAt())
	})
	return out, nil
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.users[u.ID()]
	if !ok {
		return nil, entity.NewNotFoundError(entity.MsgUserNotFound)
	}
	if other := r.byEmail(u.Email()); other != nil && other.ID() != u.ID() {
		return nil, entity.NewConflictError(entity.MsgEmailTaken)
	}
	updated, err := entity.RestoreUser(u.ID(), u.Email(), u.Name(), current.CreatedAt(), time.Now().UTC())
	if err != nil {
		return nil, err
	}
	r.users[u.ID()] = updated
	return updated, nil
}

func (r *UserRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

func (r *UserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byEmail(email) != nil, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
