package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/dtroode/identity-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

// UserRepository keeps users in process memory. The username check and the
// insert happen under one lock, so duplicates are rejected atomically.
type UserRepository struct {
	mu         sync.RWMutex
	users      map[string]model.User
	byUserName map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:      make(map[string]model.User),
		byUserName: make(map[string]string),
	}
}

func normalize(userName string) string {
	return strings.ToLower(userName)
}

func (r *UserRepository) FindByUserName(ctx context.Context, userName string) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUserName[normalize(userName)]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return r.users[id], nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalize(user.UserName)
	if _, taken := r.byUserName[key]; taken {
		return model.User{}, model.ErrConflict
	}
	if _, exists := r.users[user.ID]; exists {
		return model.User{}, model.ErrConflict
	}

	r.users[user.ID] = user
	r.byUserName[key] = user.ID
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user model.User) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return model.User{}, model.ErrNotFound
	}

	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.Email = user.Email
	if !user.UpdatedAt.IsZero() {
		stored.UpdatedAt = user.UpdatedAt
	}
	r.users[user.ID] = stored
	return stored, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[id]
	if !ok {
		return model.ErrNotFound
	}
	stored.PasswordHash = passwordHash
	r.users[id] = stored
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[id]
	if !ok {
		return model.ErrNotFound
	}
	delete(r.users, id)
	delete(r.byUserName, normalize(stored.UserName))
	return nil
}

// List returns users ordered by creation time, then id.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	r.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
