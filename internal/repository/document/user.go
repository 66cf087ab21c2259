// Package document stores each user as a JSON document in object storage,
// keyed by id, with a secondary object per lower-cased username.
package document

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/dtroode/identity-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const (
	usersPrefix     = "users/"
	userNamesPrefix = "usernames/"
	documentSuffix  = ".json"
)

type userDocument struct {
	ID           string    `json:"id"`
	UserName     string    `json:"userName"`
	PasswordHash string    `json:"passwordHash"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	IsOwner      bool      `json:"isOwner"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toDocument(u model.User) userDocument {
	return userDocument(u)
}

func (d userDocument) toModel() model.User {
	return model.User(d)
}

func userKey(id string) string {
	return usersPrefix + url.PathEscape(id) + documentSuffix
}

func userNameKey(userName string) string {
	return userNamesPrefix + url.PathEscape(strings.ToLower(userName))
}

// UserRepository keeps users in object storage.
// Create checks the username index and then writes, which is not atomic:
// two concurrent creates of the same username can both succeed.
type UserRepository struct {
	storage model.Storage
	now     func() time.Time
}

func NewUserRepository(storage model.Storage) *UserRepository {
	return &UserRepository{storage: storage, now: time.Now}
}

func (r *UserRepository) FindByUserName(ctx context.Context, userName string) (model.User, error) {
	id, err := r.read(ctx, userNameKey(userName))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	return r.FindByID(ctx, string(id))
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	return r.load(ctx, userKey(id))
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	taken, err := r.storage.Exists(ctx, userNameKey(user.UserName))
	if err != nil {
		return model.User{}, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return model.User{}, model.ErrConflict
	}

	exists, err := r.storage.Exists(ctx, userKey(user.ID))
	if err != nil {
		return model.User{}, fmt.Errorf("failed to check user id: %w", err)
	}
	if exists {
		return model.User{}, model.ErrConflict
	}

	// The index claims the username; it is removed again if the document cannot be written.
	nameKey := userNameKey(user.UserName)
	if err := r.storage.Upload(ctx, nameKey, strings.NewReader(user.ID)); err != nil {
		return model.User{}, fmt.Errorf("failed to index username: %w", err)
	}
	if err := r.save(ctx, user); err != nil {
		if delErr := r.storage.Delete(ctx, nameKey); delErr != nil {
			return model.User{}, fmt.Errorf("failed to create user: %w", errors.Join(err, delErr))
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user model.User) (model.User, error) {
	stored, err := r.FindByID(ctx, user.ID)
	if err != nil {
		return model.User{}, err
	}

	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.Email = user.Email
	stored.UpdatedAt = r.now().UTC()

	if err := r.save(ctx, stored); err != nil {
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	return stored, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	stored, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}

	stored.PasswordHash = passwordHash
	stored.UpdatedAt = r.now().UTC()

	if err := r.save(ctx, stored); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	stored, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.storage.Delete(ctx, userNameKey(stored.UserName)); err != nil {
		return fmt.Errorf("failed to delete username index: %w", err)
	}
	if err := r.storage.Delete(ctx, userKey(id)); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	keys, err := r.storage.List(ctx, usersPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]model.User, 0, len(keys))
	for _, key := range keys {
		if !strings.HasSuffix(key, documentSuffix) {
			continue
		}
		user, err := r.load(ctx, key)
		if err != nil {
			// deleted between listing and loading
			if errors.Is(err, model.ErrNotFound) {
				continue
			}
			return nil, err
		}
		users = append(users, user)
	}

	return users, nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.storage.Ping(ctx)
}

func (r *UserRepository) load(ctx context.Context, key string) (model.User, error) {
	data, err := r.read(ctx, key)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	var doc userDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.User{}, fmt.Errorf("failed to decode user document %s: %w", key, err)
	}
	return doc.toModel(), nil
}

func (r *UserRepository) read(ctx context.Context, key string) ([]byte, error) {
	rc, err := r.storage.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

func (r *UserRepository) save(ctx context.Context, user model.User) error {
	data, err := json.Marshal(toDocument(user))
	if err != nil {
		return fmt.Errorf("failed to encode user document: %w", err)
	}
	return r.storage.Upload(ctx, userKey(user.ID), bytes.NewReader(data))
}
