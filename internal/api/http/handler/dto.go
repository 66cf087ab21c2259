package handler

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/dtroode/identity-server/internal/hasher"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/service"
)

// passwordLength rejects passwords bcrypt would silently truncate.
type passwordLength struct{}

func (passwordLength) Validate(value interface{}) error {
	s, _ := value.(string)
	if len(s) > hasher.MaxPasswordBytes {
		return errors.New("must be at most 72 bytes long")
	}
	return nil
}

// CreateUserRequest is the body of POST /users and POST /admins.
type CreateUserRequest struct {
	UserName  string `json:"userName"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Validate runs validation rules.
func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserName, validation.Required, validation.Length(1, 256)),
		validation.Field(&r.Password, validation.Required, passwordLength{}),
		validation.Field(&r.FirstName, validation.Required),
		validation.Field(&r.LastName, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (r CreateUserRequest) toNewUser() service.NewUser {
	return service.NewUser{
		UserName:  r.UserName,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
	}
}

// UpdateUserRequest is the body of PUT /users/:id. Only profile fields are read.
type UpdateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Validate runs validation rules.
func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required),
		validation.Field(&r.LastName, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// LoginRequest is the body of POST /users/login.
type LoginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// Validate runs validation rules.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserName, validation.Required),
		validation.Field(&r.Password, validation.Required, passwordLength{}),
	)
}

// UpdatePasswordRequest is the body of PUT /users/updatepassword/:id.
type UpdatePasswordRequest struct {
	UserName    string `json:"userName"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// Validate runs validation rules.
func (r UpdatePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserName, validation.Required),
		validation.Field(&r.OldPassword, validation.Required, passwordLength{}),
		validation.Field(&r.NewPassword, validation.Required, passwordLength{}),
	)
}

// UserResponse is the public view of a user. It never carries the password hash.
type UserResponse struct {
	ID        string `json:"id"`
	UserName  string `json:"userName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IsOwner   bool   `json:"isOwner"`
}

func newUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		UserName:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		IsOwner:   u.IsOwner,
	}
}

// IDResponse is returned after a user is created.
type IDResponse struct {
	ID string `json:"id"`
}

// TokenResponse is returned after a successful login.
type TokenResponse struct {
	Token string `json:"token"`
}

type validatable interface {
	Validate() error
}

// validate wraps rule failures as model.ValidationError.
func validate(v validatable) error {
	if err := v.Validate(); err != nil {
		return model.NewValidationError(err)
	}
	return nil
}
