package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/service"
)

type userServiceMock struct {
	mock.Mock
}

func newUserServiceMock(t *testing.T) *userServiceMock {
	m := &userServiceMock{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *userServiceMock) Create(ctx context.Context, input service.NewUser) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *userServiceMock) CreateAdmin(ctx context.Context, input service.NewUser, adminKey string) (string, error) {
	args := m.Called(ctx, input, adminKey)
	return args.String(0), args.Error(1)
}

func (m *userServiceMock) Get(ctx context.Context, id string) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *userServiceMock) Update(ctx context.Context, id string, profile service.Profile) (model.User, error) {
	args := m.Called(ctx, id, profile)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *userServiceMock) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *userServiceMock) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

type authServiceMock struct {
	mock.Mock
}

func newAuthServiceMock(t *testing.T) *authServiceMock {
	m := &authServiceMock{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *authServiceMock) Login(ctx context.Context, userName, password string) (string, error) {
	args := m.Called(ctx, userName, password)
	return args.String(0), args.Error(1)
}

func (m *authServiceMock) UpdatePassword(ctx context.Context, userName, oldPassword, newPassword string) error {
	return m.Called(ctx, userName, oldPassword, newPassword).Error(0)
}

type pingerStub struct{ err error }

func (p pingerStub) Ping(context.Context) error { return p.err }
