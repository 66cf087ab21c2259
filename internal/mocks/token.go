package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/identity-server/internal/model"
)

// TokenIssuer is a testify mock of model.TokenIssuer.
type TokenIssuer struct {
	mock.Mock
}

func NewTokenIssuer(t interface {
	mock.TestingT
	Cleanup(func())
}) *TokenIssuer {
	m := &TokenIssuer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *TokenIssuer) Issue(principal model.Principal) (string, error) {
	args := m.Called(principal)
	return args.String(0), args.Error(1)
}

// TokenValidator is a testify mock of model.TokenValidator.
type TokenValidator struct {
	mock.Mock
}

func NewTokenValidator(t interface {
	mock.TestingT
	Cleanup(func())
}) *TokenValidator {
	m := &TokenValidator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *TokenValidator) Validate(token string) (model.Principal, error) {
	args := m.Called(token)
	return args.Get(0).(model.Principal), args.Error(1)
}
