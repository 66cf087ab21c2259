package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/identity-server/internal/mocks"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/testutil"
)

var storedAlice = model.User{
	ID:           "42",
	UserName:     "alice",
	PasswordHash: "hash-of-secret",
	Role:         model.RoleAdmin,
	IsOwner:      true,
}

type authDeps struct {
	store  *mocks.UserStore
	hasher *mocks.PasswordHasher
	issuer *mocks.TokenIssuer
}

func newTestAuth(t *testing.T) (*Auth, authDeps) {
	t.Helper()
	d := authDeps{
		store:  mocks.NewUserStore(t),
		hasher: mocks.NewPasswordHasher(t),
		issuer: mocks.NewTokenIssuer(t),
	}
	return NewAuth(d.store, d.hasher, d.issuer, testutil.MakeNoopLogger()), d
}

func TestAuth_Login_Success(t *testing.T) {
	t.Parallel()
	a, d := newTestAuth(t)

	d.store.On("FindByUserName", mock.Anything, "ALICE").Return(storedAlice, nil)
	d.hasher.On("Verify", "secret", "hash-of-secret").Return(true)
	d.issuer.On("Issue", model.Principal{SubjectID: "42", Name: "alice", Role: model.RoleAdmin}).Return("signed.token.value", nil)

	token, err := a.Login(context.Background(), "ALICE", "secret")
	require.NoError(t, err)
	assert.Equal(t, "signed.token.value", token)
}

func TestAuth_Login_SameFailureForGhostAndWrongPassword(t *testing.T) {
	t.Parallel()
	a, d := newTestAuth(t)

	d.store.On("FindByUserName", mock.Anything, "ghost").Return(model.User{}, model.ErrNotFound)
	d.store.On("FindByUserName", mock.Anything, "alice").Return(storedAlice, nil)
	d.hasher.On("Hash", dummyPassword).Return("dummy-hash", nil).Once()
	d.hasher.On("Verify", "anything", "dummy-hash").Return(false)
	d.hasher.On("Verify", "wrongpassword", "hash-of-secret").Return(false)

	_, ghostErr := a.Login(context.Background(), "ghost", "anything")
	_, wrongErr := a.Login(context.Background(), "alice", "wrongpassword")

	require.ErrorIs(t, ghostErr, model.ErrAuthenticationFailed)
	require.ErrorIs(t, wrongErr, model.ErrAuthenticationFailed)
	assert.Equal(t, ghostErr.Error(), wrongErr.Error())
	d.issuer.AssertNotCalled(t, "Issue", mock.Anything)
}

func TestAuth_Login_DummyHashPreparedOnce(t *testing.T) {
	t.Parallel()
	a, d := newTestAuth(t)

	d.store.On("FindByUserName", mock.Anything, "ghost").Return(model.User{}, model.ErrNotFound)
	d.hasher.On("Hash", dummyPassword).Return("dummy-hash", nil).Once()
	d.hasher.On("Verify", "x", "dummy-hash").Return(false).Twice()

	for i := 0; i < 2; i++ {
		_, err := a.Login(context.Background(), "ghost", "x")
		require.ErrorIs(t, err, model.ErrAuthenticationFailed)
	}
}

func TestAuth_Login_StoreError(t *testing.T) {
	t.Parallel()
	a, d := newTestAuth(t)

	d.store.On("FindByUserName", mock.Anything, "alice").Return(model.User{}, errors.New("db down"))

	_, err := a.Login(context.Background(), "alice", "secret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrAuthenticationFailed)
	assert.Contains(t, err.Error(), "failed to get user by username")
}

func TestAuth_Login_IssuerError(t *testing.T) {
	t.Parallel()
	a, d := newTestAuth(t)

	d.store.On("FindByUserName", mock.Anything, "alice").Return(storedAlice, nil)
	d.hasher.On("Verify", "secret", "hash-of-secret").Return(true)
	d.issuer.On("Issue", mock.Anything).Return("", model.ErrInvalidClaims)

	_, err := a.Login(context.Background(), "alice", "secret")
	require.ErrorIs(t, err, model.ErrInvalidClaims)
}

func TestAuth_UpdatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(d authDeps)
		oldPw   string
		newPw   string
		wantErr error
		noWrite bool
	}{
		{
			name:  "success",
			oldPw: "secret",
			newPw: "new-secret",
			setup: func(d authDeps) {
				d.store.On("FindByUserName", mock.Anything, "alice").Return(storedAlice, nil)
				d.hasher.On("Verify", "secret", "hash-of-secret").Return(true)
				d.hasher.On("Hash", "new-secret").Return("hash-of-new", nil)
				d.store.On("UpdatePassword", mock.Anything, "42", "hash-of-new").Return(nil)
			},
		},
		{
			name:    "wrong old password writes nothing",
			oldPw:   "wrong",
			newPw:   "new-secret",
			wantErr: model.ErrAuthenticationFailed,
			noWrite: true,
			setup: func(d authDeps) {
				d.store.On("FindByUserName", mock.Anything, "alice").Return(storedAlice, nil)
				d.hasher.On("Verify", "wrong", "hash-of-secret").Return(false)
			},
		},
		{
			name:    "empty new password",
			oldPw:   "secret",
			newPw:   "",
			wantErr: &model.ValidationError{},
			noWrite: true,
			setup: func(d authDeps) {
				d.store.On("FindByUserName", mock.Anything, "alice").Return(storedAlice, nil)
				d.hasher.On("Verify", "secret", "hash-of-secret").Return(true)
			},
		},
		{
			name:    "store failure",
			oldPw:   "secret",
			newPw:   "new-secret",
			wantErr: errStoreDown,
			setup: func(d authDeps) {
				d.store.On("FindByUserName", mock.Anything, "alice").Return(storedAlice, nil)
				d.hasher.On("Verify", "secret", "hash-of-secret").Return(true)
				d.hasher.On("Hash", "new-secret").Return("hash-of-new", nil)
				d.store.On("UpdatePassword", mock.Anything, "42", "hash-of-new").Return(errStoreDown)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, d := newTestAuth(t)
			tt.setup(d)

			err := a.UpdatePassword(context.Background(), "alice", tt.oldPw, tt.newPw)

			switch want := tt.wantErr.(type) {
			case nil:
				require.NoError(t, err)
			case *model.ValidationError:
				require.ErrorAs(t, err, &want)
			default:
				require.ErrorIs(t, err, tt.wantErr)
			}
			if tt.noWrite {
				d.store.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

var errStoreDown = errors.New("store down")
