package hasher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/identity-server/internal/model"
)

func newTestHasher(t *testing.T) *Bcrypt {
	t.Helper()
	h, err := NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestNewBcrypt_CostRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cost    int
		wantErr bool
	}{
		{name: "min cost", cost: bcrypt.MinCost},
		{name: "default cost", cost: bcrypt.DefaultCost},
		{name: "below min", cost: bcrypt.MinCost - 1, wantErr: true},
		{name: "above max", cost: bcrypt.MaxCost + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, err := NewBcrypt(tt.cost)
			if tt.wantErr {
				require.ErrorIs(t, err, model.ErrConfiguration)
				assert.Nil(t, h)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cost, h.cost)
		})
	}
}

func TestBcrypt_RoundTrip(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	for _, p := range []string{"a", "correct horse battery staple", "пароль", strings.Repeat("x", MaxPasswordBytes)} {
		hash, err := h.Hash(p)
		require.NoError(t, err)
		assert.NotEqual(t, p, hash)
		assert.True(t, h.Verify(p, hash), "plaintext %q should verify", p)
	}
}

func TestBcrypt_DifferentPlaintextFails(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	hash, err := h.Hash("alice-secret")
	require.NoError(t, err)

	assert.False(t, h.Verify("alice-secreT", hash))
	assert.False(t, h.Verify("bob-secret", hash))
}

func TestBcrypt_SaltedHashesDiffer(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	first, err := h.Hash("same")
	require.NoError(t, err)
	second, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("same", first))
	assert.True(t, h.Verify("same", second))
}

func TestBcrypt_VerifyIsTotal(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	valid, err := h.Hash("secret")
	require.NoError(t, err)
	longest := strings.Repeat("a", MaxPasswordBytes)
	longestHash, err := h.Hash(longest)
	require.NoError(t, err)
	require.True(t, h.Verify(longest, longestHash))

	tests := []struct {
		name      string
		plaintext string
		hash      string
	}{
		{name: "empty plaintext", plaintext: "", hash: valid},
		{name: "empty hash", plaintext: "secret", hash: ""},
		{name: "both empty", plaintext: "", hash: ""},
		{name: "malformed hash", plaintext: "secret", hash: "not-a-bcrypt-hash"},
		{name: "truncated hash", plaintext: "secret", hash: valid[:20]},
		{name: "plaintext as hash", plaintext: "secret", hash: "secret"},
		{name: "longer than bcrypt input with matching prefix", plaintext: longest + "EXTRA", hash: longestHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.NotPanics(t, func() {
				assert.False(t, h.Verify(tt.plaintext, tt.hash))
			})
		})
	}
}

func TestBcrypt_HashTooLong(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	_, err := h.Hash(strings.Repeat("x", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestBcrypt_HashUsesConfiguredCost(t *testing.T) {
	t.Parallel()
	h, err := NewBcrypt(5)
	require.NoError(t, err)

	hash, err := h.Hash("secret")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 5, cost)
}
