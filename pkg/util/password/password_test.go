package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iequus/iequus_backend/config"
)

// small params keep the suite fast
func testHasher() *Hasher {
	return NewHasher(Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
}

func TestHash_Format(t *testing.T) {
	hash, err := testHasher().Hash("correcthorsebatterystaple")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v="))
	assert.Len(t, strings.Split(hash, "$"), 6)
}

func TestHash_UniqueSalt(t *testing.T) {
	h := testHasher()
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerify(t *testing.T) {
	h := testHasher()
	argonHash, err := h.Hash("mysecretpassword")
	require.NoError(t, err)

	legacy, err := bcrypt.GenerateFromPassword([]byte("mysecretpassword"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name     string
		hash     string
		password string
		wantErr  error
	}{
		{"argon2id match", argonHash, "mysecretpassword", nil},
		{"argon2id mismatch", argonHash, "wrongpassword", ErrMismatch},
		{"bcrypt match", string(legacy), "mysecretpassword", nil},
		{"bcrypt mismatch", string(legacy), "wrongpassword", ErrMismatch},
		{"garbage hash", "notahash", "mysecretpassword", ErrInvalidHash},
		{"wrong algorithm", "$argon2i$v=19$m=1,t=1,p=1$YQ$YQ", "x", ErrInvalidHash},
		{"wrong version", "$argon2id$v=18$m=1024,t=1,p=1$YWJjZGVmZ2hpamtsbW5vcA$YQ", "x", ErrIncompatibleVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Verify(tt.hash, tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNeedsRehash(t *testing.T) {
	h := testHasher()
	current, err := h.Hash("pw")
	require.NoError(t, err)

	other, err := NewHasher(DefaultParams()).Hash("pw")
	require.NoError(t, err)

	assert.False(t, h.NeedsRehash(current))
	assert.True(t, h.NeedsRehash(other))
	assert.True(t, h.NeedsRehash("$2a$10$abcdefghijklmnopqrstuv"))
	assert.True(t, h.NeedsRehash("junk"))
}

func TestFromCentralConfig(t *testing.T) {
	p := FromCentralConfig(config.PasswordConfig{})
	assert.Equal(t, DefaultParams(), p)

	low := FromCentralConfig(config.PasswordConfig{LowMemoryMode: true})
	assert.Equal(t, uint32(32*1024), low.Memory)
	assert.Equal(t, uint32(4), low.Iterations)
}

func TestPolicyCheck(t *testing.T) {
	policy := Policy{MinLength: 8, MinScore: 2}

	tests := []struct {
		name     string
		password string
		inputs   []string
		wantErr  error
	}{
		{"too short", "a1!b", nil, ErrTooShort},
		{"common password", "password", nil, ErrTooWeak},
		{"repeated chars", "aaaaaaaaaa", nil, ErrTooWeak},
		{"strong passphrase", "cavalo-trote-azul-1987", nil, nil},
		{"name only", "mariasilva", []string{"mariasilva"}, ErrTooWeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Check(tt.password, tt.inputs...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
