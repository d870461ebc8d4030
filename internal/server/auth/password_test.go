package auth

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/fitkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var testParams = Argon2Params{Memory: 8, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32}

func TestHash_Format(t *testing.T) {
	h := NewPasswordHasher(testParams)

	digest, err := h.Hash("hunter22")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=8,t=1,p=1$"), digest)
	assert.Len(t, strings.Split(digest, "$"), 6)
}

func TestHash_SaltIsRandom(t *testing.T) {
	h := NewPasswordHasher(testParams)

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same-password", a))
	assert.True(t, h.Verify("same-password", b))
}

func TestHash_EmptyPassword(t *testing.T) {
	_, err := NewPasswordHasher(testParams).Hash("")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestVerify_UsesDigestParameters(t *testing.T) {
	old := NewPasswordHasher(testParams)
	digest, err := old.Hash("secret1")
	require.NoError(t, err)

	stronger := NewPasswordHasher(Argon2Params{Memory: 16, Time: 2, Threads: 2, SaltLen: 16, KeyLen: 32})
	assert.True(t, stronger.Verify("secret1", digest))
}

func TestVerify_Malformed(t *testing.T) {
	h := NewPasswordHasher(testParams)
	good, err := h.Hash("secret1")
	require.NoError(t, err)
	parts := strings.Split(good, "$")

	tests := map[string]string{
		"empty":         "",
		"plain text":    "secret1",
		"bcrypt":        "$2a$10$abcdefghijklmnopqrstuv",
		"wrong variant": strings.Replace(good, "argon2id", "argon2i", 1),
		"wrong version": strings.Replace(good, "v=19", "v=16", 1),
		"bad params":    "$argon2id$v=19$m=x,t=1,p=1$" + parts[4] + "$" + parts[5],
		"zero memory":   "$argon2id$v=19$m=0,t=1,p=1$" + parts[4] + "$" + parts[5],
		"bad salt":      "$argon2id$v=19$m=8,t=1,p=1$!!!$" + parts[5],
		"empty key":     "$argon2id$v=19$m=8,t=1,p=1$" + parts[4] + "$",
	}
	for name, digest := range tests {
		t.Run(name, func(t *testing.T) {
			assert.False(t, h.Verify("secret1", digest))
		})
	}
}

func TestHashVerify_RoundTripProperty(t *testing.T) {
	h := NewPasswordHasher(testParams)

	rapid.Check(t, func(t *rapid.T) {
		password := rapid.StringN(1, 64, -1).Draw(t, "password")
		other := rapid.StringN(1, 64, -1).Draw(t, "other")

		digest, err := h.Hash(password)
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		if !h.Verify(password, digest) {
			t.Fatalf("password does not verify against its own digest")
		}
		if other != password && h.Verify(other, digest) {
			t.Fatalf("different password %q verified against digest of %q", other, password)
		}
	})
}
