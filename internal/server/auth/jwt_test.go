package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/fitkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndValidate_Success(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("super-secret"), WithIssuer("fitkeeper"))

	tok, err := svc.Issue("alice@example.com", time.Hour)
	require.NoError(t, err)

	subject, err := svc.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)
}

func TestIssue_Claims(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewTokenService([]byte("k"), WithClock(fixedClock(now)), WithIssuer("gym"))

	tok, err := svc.Issue("bob@example.com", 30*time.Minute)
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)

	assert.Equal(t, "bob@example.com", claims.Subject)
	assert.Equal(t, "gym", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, now.Add(30*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestIssue_UniqueIDs(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("k"))
	a, err := svc.Issue("x@example.com", time.Minute)
	require.NoError(t, err)
	b, err := svc.Issue("x@example.com", time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestValidate_Expired(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenService([]byte("secret"), WithClock(fixedClock(issuedAt)))
	tok, err := issuer.Issue("u1@example.com", time.Minute)
	require.NoError(t, err)

	later := NewTokenService([]byte("secret"), WithClock(fixedClock(issuedAt.Add(2*time.Minute))))
	_, err = later.Validate(tok)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestValidate_NegativeTTLIsExpired(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("secret"))
	tok, err := svc.Issue("u1@example.com", -time.Second)
	require.NoError(t, err)

	_, err = svc.Validate(tok)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestValidate_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenService([]byte("right-secret")).Issue("u2@example.com", time.Hour)
	require.NoError(t, err)

	_, err = NewTokenService([]byte("wrong-secret")).Validate(tok)
	assert.ErrorIs(t, err, common.ErrInvalidSignature)
}

func TestValidate_TamperedPayload(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("secret"))
	tok, err := svc.Issue("member@example.com", time.Hour)
	require.NoError(t, err)

	other, err := svc.Issue("admin@example.com", time.Hour)
	require.NoError(t, err)

	// splice the payload of one token with the signature of another
	a := strings.Split(tok, ".")
	b := strings.Split(other, ".")
	forged := a[0] + "." + b[1] + "." + a[2]

	_, err = svc.Validate(forged)
	assert.ErrorIs(t, err, common.ErrInvalidSignature)
}

func TestValidate_UnexpectedAlgorithm(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	claims := jwt.RegisteredClaims{
		Subject:   "x@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	svc := NewTokenService(secret)
	for _, tok := range []string{hs512, none} {
		_, err := svc.Validate(tok)
		assert.ErrorIs(t, err, common.ErrInvalidSignature)
	}
}

func TestValidate_Malformed(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	svc := NewTokenService(secret)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(secret)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "x@example.com",
	}).SignedString(secret)
	require.NoError(t, err)

	tests := map[string]string{
		"empty":      "",
		"garbage":    "not-a-token",
		"two parts":  "abc.def",
		"no subject": noSubject,
		"no expiry":  noExpiry,
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Validate(tok)
			assert.ErrorIs(t, err, common.ErrTokenMalformed)
		})
	}
}

func TestValidate_WrongIssuer(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenService([]byte("s"), WithIssuer("other")).Issue("x@example.com", time.Hour)
	require.NoError(t, err)

	_, err = NewTokenService([]byte("s"), WithIssuer("fitkeeper")).Validate(tok)
	assert.ErrorIs(t, err, common.ErrTokenMalformed)
}
