package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WeGap/tools/errs"
)

func testOptions() Options {
	return Options{Secret: []byte("test-secret"), Alg: "HS256", TTL: time.Hour}
}

func TestGenerateVerifyRoundTrip(t *testing.T) {
	opts := testOptions()

	token, hash, expireAt, err := Generate(opts, "user-1", []string{"chat"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, HashToken(token), hash)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expireAt, 5*time.Second)

	claims, err := Verify(opts, token, "")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, _, _, err := Generate(testOptions(), "user-1", nil)
	require.NoError(t, err)

	bad := testOptions()
	bad.Secret = []byte("other-secret")
	_, err = Verify(bad, token, "")
	assert.Error(t, err)
}

func TestVerifyRejectsHashMismatch(t *testing.T) {
	opts := testOptions()
	token, _, _, err := Generate(opts, "user-1", nil)
	require.NoError(t, err)

	_, err = Verify(opts, token, "sha256:deadbeef")
	assert.Error(t, err)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	opts := testOptions()
	token, _, _, err := Generate(opts, "user-1", nil)
	require.NoError(t, err)

	_, err = Verify(opts, token+"x", "")
	assert.Error(t, err)
}

func TestGenerateRejectsUnknownAlg(t *testing.T) {
	opts := testOptions()
	opts.Alg = "RS256"
	_, _, _, err := Generate(opts, "user-1", nil)
	assert.Error(t, err)
}

func TestTokenAuthenticator(t *testing.T) {
	opts := testOptions()
	auth := NewTokenAuthenticator(opts)
	ctx := context.Background()

	token, _, _, err := Generate(opts, "user-42", nil)
	require.NoError(t, err)

	uid, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", uid)

	_, err = auth.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	_, err = auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}
