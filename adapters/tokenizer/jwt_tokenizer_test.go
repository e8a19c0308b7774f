package tokenizer

import (
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vu-thanh-do/blockchain-todu/core"
)

func newTestTokenizer(t *testing.T, ttl time.Duration) *JWTTokenizer {
	t.Helper()
	key, err := GenerateSigningKey()
	require.NoError(t, err)
	return NewJWTTokenizer(key, ttl)
}

func TestIssueAndValidate(t *testing.T) {
	tok := newTestTokenizer(t, 0)

	session, err := tok.Issue("principal-1")
	require.NoError(t, err)
	assert.Equal(t, "principal-1", session.PrincipalID)
	assert.Equal(t, DefaultTTL, session.ExpiresAt.Sub(session.IssuedAt))

	id, err := tok.Validate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "principal-1", id)
}

func TestValidateExpired(t *testing.T) {
	tok := newTestTokenizer(t, time.Hour)
	issued := time.Now().Add(-2 * time.Hour)
	tok.now = func() time.Time { return issued }

	session, err := tok.Issue("principal-1")
	require.NoError(t, err)

	tok.now = time.Now
	_, err = tok.Validate(session.Token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestValidateRejectsForeignKey(t *testing.T) {
	issuer := newTestTokenizer(t, 0)
	verifier := newTestTokenizer(t, 0)

	session, err := issuer.Issue("principal-1")
	require.NoError(t, err)

	_, err = verifier.Validate(session.Token)
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	tok := newTestTokenizer(t, 0)
	session, err := tok.Issue("principal-1")
	require.NoError(t, err)

	parts := strings.Split(session.Token, ".")
	require.Len(t, parts, 3)
	forged, err := tok.Issue("principal-2")
	require.NoError(t, err)
	// swap in the payload of another token while keeping the original signature
	parts[1] = strings.Split(forged.Token, ".")[1]

	_, err = tok.Validate(strings.Join(parts, "."))
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestValidateRejectsWrongAudienceAndAlgorithm(t *testing.T) {
	tok := newTestTokenizer(t, 0)

	wrongAud := jwt.NewWithClaims(jwt.SigningMethodES256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "principal-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Audience:  jwt.ClaimStrings{"session:refresh"},
		},
	})
	signed, err := wrongAud.SignedString(tok.signKey)
	require.NoError(t, err)
	_, err = tok.Validate(signed)
	assert.ErrorIs(t, err, core.ErrInvalidToken)

	hmac := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "principal-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Audience:  jwt.ClaimStrings{AudienceAccess},
		},
	})
	signed, err = hmac.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tok.Validate(signed)
	assert.ErrorIs(t, err, core.ErrInvalidToken)

	_, err = tok.Validate("not-a-token")
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestLoadSigningKey(t *testing.T) {
	key, err := GenerateSigningKey()
	require.NoError(t, err)

	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "session.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}), 0o600))

	loaded, err := LoadSigningKey(path)
	require.NoError(t, err)
	assert.True(t, key.Equal(loaded))

	_, err = LoadSigningKey(filepath.Join(t.TempDir(), "missing.pem"))
	assert.Error(t, err)
}
