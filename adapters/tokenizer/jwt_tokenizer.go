package tokenizer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vu-thanh-do/blockchain-todu/core"
)

const AudienceAccess = "session:access"

// DefaultTTL is how long a session token stays valid
const DefaultTTL = 7 * 24 * time.Hour

// JWTTokenizer implements the Tokenizer interface using ES256 signed JWTs
type JWTTokenizer struct {
	signKey *ecdsa.PrivateKey
	ttl     time.Duration
	now     func() time.Time
}

// NewJWTTokenizer creates a new JWT tokenizer. A non-positive ttl falls back to DefaultTTL.
func NewJWTTokenizer(signKey *ecdsa.PrivateKey, ttl time.Duration) *JWTTokenizer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &JWTTokenizer{signKey: signKey, ttl: ttl, now: time.Now}
}

// LoadSigningKey reads a PEM encoded EC private key from path
func LoadSigningKey(path string) (*ecdsa.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key: %w", err)
	}

	key, err := jwt.ParseECPrivateKeyFromPEM(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing key: %w", err)
	}

	return key, nil
}

// GenerateSigningKey creates an ephemeral P-256 key. Tokens signed with it do not survive a restart.
func GenerateSigningKey() (*ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	return key, nil
}

// Issue signs a session token for the principal
func (j *JWTTokenizer) Issue(principalID string) (core.Session, error) {
	issuedAt := j.now()
	expiresAt := issuedAt.Add(j.ttl)

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Audience:  jwt.ClaimStrings{AudienceAccess},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)

	signedToken, err := token.SignedString(j.signKey)
	if err != nil {
		return core.Session{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return core.Session{
		Token:       signedToken,
		PrincipalID: principalID,
		IssuedAt:    issuedAt,
		ExpiresAt:   expiresAt,
	}, nil
}

// Validate checks signature, audience and expiry and returns the principal ID.
// It does not look at the principal's status.
func (j *JWTTokenizer) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &j.signKey.PublicKey, nil
	}, jwt.WithAudience(AudienceAccess), jwt.WithTimeFunc(j.now), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", core.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}

	// Validate token
	if !token.Valid {
		return "", core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.Subject == "" {
		return "", core.ErrInvalidToken
	}

	return claims.Subject, nil
}
