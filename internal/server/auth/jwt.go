package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Token verification failure classes. Each wraps common.ErrUnauthenticated so
// the transport layer can treat them alike while logs keep the detail.
var (
	ErrInvalidSignature = fmt.Errorf("%w: invalid signature", common.ErrUnauthenticated)
	ErrTokenExpired     = fmt.Errorf("%w: token expired", common.ErrUnauthenticated)
	ErrMalformedToken   = fmt.Errorf("%w: malformed token", common.ErrUnauthenticated)
	ErrMissingSubject   = fmt.Errorf("%w: missing subject", common.ErrUnauthenticated)
)

// Claims carries the registered claims of an access token. Subject is the
// normalized account email.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens with a server secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer builds an issuer with the default token lifetime ttl.
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	i.now = now
	return i
}

// TTL returns the default token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token for email using the default lifetime.
func (i *TokenIssuer) Issue(email string) (string, error) {
	return i.IssueWithTTL(email, i.ttl)
}

// IssueWithTTL signs a token for email that expires ttl from now.
func (i *TokenIssuer) IssueWithTTL(email string, ttl time.Duration) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the claims.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		// Header and claims decoded, so only the signature segment was unreadable.
		if errors.Is(err, jwt.ErrTokenMalformed) && token != nil && token.Method != nil {
			return nil, ErrInvalidSignature
		}
		return nil, classify(err)
	}

	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}

	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrMalformedToken
	}
}
