package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/identity-server/internal/model"
)

var (
	_ model.TokenIssuer    = (*JWT)(nil)
	_ model.TokenValidator = (*JWT)(nil)
)

var signingMethod = jwt.SigningMethodHS512

// Claims represents the identity claims carried by every issued token.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
	Role string `json:"role"`
}

// NewClaims is the single place token claims are assembled.
// Subject, name and role are all required.
func NewClaims(principal model.Principal, issuer, audience string, issuedAt time.Time, ttl time.Duration) (Claims, error) {
	if principal.SubjectID == "" || principal.Name == "" || principal.Role == "" {
		return Claims{}, fmt.Errorf("%w: subject, name and role are required", model.ErrInvalidClaims)
	}

	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   principal.SubjectID,
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
		Name: principal.Name,
		Role: principal.Role,
	}, nil
}

// Principal returns the identity the claims describe.
func (c Claims) Principal() model.Principal {
	return model.Principal{
		SubjectID: c.Subject,
		Name:      c.Name,
		Role:      c.Role,
	}
}

// Issue signs a token for principal that expires ttl from now.
func Issue(principal model.Principal, key []byte, issuer, audience string, ttl time.Duration) (string, error) {
	return issueAt(time.Now(), principal, key, issuer, audience, ttl)
}

func issueAt(now time.Time, principal model.Principal, key []byte, issuer, audience string, ttl time.Duration) (string, error) {
	if len(key) == 0 {
		return "", fmt.Errorf("%w: signing key is empty", model.ErrConfiguration)
	}

	claims, err := NewClaims(principal, issuer, audience, now, ttl)
	if err != nil {
		return "", err
	}

	tokenString, err := jwt.NewWithClaims(signingMethod, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// Validate verifies signature, issuer, audience and expiry and returns the
// principal carried by the token. Every failure wraps model.ErrAuthenticationFailed.
func Validate(tokenString string, key []byte, issuer, audience string) (model.Principal, error) {
	return validateAt(time.Now, tokenString, key, issuer, audience)
}

func validateAt(now func() time.Time, tokenString string, key []byte, issuer, audience string) (model.Principal, error) {
	if len(key) == 0 {
		return model.Principal{}, fmt.Errorf("%w: signing key is empty", model.ErrAuthenticationFailed)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(now),
		jwt.WithStrictDecoding(),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: failed to parse access token: %w", model.ErrAuthenticationFailed, err)
	}
	if !token.Valid {
		return model.Principal{}, fmt.Errorf("%w: access token is invalid", model.ErrAuthenticationFailed)
	}

	principal := claims.Principal()
	if principal.SubjectID == "" || principal.Name == "" || principal.Role == "" {
		return model.Principal{}, fmt.Errorf("%w: %w", model.ErrAuthenticationFailed, model.ErrInvalidClaims)
	}

	return principal, nil
}

// IsExpired reports whether err was caused by an expired token.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

// JWT issues and validates HS512 tokens with settings fixed at construction.
type JWT struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewJWT creates a token manager. An empty secret or non-positive ttl is a configuration error.
func NewJWT(secret, issuer, audience string, ttl time.Duration) (*JWT, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: jwt secret is empty", model.ErrConfiguration)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: jwt ttl must be positive", model.ErrConfiguration)
	}

	return &JWT{
		key:      []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// Issue creates a signed token for principal.
func (j *JWT) Issue(principal model.Principal) (string, error) {
	return issueAt(j.now(), principal, j.key, j.issuer, j.audience, j.ttl)
}

// Validate verifies tokenString and extracts its principal.
func (j *JWT) Validate(tokenString string) (model.Principal, error) {
	return validateAt(j.now, tokenString, j.key, j.issuer, j.audience)
}
