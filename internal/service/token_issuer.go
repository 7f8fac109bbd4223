package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/dom/videotube-backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenKind string

const (
	AccessTokenKind  TokenKind = "access"
	RefreshTokenKind TokenKind = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Kind     TokenKind `json:"typ"`
	Username string    `json:"username,omitempty"`
	Email    string    `json:"email,omitempty"`
	FullName string    `json:"fullName,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenIssuer signs and verifies one class of HS256 bearer token. Access and
// refresh tokens use separate issuers with their own secret and lifetime.
type TokenIssuer struct {
	kind   TokenKind
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(kind TokenKind, secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		kind:   kind,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token for user. Every token gets a fresh jti, so two tokens
// issued within the same second still differ.
func (i *TokenIssuer) Issue(user *domain.User) (string, error) {
	now := i.now()
	claims := Claims{
		Kind: i.kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	if i.kind == AccessTokenKind {
		claims.Username = user.Username
		claims.Email = user.Email
		claims.FullName = user.FullName
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify checks signature, expiry and token class. It does not consult the
// store.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != i.kind {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalidToken, i.kind, claims.Kind)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return claims, nil
}
