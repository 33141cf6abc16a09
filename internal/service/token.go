package service

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"bookmarks/internal/config"
)

// TokenTTL is how long an issued access token stays valid. There is no
// refresh or revocation mechanism; clients sign in again.
const TokenTTL = 15 * time.Minute

type TokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// UserID parses the subject claim back into the numeric user id.
func (c *TokenClaims) UserID() (uint64, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse subject claim")
	}
	return id, nil
}

// TokenSigner issues and verifies bearer tokens. Signing is a pure function
// of its inputs plus the server secret; nothing is persisted.
type TokenSigner interface {
	Sign(userID uint64, email string) (string, error)
	Parse(token string) (*TokenClaims, error)
}

type jwtSigner struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTSigner(cfg *config.Config) (TokenSigner, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret must be provided")
	}
	return &jwtSigner{
		secret: []byte(cfg.JWTSecret),
		ttl:    TokenTTL,
	}, nil
}

func (s *jwtSigner) Sign(userID uint64, email string) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
		Email: email,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return token, nil
}

func (s *jwtSigner) Parse(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parse token")
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
