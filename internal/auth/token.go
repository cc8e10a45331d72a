package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrUnauthorized = errors.New("unauthorized")

// Claims is the token payload: {id, email, exp, iat}.
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller handed to handlers.
type Principal struct {
	UserID int64
	Email  string
}

type TokenIssuer struct {
	secret []byte
	expiry time.Duration
}

func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), expiry: expiry}
}

func (t *TokenIssuer) Secret() []byte { return t.secret }

// Issue signs an HS256 token for the user that expires after the configured expiry.
func (t *TokenIssuer) Issue(userID int64, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a raw token string.
func (t *TokenIssuer) Verify(raw string) (Principal, error) {
	if raw == "" {
		return Principal{}, ErrUnauthorized
	}
	token, err := jwt.ParseWithClaims(raw, &Claims{}, t.keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return PrincipalFromToken(token)
}

func (t *TokenIssuer) keyfunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	return t.secret, nil
}

// PrincipalFromToken extracts the caller from an already validated token.
func PrincipalFromToken(token *jwt.Token) (Principal, error) {
	if token == nil || !token.Valid {
		return Principal{}, ErrUnauthorized
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID <= 0 || claims.ExpiresAt == nil {
		return Principal{}, ErrUnauthorized
	}
	return Principal{UserID: claims.UserID, Email: claims.Email}, nil
}
