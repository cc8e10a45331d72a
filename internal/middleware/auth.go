package middleware

import (
	"strings"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/vms003/vatsal-medical/internal/auth"
	"github.com/vms003/vatsal-medical/internal/dto"
)

const (
	tokenKey     = "jwt"
	principalKey = "principal"
)

// JWTProtected rejects requests without a valid bearer token before any
// handler runs and stores the caller for CurrentUser. jwtware extracts and
// checks the signature; issuer.Verify has the final say on algorithm, expiry
// and claims.
func JWTProtected(issuer *auth.TokenIssuer) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwt.SigningMethodHS256.Alg(), Key: issuer.Secret()},
		Claims:     &auth.Claims{},
		ContextKey: tokenKey,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals(tokenKey).(*jwt.Token)
			if !ok {
				return unauthorized(c, "invalid token")
			}
			principal, err := issuer.Verify(token.Raw)
			if err != nil {
				return unauthorized(c, "invalid token")
			}
			c.Locals(principalKey, principal)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if bearerToken(c.Get(fiber.HeaderAuthorization)) == "" {
				return unauthorized(c, "missing token")
			}
			return unauthorized(c, "invalid token")
		},
	})
}

// CurrentUser returns the principal stored by JWTProtected.
func CurrentUser(c *fiber.Ctx) (auth.Principal, bool) {
	p, ok := c.Locals(principalKey).(auth.Principal)
	return p, ok
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: message})
}

// bearerToken strips an optional "Bearer " scheme from an Authorization header.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= 6 && strings.EqualFold(header[:6], "bearer") {
		header = header[6:]
	}
	return strings.TrimSpace(header)
}
