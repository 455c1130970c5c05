// Package middleware provides HTTP middleware for authentication, logging, metrics and tracing.
package middleware

import (
	"errors"
	"strconv"
	"strings"

	"karmafeed/internal/config"
	"karmafeed/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Token claims checked on every request.
const (
	TokenIssuer   = "karmafeed-api"
	TokenAudience = "karmafeed-client"
)

var errMissingBearer = errors.New("invalid authorization header format")

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization header required"))
	}

	userID, err := userIDFromHeader(authHeader)
	if err != nil {
		msg := "Invalid or expired token"
		if errors.Is(err, errMissingBearer) {
			msg = "Invalid authorization header format"
		}
		return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msg))
	}

	setUser(c, userID)
	return c.Next()
}

// OptionalAuth identifies the caller when a valid bearer token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(c *fiber.Ctx) error {
	if authHeader := c.Get("Authorization"); authHeader != "" {
		if userID, err := userIDFromHeader(authHeader); err == nil {
			setUser(c, userID)
		}
	}
	return c.Next()
}

func setUser(c *fiber.Ctx, userID uint) {
	c.Locals("userID", userID)
	c.SetUserContext(WithUserID(c.UserContext(), userID))
}

func userIDFromHeader(authHeader string) (uint, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, errMissingBearer
	}
	return ParseUserID(parts[1])
}

// ParseUserID validates a signed session token and returns its subject.
func ParseUserID(tokenString string) (uint, error) {
	if cfg == nil || cfg.JWTSecret == "" {
		return 0, errors.New("jwt secret not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return 0, errors.New("invalid or expired token")
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return 0, errors.New("token is missing a subject")
	}

	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return 0, errors.New("invalid user ID in token")
	}

	return uint(userID), nil
}
