package middleware

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const callerKey = "caller"

// TokenValidator resolves a bearer token to the caller it was issued for.
type TokenValidator interface {
	Authenticate(ctx context.Context, tokenString string) (*services.Caller, error)
}

// Authenticate is a Fiber middleware that attaches the caller of a valid bearer token.
// Requests without an Authorization header pass through anonymously.
func Authenticate(validator TokenValidator, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Next()
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		caller, err := validator.Authenticate(c.UserContext(), parts[1])
		if err != nil && !errors.Is(err, services.ErrUnauthorized) {
			log.Error("failed to authenticate request", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Internal server error",
			})
		}
		if err != nil {
			log.Debug("JWT validation failed", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(callerKey, caller)
		return c.Next()
	}
}

// AuthRequired rejects requests that Authenticate left anonymous.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CallerFrom(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}
		return c.Next()
	}
}

// CallerFrom returns the authenticated caller of the request, or nil.
func CallerFrom(c *fiber.Ctx) *services.Caller {
	caller, _ := c.Locals(callerKey).(*services.Caller)
	return caller
}
