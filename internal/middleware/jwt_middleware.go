package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"productapi/internal/services"

	"github.com/gofiber/fiber/v2"
)

var (
	errMissingAuthorization   = errors.New("Authorization header is required")
	errMalformedAuthorization = errors.New("Authorization header format must be 'Bearer <token>'")
)

// AuthRequired rejects requests without a valid bearer JWT. On success the
// user's ID is stored in Locals and in the user context, where services pick it
// up for spans and events.
func AuthRequired(authService *services.AuthService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": err.Error(),
			})
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			logger.WarnContext(c.UserContext(), "JWT validation failed", slog.String("error", err.Error()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		userID, _ := claims["user_id"].(string)
		username, _ := claims["username"].(string)
		c.Locals("user_id", userID)
		c.Locals("username", username)
		c.SetUserContext(services.ContextWithUserID(c.UserContext(), userID))
		return c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingAuthorization
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || token == "" {
		return "", errMalformedAuthorization
	}
	return token, nil
}
