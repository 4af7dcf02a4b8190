package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Claims is what JWTMiddleware leaves in the request locals.
type Claims struct {
	UserID string
	Role   string
}

// MerchantRequired rejects requests whose token does not carry the 'merchant' role.
var MerchantRequired = CheckRole("merchant")

// ExtractClaims reads the identity stored by JWTMiddleware.
func ExtractClaims(c *fiber.Ctx) (*Claims, error) {
	userID, ok := c.Locals("userID").(string)
	if !ok || userID == "" {
		return nil, errors.New("missing user id in request context")
	}
	role, _ := c.Locals("userRole").(string)
	return &Claims{UserID: userID, Role: role}, nil
}
