package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"retailforecast/database"
	"retailforecast/models"
	"retailforecast/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// UserFinder looks up the account used for a login attempt.
type UserFinder interface {
	FindForLogin(ctx context.Context, email, role string) (models.User, string, error)
}

// AuthHandler issues JWTs for the reporting API.
type AuthHandler struct {
	Users  UserFinder
	Secret []byte
	Now    func() time.Time
}

func NewAuthHandler(users UserFinder, secret string) *AuthHandler {
	return &AuthHandler{Users: users, Secret: []byte(secret), Now: time.Now}
}

// HandleLogin authenticates a user and returns a JWT token.
// POST /api/v1/auth/login
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "email and password are required"})
	}

	role, ok := utils.ValidateAndNormalizeRole(req.UserType)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid user type"})
	}

	user, passwordHash, err := h.Users.FindForLogin(c.UserContext(), req.Email, role)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Invalid credentials or user role"})
		}
		log.Printf("Database error during login for email %s: %v", req.Email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Database error"})
	}

	if !user.IsActive {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "User account is inactive"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Invalid credentials"})
	}

	token, err := h.createJWT(user.ID, user.Role)
	if err != nil {
		log.Printf("Error creating JWT for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Could not sign token"})
	}

	return c.JSON(fiber.Map{"success": true, "accessToken": token, "user": user})
}

func (h *AuthHandler) createJWT(userID, role string) (string, error) {
	now := h.Now()
	claims := models.JwtClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			Subject:   userID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.Secret)
}
