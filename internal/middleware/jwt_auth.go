package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mansoorceksport/gymcard/internal/domain"
)

// Context keys for storing admin info
const (
	AdminSubjectKey = "adminSubject"
	AdminNameKey    = "adminName"
)

const tokenIssuer = "gymcard"

// IssueAdminToken signs an HS256 admin token valid for ttl
func IssueAdminToken(secret, subject, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := domain.AdminClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyAdminToken validates the bearer token on admin routes
func VerifyAdminToken(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Missing authorization token",
			})
		}
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid authorization header format, expected 'Bearer <token>'",
			})
		}

		claims := &domain.AdminClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(jwtSecret), nil
		},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(tokenIssuer),
			jwt.WithExpirationRequired(),
		)
		if err != nil || !token.Valid || claims.Subject == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid or expired token",
			})
		}

		c.Locals(AdminSubjectKey, claims.Subject)
		c.Locals(AdminNameKey, claims.Name)
		return c.Next()
	}
}

// GetAdminSubject returns the authenticated admin, empty outside admin routes
func GetAdminSubject(c *fiber.Ctx) string {
	s, _ := c.Locals(AdminSubjectKey).(string)
	return s
}
