package serverutils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, method jwt.SigningMethod, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(method, jwt.MapClaims{
		"user_id": "4f2c8a1e-7b7d-4f6a-9b0e-2f1a3c5d7e9f",
		"role":    "user",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token failed: %v", err)
	}
	return signed
}

func jwtTestStatus(t *testing.T, authHeader string) int {
	t.Helper()
	app := fiber.New()
	app.Get("/me", JwtMiddleware, func(ctx *fiber.Ctx) error {
		return ctx.SendString("ok")
	})

	req := httptest.NewRequest("GET", "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestJwtMiddlewareAcceptsValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token := signToken(t, jwt.SigningMethodHS256, "test-secret")
	if status := jwtTestStatus(t, "Bearer "+token); status != fiber.StatusOK {
		t.Errorf("status = %d, want 200 for a valid HS256 token", status)
	}
}

func TestJwtMiddlewareRejectsWrongSigningMethod(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	// Correct secret, but not the pinned HMAC variant.
	token := signToken(t, jwt.SigningMethodHS384, "test-secret")
	if status := jwtTestStatus(t, "Bearer "+token); status != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for a non-HS256 token", status)
	}
}

func TestJwtMiddlewareRejectsBadSecretAndMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token := signToken(t, jwt.SigningMethodHS256, "other-secret")
	if status := jwtTestStatus(t, "Bearer "+token); status != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for a token signed with the wrong secret", status)
	}
	if status := jwtTestStatus(t, ""); status != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401 when the header is missing", status)
	}
}
