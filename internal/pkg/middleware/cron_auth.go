package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/RenewalHub/RenewalHub/internal/pkg/env"
)

// CronAuthMiddleware authorizes scan-trigger requests with a shared secret
// supplied via header, query parameter, or bearer token. Any configured
// secret matches; there is no per-secret scoping. A missing configuration
// surfaces as an authorization failure, never as a crash.
func CronAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		supplied := extractCronSecret(c)
		if supplied == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "missing cron secret"})
		}

		for _, secret := range configuredCronSecrets() {
			if subtle.ConstantTimeCompare([]byte(supplied), []byte(secret)) == 1 {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "invalid cron secret"})
	}
}

func configuredCronSecrets() []string {
	var secrets []string
	for _, key := range []string{"CRON_SECRET", "CRON_SECRET_ALT"} {
		if s := strings.TrimSpace(env.GetEnv(key, "")); s != "" {
			secrets = append(secrets, s)
		}
	}
	return secrets
}

func extractCronSecret(c *fiber.Ctx) string {
	if s := strings.TrimSpace(c.Get("X-Cron-Secret")); s != "" {
		return s
	}
	if s := strings.TrimSpace(c.Query("secret")); s != "" {
		return s
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
