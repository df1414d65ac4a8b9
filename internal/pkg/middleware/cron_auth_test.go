package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RenewalHub/RenewalHub/internal/pkg/env"
)

func newAuthTestApp() *fiber.App {
	app := fiber.New()
	app.Get("/cron", CronAuthMiddleware(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func TestCronAuth(t *testing.T) {
	env.Env = map[string]string{"CRON_SECRET": "s3cret", "CRON_SECRET_ALT": "backup"}
	defer func() { env.Env = nil }()

	app := newAuthTestApp()

	cases := []struct {
		name   string
		target string
		header map[string]string
		want   int
	}{
		{name: "header", target: "/cron", header: map[string]string{"X-Cron-Secret": "s3cret"}, want: 200},
		{name: "alt secret", target: "/cron", header: map[string]string{"X-Cron-Secret": "backup"}, want: 200},
		{name: "query", target: "/cron?secret=s3cret", want: 200},
		{name: "bearer", target: "/cron", header: map[string]string{"Authorization": "Bearer s3cret"}, want: 200},
		{name: "wrong", target: "/cron", header: map[string]string{"X-Cron-Secret": "nope"}, want: 401},
		{name: "missing", target: "/cron", want: 401},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.target, nil)
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestCronAuthNoSecretsConfigured(t *testing.T) {
	env.Env = map[string]string{}
	defer func() { env.Env = nil }()

	app := newAuthTestApp()
	req := httptest.NewRequest("GET", "/cron", nil)
	req.Header.Set("X-Cron-Secret", "anything")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}
