package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Motimate/extant-email/config"
)

func newApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New()
	for _, h := range handlers {
		app.Use(h)
	}
	app.Post("/api/email_check", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestCORSAnyOrigin(t *testing.T) {
	app := newApp(CORS())

	req := httptest.NewRequest("POST", "/api/email_check", nil)
	req.Header.Set("Origin", "https://app.example.com")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORSAllowList(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.example.com"}
	app := newApp(CORS(cfg))

	req := httptest.NewRequest("POST", "/api/email_check", nil)
	req.Header.Set("Origin", "https://app.example.com")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("POST", "/api/email_check", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	app := newApp(CORS())

	req := httptest.NewRequest("OPTIONS", "/api/email_check", nil)
	req.Header.Set("Origin", "https://app.example.com")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "GET,POST,OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "3600", resp.Header.Get("Access-Control-Max-Age"))
}

func TestCheckRateLimiter(t *testing.T) {
	app := newApp(CheckRateLimiter(2, time.Minute, nil))

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/api/email_check", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("POST", "/api/email_check", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestCheckRateLimiterDisabled(t *testing.T) {
	app := newApp(CheckRateLimiter(0, time.Minute, nil))

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/api/email_check", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestRateLimitStorage(t *testing.T) {
	assert.Nil(t, RateLimitStorage(config.RedisConfig{Enabled: false}))

	storage := RateLimitStorage(config.RedisConfig{Enabled: true, Address: "localhost:6379"})
	require.IsType(t, &RedisStorage{}, storage)
	assert.NoError(t, storage.(*RedisStorage).Close())
}
