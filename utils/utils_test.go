package utils

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validated struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
	Level string `validate:"oneof=info debug"`
	Tries int    `validate:"min=1,max=3"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		err := ValidateStruct(validated{Name: "a", Email: "a@b.com", Level: "info", Tries: 2})
		assert.NoError(t, err)
	})

	t.Run("messages", func(t *testing.T) {
		err := ValidateStruct(validated{Email: "nope", Level: "loud", Tries: 9})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name is required")
		assert.Contains(t, err.Error(), "email must be a valid email")
		assert.Contains(t, err.Error(), "level must be one of [info debug]")
		assert.Contains(t, err.Error(), "tries must be at most 3")
	})

	t.Run("non-struct", func(t *testing.T) {
		assert.Error(t, ValidateStruct("plain string"))
	})
}

func TestErrorResponse(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return ErrorResponse(c, fiber.StatusUnprocessableEntity, errors.New("bad shape"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "bad shape", string(body))
}

func TestJSONError(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return JSONError(c, fiber.StatusTooManyRequests, "slow down", nil)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.JSONEq(t, `{"success":false,"error":"slow down"}`, string(body))
}

func TestLogErrorAndEvent(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	LogError("mx_lookup", errors.New("boom"), map[string]interface{}{"domain": "example.com"})
	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "mx_lookup", entry.Data["error_type"])
	assert.Equal(t, "boom", entry.Data["error"])
	assert.Equal(t, "example.com", entry.Data["domain"])

	LogEvent("batch_completed", map[string]interface{}{"total": 3})
	require.Len(t, hook.Entries, 2)
	entry = hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "batch_completed", entry.Data["event_type"])
	assert.Equal(t, 3, entry.Data["total"])
}

func TestInitSentryWithoutDSN(t *testing.T) {
	assert.NoError(t, InitSentry("", "test"))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "2 days", FormatDuration(49*time.Hour))
	assert.Equal(t, "1.5 hours", FormatDuration(90*time.Minute))
	assert.Equal(t, "2.0 minutes", FormatDuration(2*time.Minute))
	assert.Equal(t, "30.0 seconds", FormatDuration(30*time.Second))
}

func TestLogErrorKeepsTypeOverContext(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	ctx := map[string]interface{}{"error_type": "spoofed", "attempt": 2}
	LogError("smtp_probe", errors.New("timeout"), ctx)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "smtp_probe", entry.Data["error_type"])
	assert.Equal(t, 2, entry.Data["attempt"])
	assert.Equal(t, "spoofed", ctx["error_type"])
}
