package utils

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse writes the plain-text error body used by the check endpoints.
func ErrorResponse(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).SendString(err.Error())
}

// JSONError creates a standardized JSON error response
func JSONError(c *fiber.Ctx, status int, message string, err error) error {
	response := fiber.Map{
		"success": false,
		"error":   message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	return c.Status(status).JSON(response)
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d.Hours() >= 24 {
		days := int(d.Hours() / 24)
		return fmt.Sprintf("%d days", days)
	} else if d.Hours() >= 1 {
		return fmt.Sprintf("%.1f hours", d.Hours())
	} else if d.Minutes() >= 1 {
		return fmt.Sprintf("%.1f minutes", d.Minutes())
	}
	return fmt.Sprintf("%.1f seconds", d.Seconds())
}
