package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/podpod/api/pkg/response"
)

// HeaderAccessToken is the header carrying the static API access token.
const HeaderAccessToken = "X-Podpod-Access-Token"

// AccessToken validates the static access token on every request except the
// health check. An empty expected token rejects everything, so a missing
// PODPOD_API_ACCESS_TOKEN never leaves the API open.
func AccessToken(expected string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/health" {
			return c.Next()
		}

		token := c.Get(HeaderAccessToken)
		if token == "" || expected == "" || token != expected {
			return response.Unauthorized(c, "Invalid or missing access token")
		}
		return c.Next()
	}
}
