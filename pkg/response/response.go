package response

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// MessageResponse is the body returned for auth failures.
type MessageResponse struct {
	Message string `json:"message"`
}

// DetailResponse is the body returned for request failures.
type DetailResponse struct {
	Detail string `json:"detail"`
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(MessageResponse{Message: message})
}

func ServiceError(c *fiber.Ctx, reason string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(DetailResponse{Detail: reason})
}

func OK(c *fiber.Ctx, data interface{}) error {
	return c.JSON(data)
}

// Audio writes a raw audio body with an explicit Content-Length.
func Audio(c *fiber.Ctx, data []byte, contentType string) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentLength, strconv.Itoa(len(data)))
	return c.Status(fiber.StatusOK).Send(data)
}
