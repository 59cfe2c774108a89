package middleware

import (
	"strings"

	"stocktochain-backend/internal/pkg/response"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
)

// CallerHeader carries the acting address, set by the authenticating gateway in front of the API.
const CallerHeader = "X-Caller-Address"

const callerLocal = "caller"

// Caller resolves the acting address from CallerHeader. Requests without the header pass through anonymous.
func Caller() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Get(CallerHeader))
		if raw == "" {
			return c.Next()
		}
		if !common.IsHexAddress(raw) {
			return response.Error(c, "Invalid caller address", fiber.StatusBadRequest, fiber.Map{"code": "INVALID_CALLER"})
		}
		SetCaller(c, common.HexToAddress(raw))
		return c.Next()
	}
}

// RequireCaller ensures a caller address is known. Returns 401 with standard error format if not.
func RequireCaller() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := GetCaller(c); !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// GetCaller returns the caller address from Locals.
func GetCaller(c *fiber.Ctx) (common.Address, bool) {
	addr, ok := c.Locals(callerLocal).(common.Address)
	return addr, ok
}

// SetCaller stores addr as the caller of the current request.
func SetCaller(c *fiber.Ctx, addr common.Address) {
	c.Locals(callerLocal, addr)
}
