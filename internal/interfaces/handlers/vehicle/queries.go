package vehicle

import (
	"strconv"

	"stocktochain-backend/internal/domain"
	"stocktochain-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/holiman/uint256"
)

const defaultInvestorPage = 100

// GET /api/v1/vehicle/price/sale?units=
func (h *Handlers) SalePrice(c *fiber.Ctx) error {
	return h.quote(c, false)
}

// GET /api/v1/vehicle/price/buyback?units=
func (h *Handlers) BuybackPrice(c *fiber.Ctx) error {
	return h.quote(c, true)
}

func (h *Handlers) quote(c *fiber.Ctx, buyback bool) error {
	units, err := domain.ParseAmount(c.Query("units"))
	if err != nil {
		return response.Error(c, "Invalid units query parameter", fiber.StatusBadRequest, nil)
	}
	var price *uint256.Int
	if buyback {
		price, err = h.Service.BuybackPrice(c.UserContext(), units.U256())
	} else {
		price, err = h.Service.SalePrice(c.UserContext(), units.U256())
	}
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Price fetched successfully", fiber.Map{
		"units": units,
		"price": domain.NewAmount(price),
	}, nil)
}

// GET /api/v1/vehicle/investors/:address/summary
func (h *Handlers) Summary(c *fiber.Ctx) error {
	addr, err := parseAddress(c.Params("address"))
	if err != nil {
		return response.Error(c, "Invalid address", fiber.StatusBadRequest, nil)
	}
	sum, err := h.Service.InvestmentSummary(c.UserContext(), addr)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Investment summary fetched successfully", sum, nil)
}

// GET /api/v1/vehicle/investors/:address/profit-share
func (h *Handlers) ProfitShare(c *fiber.Ctx) error {
	addr, err := parseAddress(c.Params("address"))
	if err != nil {
		return response.Error(c, "Invalid address", fiber.StatusBadRequest, nil)
	}
	share, err := h.Service.ProfitShare(c.UserContext(), addr)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Profit share fetched successfully", fiber.Map{
		"address": addr.Hex(),
		"share":   domain.NewAmount(share),
	}, nil)
}

// GET /api/v1/vehicle/investors/:address
func (h *Handlers) GetInvestor(c *fiber.Ctx) error {
	addr, err := parseAddress(c.Params("address"))
	if err != nil {
		return response.Error(c, "Invalid address", fiber.StatusBadRequest, nil)
	}
	inv, err := h.Service.Investor(c.UserContext(), addr)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Investor fetched successfully", inv, nil)
}

// GET /api/v1/vehicle/investors?start=&end=
func (h *Handlers) ListInvestors(c *fiber.Ctx) error {
	start, err := queryUint(c, "start", 0)
	if err != nil {
		return response.Error(c, "Invalid start query parameter", fiber.StatusBadRequest, nil)
	}
	end, err := queryUint(c, "end", start+defaultInvestorPage)
	if err != nil {
		return response.Error(c, "Invalid end query parameter", fiber.StatusBadRequest, nil)
	}
	list, err := h.Service.Investors(c.UserContext(), start, end)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Investors fetched successfully", list, fiber.Map{
		"start": start,
		"count": len(list),
	})
}

// GET /api/v1/vehicle/events?after=&limit=
func (h *Handlers) ListEvents(c *fiber.Ctx) error {
	after, err := queryUint(c, "after", 0)
	if err != nil {
		return response.Error(c, "Invalid after query parameter", fiber.StatusBadRequest, nil)
	}
	events, err := h.Service.Events(c.UserContext(), after, c.QueryInt("limit", 0))
	if err != nil {
		return response.FromError(c, err)
	}
	var next uint64
	if n := len(events); n > 0 {
		next = events[n-1].Seq
	} else {
		next = after
	}
	return response.Success(c, "Events fetched successfully", events, fiber.Map{"next_after": next})
}

func queryUint(c *fiber.Ctx, key string, def uint64) (uint64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}
