package vehicle

import (
	"strings"

	vehiclesvc "stocktochain-backend/internal/application/vehicle"
	"stocktochain-backend/internal/domain"
	"stocktochain-backend/internal/middleware"
	"stocktochain-backend/internal/pkg/response"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *vehiclesvc.Service
}

type addressList struct {
	Addresses []string `json:"addresses"`
}

// POST /api/v1/vehicle/whitelist/add
func (h *Handlers) AddToWhitelist(c *fiber.Ctx) error {
	return h.whitelist(c, true)
}

// POST /api/v1/vehicle/whitelist/remove
func (h *Handlers) RemoveFromWhitelist(c *fiber.Ctx) error {
	return h.whitelist(c, false)
}

func (h *Handlers) whitelist(c *fiber.Ctx, add bool) error {
	who, ok := middleware.GetCaller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body addressList
	if err := c.BodyParser(&body); err != nil || len(body.Addresses) == 0 {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	addrs := make([]common.Address, 0, len(body.Addresses))
	for _, s := range body.Addresses {
		addr, err := parseAddress(s)
		if err != nil {
			return response.Error(c, "Invalid address: "+s, fiber.StatusBadRequest, nil)
		}
		addrs = append(addrs, addr)
	}

	var err error
	if add {
		err = h.Service.AddToWhitelist(c.UserContext(), who, addrs)
	} else {
		err = h.Service.RemoveFromWhitelist(c.UserContext(), who, addrs)
	}
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Whitelist updated successfully", fiber.Map{"addresses": addrs, "whitelisted": add}, nil)
}

// POST /api/v1/vehicle/workflow
func (h *Handlers) SetWorkflow(c *fiber.Ctx) error {
	who, ok := middleware.GetCaller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body struct {
		Status *domain.WorkflowStatus `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil || body.Status == nil {
		return response.Error(c, "Missing or invalid status", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.SetWorkflowStatus(c.UserContext(), who, *body.Status); err != nil {
		return response.FromError(c, err)
	}
	return h.GetWorkflow(c)
}

// GET /api/v1/vehicle/workflow
func (h *Handlers) GetWorkflow(c *fiber.Ctx) error {
	st, err := h.Service.State(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	supply, err := h.Service.TotalSupply(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Vehicle state fetched successfully", st, fiber.Map{
		"total_supply":    domain.NewAmount(supply),
		"max_supply":      domain.NewAmount(h.Service.Config.MaxSupply),
		"unit_asset":      h.Service.Config.UnitAsset,
		"vehicle":         h.Service.Config.VehicleAddress.Hex(),
		"platform_wallet": h.Service.Config.PlatformWallet.Hex(),
	})
}

// POST /api/v1/vehicle/purchase
func (h *Handlers) Purchase(c *fiber.Ctx) error {
	who, ok := middleware.GetCaller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body struct {
		Units      domain.Amount `json:"units"`
		AmountPaid domain.Amount `json:"amount_paid"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	res, err := h.Service.Purchase(c.UserContext(), who, body.Units.U256(), body.AmountPaid.U256())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Units purchased successfully", res, nil)
}

// POST /api/v1/vehicle/profits/distribute
func (h *Handlers) Distribute(c *fiber.Ctx) error {
	who, ok := middleware.GetCaller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body struct {
		Amount domain.Amount `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	round, err := h.Service.Distribute(c.UserContext(), who, body.Amount.U256())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Profits distributed successfully", round, nil)
}

// POST /api/v1/vehicle/profits/rounds/:id/batch
func (h *Handlers) DistributeBatch(c *fiber.Ctx) error {
	who, ok := middleware.GetCaller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	roundID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for round id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		EndIndex *uint64 `json:"end_index"`
	}
	if err := c.BodyParser(&body); err != nil || body.EndIndex == nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	round, err := h.Service.DistributeBatch(c.UserContext(), who, roundID, *body.EndIndex)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Profit batch processed successfully", round, nil)
}

// GET /api/v1/vehicle/profits/rounds/:id
func (h *Handlers) GetRound(c *fiber.Ctx) error {
	roundID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for round id", fiber.StatusBadRequest, nil)
	}
	round, err := h.Service.ProfitRound(c.UserContext(), roundID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Profit round fetched successfully", round, nil)
}

// POST /api/v1/vehicle/profits/claim
func (h *Handlers) Claim(c *fiber.Ctx) error {
	who, ok := middleware.GetCaller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	paid, err := h.Service.Claim(c.UserContext(), who)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Profits claimed successfully", fiber.Map{"amount": domain.NewAmount(paid)}, nil)
}

// POST /api/v1/vehicle/buyback/begin
func (h *Handlers) BeginBuyback(c *fiber.Ctx) error {
	who, ok := middleware.GetCaller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body struct {
		Funds domain.Amount `json:"funds"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	st, err := h.Service.BeginBuyback(c.UserContext(), who, body.Funds.U256())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Buyback started successfully", st, nil)
}

// POST /api/v1/vehicle/buyback/batch
func (h *Handlers) BuybackBatch(c *fiber.Ctx) error {
	who, ok := middleware.GetCaller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body struct {
		StartIndex *uint64       `json:"start_index"`
		EndIndex   *uint64       `json:"end_index"`
		Funds      domain.Amount `json:"funds"`
	}
	if err := c.BodyParser(&body); err != nil || body.StartIndex == nil || body.EndIndex == nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	res, err := h.Service.BuybackBatch(c.UserContext(), who, *body.StartIndex, *body.EndIndex, body.Funds.U256())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Buyback batch executed successfully", res, nil)
}

// POST /api/v1/vehicle/pause
func (h *Handlers) Pause(c *fiber.Ctx) error {
	who, ok := middleware.GetCaller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.Service.Pause(c.UserContext(), who); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Vehicle paused", fiber.Map{"paused": true}, nil)
}

// POST /api/v1/vehicle/unpause
func (h *Handlers) Unpause(c *fiber.Ctx) error {
	who, ok := middleware.GetCaller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.Service.Unpause(c.UserContext(), who); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Vehicle unpaused", fiber.Map{"paused": false}, nil)
}

// POST /api/v1/vehicle/emergency-withdraw
func (h *Handlers) EmergencyWithdraw(c *fiber.Ctx) error {
	who, ok := middleware.GetCaller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body struct {
		Asset string `json:"asset"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	amount, err := h.Service.EmergencyWithdraw(c.UserContext(), who, body.Asset)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Funds withdrawn successfully", fiber.Map{"asset": body.Asset, "amount": domain.NewAmount(amount)}, nil)
}

// POST /api/v1/vehicle/ownership
func (h *Handlers) TransferOwnership(c *fiber.Ctx) error {
	who, ok := middleware.GetCaller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body struct {
		NewOwner string `json:"new_owner"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	newOwner, err := parseAddress(body.NewOwner)
	if err != nil {
		return response.Error(c, "Invalid address for new_owner", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.TransferOwnership(c.UserContext(), who, newOwner); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Ownership transferred successfully", fiber.Map{"owner": newOwner}, nil)
}

// POST /api/v1/vehicle/transfer
func (h *Handlers) Transfer(c *fiber.Ctx) error {
	who, ok := middleware.GetCaller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body struct {
		To    string        `json:"to"`
		Units domain.Amount `json:"units"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	to, err := parseAddress(body.To)
	if err != nil {
		return response.Error(c, "Invalid address for to", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Transfer(c.UserContext(), who, to, body.Units.U256()); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Units transferred successfully", fiber.Map{"to": to, "units": body.Units}, nil)
}

// POST /api/v1/vehicle/receive
func (h *Handlers) Receive(c *fiber.Ctx) error {
	who, ok := middleware.GetCaller(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body struct {
		Asset  string        `json:"asset"`
		Amount domain.Amount `json:"amount"`
		Data   string        `json:"data"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	data, err := decodeCallData(body.Data)
	if err != nil {
		return response.Error(c, "Invalid hex for data", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Receive(c.UserContext(), who, body.Asset, body.Amount.U256(), data); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Payment received", fiber.Map{"amount": body.Amount}, nil)
}

func parseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fiber.NewError(fiber.StatusBadRequest, "invalid address")
	}
	return common.HexToAddress(s), nil
}

func decodeCallData(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0x" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}
