package vehicle

import (
	"context"
	"fmt"

	"stocktochain-backend/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// PurchaseResult reports what a purchase charged and returned.
type PurchaseResult struct {
	Units         domain.Amount `json:"units"`
	Price         domain.Amount `json:"price"`
	Refund        domain.Amount `json:"refund"`
	RegistryIndex uint64        `json:"registry_index"`
}

// Purchase mints units to caller against amountPaid of the payment currency.
// The oracle-derived price is kept and any excess is refunded in the same call.
func (s *Service) Purchase(ctx context.Context, caller common.Address, units, amountPaid *uint256.Int) (*PurchaseResult, error) {
	var res PurchaseResult
	err := s.run(ctx, "sale.purchase", caller, func(c *call) error {
		if err := c.requireNotPaused(); err != nil {
			return err
		}
		if c.state.Status != domain.StatusSaleActive {
			return ErrSaleNotActive
		}
		inv, _, err := loadInvestor(c.tx, caller)
		if err != nil {
			return err
		}
		if !inv.Whitelisted {
			return ErrNotWhitelisted
		}
		if units.IsZero() {
			return ErrZeroUnits
		}

		supply, err := s.Ledger.TotalSupply(c.tx, s.Config.UnitAsset)
		if err != nil {
			return err
		}
		after, overflow := new(uint256.Int).AddOverflow(supply, units)
		if overflow || after.Gt(s.Config.MaxSupply) {
			return ErrExceedsMaxSupply
		}

		price, err := s.Oracle.PriceUnits(ctx, units, s.Config.SalePrice, s.Config.UnitDecimals)
		if err != nil {
			return err
		}
		if price.Gt(amountPaid) {
			return fmt.Errorf("%w: need %s, got %s", ErrInsufficientPayment, price.Dec(), amountPaid.Dec())
		}
		refund := new(uint256.Int).Sub(amountPaid, price)

		if err := s.Ledger.Mint(c.tx, domain.NativeAsset, s.vehicle(), amountPaid); err != nil {
			return err
		}
		if err := s.Ledger.Mint(c.tx, s.Config.UnitAsset, caller, units); err != nil {
			return err
		}

		if !inv.InRegistry() {
			idx := c.state.InvestorCount
			inv.RegistryIndex = &idx
			c.state.InvestorCount++
		}
		if inv.TotalUnitsPurchased, err = addAmount(inv.TotalUnitsPurchased, units); err != nil {
			return err
		}
		if inv.TotalPaidIn, err = addAmount(inv.TotalPaidIn, price); err != nil {
			return err
		}
		inv.LastPurchaseAt = c.now.Unix()
		if err := c.tx.Save(inv).Error; err != nil {
			return err
		}

		if err := s.Ledger.Transfer(c.tx, domain.NativeAsset, s.vehicle(), caller, refund); err != nil {
			return err
		}

		res = PurchaseResult{
			Units:         domain.NewAmount(units),
			Price:         domain.NewAmount(price),
			Refund:        domain.NewAmount(refund),
			RegistryIndex: *inv.RegistryIndex,
		}
		return c.emit(domain.EventTokensPurchased, map[string]interface{}{
			"buyer":  caller.Hex(),
			"units":  units.Dec(),
			"price":  price.Dec(),
			"refund": refund.Dec(),
		})
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// SalePrice is the payment currently required for units at the sale price.
func (s *Service) SalePrice(ctx context.Context, units *uint256.Int) (*uint256.Int, error) {
	return s.Oracle.PriceUnits(ctx, units, s.Config.SalePrice, s.Config.UnitDecimals)
}

// BuybackPrice is the payment the buyback price currently implies for units.
func (s *Service) BuybackPrice(ctx context.Context, units *uint256.Int) (*uint256.Int, error) {
	return s.Oracle.PriceUnits(ctx, units, s.Config.BuybackPrice, s.Config.UnitDecimals)
}
