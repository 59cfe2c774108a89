package vehicle

import (
	"context"
	"fmt"

	"stocktochain-backend/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// BuybackResult summarizes one buyback batch.
type BuybackResult struct {
	StartIndex uint64        `json:"start_index"`
	EndIndex   uint64        `json:"end_index"`
	Paid       domain.Amount `json:"paid"`
	Investors  int           `json:"investors_paid"`
	Burned     domain.Amount `json:"burned"`
	Finalized  bool          `json:"finalized"`
}

// BeginBuyback fixes the repurchase price from the whole outstanding supply.
// funds must cover that price; any excess stays with the vehicle.
func (s *Service) BeginBuyback(ctx context.Context, caller common.Address, funds *uint256.Int) (*domain.VehicleState, error) {
	var st domain.VehicleState
	err := s.run(ctx, "buyback.begin", caller, func(c *call) error {
		if err := s.checkBuyback(c); err != nil {
			return err
		}
		if c.state.BuybackBegun() {
			return ErrBuybackBegun
		}
		if err := s.beginBuyback(ctx, c, funds); err != nil {
			return err
		}
		st = *c.state
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// BuybackBatch pays every investor at registry positions [start, end) their share of
// the frozen repurchase price. The batch reaching the end of the registry burns the
// units investors returned to the vehicle and finalizes the buyback.
// A slot is paid at most once: its purchased units move to RepurchasedUnits.
func (s *Service) BuybackBatch(ctx context.Context, caller common.Address, start, end uint64, funds *uint256.Int) (*BuybackResult, error) {
	var res BuybackResult
	err := s.run(ctx, "buyback.batch", caller, func(c *call) error {
		if err := s.checkBuyback(c); err != nil {
			return err
		}
		if start >= end || end > c.state.InvestorCount {
			return fmt.Errorf("%w: [%d, %d) of %d", ErrInvalidRange, start, end, c.state.InvestorCount)
		}
		if !c.state.BuybackBegun() {
			if err := s.beginBuyback(ctx, c, funds); err != nil {
				return err
			}
		} else if err := s.Ledger.Mint(c.tx, domain.NativeAsset, s.vehicle(), funds); err != nil {
			return err
		}

		price := c.state.FinalRepurchasePrice.U256()
		snapshot := c.state.FinalSupplySnapshot.U256()
		final := end == c.state.InvestorCount

		var held *uint256.Int
		if final {
			var err error
			if held, err = s.Ledger.BalanceOf(c.tx, s.Config.UnitAsset, s.vehicle()); err != nil {
				return err
			}
			if held.IsZero() || held.Lt(snapshot) {
				return fmt.Errorf("%w: vehicle holds %s of %s", ErrNoTokensToBuyBack, held.Dec(), snapshot.Dec())
			}
		}

		investors, err := registrySlice(c.tx, start, end)
		if err != nil {
			return err
		}
		paid := new(uint256.Int)
		for i := range investors {
			inv := &investors[i]
			units := inv.TotalUnitsPurchased.U256()
			if units.IsZero() {
				continue
			}
			share, err := mulDiv(price, units, snapshot)
			if err != nil {
				return err
			}
			if inv.RepurchasedUnits, err = addAmount(inv.RepurchasedUnits, units); err != nil {
				return err
			}
			inv.TotalUnitsPurchased = domain.Amount{}
			if err := c.tx.Save(inv).Error; err != nil {
				return err
			}
			if err := s.Ledger.Transfer(c.tx, domain.NativeAsset, s.vehicle(), common.HexToAddress(inv.Address), share); err != nil {
				return err
			}
			paid.Add(paid, share)
			res.Investors++
		}

		res.StartIndex, res.EndIndex = start, end
		res.Paid = domain.NewAmount(paid)
		if final {
			if err := s.Ledger.Burn(c.tx, s.Config.UnitAsset, s.vehicle(), held); err != nil {
				return err
			}
			c.state.BuybackFinalized = true
			res.Burned = domain.NewAmount(held)
			res.Finalized = true
		}
		return c.emit(domain.EventBuybackExecuted, map[string]interface{}{
			"start_index": start,
			"end_index":   end,
			"paid":        paid.Dec(),
			"burned":      res.Burned.String(),
			"finalized":   final,
		})
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *Service) checkBuyback(c *call) error {
	if err := c.requireOwner(); err != nil {
		return err
	}
	if err := c.requireNotPaused(); err != nil {
		return err
	}
	if c.state.Status != domain.StatusBuybackActive {
		return ErrBuybackNotActive
	}
	if c.state.BuybackFinalized {
		return ErrBuybackFinalized
	}
	return nil
}

func (s *Service) beginBuyback(ctx context.Context, c *call, funds *uint256.Int) error {
	supply, err := s.Ledger.TotalSupply(c.tx, s.Config.UnitAsset)
	if err != nil {
		return err
	}
	if supply.IsZero() {
		return ErrNoTokensToBuyBack
	}
	price, err := s.Oracle.PriceUnits(ctx, supply, s.Config.BuybackPrice, s.Config.UnitDecimals)
	if err != nil {
		return err
	}
	if funds.Lt(price) {
		return fmt.Errorf("%w: need %s, got %s", ErrInsufficientFunds, price.Dec(), funds.Dec())
	}
	if err := s.Ledger.Mint(c.tx, domain.NativeAsset, s.vehicle(), funds); err != nil {
		return err
	}

	p, snap := domain.NewAmount(price), domain.NewAmount(supply)
	c.state.FinalRepurchasePrice = &p
	c.state.FinalSupplySnapshot = &snap
	return c.emit(domain.EventBuybackStarted, map[string]interface{}{
		"price":           price.Dec(),
		"supply_snapshot": supply.Dec(),
		"funds":           funds.Dec(),
	})
}
