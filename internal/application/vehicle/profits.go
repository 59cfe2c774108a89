package vehicle

import (
	"context"
	"errors"
	"fmt"

	"stocktochain-backend/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"gorm.io/gorm"
)

// Distribute takes amount of incoming profit and opens a round over the investors
// registered so far. The first DistributionBatchSize slots are accrued in this call;
// the rest through DistributeBatch.
func (s *Service) Distribute(ctx context.Context, caller common.Address, amount *uint256.Int) (*domain.ProfitRound, error) {
	var round domain.ProfitRound
	err := s.run(ctx, "profits.distribute", caller, func(c *call) error {
		if err := c.requireOwner(); err != nil {
			return err
		}
		if amount.IsZero() {
			return ErrNoProfits
		}
		supply, err := s.Ledger.TotalSupply(c.tx, s.Config.UnitAsset)
		if err != nil {
			return err
		}
		if supply.IsZero() {
			return ErrNoCirculation
		}
		var open int64
		if err := c.tx.Model(&domain.ProfitRound{}).Where("completed = ?", false).Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrRoundInProgress
		}

		if err := s.Ledger.Mint(c.tx, domain.NativeAsset, s.vehicle(), amount); err != nil {
			return err
		}
		round = domain.ProfitRound{
			Amount:         domain.NewAmount(amount),
			SnapshotSupply: domain.NewAmount(supply),
			InvestorCount:  c.state.InvestorCount,
		}
		if err := c.tx.Create(&round).Error; err != nil {
			return err
		}
		if err := c.emit(domain.EventProfitsDistributed, map[string]interface{}{
			"round_id":        round.RoundID.String(),
			"amount":          amount.Dec(),
			"snapshot_supply": supply.Dec(),
			"investor_count":  round.InvestorCount,
		}); err != nil {
			return err
		}

		end := round.InvestorCount
		if round.Remaining() > s.Config.DistributionBatchSize {
			end = round.Cursor + s.Config.DistributionBatchSize
		}
		return s.accrue(c, &round, end)
	})
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// DistributeBatch continues an open round from its cursor up to endIndex (exclusive).
func (s *Service) DistributeBatch(ctx context.Context, caller common.Address, roundID uuid.UUID, endIndex uint64) (*domain.ProfitRound, error) {
	var round domain.ProfitRound
	err := s.run(ctx, "profits.batch", caller, func(c *call) error {
		if err := c.requireOwner(); err != nil {
			return err
		}
		if err := c.tx.Where("round_id = ?", roundID).First(&round).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoundNotFound
			}
			return err
		}
		if round.Completed {
			return ErrRoundCompleted
		}
		if endIndex <= round.Cursor || endIndex > round.InvestorCount {
			return fmt.Errorf("%w: cursor %d, end %d, investors %d", ErrInvalidRange, round.Cursor, endIndex, round.InvestorCount)
		}
		return s.accrue(c, &round, endIndex)
	})
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// accrue credits amount*units/snapshot to every registry slot in [cursor, end).
// The running total is capped at the round amount so later purchases by
// investors inside the round cannot over-allocate it.
func (s *Service) accrue(c *call, round *domain.ProfitRound, end uint64) error {
	investors, err := registrySlice(c.tx, round.Cursor, end)
	if err != nil {
		return err
	}
	amount := round.Amount.U256()
	snapshot := round.SnapshotSupply.U256()
	accrued := round.Accrued.U256()

	for i := range investors {
		inv := &investors[i]
		units := inv.TotalUnitsPurchased.U256()
		if units.IsZero() {
			continue
		}
		share, err := mulDiv(amount, units, snapshot)
		if err != nil {
			return err
		}
		if left := new(uint256.Int).Sub(amount, accrued); share.Gt(left) {
			share = left
		}
		if share.IsZero() {
			continue
		}
		accrued.Add(accrued, share)
		if inv.UnclaimedProfit, err = addAmount(inv.UnclaimedProfit, share); err != nil {
			return err
		}
		if err := c.tx.Save(inv).Error; err != nil {
			return err
		}
	}

	round.Cursor = end
	round.Accrued = domain.NewAmount(accrued)
	round.Completed = round.Remaining() == 0
	return c.tx.Save(round).Error
}

// ProfitRound returns one round by id.
func (s *Service) ProfitRound(ctx context.Context, id uuid.UUID) (*domain.ProfitRound, error) {
	var round domain.ProfitRound
	if err := s.DB.WithContext(ctx).Where("round_id = ?", id).First(&round).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return &round, nil
}

// ProfitShare is the profit accrued to addr and not yet claimed.
func (s *Service) ProfitShare(ctx context.Context, addr common.Address) (*uint256.Int, error) {
	inv, _, err := loadInvestor(s.DB.WithContext(ctx), addr)
	if err != nil {
		return nil, err
	}
	return inv.UnclaimedProfit.U256(), nil
}
