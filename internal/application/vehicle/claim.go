package vehicle

import (
	"context"
	"time"

	"stocktochain-backend/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Claim pays caller all unclaimed profit once the lock since the last purchase has run out.
// It stays available while the vehicle is paused.
func (s *Service) Claim(ctx context.Context, caller common.Address) (*uint256.Int, error) {
	var paid *uint256.Int
	err := s.run(ctx, "profits.claim", caller, func(c *call) error {
		inv, found, err := loadInvestor(c.tx, caller)
		if err != nil {
			return err
		}
		if !found || inv.UnclaimedProfit.IsZero() {
			return ErrNothingToClaim
		}
		if c.now.Unix() < s.claimableAt(inv) {
			return ErrProfitsLocked
		}

		paid = inv.UnclaimedProfit.U256()
		inv.UnclaimedProfit = domain.Amount{}
		if err := c.tx.Save(inv).Error; err != nil {
			return err
		}
		if err := s.Ledger.Transfer(c.tx, domain.NativeAsset, s.vehicle(), caller, paid); err != nil {
			return err
		}
		return c.emit(domain.EventProfitsClaimed, map[string]interface{}{
			"investor": caller.Hex(),
			"amount":   paid.Dec(),
		})
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

// claimableAt is the unix second from which inv may claim.
func (s *Service) claimableAt(inv *domain.Investor) int64 {
	return inv.LastPurchaseAt + int64(s.Config.LockPeriod/time.Second)
}
