package vehicle

import (
	"context"

	"stocktochain-backend/internal/domain"

	"github.com/ethereum/go-ethereum/common"
)

// AddToWhitelist marks every address as allowed to purchase. Repeated adds are no-ops
// but still produce a notification.
func (s *Service) AddToWhitelist(ctx context.Context, caller common.Address, addrs []common.Address) error {
	return s.setWhitelisted(ctx, "whitelist.add", caller, addrs, true)
}

// RemoveFromWhitelist blocks future purchases. Units already bought are untouched.
func (s *Service) RemoveFromWhitelist(ctx context.Context, caller common.Address, addrs []common.Address) error {
	return s.setWhitelisted(ctx, "whitelist.remove", caller, addrs, false)
}

func (s *Service) setWhitelisted(ctx context.Context, op string, caller common.Address, addrs []common.Address, allowed bool) error {
	return s.run(ctx, op, caller, func(c *call) error {
		if err := c.requireOwner(); err != nil {
			return err
		}
		for _, addr := range addrs {
			if addr == (common.Address{}) {
				return ErrZeroAddress
			}
			inv, _, err := loadInvestor(c.tx, addr)
			if err != nil {
				return err
			}
			if inv.Whitelisted != allowed {
				inv.Whitelisted = allowed
				if err := c.tx.Save(inv).Error; err != nil {
					return err
				}
			}
			name := domain.EventInvestorWhitelisted
			if !allowed {
				name = domain.EventInvestorRemoved
			}
			if err := c.emit(name, map[string]interface{}{"investor": addr.Hex()}); err != nil {
				return err
			}
		}
		return nil
	})
}

// IsWhitelisted reports the current whitelist flag of addr.
func (s *Service) IsWhitelisted(ctx context.Context, addr common.Address) (bool, error) {
	inv, _, err := loadInvestor(s.DB.WithContext(ctx), addr)
	if err != nil {
		return false, err
	}
	return inv.Whitelisted, nil
}
