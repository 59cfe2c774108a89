package vehicle

import (
	"context"
	"strings"

	"stocktochain-backend/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// Pause stops purchases and buyback batches. Claims keep working.
func (s *Service) Pause(ctx context.Context, caller common.Address) error {
	return s.run(ctx, "controls.pause", caller, func(c *call) error {
		if err := c.requireOwner(); err != nil {
			return err
		}
		if c.state.Paused {
			return ErrPaused
		}
		c.state.Paused = true
		return c.emit(domain.EventPaused, map[string]interface{}{"account": caller.Hex()})
	})
}

func (s *Service) Unpause(ctx context.Context, caller common.Address) error {
	return s.run(ctx, "controls.unpause", caller, func(c *call) error {
		if err := c.requireOwner(); err != nil {
			return err
		}
		if !c.state.Paused {
			return ErrNotPaused
		}
		c.state.Paused = false
		return c.emit(domain.EventUnpaused, map[string]interface{}{"account": caller.Hex()})
	})
}

// EmergencyWithdraw sends the vehicle's whole balance of asset to the owner.
// "native" names the payment currency; the vehicle's own unit asset is refused.
func (s *Service) EmergencyWithdraw(ctx context.Context, caller common.Address, asset string) (*uint256.Int, error) {
	var amount *uint256.Int
	err := s.run(ctx, "controls.emergency_withdraw", caller, func(c *call) error {
		if err := c.requireOwner(); err != nil {
			return err
		}
		asset = strings.TrimSpace(asset)
		if asset == "" {
			return ErrInvalidAsset
		}
		if strings.EqualFold(asset, s.Config.UnitAsset) {
			return ErrOwnToken
		}
		if strings.EqualFold(asset, domain.NativeAsset) {
			asset = domain.NativeAsset
		}
		bal, err := s.Ledger.BalanceOf(c.tx, asset, s.vehicle())
		if err != nil {
			return err
		}
		if bal.IsZero() {
			return ErrNothingToWithdraw
		}
		owner := common.HexToAddress(c.state.Owner)
		if err := s.Ledger.Transfer(c.tx, asset, s.vehicle(), owner, bal); err != nil {
			return err
		}
		amount = bal
		return c.emit(domain.EventEmergencyWithdrawal, map[string]interface{}{
			"asset":  asset,
			"amount": bal.Dec(),
			"to":     owner.Hex(),
		})
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

// TransferOwnership hands every owner-only operation to newOwner.
func (s *Service) TransferOwnership(ctx context.Context, caller, newOwner common.Address) error {
	return s.run(ctx, "controls.transfer_ownership", caller, func(c *call) error {
		if err := c.requireOwner(); err != nil {
			return err
		}
		if newOwner == (common.Address{}) {
			return ErrZeroAddress
		}
		prev := c.state.Owner
		c.state.Owner = newOwner.Hex()
		return c.emit(domain.EventOwnershipTransferred, map[string]interface{}{
			"previous_owner": prev,
			"new_owner":      newOwner.Hex(),
		})
	})
}

// Receive books funds that reached the vehicle outside any operation. A plain
// payment emits PaymentReceived; one carrying call data emits FallbackCalled.
// asset "" or "native" is the payment currency; other external assets are kept
// for EmergencyWithdraw.
func (s *Service) Receive(ctx context.Context, from common.Address, asset string, amount *uint256.Int, data []byte) error {
	return s.run(ctx, "controls.receive", from, func(c *call) error {
		_, err := s.receive(c, from, asset, amount, data)
		return err
	})
}

// ReceiveDeposit books a custody deposit once per provider event id. The
// deposit row is written in the same transaction as the credit, so a failed
// attempt leaves nothing behind and a redelivery is processed again.
// duplicate reports an event id that was already recorded.
func (s *Service) ReceiveDeposit(ctx context.Context, d *domain.Deposit, data []byte) (duplicate bool, err error) {
	from := common.HexToAddress(d.FromAddress)
	err = s.run(ctx, "controls.receive_deposit", from, func(c *call) error {
		var seen int64
		if err := c.tx.Model(&domain.Deposit{}).Where("provider_event_id = ?", d.ProviderEventID).Count(&seen).Error; err != nil {
			return err
		}
		if seen > 0 {
			duplicate = true
			return nil
		}
		asset, err := s.receive(c, from, d.Asset, d.Amount.U256(), data)
		if err != nil {
			return err
		}
		d.Asset = asset
		d.Status = domain.DepositCredited
		return c.tx.Create(d).Error
	})
	return duplicate, err
}

func (s *Service) receive(c *call, from common.Address, asset string, amount *uint256.Int, data []byte) (string, error) {
	if amount.IsZero() {
		return "", ErrZeroValue
	}
	asset = strings.TrimSpace(asset)
	if asset == "" || strings.EqualFold(asset, domain.NativeAsset) {
		asset = domain.NativeAsset
	} else if strings.EqualFold(asset, s.Config.UnitAsset) {
		return "", ErrInvalidAsset
	}
	if err := s.Ledger.Mint(c.tx, asset, s.vehicle(), amount); err != nil {
		return "", err
	}
	if len(data) > 0 {
		return asset, c.emit(domain.EventFallbackCalled, map[string]interface{}{
			"sender": from.Hex(),
			"asset":  asset,
			"value":  amount.Dec(),
			"data":   hexutil.Encode(data),
		})
	}
	return asset, c.emit(domain.EventPaymentReceived, map[string]interface{}{
		"sender": from.Hex(),
		"asset":  asset,
		"value":  amount.Dec(),
	})
}

// Transfer moves caller's units, typically back to the vehicle before the buyback ends.
func (s *Service) Transfer(ctx context.Context, caller, to common.Address, units *uint256.Int) error {
	return s.run(ctx, "units.transfer", caller, func(c *call) error {
		if units.IsZero() {
			return ErrZeroUnits
		}
		if err := s.Ledger.Transfer(c.tx, s.Config.UnitAsset, caller, to, units); err != nil {
			return err
		}
		return c.emit(domain.EventTransfer, map[string]interface{}{
			"from":  caller.Hex(),
			"to":    to.Hex(),
			"value": units.Dec(),
		})
	})
}
