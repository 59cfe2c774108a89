package vehicle

import (
	"context"

	"stocktochain-backend/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// InvestmentSummary is the read-only position of one address.
type InvestmentSummary struct {
	Address         string        `json:"address"`
	Balance         domain.Amount `json:"balance"`
	UnclaimedProfit domain.Amount `json:"unclaimed_profit"`
	ProfitClaimTime int64         `json:"profit_claim_time"`
	IsWhitelisted   bool          `json:"is_whitelisted"`
	TotalInvested   domain.Amount `json:"total_invested"`
}

// InvestmentSummary aggregates ledger balance and investor record for addr.
// Unknown addresses get a zero summary whose claim time is the lock period itself.
func (s *Service) InvestmentSummary(ctx context.Context, addr common.Address) (*InvestmentSummary, error) {
	db := s.DB.WithContext(ctx)
	inv, _, err := loadInvestor(db, addr)
	if err != nil {
		return nil, err
	}
	bal, err := s.Ledger.BalanceOf(db, s.Config.UnitAsset, addr)
	if err != nil {
		return nil, err
	}
	return &InvestmentSummary{
		Address:         addr.Hex(),
		Balance:         domain.NewAmount(bal),
		UnclaimedProfit: inv.UnclaimedProfit,
		ProfitClaimTime: s.claimableAt(inv),
		IsWhitelisted:   inv.Whitelisted,
		TotalInvested:   inv.TotalPaidIn,
	}, nil
}

// Investor returns the stored record for addr.
func (s *Service) Investor(ctx context.Context, addr common.Address) (*domain.Investor, error) {
	inv, found, err := loadInvestor(s.DB.WithContext(ctx), addr)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrInvestorNotFound
	}
	return inv, nil
}

// Investors pages the registry by position; end is clamped to its length.
func (s *Service) Investors(ctx context.Context, start, end uint64) ([]domain.Investor, error) {
	db := s.DB.WithContext(ctx)
	st, err := loadState(db)
	if err != nil {
		return nil, err
	}
	if end > st.InvestorCount {
		end = st.InvestorCount
	}
	if start >= end {
		return []domain.Investor{}, nil
	}
	return registrySlice(db, start, end)
}

// BalanceOf returns holder's balance of the vehicle units.
func (s *Service) BalanceOf(ctx context.Context, holder common.Address) (*uint256.Int, error) {
	return s.Ledger.BalanceOf(s.DB.WithContext(ctx), s.Config.UnitAsset, holder)
}

// TotalSupply returns the outstanding vehicle units.
func (s *Service) TotalSupply(ctx context.Context) (*uint256.Int, error) {
	return s.Ledger.TotalSupply(s.DB.WithContext(ctx), s.Config.UnitAsset)
}

// NativeBalanceOf returns holder's balance of the payment currency.
func (s *Service) NativeBalanceOf(ctx context.Context, holder common.Address) (*uint256.Int, error) {
	return s.Ledger.BalanceOf(s.DB.WithContext(ctx), domain.NativeAsset, holder)
}

const (
	defaultEventPage = 100
	maxEventPage     = 500
)

// Events lists notifications with a sequence number above after, oldest first.
func (s *Service) Events(ctx context.Context, after uint64, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = defaultEventPage
	}
	if limit > maxEventPage {
		limit = maxEventPage
	}
	var out []domain.Notification
	err := s.DB.WithContext(ctx).
		Where("seq > ?", after).
		Order("seq ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
