package ledger

import (
	"errors"
	"fmt"

	"stocktochain-backend/internal/domain"
	"stocktochain-backend/internal/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"gorm.io/gorm"
)

var (
	ErrInsufficientBalance = apperror.New(apperror.KindFunds, "INSUFFICIENT_BALANCE", "Insufficient balance")
	ErrOverflow            = apperror.New(apperror.KindInvariant, "AMOUNT_OVERFLOW", "Amount overflows 256 bits")
	ErrZeroAddress         = apperror.New(apperror.KindValidation, "ZERO_ADDRESS", "Zero address is not a valid holder")
)

// Ledger is the fungible balance book for every asset the vehicle touches
// (its own units, the native payment currency, stray external assets).
// Every method runs on the caller's transaction so balance moves commit or
// roll back together with the operation that made them.
type Ledger struct{}

// BalanceOf returns holder's balance of asset (zero when never credited).
func (Ledger) BalanceOf(tx *gorm.DB, asset string, holder common.Address) (*uint256.Int, error) {
	row, _, err := loadBalance(tx, asset, holder)
	if err != nil {
		return nil, err
	}
	return row.Balance.U256(), nil
}

// TotalSupply returns the outstanding total of asset.
func (Ledger) TotalSupply(tx *gorm.DB, asset string) (*uint256.Int, error) {
	row, _, err := loadSupply(tx, asset)
	if err != nil {
		return nil, err
	}
	return row.Total.U256(), nil
}

// Mint credits amount of asset to holder and grows the supply.
func (Ledger) Mint(tx *gorm.DB, asset string, to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount.IsZero() {
		return nil
	}
	if err := adjustSupply(tx, asset, amount, true); err != nil {
		return err
	}
	return adjustBalance(tx, asset, to, amount, true)
}

// Burn debits amount of asset from holder and shrinks the supply.
func (Ledger) Burn(tx *gorm.DB, asset string, from common.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	if err := adjustBalance(tx, asset, from, amount, false); err != nil {
		return err
	}
	return adjustSupply(tx, asset, amount, false)
}

// Transfer moves amount of asset between holders. Supply is unchanged.
func (Ledger) Transfer(tx *gorm.DB, asset string, from, to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount.IsZero() || from == to {
		return nil
	}
	if err := adjustBalance(tx, asset, from, amount, false); err != nil {
		return err
	}
	return adjustBalance(tx, asset, to, amount, true)
}

func loadBalance(tx *gorm.DB, asset string, holder common.Address) (domain.LedgerBalance, bool, error) {
	row := domain.LedgerBalance{Asset: asset, Holder: holder.Hex()}
	err := tx.Where("asset = ? AND holder = ?", asset, holder.Hex()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, false, nil
	}
	if err != nil {
		return row, false, fmt.Errorf("ledger: load balance %s/%s: %w", asset, holder.Hex(), err)
	}
	return row, true, nil
}

func loadSupply(tx *gorm.DB, asset string) (domain.LedgerSupply, bool, error) {
	row := domain.LedgerSupply{Asset: asset}
	err := tx.Where("asset = ?", asset).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, false, nil
	}
	if err != nil {
		return row, false, fmt.Errorf("ledger: load supply %s: %w", asset, err)
	}
	return row, true, nil
}

func adjustBalance(tx *gorm.DB, asset string, holder common.Address, amount *uint256.Int, credit bool) error {
	row, found, err := loadBalance(tx, asset, holder)
	if err != nil {
		return err
	}
	next, err := apply(row.Balance.U256(), amount, credit)
	if err != nil {
		return err
	}
	row.Balance = domain.NewAmount(next)
	if found {
		return tx.Save(&row).Error
	}
	return tx.Create(&row).Error
}

func adjustSupply(tx *gorm.DB, asset string, amount *uint256.Int, grow bool) error {
	row, found, err := loadSupply(tx, asset)
	if err != nil {
		return err
	}
	next, err := apply(row.Total.U256(), amount, grow)
	if err != nil {
		return err
	}
	row.Total = domain.NewAmount(next)
	if found {
		return tx.Save(&row).Error
	}
	return tx.Create(&row).Error
}

func apply(current, amount *uint256.Int, add bool) (*uint256.Int, error) {
	if add {
		sum, overflow := new(uint256.Int).AddOverflow(current, amount)
		if overflow {
			return nil, ErrOverflow
		}
		return sum, nil
	}
	if current.Lt(amount) {
		return nil, ErrInsufficientBalance
	}
	return new(uint256.Int).Sub(current, amount), nil
}
