package domain

import "time"

// NativeAsset names the payment currency in the ledger.
const NativeAsset = "native"

// LedgerBalance is one holder's balance of one asset.
type LedgerBalance struct {
	Asset     string    `gorm:"column:asset;type:varchar(64);primaryKey" json:"asset"`
	Holder    string    `gorm:"column:holder;type:varchar(42);primaryKey" json:"holder"`
	Balance   Amount    `gorm:"column:balance;type:varchar(80);not null" json:"balance"`
	UpdatedAt time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (LedgerBalance) TableName() string {
	return "LedgerBalances"
}

// LedgerSupply tracks the outstanding total of one asset.
type LedgerSupply struct {
	Asset     string    `gorm:"column:asset;type:varchar(64);primaryKey" json:"asset"`
	Total     Amount    `gorm:"column:total;type:varchar(80);not null" json:"total"`
	UpdatedAt time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (LedgerSupply) TableName() string {
	return "LedgerSupplies"
}
