package domain

import "time"

// Investor is the per-participant record, created on first whitelist or purchase.
// Records are never deleted; zero fields mean no current position.
type Investor struct {
	Address             string    `gorm:"column:address;type:varchar(42);primaryKey" json:"address"`
	Whitelisted         bool      `gorm:"column:whitelisted;not null;default:false" json:"whitelisted"`
	TotalUnitsPurchased Amount    `gorm:"column:total_units_purchased;type:varchar(80);not null" json:"total_units_purchased"`
	TotalPaidIn         Amount    `gorm:"column:total_paid_in;type:varchar(80);not null" json:"total_paid_in"`
	UnclaimedProfit     Amount    `gorm:"column:unclaimed_profit;type:varchar(80);not null" json:"unclaimed_profit"`
	RepurchasedUnits    Amount    `gorm:"column:repurchased_units;type:varchar(80);not null" json:"repurchased_units"`
	LastPurchaseAt      int64     `gorm:"column:last_purchase_at;not null;default:0" json:"last_purchase_at"`
	RegistryIndex       *uint64   `gorm:"column:registry_index;uniqueIndex" json:"registry_index"`
	CreatedAt           time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt           time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Investor) TableName() string {
	return "Investors"
}

// InRegistry reports whether the investor has an ordered-list slot.
func (i *Investor) InRegistry() bool {
	return i.RegistryIndex != nil
}
