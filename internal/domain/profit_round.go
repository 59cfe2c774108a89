package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfitRound is one distribution of incoming profit, processed over the registry in batches.
type ProfitRound struct {
	RoundID        uuid.UUID `gorm:"column:round_id;type:uuid;primaryKey" json:"round_id"`
	Amount         Amount    `gorm:"column:amount;type:varchar(80);not null" json:"amount"`
	SnapshotSupply Amount    `gorm:"column:snapshot_supply;type:varchar(80);not null" json:"snapshot_supply"`
	InvestorCount  uint64    `gorm:"column:investor_count;not null" json:"investor_count"`
	Cursor         uint64    `gorm:"column:cursor;not null;default:0" json:"cursor"`
	Accrued        Amount    `gorm:"column:accrued;type:varchar(80);not null" json:"accrued"`
	Completed      bool      `gorm:"column:completed;not null;default:false;index" json:"completed"`
	CreatedAt      time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (ProfitRound) TableName() string {
	return "ProfitRounds"
}

func (r *ProfitRound) BeforeCreate(tx *gorm.DB) error {
	if r.RoundID == uuid.Nil {
		r.RoundID = uuid.New()
	}
	return nil
}

// Remaining is the number of registry slots not yet processed.
func (r *ProfitRound) Remaining() uint64 {
	return r.InvestorCount - r.Cursor
}
