package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Deposit outcomes.
const (
	DepositCredited = "credited"
	DepositRejected = "rejected"
)

// Deposit records a custody notification so replays are ignored.
type Deposit struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProviderEventID string         `gorm:"column:provider_event_id;uniqueIndex;not null" json:"provider_event_id"`
	FromAddress     string         `gorm:"column:from_address;type:varchar(42);not null" json:"from_address"`
	Asset           string         `gorm:"column:asset;type:varchar(64);not null;default:native" json:"asset"`
	Amount          Amount         `gorm:"column:amount;type:varchar(80);not null" json:"amount"`
	CallData        string         `gorm:"column:call_data" json:"call_data"`
	Status          string         `gorm:"column:status;not null" json:"status"`
	RawEvent        datatypes.JSON `gorm:"column:raw_event" json:"raw_event"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

func (Deposit) TableName() string {
	return "Deposits"
}

func (d *Deposit) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
