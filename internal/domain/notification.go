package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification names.
const (
	EventInvestorWhitelisted   = "InvestorWhitelisted"
	EventInvestorRemoved       = "InvestorRemovedFromWhitelist"
	EventWorkflowStatusChanged = "WorkflowStatusChanged"
	EventTokensPurchased       = "TokensPurchased"
	EventProfitsDistributed    = "ProfitsDistributed"
	EventProfitsClaimed        = "ProfitsClaimed"
	EventBuybackStarted        = "BuybackStarted"
	EventBuybackExecuted       = "BuybackExecuted"
	EventPaused                = "Paused"
	EventUnpaused              = "Unpaused"
	EventEmergencyWithdrawal   = "EmergencyWithdrawal"
	EventOwnershipTransferred  = "OwnershipTransferred"
	EventPaymentReceived       = "PaymentReceived"
	EventFallbackCalled        = "FallbackCalled"
	EventTransfer              = "Transfer"
)

// Notification is an ordered, persisted event emitted by a committed operation.
type Notification struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Seq       uint64         `gorm:"column:seq;not null;uniqueIndex" json:"seq"`
	Name      string         `gorm:"column:name;type:varchar(64);not null;index" json:"name"`
	Actor     string         `gorm:"column:actor;type:varchar(42)" json:"actor"`
	Payload   datatypes.JSON `gorm:"column:payload" json:"payload"`
	Digest    string         `gorm:"column:digest;type:varchar(66);not null" json:"digest"`
	CreatedAt time.Time      `gorm:"column:createdAt" json:"createdAt"`
}

func (Notification) TableName() string {
	return "Notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
