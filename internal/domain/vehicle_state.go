package domain

import "time"

// VehicleStateID is the primary key of the only VehicleState row.
const VehicleStateID = 1

// VehicleState holds the process-wide settings and checkpoints of the vehicle.
type VehicleState struct {
	ID                   uint           `gorm:"column:id;primaryKey" json:"-"`
	Owner                string         `gorm:"column:owner;type:varchar(42);not null" json:"owner"`
	PlatformWallet       string         `gorm:"column:platform_wallet;type:varchar(42)" json:"platform_wallet"`
	Status               WorkflowStatus `gorm:"column:status;not null;default:0" json:"status"`
	Paused               bool           `gorm:"column:paused;not null;default:false" json:"paused"`
	InvestorCount        uint64         `gorm:"column:investor_count;not null;default:0" json:"investor_count"`
	FinalRepurchasePrice *Amount        `gorm:"column:final_repurchase_price;type:varchar(80)" json:"final_repurchase_price"`
	FinalSupplySnapshot  *Amount        `gorm:"column:final_supply_snapshot;type:varchar(80)" json:"final_supply_snapshot"`
	BuybackFinalized     bool           `gorm:"column:buyback_finalized;not null;default:false" json:"buyback_finalized"`
	NotificationSeq      uint64         `gorm:"column:notification_seq;not null;default:0" json:"-"`
	CreatedAt            time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt            time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
}

func (VehicleState) TableName() string {
	return "VehicleState"
}

// BuybackBegun reports whether the repurchase price has been frozen.
func (s *VehicleState) BuybackBegun() bool {
	return s.FinalRepurchasePrice != nil
}
