package models

import "time"

// Cadence values used by plan variations and subscriptions.
const (
	CadenceDaily   = "DAILY"
	CadenceWeekly  = "WEEKLY"
	CadenceMonthly = "MONTHLY"
	CadenceYearly  = "YEARLY"
)

// Plan is a subscription product. A plan owns one or more purchasable
// variations; plans are read-only from the customer's perspective.
type Plan struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ObjectID  string    `gorm:"type:varchar(191);uniqueIndex" json:"object_id"`
	Name      string    `gorm:"type:varchar(191);not null" json:"name"`
	Status    string    `gorm:"type:varchar(32);not null;default:'ACTIVE'" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Variations []PlanVariation `gorm:"foreignKey:PlanID;references:ObjectID" json:"variations,omitempty"`
}

// PlanVariation is one purchasable tier of a plan: price, cadence and the
// credit grants awarded per billing cycle.
type PlanVariation struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	ObjectID              string    `gorm:"type:varchar(191);uniqueIndex" json:"object_id"`
	PlanID                string    `gorm:"type:varchar(191);not null;index" json:"plan_id"`
	Name                  string    `gorm:"type:varchar(191);not null" json:"name"`
	Status                string    `gorm:"type:varchar(32);not null;default:'ACTIVE'" json:"status"`
	Cadence               string    `gorm:"type:varchar(16);not null;default:'MONTHLY'" json:"cadence"`
	Amount                int64     `gorm:"not null;default:0" json:"amount"` // minor currency units
	Credit                int       `gorm:"not null;default:0" json:"credit"`
	CreditChargeAmount    int       `gorm:"not null;default:1" json:"credit_charge_amount"`
	GiftCredit            int       `gorm:"not null;default:0" json:"gift_credit"`
	Description           string    `gorm:"type:text" json:"description"`
	ImageLink             string    `gorm:"type:varchar(255);default:''" json:"image_link"`
	DailyRedemptionActive bool      `gorm:"default:false" json:"daily_redemption_active"`
	RedemptionQuantity    int       `gorm:"not null;default:0" json:"redemption_quantity"`
	ViewCount             int64     `gorm:"not null;default:0" json:"view_count"`
	RedemptionCount       int64     `gorm:"not null;default:0" json:"redemption_count"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
