package models

import "time"

// Subscription status values as reported by the billing backend. The set is
// server-defined; anything unrecognized is treated as not active.
const (
	SubscriptionStatusActive    = "ACTIVE"
	SubscriptionStatusCancelled = "CANCELLED"
	SubscriptionStatusPending   = "PENDING"
	SubscriptionStatusCompleted = "COMPLETED"
)

// Subscription is one user's enrollment in one plan variation. Status is
// driven by billing events; the application reads it and reacts, it never
// flips status outside of billing flows.
type Subscription struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	ObjectID              string     `gorm:"type:varchar(191);uniqueIndex" json:"object_id"`
	UserID                uint       `gorm:"not null;index" json:"user_id"`
	Status                string     `gorm:"type:varchar(32);not null;default:'PENDING';index" json:"status"`
	PlanVariationID       string     `gorm:"type:varchar(191);not null;index" json:"plan_variation_id"`
	CardID                string     `gorm:"type:varchar(191);default:''" json:"card_id"`
	Cadence               string     `gorm:"type:varchar(16);not null;default:'MONTHLY'" json:"cadence"`
	StartDate             *time.Time `gorm:"type:timestamp;default:null" json:"start_date,omitempty"`
	EndDate               *time.Time `gorm:"type:timestamp;default:null" json:"end_date,omitempty"`
	AvailableCredit       int        `gorm:"not null;default:0" json:"available_credit"`
	GiftCredit            int        `gorm:"not null;default:0" json:"gift_credit"`
	SubscriptionAmount    int64      `gorm:"not null;default:0" json:"subscription_amount"` // minor currency units
	DailyRedemptionActive bool       `gorm:"default:false" json:"daily_redemption_active"`
	RedemptionQuantity    int        `gorm:"not null;default:0" json:"redemption_quantity"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	PlanVariation *PlanVariation `gorm:"foreignKey:PlanVariationID;references:ObjectID" json:"plan_variation,omitempty"`
}

// IsActive reports whether the subscription is currently active.
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}
