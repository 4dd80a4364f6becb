package models

import "time"

// Redemption status values. A redemption is created PENDING by the customer
// and only ever transitioned by an administrator.
const (
	RedemptionStatusPending   = "PENDING"
	RedemptionStatusApproved  = "APPROVED"
	RedemptionStatusRejected  = "REJECTED"
	RedemptionStatusActive    = "ACTIVE"
	RedemptionStatusCompleted = "COMPLETED"
	RedemptionStatusCancelled = "CANCELLED"
)

// Redemption is one customer redemption request. Append-only from the
// customer's point of view: never edited or deleted after creation.
type Redemption struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	OrderID           string    `gorm:"type:varchar(191);uniqueIndex" json:"order_id"`
	UserID            uint      `gorm:"not null;index" json:"user_id"`
	SubscriptionID    uint      `gorm:"not null;index" json:"subscription_id"`
	ChargedCredit     int       `gorm:"not null;default:0" json:"charged_credit"`
	Status            string    `gorm:"type:varchar(32);not null;default:'PENDING';index" json:"status"`
	PlanVariationName string    `gorm:"type:varchar(191);default:''" json:"plan_variation_name"`
	InfoOne           string    `gorm:"type:text" json:"info_one"`
	InfoTwo           string    `gorm:"type:text" json:"info_two"`
	InfoThree         string    `gorm:"type:text" json:"info_three"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsPending reports whether an admin decision is still outstanding.
func (r *Redemption) IsPending() bool {
	return r.Status == RedemptionStatusPending
}
