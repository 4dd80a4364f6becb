package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/BrewPassApp/BrewPass/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
	GetWithStats(offset, limit int) ([]UserWithStats, error)
	GetDailyStats(startDate, endDate time.Time) ([]DailyStats, error)
}

// PlanRepository defines the interface for plan catalog operations
type PlanRepository interface {
	Create(plan *models.Plan) error
	GetByObjectID(objectID string) (*models.Plan, error)
	GetAll() ([]models.Plan, error)
	GetActive() ([]models.Plan, error)
	Update(plan *models.Plan) error
	GetVariationByObjectID(objectID string) (*models.PlanVariation, error)
	GetActiveVariations() ([]models.PlanVariation, error)
	UpsertVariation(v *models.PlanVariation) error
}

// SubscriptionRepository defines the interface for subscription operations
type SubscriptionRepository interface {
	Create(sub *models.Subscription) error
	GetByID(id uint) (*models.Subscription, error)
	GetByObjectID(objectID string) (*models.Subscription, error)
	GetByUserID(userID uint) ([]models.Subscription, error)
	Update(sub *models.Subscription) error
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
}

// RedemptionRepository defines the interface for redemption operations
type RedemptionRepository interface {
	Create(red *models.Redemption) error
	GetByID(id uint) (*models.Redemption, error)
	GetByOrderID(orderID string) (*models.Redemption, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Redemption, error)
	Update(red *models.Redemption) error
	List(offset, limit int) ([]models.Redemption, error)
	ListByStatus(status string, offset, limit int) ([]models.Redemption, error)
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
}

// UserWithStats represents a user with additional statistics
type UserWithStats struct {
	User              models.User
	SubscriptionCount int64
	RedemptionCount   int64
	TotalCredit       int64
}

// DailyStats is one day's registration count for the admin dashboard chart.
type DailyStats struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Plan         PlanRepository
	Subscription SubscriptionRepository
	Redemption   RedemptionRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Plan:         NewPlanRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Redemption:   NewRedemptionRepository(db),
	}
}
