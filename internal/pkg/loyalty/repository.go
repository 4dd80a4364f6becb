package loyalty

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BrewPassApp/BrewPass/app/models"
)

// RedemptionWithUser is a redemption joined with the requesting user's
// contact data for the admin view.
type RedemptionWithUser struct {
	Redemption models.Redemption
	UserName   string
	UserEmail  string
	CustomerID string
}

// Repository provides DB operations used by the loyalty service.
type Repository interface {
	GetUserByID(id uint) (*models.User, error)
	GetVariationByObjectID(objectID string) (*models.PlanVariation, error)
	ListSubscriptionsByUser(userID uint) ([]models.Subscription, error)
	GetSubscriptionByID(id uint) (*models.Subscription, error)
	GetSubscriptionByObjectID(objectID string) (*models.Subscription, error)
	CreateSubscription(sub *models.Subscription) error
	SaveSubscription(sub *models.Subscription) error
	CreateRedemption(r *models.Redemption) error
	GetRedemptionByID(id uint) (*models.Redemption, error)
	SaveRedemption(r *models.Redemption) error
	ListRedemptionsByUser(userID uint, offset, limit int) ([]models.Redemption, error)
	ListRedemptions(offset, limit int) ([]RedemptionWithUser, error)
	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a loyalty repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) GetVariationByObjectID(objectID string) (*models.PlanVariation, error) {
	var v models.PlanVariation
	if err := r.db.Where("object_id = ?", objectID).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *gormRepository) ListSubscriptionsByUser(userID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Preload("PlanVariation").
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&subs).Error
	return subs, err
}

func (r *gormRepository) GetSubscriptionByID(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.Preload("PlanVariation").First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) GetSubscriptionByObjectID(objectID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.Where("object_id = ?", objectID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) CreateSubscription(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *gormRepository) SaveSubscription(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}

func (r *gormRepository) CreateRedemption(red *models.Redemption) error {
	return r.db.Create(red).Error
}

func (r *gormRepository) GetRedemptionByID(id uint) (*models.Redemption, error) {
	var red models.Redemption
	if err := r.db.First(&red, id).Error; err != nil {
		return nil, err
	}
	return &red, nil
}

func (r *gormRepository) SaveRedemption(red *models.Redemption) error {
	return r.db.Save(red).Error
}

func (r *gormRepository) ListRedemptionsByUser(userID uint, offset, limit int) ([]models.Redemption, error) {
	var reds []models.Redemption
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&reds).Error
	return reds, err
}

func (r *gormRepository) ListRedemptions(offset, limit int) ([]RedemptionWithUser, error) {
	var reds []models.Redemption
	err := r.db.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&reds).Error
	if err != nil {
		return nil, err
	}

	out := make([]RedemptionWithUser, 0, len(reds))
	for _, red := range reds {
		item := RedemptionWithUser{Redemption: red}
		var user models.User
		if err := r.db.First(&user, red.UserID).Error; err == nil {
			item.UserName = user.Name
			item.UserEmail = user.Email
			item.CustomerID = user.SquareCustomerID
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
