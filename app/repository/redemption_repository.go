package repository

import (
	"gorm.io/gorm"

	"github.com/BrewPassApp/BrewPass/app/models"
)

// redemptionRepository implements the RedemptionRepository interface
type redemptionRepository struct {
	db *gorm.DB
}

// NewRedemptionRepository creates a new redemption repository instance
func NewRedemptionRepository(db *gorm.DB) RedemptionRepository {
	return &redemptionRepository{db: db}
}

// Create creates a new redemption in the database
func (r *redemptionRepository) Create(red *models.Redemption) error {
	return r.db.Create(red).Error
}

// GetByID retrieves a redemption by its ID
func (r *redemptionRepository) GetByID(id uint) (*models.Redemption, error) {
	var red models.Redemption
	err := r.db.First(&red, id).Error
	if err != nil {
		return nil, err
	}
	return &red, nil
}

// GetByOrderID retrieves a redemption by its order id
func (r *redemptionRepository) GetByOrderID(orderID string) (*models.Redemption, error) {
	var red models.Redemption
	err := r.db.Where("order_id = ?", orderID).First(&red).Error
	if err != nil {
		return nil, err
	}
	return &red, nil
}

// GetByUserID retrieves a user's redemptions, newest first
func (r *redemptionRepository) GetByUserID(userID uint, offset, limit int) ([]models.Redemption, error) {
	var reds []models.Redemption
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&reds).Error
	return reds, err
}

// Update updates an existing redemption
func (r *redemptionRepository) Update(red *models.Redemption) error {
	return r.db.Save(red).Error
}

// List retrieves redemptions across all users, newest first
func (r *redemptionRepository) List(offset, limit int) ([]models.Redemption, error) {
	var reds []models.Redemption
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reds).Error
	return reds, err
}

// ListByStatus retrieves redemptions in the given status, newest first
func (r *redemptionRepository) ListByStatus(status string, offset, limit int) ([]models.Redemption, error) {
	var reds []models.Redemption
	err := r.db.Where("status = ?", status).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&reds).Error
	return reds, err
}

// Count returns the total number of redemptions
func (r *redemptionRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Redemption{}).Count(&count).Error
	return count, err
}

// CountByStatus returns the number of redemptions in the given status
func (r *redemptionRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Redemption{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
