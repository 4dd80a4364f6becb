package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BrewPassApp/BrewPass/app/models"
)

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// Create creates a new plan in the database
func (r *planRepository) Create(plan *models.Plan) error {
	return r.db.Create(plan).Error
}

// GetByObjectID retrieves a plan by its catalog object id, variations included
func (r *planRepository) GetByObjectID(objectID string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.Preload("Variations").Where("object_id = ?", objectID).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetAll retrieves every plan with its variations
func (r *planRepository) GetAll() ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Preload("Variations").Order("created_at ASC").Find(&plans).Error
	return plans, err
}

// GetActive retrieves plans offered for purchase
func (r *planRepository) GetActive() ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Preload("Variations", "status = ?", "ACTIVE").
		Where("status = ?", "ACTIVE").
		Order("created_at ASC").
		Find(&plans).Error
	return plans, err
}

// Update updates an existing plan
func (r *planRepository) Update(plan *models.Plan) error {
	return r.db.Save(plan).Error
}

// GetVariationByObjectID retrieves a single plan variation by catalog object id
func (r *planRepository) GetVariationByObjectID(objectID string) (*models.PlanVariation, error) {
	var v models.PlanVariation
	err := r.db.Where("object_id = ?", objectID).First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetActiveVariations retrieves all purchasable plan variations
func (r *planRepository) GetActiveVariations() ([]models.PlanVariation, error) {
	var variations []models.PlanVariation
	err := r.db.Where("status = ?", "ACTIVE").Order("amount ASC").Find(&variations).Error
	return variations, err
}

// UpsertVariation inserts or updates a variation keyed by its catalog object
// id. Only catalog-owned columns are overwritten on conflict; the credit
// grants and charge amounts are configured locally and survive resyncs.
func (r *planRepository) UpsertVariation(v *models.PlanVariation) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "object_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan_id", "name", "status", "cadence", "amount",
		}),
	}).Create(v).Error
}
