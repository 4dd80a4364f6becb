package main

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/BrewPassApp/BrewPass/app/models"
	"github.com/BrewPassApp/BrewPass/app/repository"
	"github.com/BrewPassApp/BrewPass/internal/pkg/database"
	"github.com/BrewPassApp/BrewPass/internal/pkg/env"
	"github.com/BrewPassApp/BrewPass/internal/pkg/payment"
)

const syncTimeout = 60 * time.Second

// Pulls the subscription plan catalog from Square and upserts it into the
// plans and plan_variations tables. Credit grants and charge amounts are
// configured locally and are never overwritten by a sync.
func main() {
	env.SetupEnvFile()
	database.SetupDatabase()
	repository.InitializeFactory(database.GetDB())

	client := payment.NewSquareClientFromEnv()
	if !client.Configured() {
		log.Fatal("Square gateway is not configured, set SQUARE_ACCESS_TOKEN and SQUARE_LOCATION_ID")
	}

	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	objects, err := client.ListSubscriptionCatalog(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch the subscription catalog: %v", err)
	}
	log.Printf("Fetched %d catalog objects", len(objects))

	repo := repository.GetGlobalFactory().GetPlanRepository()

	plans, variations := 0, 0
	for _, obj := range objects {
		if obj.Type != "SUBSCRIPTION_PLAN" || obj.SubscriptionPlanData == nil {
			continue
		}

		status := "ACTIVE"
		if obj.IsDeleted {
			status = "INACTIVE"
		}

		if err := upsertPlan(repo, obj.ID, obj.SubscriptionPlanData.Name, status); err != nil {
			log.Fatalf("Failed to sync plan %s: %v", obj.ID, err)
		}
		plans++

		for _, cv := range obj.SubscriptionPlanData.Variations {
			v := variationFromCatalog(obj.ID, cv)
			if obj.IsDeleted {
				v.Status = "INACTIVE"
			}
			if err := repo.UpsertVariation(v); err != nil {
				log.Fatalf("Failed to sync plan variation %s: %v", cv.ID, err)
			}
			variations++
		}
	}

	log.Printf("Catalog sync complete: %d plans, %d variations", plans, variations)
}

func upsertPlan(repo repository.PlanRepository, objectID, name, status string) error {
	existing, err := repo.GetByObjectID(objectID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return repo.Create(&models.Plan{
				ObjectID: objectID,
				Name:     name,
				Status:   status,
			})
		}
		return err
	}

	existing.Name = name
	existing.Status = status
	return repo.Update(existing)
}

func variationFromCatalog(planObjectID string, cv payment.CatalogVariation) *models.PlanVariation {
	v := &models.PlanVariation{
		ObjectID:           cv.ID,
		PlanID:             planObjectID,
		Name:               cv.SubscriptionPlanVariation.Name,
		Status:             "ACTIVE",
		Cadence:            models.CadenceMonthly,
		CreditChargeAmount: 1,
	}
	if cv.IsDeleted {
		v.Status = "INACTIVE"
	}
	if len(cv.SubscriptionPlanVariation.Phases) > 0 {
		phase := cv.SubscriptionPlanVariation.Phases[0]
		if phase.Cadence != "" {
			v.Cadence = phase.Cadence
		}
		v.Amount = phase.Pricing.PriceMoney.Amount
	}
	return v
}
