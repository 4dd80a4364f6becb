package controllers

import (
	"sync"

	"github.com/BrewPassApp/BrewPass/internal/pkg/database"
	"github.com/BrewPassApp/BrewPass/internal/pkg/loyalty"
	"github.com/BrewPassApp/BrewPass/internal/pkg/payment"
)

var (
	loyaltyService *loyalty.Service
	loyaltyOnce    sync.Once
)

// getLoyaltyService lazily builds the shared loyalty service on top of the
// global DB handle and the Square gateway client.
func getLoyaltyService() *loyalty.Service {
	loyaltyOnce.Do(func() {
		loyaltyService = loyalty.NewServiceFromDB(database.GetDB(), payment.NewSquareClientFromEnv())
	})
	return loyaltyService
}

// SetLoyaltyService overrides the shared service. Used by tests.
func SetLoyaltyService(svc *loyalty.Service) {
	loyaltyOnce.Do(func() {})
	loyaltyService = svc
}
