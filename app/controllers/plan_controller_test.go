package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BrewPassApp/BrewPass/app/models"
)

func TestButtonTextFor(t *testing.T) {
	t.Parallel()

	morning := models.PlanVariation{ObjectID: "V1", Name: "Morning Brew"}
	double := models.PlanVariation{ObjectID: "V2", Name: "Double Shot"}

	activeMorning := models.Subscription{
		Status:          models.SubscriptionStatusActive,
		PlanVariationID: "V1",
		PlanVariation:   &morning,
	}
	cancelledMorning := models.Subscription{
		Status:          models.SubscriptionStatusCancelled,
		PlanVariationID: "V1",
		PlanVariation:   &morning,
	}

	tests := []struct {
		name string
		subs []models.Subscription
		v    models.PlanVariation
		want string
	}{
		{
			name: "no subscriptions",
			subs: nil,
			v:    morning,
			want: "Subscribe Now",
		},
		{
			name: "active subscription to this plan",
			subs: []models.Subscription{activeMorning},
			v:    morning,
			want: "Already Subscribed",
		},
		{
			name: "active subscription to another plan names it",
			subs: []models.Subscription{activeMorning},
			v:    double,
			want: "Already have: Morning Brew",
		},
		{
			name: "cancelled subscription does not block",
			subs: []models.Subscription{cancelledMorning},
			v:    morning,
			want: "Subscribe Now",
		},
		{
			name: "other active without resolvable name uses generic label",
			subs: []models.Subscription{{
				Status:          models.SubscriptionStatusActive,
				PlanVariationID: "V1",
			}},
			v:    double,
			want: "Already have: another plan",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, buttonTextFor(tc.subs, tc.v))
		})
	}
}
