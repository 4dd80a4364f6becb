package ledger

import (
	"github.com/BrewPassApp/BrewPass/app/models"
)

// Eligibility describes the subscribe state of a plan variation for a user.
type Eligibility int

const (
	// Eligible means the user has no active subscription at all.
	Eligible Eligibility = iota
	// AlreadySubscribedToThis means an active subscription matches the
	// queried variation.
	AlreadySubscribedToThis
	// AlreadySubscribedToOther means an active subscription exists but for
	// a different variation.
	AlreadySubscribedToOther
)

// GenericOtherPlanLabel is used when the currently subscribed variation's
// display name cannot be resolved.
const GenericOtherPlanLabel = "another plan"

// VariationEligibility is the evaluator's answer for a single variation.
type VariationEligibility struct {
	State Eligibility
	// CurrentPlanName carries the display name of the variation an active
	// subscription points at when State is AlreadySubscribedToOther.
	CurrentPlanName string
}

// TotalCredits sums available and gift credit over all subscriptions
// regardless of status. Dashboard totals are status-agnostic on purpose:
// cancelled subscriptions keep displaying their recorded balances.
func TotalCredits(subs []models.Subscription) int {
	total := 0
	for _, s := range subs {
		total += s.AvailableCredit + s.GiftCredit
	}
	return total
}

// SubscriberCredits sums available credit over all subscriptions.
func SubscriberCredits(subs []models.Subscription) int {
	total := 0
	for _, s := range subs {
		total += s.AvailableCredit
	}
	return total
}

// GuestCredits sums gift credit over all subscriptions.
func GuestCredits(subs []models.Subscription) int {
	total := 0
	for _, s := range subs {
		total += s.GiftCredit
	}
	return total
}

// RedeemableCredits sums available credit only. Gift credit displays but
// never funds redemption requests.
func RedeemableCredits(subs []models.Subscription) int {
	return SubscriberCredits(subs)
}

// HasActiveSubscription reports whether any subscription is ACTIVE.
func HasActiveSubscription(subs []models.Subscription) bool {
	for _, s := range subs {
		if s.Status == models.SubscriptionStatusActive {
			return true
		}
	}
	return false
}

// ActiveSubscriptions filters to ACTIVE subscriptions, preserving input
// order. Multiple active subscriptions violate the advisory single-active
// rule but are returned as-is.
func ActiveSubscriptions(subs []models.Subscription) []models.Subscription {
	var active []models.Subscription
	for _, s := range subs {
		if s.Status == models.SubscriptionStatusActive {
			active = append(active, s)
		}
	}
	return active
}

// IsSubscribedTo reports whether an active subscription to the given plan
// variation exists.
func IsSubscribedTo(subs []models.Subscription, variationID string) bool {
	for _, s := range subs {
		if s.Status == models.SubscriptionStatusActive && s.PlanVariationID == variationID {
			return true
		}
	}
	return false
}

// EligibilityForVariation classifies a variation for the subscribe action.
// Exact match is checked before the any-active rule; with duplicate active
// subscriptions the first match in input order wins.
func EligibilityForVariation(subs []models.Subscription, variation models.PlanVariation) VariationEligibility {
	if IsSubscribedTo(subs, variation.ObjectID) {
		return VariationEligibility{State: AlreadySubscribedToThis}
	}

	for _, s := range subs {
		if s.Status != models.SubscriptionStatusActive {
			continue
		}
		name := GenericOtherPlanLabel
		if s.PlanVariation != nil && s.PlanVariation.Name != "" {
			name = s.PlanVariation.Name
		}
		return VariationEligibility{State: AlreadySubscribedToOther, CurrentPlanName: name}
	}

	return VariationEligibility{State: Eligible}
}

// CanCreateRedemption reports whether a redemption request is permitted:
// subscriber (non-gift) credits must be strictly positive.
func CanCreateRedemption(subs []models.Subscription) bool {
	return RedeemableCredits(subs) > 0
}
