package loyalty

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BrewPassApp/BrewPass/app/models"
	"github.com/BrewPassApp/BrewPass/internal/pkg/ledger"
	"github.com/BrewPassApp/BrewPass/internal/pkg/mail"
	"github.com/BrewPassApp/BrewPass/internal/pkg/payment"
)

// Errors callers branch on for user-facing messaging.
var (
	ErrAlreadySubscribed       = errors.New("an active subscription for this plan already exists")
	ErrOtherActiveSubscription = errors.New("an active subscription for another plan already exists")
	ErrNoRedeemableCredit      = errors.New("no redeemable subscriber credit available")
	ErrRedemptionNotPending    = errors.New("redemption is not pending")
	ErrNotOwned                = errors.New("resource does not belong to this user")
)

// PaymentGateway is the slice of the Square client the service needs.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, in payment.CreatePaymentInput) (*payment.Payment, error)
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// Service implements the credit/subscription/redemption business rules on
// top of an injected repository and payment gateway. Eligibility decisions
// are delegated to the ledger package so no call site re-derives them.
type Service struct {
	repo    Repository
	gateway PaymentGateway

	// sendDecisionMail is swappable for tests.
	sendDecisionMail func(to, orderID, status string) error
}

// NewService creates a loyalty service from injected collaborators.
func NewService(repo Repository, gateway PaymentGateway) *Service {
	return &Service{
		repo:             repo,
		gateway:          gateway,
		sendDecisionMail: mail.SendRedemptionDecisionMail,
	}
}

// NewServiceFromDB creates a loyalty service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, gateway PaymentGateway) *Service {
	return NewService(NewRepository(db), gateway)
}

// ListSubscriptions returns the user's subscriptions, variation embeds
// included, in stable creation order.
func (s *Service) ListSubscriptions(ctx context.Context, userID uint) ([]models.Subscription, error) {
	_ = ctx
	return s.repo.ListSubscriptionsByUser(userID)
}

// Subscribe collects payment for a plan variation and creates an ACTIVE
// subscription with the variation's credit grants. The single-active rule is
// advisory: it is enforced here before any money moves, but the evaluator
// still tolerates pre-existing violations.
func (s *Service) Subscribe(ctx context.Context, userID uint, variationObjectID, cardSourceID string) (*models.Subscription, error) {
	variation, err := s.repo.GetVariationByObjectID(strings.TrimSpace(variationObjectID))
	if err != nil {
		return nil, fmt.Errorf("resolve plan variation: %w", err)
	}

	subs, err := s.repo.ListSubscriptionsByUser(userID)
	if err != nil {
		return nil, err
	}
	switch ledger.EligibilityForVariation(subs, *variation).State {
	case ledger.AlreadySubscribedToThis:
		return nil, ErrAlreadySubscribed
	case ledger.AlreadySubscribedToOther:
		return nil, ErrOtherActiveSubscription
	}

	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	pay, err := s.gateway.CreatePayment(ctx, payment.CreatePaymentInput{
		SourceID:   cardSourceID,
		Amount:     variation.Amount,
		CustomerID: user.SquareCustomerID,
		Note:       fmt.Sprintf("BrewPass subscription: %s", variation.Name),
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sub := &models.Subscription{
		ObjectID:              "sub_" + uuid.NewString(),
		UserID:                userID,
		Status:                models.SubscriptionStatusActive,
		PlanVariationID:       variation.ObjectID,
		CardID:                cardSourceID,
		Cadence:               variation.Cadence,
		StartDate:             &now,
		AvailableCredit:       variation.Credit,
		GiftCredit:            variation.GiftCredit,
		SubscriptionAmount:    variation.Amount,
		DailyRedemptionActive: variation.DailyRedemptionActive,
		RedemptionQuantity:    variation.RedemptionQuantity,
	}
	if err := s.repo.CreateSubscription(sub); err != nil {
		return nil, fmt.Errorf("create subscription after payment %s: %w", pay.ID, err)
	}
	sub.PlanVariation = variation
	return sub, nil
}

// GetSubscription returns a subscription by id, variation embed included.
func (s *Service) GetSubscription(ctx context.Context, id uint) (*models.Subscription, error) {
	_ = ctx
	return s.repo.GetSubscriptionByID(id)
}

// CancelSubscription marks an owned subscription CANCELLED. Credits stay on
// record: dashboard totals remain status-agnostic.
func (s *Service) CancelSubscription(ctx context.Context, userID, subscriptionID uint) (*models.Subscription, error) {
	_ = ctx
	sub, err := s.repo.GetSubscriptionByID(subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, ErrNotOwned
	}

	now := time.Now()
	sub.Status = models.SubscriptionStatusCancelled
	sub.EndDate = &now
	if err := s.repo.SaveSubscription(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// CreateRedemption charges subscriber credit and creates a PENDING
// redemption. Gating uses the ledger: subscriber credit must be strictly
// positive; gift credit never funds redemptions. The charge is taken from
// the first subscription in creation order that still has available credit,
// matching the status-agnostic credit display.
func (s *Service) CreateRedemption(ctx context.Context, userID uint) (*models.Redemption, error) {
	_ = ctx
	subs, err := s.repo.ListSubscriptionsByUser(userID)
	if err != nil {
		return nil, err
	}
	if !ledger.CanCreateRedemption(subs) {
		return nil, ErrNoRedeemableCredit
	}

	var source *models.Subscription
	for i := range subs {
		if subs[i].AvailableCredit > 0 {
			source = &subs[i]
			break
		}
	}
	if source == nil {
		return nil, ErrNoRedeemableCredit
	}

	charge := 1
	variationName := ""
	if source.PlanVariation != nil {
		variationName = source.PlanVariation.Name
		if source.PlanVariation.CreditChargeAmount > 0 {
			charge = source.PlanVariation.CreditChargeAmount
		}
	}
	if charge > source.AvailableCredit {
		charge = source.AvailableCredit
	}

	source.AvailableCredit -= charge
	if err := s.repo.SaveSubscription(source); err != nil {
		return nil, err
	}

	red := &models.Redemption{
		OrderID:           "rdm_" + uuid.NewString(),
		UserID:            userID,
		SubscriptionID:    source.ID,
		ChargedCredit:     charge,
		Status:            models.RedemptionStatusPending,
		PlanVariationName: variationName,
	}
	if err := s.repo.CreateRedemption(red); err != nil {
		// Roll the charge back so the ledger stays consistent.
		source.AvailableCredit += charge
		if saveErr := s.repo.SaveSubscription(source); saveErr != nil {
			return nil, fmt.Errorf("create redemption: %v (refund failed: %w)", err, saveErr)
		}
		return nil, err
	}
	return red, nil
}

// ListRedemptions returns the user's redemption history, newest first.
func (s *Service) ListRedemptions(ctx context.Context, userID uint, offset, limit int) ([]models.Redemption, error) {
	_ = ctx
	return s.repo.ListRedemptionsByUser(userID, offset, limit)
}

// ListAllRedemptions returns redemptions across all users for the admin
// view, each joined with the requesting user's contact data.
func (s *Service) ListAllRedemptions(ctx context.Context, offset, limit int) ([]RedemptionWithUser, error) {
	_ = ctx
	return s.repo.ListRedemptions(offset, limit)
}

// DecideRedemption applies an admin approve/reject decision to a PENDING
// redemption. Rejection refunds the charged credit to the originating
// subscription. The decision email is best-effort.
func (s *Service) DecideRedemption(ctx context.Context, redemptionID uint, approve bool) (*models.Redemption, error) {
	_ = ctx
	red, err := s.repo.GetRedemptionByID(redemptionID)
	if err != nil {
		return nil, err
	}
	if !red.IsPending() {
		return nil, ErrRedemptionNotPending
	}

	if approve {
		red.Status = models.RedemptionStatusApproved
	} else {
		red.Status = models.RedemptionStatusRejected
	}
	if err := s.repo.SaveRedemption(red); err != nil {
		return nil, err
	}

	if !approve && red.ChargedCredit > 0 {
		if sub, err := s.repo.GetSubscriptionByID(red.SubscriptionID); err == nil {
			sub.AvailableCredit += red.ChargedCredit
			if err := s.repo.SaveSubscription(sub); err != nil {
				return nil, fmt.Errorf("refund rejected redemption %s: %w", red.OrderID, err)
			}
		}
	}

	if s.sendDecisionMail != nil {
		if user, err := s.repo.GetUserByID(red.UserID); err == nil {
			_ = s.sendDecisionMail(user.Email, red.OrderID, strings.ToLower(red.Status))
		}
	}
	return red, nil
}

// RecordWebhookEvent persists gateway webhook payloads idempotently.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.PaymentWebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.PaymentWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

// ApplySubscriptionEvent syncs a gateway-reported subscription status onto
// the local record. Unknown object ids are ignored: the gateway may notify
// about subscriptions this instance never created.
func (s *Service) ApplySubscriptionEvent(ctx context.Context, objectID, status string) error {
	_ = ctx
	objectID = strings.TrimSpace(objectID)
	status = strings.ToUpper(strings.TrimSpace(status))
	if objectID == "" || status == "" {
		return errors.New("object id and status are required")
	}

	sub, err := s.repo.GetSubscriptionByObjectID(objectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	sub.Status = status
	if status == models.SubscriptionStatusCancelled || status == models.SubscriptionStatusCompleted {
		now := time.Now()
		sub.EndDate = &now
	}
	return s.repo.SaveSubscription(sub)
}
