package loyalty

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/BrewPassApp/BrewPass/app/models"
	"github.com/BrewPassApp/BrewPass/internal/pkg/payment"
)

type fakeRepo struct {
	users         map[uint]*models.User
	variations    map[string]*models.PlanVariation
	subscriptions []*models.Subscription
	redemptions   []*models.Redemption
	webhookEvents map[string]*models.PaymentWebhookEvent

	nextSubID uint
	nextRedID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:         map[uint]*models.User{},
		variations:    map[string]*models.PlanVariation{},
		webhookEvents: map[string]*models.PaymentWebhookEvent{},
		nextSubID:     1,
		nextRedID:     1,
	}
}

func (f *fakeRepo) GetUserByID(id uint) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetVariationByObjectID(objectID string) (*models.PlanVariation, error) {
	if v, ok := f.variations[objectID]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListSubscriptionsByUser(userID uint) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, s := range f.subscriptions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetSubscriptionByID(id uint) (*models.Subscription, error) {
	for _, s := range f.subscriptions {
		if s.ID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetSubscriptionByObjectID(objectID string) (*models.Subscription, error) {
	for _, s := range f.subscriptions {
		if s.ObjectID == objectID {
			copied := *s
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) CreateSubscription(sub *models.Subscription) error {
	sub.ID = f.nextSubID
	f.nextSubID++
	copied := *sub
	f.subscriptions = append(f.subscriptions, &copied)
	return nil
}

func (f *fakeRepo) SaveSubscription(sub *models.Subscription) error {
	for i, s := range f.subscriptions {
		if s.ID == sub.ID {
			copied := *sub
			f.subscriptions[i] = &copied
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) CreateRedemption(r *models.Redemption) error {
	r.ID = f.nextRedID
	f.nextRedID++
	copied := *r
	f.redemptions = append(f.redemptions, &copied)
	return nil
}

func (f *fakeRepo) GetRedemptionByID(id uint) (*models.Redemption, error) {
	for _, r := range f.redemptions {
		if r.ID == id {
			copied := *r
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) SaveRedemption(r *models.Redemption) error {
	for i, existing := range f.redemptions {
		if existing.ID == r.ID {
			copied := *r
			f.redemptions[i] = &copied
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListRedemptionsByUser(userID uint, offset, limit int) ([]models.Redemption, error) {
	var out []models.Redemption
	for _, r := range f.redemptions {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListRedemptions(offset, limit int) ([]RedemptionWithUser, error) {
	var out []RedemptionWithUser
	for _, r := range f.redemptions {
		item := RedemptionWithUser{Redemption: *r}
		if u, ok := f.users[r.UserID]; ok {
			item.UserName = u.Name
			item.UserEmail = u.Email
		}
		out = append(out, item)
	}
	return out, nil
}

func (f *fakeRepo) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	key := event.Provider + "/" + event.ProviderEventID
	if stored, ok := f.webhookEvents[key]; ok {
		return false, stored, nil
	}
	event.ID = uint(len(f.webhookEvents) + 1)
	f.webhookEvents[key] = event
	return true, event, nil
}

func (f *fakeRepo) MarkWebhookProcessed(id uint, processingError string) error {
	return nil
}

type fakeGateway struct {
	payments []payment.CreatePaymentInput
	fail     bool
}

func (f *fakeGateway) CreatePayment(_ context.Context, in payment.CreatePaymentInput) (*payment.Payment, error) {
	if f.fail {
		return nil, errors.New("card declined")
	}
	f.payments = append(f.payments, in)
	return &payment.Payment{ID: "pay_1", Status: "COMPLETED"}, nil
}

func newTestService() (*Service, *fakeRepo, *fakeGateway) {
	repo := newFakeRepo()
	gateway := &fakeGateway{}
	svc := NewService(repo, gateway)
	svc.sendDecisionMail = func(to, orderID, status string) error { return nil }

	repo.users[1] = &models.User{ID: 1, Name: "Ada", Email: "ada@example.com", Role: models.ROLE_CUSTOMER}
	repo.variations["V1"] = &models.PlanVariation{
		ObjectID:           "V1",
		PlanID:             "P1",
		Name:               "Morning Brew",
		Cadence:            models.CadenceMonthly,
		Amount:             1500,
		Credit:             5,
		GiftCredit:         3,
		CreditChargeAmount: 1,
	}
	repo.variations["V2"] = &models.PlanVariation{
		ObjectID: "V2",
		PlanID:   "P1",
		Name:     "Double Shot",
		Cadence:  models.CadenceMonthly,
		Amount:   2500,
		Credit:   12,
	}
	return svc, repo, gateway
}

func TestSubscribe_GrantsCredits(t *testing.T) {
	svc, repo, gateway := newTestService()

	sub, err := svc.Subscribe(context.Background(), 1, "V1", "cnon:card")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Status != models.SubscriptionStatusActive {
		t.Fatalf("status = %q, want ACTIVE", sub.Status)
	}
	if sub.AvailableCredit != 5 || sub.GiftCredit != 3 {
		t.Fatalf("credits = %d/%d, want 5/3", sub.AvailableCredit, sub.GiftCredit)
	}
	if len(gateway.payments) != 1 {
		t.Fatalf("expected one payment, got %d", len(gateway.payments))
	}
	if gateway.payments[0].Amount != 1500 {
		t.Fatalf("payment amount = %d, want 1500", gateway.payments[0].Amount)
	}
	if len(repo.subscriptions) != 1 {
		t.Fatalf("expected one stored subscription")
	}
}

func TestSubscribe_RejectsDuplicateActive(t *testing.T) {
	svc, _, gateway := newTestService()

	if _, err := svc.Subscribe(context.Background(), 1, "V1", "cnon:card"); err != nil {
		t.Fatalf("first subscribe failed: %v", err)
	}

	if _, err := svc.Subscribe(context.Background(), 1, "V1", "cnon:card"); !errors.Is(err, ErrAlreadySubscribed) {
		t.Fatalf("expected ErrAlreadySubscribed, got %v", err)
	}
	if _, err := svc.Subscribe(context.Background(), 1, "V2", "cnon:card"); !errors.Is(err, ErrOtherActiveSubscription) {
		t.Fatalf("expected ErrOtherActiveSubscription, got %v", err)
	}
	// No money moved for the rejected attempts.
	if len(gateway.payments) != 1 {
		t.Fatalf("expected one payment total, got %d", len(gateway.payments))
	}
}

func TestSubscribe_PaymentFailure(t *testing.T) {
	svc, repo, gateway := newTestService()
	gateway.fail = true

	if _, err := svc.Subscribe(context.Background(), 1, "V1", "cnon:card"); err == nil {
		t.Fatalf("expected payment failure to propagate")
	}
	if len(repo.subscriptions) != 0 {
		t.Fatalf("no subscription may exist after failed payment")
	}
}

func TestCreateRedemption_ChargesCredit(t *testing.T) {
	svc, repo, _ := newTestService()

	if _, err := svc.Subscribe(context.Background(), 1, "V1", "cnon:card"); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	// Preload the variation embed the way the GORM repository would.
	repo.subscriptions[0].PlanVariation = repo.variations["V1"]

	red, err := svc.CreateRedemption(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if red.Status != models.RedemptionStatusPending {
		t.Fatalf("status = %q, want PENDING", red.Status)
	}
	if red.ChargedCredit != 1 {
		t.Fatalf("charged = %d, want 1", red.ChargedCredit)
	}
	if red.PlanVariationName != "Morning Brew" {
		t.Fatalf("plan variation name = %q", red.PlanVariationName)
	}
	if got := repo.subscriptions[0].AvailableCredit; got != 4 {
		t.Fatalf("remaining credit = %d, want 4", got)
	}
	// Gift credit is untouched by redemption.
	if got := repo.subscriptions[0].GiftCredit; got != 3 {
		t.Fatalf("gift credit = %d, want 3", got)
	}
}

func TestCreateRedemption_RequiresSubscriberCredit(t *testing.T) {
	svc, repo, _ := newTestService()

	if _, err := svc.CreateRedemption(context.Background(), 1); !errors.Is(err, ErrNoRedeemableCredit) {
		t.Fatalf("expected ErrNoRedeemableCredit, got %v", err)
	}

	// Gift credit alone must not be redeemable.
	repo.subscriptions = append(repo.subscriptions, &models.Subscription{
		ID: 10, UserID: 1, Status: models.SubscriptionStatusActive, GiftCredit: 9,
	})
	if _, err := svc.CreateRedemption(context.Background(), 1); !errors.Is(err, ErrNoRedeemableCredit) {
		t.Fatalf("expected ErrNoRedeemableCredit for gift-only balance, got %v", err)
	}
}

func TestCreateRedemption_CancelledCreditStillRedeemable(t *testing.T) {
	svc, repo, _ := newTestService()

	// The credit gate is status-agnostic, matching the dashboard totals.
	repo.subscriptions = append(repo.subscriptions, &models.Subscription{
		ID: 10, UserID: 1, Status: models.SubscriptionStatusCancelled, AvailableCredit: 2,
	})

	red, err := svc.CreateRedemption(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if red.ChargedCredit != 1 {
		t.Fatalf("charged = %d, want 1", red.ChargedCredit)
	}
	if repo.subscriptions[0].AvailableCredit != 1 {
		t.Fatalf("remaining credit = %d, want 1", repo.subscriptions[0].AvailableCredit)
	}
}

func TestDecideRedemption_ApproveAndReject(t *testing.T) {
	svc, repo, _ := newTestService()

	repo.subscriptions = append(repo.subscriptions, &models.Subscription{
		ID: 10, UserID: 1, Status: models.SubscriptionStatusActive, AvailableCredit: 5,
	})

	first, err := svc.CreateRedemption(context.Background(), 1)
	if err != nil {
		t.Fatalf("create redemption: %v", err)
	}
	second, err := svc.CreateRedemption(context.Background(), 1)
	if err != nil {
		t.Fatalf("create redemption: %v", err)
	}
	if repo.subscriptions[0].AvailableCredit != 3 {
		t.Fatalf("remaining credit = %d, want 3", repo.subscriptions[0].AvailableCredit)
	}

	approved, err := svc.DecideRedemption(context.Background(), first.ID, true)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != models.RedemptionStatusApproved {
		t.Fatalf("status = %q, want APPROVED", approved.Status)
	}
	// Approval consumes the credit for good.
	if repo.subscriptions[0].AvailableCredit != 3 {
		t.Fatalf("credit after approval = %d, want 3", repo.subscriptions[0].AvailableCredit)
	}

	rejected, err := svc.DecideRedemption(context.Background(), second.ID, false)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.RedemptionStatusRejected {
		t.Fatalf("status = %q, want REJECTED", rejected.Status)
	}
	// Rejection refunds the charged credit.
	if repo.subscriptions[0].AvailableCredit != 4 {
		t.Fatalf("credit after rejection = %d, want 4", repo.subscriptions[0].AvailableCredit)
	}

	// Decisions are terminal.
	if _, err := svc.DecideRedemption(context.Background(), first.ID, false); !errors.Is(err, ErrRedemptionNotPending) {
		t.Fatalf("expected ErrRedemptionNotPending, got %v", err)
	}
}

func TestCancelSubscription(t *testing.T) {
	svc, repo, _ := newTestService()

	repo.subscriptions = append(repo.subscriptions, &models.Subscription{
		ID: 10, UserID: 1, Status: models.SubscriptionStatusActive, AvailableCredit: 5, GiftCredit: 2,
	})

	sub, err := svc.CancelSubscription(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Status != models.SubscriptionStatusCancelled {
		t.Fatalf("status = %q, want CANCELLED", sub.Status)
	}
	if sub.EndDate == nil {
		t.Fatalf("expected end date to be set")
	}
	// Balances survive cancellation.
	if sub.AvailableCredit != 5 || sub.GiftCredit != 2 {
		t.Fatalf("credits changed on cancellation: %d/%d", sub.AvailableCredit, sub.GiftCredit)
	}

	if _, err := svc.CancelSubscription(context.Background(), 2, 10); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned, got %v", err)
	}
}

func TestRecordWebhookEvent_Idempotent(t *testing.T) {
	svc, _, _ := newTestService()

	created, ev, err := svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		Provider:        "Square",
		ProviderEventID: "evt_1",
		EventType:       "subscription.updated",
		PayloadJSON:     `{}`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created || ev.Provider != "square" {
		t.Fatalf("expected created event with normalized provider, got created=%v provider=%q", created, ev.Provider)
	}

	created, _, err = svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		Provider:        "square",
		ProviderEventID: "evt_1",
		EventType:       "subscription.updated",
		PayloadJSON:     `{}`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatalf("duplicate event must not be created twice")
	}
}

func TestRecordWebhookEvent_HashFallbackForMissingID(t *testing.T) {
	svc, _, _ := newTestService()

	_, ev, err := svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		Provider:    "square",
		EventType:   "payment.updated",
		PayloadJSON: `{"n":1}`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.ProviderEventID == "" || ev.ProviderEventID[:5] != "hash:" {
		t.Fatalf("expected hash-derived event id, got %q", ev.ProviderEventID)
	}
}

func TestApplySubscriptionEvent(t *testing.T) {
	svc, repo, _ := newTestService()

	repo.subscriptions = append(repo.subscriptions, &models.Subscription{
		ID: 10, ObjectID: "sub_x", UserID: 1, Status: models.SubscriptionStatusActive,
	})

	if err := svc.ApplySubscriptionEvent(context.Background(), "sub_x", "cancelled"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.subscriptions[0].Status != models.SubscriptionStatusCancelled {
		t.Fatalf("status = %q, want CANCELLED", repo.subscriptions[0].Status)
	}
	if repo.subscriptions[0].EndDate == nil {
		t.Fatalf("expected end date on cancellation")
	}

	// Unknown subscriptions are ignored, not errors.
	if err := svc.ApplySubscriptionEvent(context.Background(), "sub_unknown", "ACTIVE"); err != nil {
		t.Fatalf("unexpected error for unknown subscription: %v", err)
	}
}
