package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BrewPassApp/BrewPass/internal/pkg/apiclient"
	"github.com/BrewPassApp/BrewPass/internal/pkg/env"
)

const (
	defaultSquareBaseURL = "https://connect.squareup.com/v2"
	squareVersion        = "2024-09-19"
)

// SquareClient talks to Square's payments REST API. All calls go through the
// resilient API client so gateway failures surface with the same error
// taxonomy as every other outbound call.
type SquareClient struct {
	LocationID string

	api *apiclient.Client
}

// NewSquareClientFromEnv builds a client from SQUARE_* environment variables.
func NewSquareClientFromEnv() *SquareClient {
	base := strings.TrimSpace(env.GetEnv("SQUARE_BASE_URL", defaultSquareBaseURL))
	token := strings.TrimSpace(env.GetEnv("SQUARE_ACCESS_TOKEN", ""))

	api := apiclient.New(base, &apiclient.StaticCredentials{AccessToken: token}, apiclient.LogNotifier{}, apiclient.NopNavigator{})
	api.Timeout = 15 * time.Second

	return &SquareClient{
		LocationID: strings.TrimSpace(env.GetEnv("SQUARE_LOCATION_ID", "")),
		api:        api,
	}
}

// NewSquareClient builds a client against a custom base URL, mainly for tests.
func NewSquareClient(baseURL, accessToken, locationID string) *SquareClient {
	api := apiclient.New(baseURL, &apiclient.StaticCredentials{AccessToken: accessToken}, apiclient.LogNotifier{}, apiclient.NopNavigator{})
	api.Timeout = 15 * time.Second
	return &SquareClient{LocationID: locationID, api: api}
}

// Configured reports whether the gateway credentials are present.
func (c *SquareClient) Configured() bool {
	return c.api != nil && c.LocationID != ""
}

type Money struct {
	Amount   int64  `json:"amount"` // minor currency units
	Currency string `json:"currency"`
}

// CreatePaymentInput describes a card-on-file charge.
type CreatePaymentInput struct {
	SourceID   string // card or payment token
	Amount     int64  // minor currency units
	Currency   string
	OrderID    string
	CustomerID string
	Note       string
}

type Payment struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	OrderID     string `json:"order_id"`
	CustomerID  string `json:"customer_id"`
	AmountMoney Money  `json:"amount_money"`
	CreatedAt   string `json:"created_at"`
}

type createPaymentRequest struct {
	SourceID       string `json:"source_id"`
	IdempotencyKey string `json:"idempotency_key"`
	AmountMoney    Money  `json:"amount_money"`
	LocationID     string `json:"location_id"`
	OrderID        string `json:"order_id,omitempty"`
	CustomerID     string `json:"customer_id,omitempty"`
	Note           string `json:"note,omitempty"`
	Autocomplete   bool   `json:"autocomplete"`
}

type createPaymentResponse struct {
	Payment Payment `json:"payment"`
}

// CreatePayment charges a payment source. Each call carries a fresh UUID
// idempotency key so gateway-side retries cannot double-charge.
func (c *SquareClient) CreatePayment(ctx context.Context, in CreatePaymentInput) (*Payment, error) {
	if strings.TrimSpace(in.SourceID) == "" {
		return nil, errors.New("source_id is required")
	}
	if in.Amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	if c.LocationID == "" {
		return nil, errors.New("SQUARE_LOCATION_ID is not configured")
	}

	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	req := createPaymentRequest{
		SourceID:       in.SourceID,
		IdempotencyKey: fmt.Sprintf("payment_%s", uuid.NewString()),
		AmountMoney:    Money{Amount: in.Amount, Currency: currency},
		LocationID:     c.LocationID,
		OrderID:        in.OrderID,
		CustomerID:     in.CustomerID,
		Note:           in.Note,
		Autocomplete:   true,
	}

	var out createPaymentResponse
	if err := c.api.Post(ctx, "/payments", req, &out, c.requestOptions()); err != nil {
		return nil, fmt.Errorf("square create payment: %w", err)
	}
	if out.Payment.ID == "" {
		return nil, errors.New("square create payment returned empty payment id")
	}
	return &out.Payment, nil
}

// CatalogObject is a subscription plan object from the Square catalog.
type CatalogObject struct {
	ID                   string                `json:"id"`
	Type                 string                `json:"type"`
	IsDeleted            bool                  `json:"is_deleted"`
	Version              int64                 `json:"version"`
	SubscriptionPlanData *SubscriptionPlanData `json:"subscription_plan_data,omitempty"`
}

// SubscriptionPlanData carries the plan name and its purchasable variations.
type SubscriptionPlanData struct {
	Name       string             `json:"name"`
	Variations []CatalogVariation `json:"subscription_plan_variations"`
}

// CatalogVariation is one purchasable tier inside a subscription plan.
type CatalogVariation struct {
	ID                        string `json:"id"`
	IsDeleted                 bool   `json:"is_deleted"`
	SubscriptionPlanVariation struct {
		Name   string `json:"name"`
		Phases []struct {
			Cadence string `json:"cadence"`
			Pricing struct {
				PriceMoney Money `json:"price_money"`
			} `json:"pricing"`
		} `json:"phases"`
	} `json:"subscription_plan_variation_data"`
}

type listCatalogResponse struct {
	Objects []CatalogObject `json:"objects"`
	Cursor  string          `json:"cursor"`
}

// ListSubscriptionCatalog fetches the subscription plan catalog objects,
// following the pagination cursor until the catalog is exhausted.
func (c *SquareClient) ListSubscriptionCatalog(ctx context.Context) ([]CatalogObject, error) {
	var objects []CatalogObject
	cursor := ""
	for {
		path := "/catalog/list?types=SUBSCRIPTION_PLAN"
		if cursor != "" {
			path += "&cursor=" + cursor
		}
		var out listCatalogResponse
		if err := c.api.Get(ctx, path, &out, c.requestOptions()); err != nil {
			return nil, fmt.Errorf("square list catalog: %w", err)
		}
		objects = append(objects, out.Objects...)
		if out.Cursor == "" {
			return objects, nil
		}
		cursor = out.Cursor
	}
}

// CreateOrderInput describes a minimal order referencing the location.
type CreateOrderInput struct {
	CustomerID string
	Note       string
}

type Order struct {
	ID         string `json:"id"`
	LocationID string `json:"location_id"`
	State      string `json:"state"`
}

type createOrderRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
	Order          struct {
		LocationID string `json:"location_id"`
		CustomerID string `json:"customer_id,omitempty"`
		Note       string `json:"note,omitempty"`
	} `json:"order"`
}

type createOrderResponse struct {
	Order Order `json:"order"`
}

// CreateOrder creates an order used to tie a payment to a redemption.
func (c *SquareClient) CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error) {
	if c.LocationID == "" {
		return nil, errors.New("SQUARE_LOCATION_ID is not configured")
	}

	var req createOrderRequest
	req.IdempotencyKey = fmt.Sprintf("order_%s", uuid.NewString())
	req.Order.LocationID = c.LocationID
	req.Order.CustomerID = in.CustomerID
	req.Order.Note = in.Note

	var out createOrderResponse
	if err := c.api.Post(ctx, "/orders", req, &out, c.requestOptions()); err != nil {
		return nil, fmt.Errorf("square create order: %w", err)
	}
	if out.Order.ID == "" {
		return nil, errors.New("square create order returned empty order id")
	}
	return &out.Order, nil
}

func (c *SquareClient) requestOptions() *apiclient.RequestOptions {
	return &apiclient.RequestOptions{
		ExtraHeaders: map[string]string{
			"Square-Version": squareVersion,
		},
	}
}
