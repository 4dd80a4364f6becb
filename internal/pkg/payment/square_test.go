package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreatePayment(t *testing.T) {
	var captured createPaymentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payments" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Square-Version"); got != squareVersion {
			t.Fatalf("Square-Version header = %q, want %q", got, squareVersion)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sq-token" {
			t.Fatalf("Authorization header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(createPaymentResponse{
			Payment: Payment{ID: "pay_1", Status: "COMPLETED", AmountMoney: Money{Amount: 1500, Currency: "USD"}},
		})
	}))
	defer srv.Close()

	client := NewSquareClient(srv.URL, "sq-token", "loc_1")

	p, err := client.CreatePayment(context.Background(), CreatePaymentInput{
		SourceID:   "cnon:card-nonce",
		Amount:     1500,
		CustomerID: "cust_1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "pay_1" || p.Status != "COMPLETED" {
		t.Fatalf("unexpected payment: %+v", p)
	}

	if captured.LocationID != "loc_1" {
		t.Fatalf("location_id = %q, want loc_1", captured.LocationID)
	}
	if captured.AmountMoney.Amount != 1500 || captured.AmountMoney.Currency != "USD" {
		t.Fatalf("unexpected amount_money: %+v", captured.AmountMoney)
	}
	if captured.IdempotencyKey == "" {
		t.Fatalf("expected an idempotency key")
	}
	if !captured.Autocomplete {
		t.Fatalf("expected autocomplete to be set")
	}
}

func TestCreatePayment_Validation(t *testing.T) {
	client := NewSquareClient("http://unused", "sq-token", "loc_1")

	if _, err := client.CreatePayment(context.Background(), CreatePaymentInput{Amount: 100}); err == nil {
		t.Fatalf("expected error for missing source_id")
	}
	if _, err := client.CreatePayment(context.Background(), CreatePaymentInput{SourceID: "x", Amount: 0}); err == nil {
		t.Fatalf("expected error for non-positive amount")
	}

	unconfigured := NewSquareClient("http://unused", "sq-token", "")
	if _, err := unconfigured.CreatePayment(context.Background(), CreatePaymentInput{SourceID: "x", Amount: 100}); err == nil {
		t.Fatalf("expected error for missing location id")
	}
}

func TestCreatePayment_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"card declined","code":"CARD_DECLINED"}`))
	}))
	defer srv.Close()

	client := NewSquareClient(srv.URL, "sq-token", "loc_1")

	_, err := client.CreatePayment(context.Background(), CreatePaymentInput{SourceID: "x", Amount: 100})
	if err == nil {
		t.Fatalf("expected gateway error")
	}
}

func TestListSubscriptionCatalog_Pagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalog/list" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("types") != "SUBSCRIPTION_PLAN" {
			t.Fatalf("types = %q", r.URL.Query().Get("types"))
		}
		switch r.URL.Query().Get("cursor") {
		case "":
			_ = json.NewEncoder(w).Encode(listCatalogResponse{
				Objects: []CatalogObject{{ID: "plan_1", Type: "SUBSCRIPTION_PLAN"}},
				Cursor:  "next",
			})
		case "next":
			_ = json.NewEncoder(w).Encode(listCatalogResponse{
				Objects: []CatalogObject{{ID: "plan_2", Type: "SUBSCRIPTION_PLAN"}},
			})
		default:
			t.Fatalf("unexpected cursor: %q", r.URL.Query().Get("cursor"))
		}
	}))
	defer srv.Close()

	client := NewSquareClient(srv.URL, "sq-token", "loc_1")

	objects, err := client.ListSubscriptionCatalog(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(objects) != 2 || objects[0].ID != "plan_1" || objects[1].ID != "plan_2" {
		t.Fatalf("unexpected objects: %+v", objects)
	}
}

func TestCreateOrder(t *testing.T) {
	var captured createOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(createOrderResponse{
			Order: Order{ID: "ord_1", LocationID: "loc_1", State: "OPEN"},
		})
	}))
	defer srv.Close()

	client := NewSquareClient(srv.URL, "sq-token", "loc_1")

	order, err := client.CreateOrder(context.Background(), CreateOrderInput{CustomerID: "cust_1", Note: "redemption"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != "ord_1" || order.State != "OPEN" {
		t.Fatalf("unexpected order: %+v", order)
	}
	if captured.Order.LocationID != "loc_1" || captured.Order.CustomerID != "cust_1" {
		t.Fatalf("unexpected order request: %+v", captured)
	}
	if captured.IdempotencyKey == "" {
		t.Fatalf("expected an idempotency key")
	}
}

func TestVerifySquareWebhookSignature(t *testing.T) {
	payload := []byte(`{"type":"payment.updated"}`)
	url := "https://brewpass.example/api/v1/payments/webhook"
	key := "signature-key"

	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(url))
	mac.Write(payload)
	valid := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !VerifySquareWebhookSignature(payload, url, valid, key) {
		t.Fatalf("expected signature to validate")
	}
	if VerifySquareWebhookSignature(payload, url, "bogus", key) {
		t.Fatalf("expected invalid signature to fail")
	}
	if VerifySquareWebhookSignature(payload, url, valid, "") {
		t.Fatalf("expected missing key to fail")
	}
	if VerifySquareWebhookSignature(payload, "https://other.example/hook", valid, key) {
		t.Fatalf("expected URL mismatch to fail")
	}
}
