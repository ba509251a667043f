package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"onboarding-service/internal/config"

	"github.com/go-resty/resty/v2"
)

// PaymentGatewayError marks a failure of the external payment processor so
// the service layer can translate it without leaking transport details.
type PaymentGatewayError struct {
	Op  string
	Err error
}

func (e *PaymentGatewayError) Error() string {
	return fmt.Sprintf("payment gateway %s failed: %v", e.Op, e.Err)
}

func (e *PaymentGatewayError) Unwrap() error {
	return e.Err
}

// CustomerRef identifies a payment-processor customer.
type CustomerRef struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// QRCode is a single-use, fixed-amount UPI payment artifact. Amount is in
// minor currency units (paise).
type QRCode struct {
	ID         string `json:"id"`
	ImageURL   string `json:"image_url"`
	Amount     int64  `json:"payment_amount"`
	Currency   string `json:"currency"`
	CustomerID string `json:"customer_id"`
}

type customerListResponse struct {
	Entity string        `json:"entity"`
	Count  int           `json:"count"`
	Items  []CustomerRef `json:"items"`
}

type createCustomerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Contact      string `json:"contact"`
	FailExisting string `json:"fail_existing"`
}

type createQRRequest struct {
	Type          string `json:"type"`
	Usage         string `json:"usage"`
	FixedAmount   bool   `json:"fixed_amount"`
	PaymentAmount int64  `json:"payment_amount"`
	Description   string `json:"description"`
	CustomerID    string `json:"customer_id"`
	CloseBy       int64  `json:"close_by"`
}

type gatewayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// IPaymentGatewayClient is the surface the services depend on; tests swap in
// fakes.
type IPaymentGatewayClient interface {
	ResolveOrCreateCustomer(ctx context.Context, name, email, phone string) (*CustomerRef, error)
	CreateSingleUseQR(ctx context.Context, customerID string, amountMinorUnits int64, description string, closeBy time.Time) (*QRCode, error)
}

// RazorpayClient talks to the Razorpay REST API. It is constructed once in
// the composition root and injected everywhere; there is no package-level
// client state.
type RazorpayClient struct {
	httpClient *resty.Client
}

func NewRazorpayClient(cfg config.RazorpayConfig) *RazorpayClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &RazorpayClient{
		httpClient: client,
	}
}

// ResolveOrCreateCustomer reuses an existing processor customer with the same
// email, creating one only when the lookup comes up empty. The lookup and the
// create are not atomic against the processor: two concurrent calls can both
// miss and both create. Duplicate customers on the processor side are a
// tolerated, non-fatal condition.
func (c *RazorpayClient) ResolveOrCreateCustomer(ctx context.Context, name, email, phone string) (*CustomerRef, error) {
	var list customerListResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("count", "100").
		SetResult(&list).
		Get("/v1/customers")
	if err != nil {
		return nil, &PaymentGatewayError{Op: "customer lookup", Err: err}
	}
	if resp.IsError() {
		return nil, &PaymentGatewayError{Op: "customer lookup", Err: fmt.Errorf("status %d", resp.StatusCode())}
	}

	for i := range list.Items {
		if list.Items[i].Email == email {
			return &list.Items[i], nil
		}
	}

	var customer CustomerRef
	var gwErr gatewayErrorResponse
	resp, err = c.httpClient.R().
		SetContext(ctx).
		SetBody(createCustomerRequest{
			Name:    name,
			Email:   email,
			Contact: phone,
			// Do not error on an already-existing customer; return it.
			FailExisting: "0",
		}).
		SetResult(&customer).
		SetError(&gwErr).
		Post("/v1/customers")
	if err != nil {
		return nil, &PaymentGatewayError{Op: "customer creation", Err: err}
	}
	if resp.IsError() {
		return nil, &PaymentGatewayError{Op: "customer creation", Err: fmt.Errorf("status %d: %s", resp.StatusCode(), gwErr.Error.Description)}
	}

	slog.Info("payment customer created", "customer_id", customer.ID)
	return &customer, nil
}

// CreateSingleUseQR requests a fixed-amount UPI QR that auto-closes at
// closeBy. amountMinorUnits must already be scaled to paise.
func (c *RazorpayClient) CreateSingleUseQR(ctx context.Context, customerID string, amountMinorUnits int64, description string, closeBy time.Time) (*QRCode, error) {
	var qr QRCode
	var gwErr gatewayErrorResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(createQRRequest{
			Type:          "upi_qr",
			Usage:         "single_use",
			FixedAmount:   true,
			PaymentAmount: amountMinorUnits,
			Description:   description,
			CustomerID:    customerID,
			CloseBy:       closeBy.Unix(),
		}).
		SetResult(&qr).
		SetError(&gwErr).
		Post("/v1/payments/qr_codes")
	if err != nil {
		return nil, &PaymentGatewayError{Op: "qr creation", Err: err}
	}
	if resp.IsError() {
		return nil, &PaymentGatewayError{Op: "qr creation", Err: fmt.Errorf("status %d: %s", resp.StatusCode(), gwErr.Error.Description)}
	}

	if qr.CustomerID == "" {
		qr.CustomerID = customerID
	}
	if qr.Currency == "" {
		qr.Currency = "INR"
	}

	return &qr, nil
}
