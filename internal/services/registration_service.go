package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"onboarding-service/internal/config"
	"onboarding-service/internal/gateway"
	"onboarding-service/internal/models"
	"onboarding-service/internal/repository"

	"github.com/google/uuid"
)

// QR close-by windows per account type. The two call sites have always used
// different windows (a day for field executives, 17 minutes for employees);
// whether that difference is policy or accident is pending product sign-off,
// so both literals are preserved instead of unified.
const (
	fieldExecutiveQRCloseBy = 24 * time.Hour
	employeeQRCloseBy       = 17 * time.Minute
)

const paisePerRupee = 100

// NotificationPublisher is the fire-and-forget outbound notification path.
// Delivery failures never fail the operation that triggered them.
type NotificationPublisher interface {
	PublishPaymentLink(ctx context.Context, to, name, qrImageURL, deepLink string) error
	PublishOTP(ctx context.Context, to, code string) error
}

// RegistrationPolicy carries the per-account-type differences so one service
// implementation covers both onboarding flows.
type RegistrationPolicy struct {
	AccountType      models.AccountType
	IDPrefix         string
	QRCloseBy        time.Duration
	QRDescription    string
	// UseCustomerCache enables the 24h gateway-customer cache. The cache is
	// an optimization only; the gateway stays the source of truth.
	UseCustomerCache bool
}

var (
	FieldExecutivePolicy = RegistrationPolicy{
		AccountType:      models.AccountTypeFieldExecutive,
		IDPrefix:         "FE-",
		QRCloseBy:        fieldExecutiveQRCloseBy,
		QRDescription:    "Field executive registration fee",
		UseCustomerCache: false,
	}
	EmployeePolicy = RegistrationPolicy{
		AccountType:      models.AccountTypeEmployee,
		IDPrefix:         "EMP-",
		QRCloseBy:        employeeQRCloseBy,
		QRDescription:    "Employee registration fee",
		UseCustomerCache: true,
	}
)

type IRegistrationService interface {
	Register(ctx context.Context, req models.RegisterRequest, ownerEmail string) (*models.Account, error)
	ConfirmPayment(ctx context.Context, orderID string) (*models.Account, error)
}

// RegistrationService drives the two-phase signup state machine:
// NONE -> PENDING (record persisted with a live QR, both flags false) ->
// ACTIVE (payment confirmation flips is_paid and is_active together). No
// transition returns an email to NONE.
type RegistrationService struct {
	accountRepo   repository.IAccountRepository
	gatewayClient gateway.IPaymentGatewayClient
	orderCache    repository.OrderCache
	publisher     NotificationPublisher
	policy        RegistrationPolicy
	cfg           *config.OnboardingServiceConfig

	now func() time.Time
}

func NewRegistrationService(accountRepo repository.IAccountRepository, gatewayClient gateway.IPaymentGatewayClient, orderCache repository.OrderCache, publisher NotificationPublisher, policy RegistrationPolicy, cfg *config.OnboardingServiceConfig) *RegistrationService {
	return &RegistrationService{
		accountRepo:   accountRepo,
		gatewayClient: gatewayClient,
		orderCache:    orderCache,
		publisher:     publisher,
		policy:        policy,
		cfg:           cfg,
		now:           time.Now,
	}
}

// Register runs the ordered signup steps: duplicate check, customer
// resolution, QR creation, persistence, then best-effort notification.
// Reordering these changes the documented error semantics.
func (s *RegistrationService) Register(ctx context.Context, req models.RegisterRequest, ownerEmail string) (*models.Account, error) {
	// Fast-path duplicate check. Racy by design: the UNIQUE index on email is
	// the real guarantee, this just avoids minting a payment artifact for an
	// email we can already see is taken.
	exists, err := s.accountRepo.ExistsByEmail(req.Email)
	if err != nil {
		// No artifact exists yet; this is a plain retryable store failure,
		// not the post-artifact persistence incident.
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if exists {
		return nil, ErrDuplicateAccount
	}

	closeBy := s.now().Add(s.policy.QRCloseBy)

	customerID, err := s.resolveCustomer(ctx, req.Name, req.Email, req.Phone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentArtifact, err)
	}

	order, err := s.obtainPaymentArtifact(ctx, req.Email, customerID, closeBy)
	if err != nil {
		// Nothing persisted yet; the caller can retry safely.
		return nil, fmt.Errorf("%w: %v", ErrPaymentArtifact, err)
	}

	account := &models.Account{
		ID:             s.policy.IDPrefix + uuid.New().String(),
		AccountType:    s.policy.AccountType,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		Pincode:        req.Pincode,
		IsActive:       false,
		IsPaid:         false,
		OrderID:        order.ID,
		QRCodeImageURL: order.QRImageURL,
		CustomerID:     order.CustomerID,
		OwnerEmail:     ownerEmail,
	}

	if err := s.accountRepo.CreateAccount(account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			// Lost the race; the constraint backstop fired.
			return nil, ErrDuplicateAccount
		}
		// Worst case: a live QR exists with no account row. The artifact may
		// still get paid and would then match nothing, so flag it for manual
		// reconciliation. It is not cancelled with the gateway.
		slog.Error("account persistence failed after payment artifact creation",
			"incident", "orphaned_payment_artifact",
			"order_id", order.ID,
			"customer_id", order.CustomerID,
			"email", req.Email,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Best effort: a failed welcome email never rolls back the registration.
	go func() {
		deepLink := fmt.Sprintf("%s/payment/%s", s.cfg.PortalCfg.BaseURL, account.ID)
		if err := s.publisher.PublishPaymentLink(context.Background(), account.Email, account.Name, account.QRCodeImageURL, deepLink); err != nil {
			slog.Error("failed to publish payment link notification", "email", account.Email, "error", err)
		}
	}()

	return account, nil
}

func (s *RegistrationService) resolveCustomer(ctx context.Context, name, email, phone string) (string, error) {
	if s.policy.UseCustomerCache {
		cached, err := s.orderCache.GetCustomerID(ctx, email)
		if err != nil {
			slog.Error("customer cache read failed", "email", email, "error", err)
		}
		if cached != "" {
			return cached, nil
		}
	}

	customer, err := s.gatewayClient.ResolveOrCreateCustomer(ctx, name, email, phone)
	if err != nil {
		return "", err
	}

	if s.policy.UseCustomerCache {
		if err := s.orderCache.PutCustomerID(ctx, email, customer.ID); err != nil {
			slog.Error("customer cache write failed", "email", email, "error", err)
		}
	}

	return customer.ID, nil
}

// obtainPaymentArtifact returns the cached pending order when the same email
// retries within the cache window, otherwise creates a fresh QR and caches
// it. The cache TTL is not guaranteed to outlive the QR's own close-by
// window; a stale-but-cached QR past close-by surfaces as an unpayable code,
// not an error here.
func (s *RegistrationService) obtainPaymentArtifact(ctx context.Context, email, customerID string, closeBy time.Time) (*models.PendingOrder, error) {
	cached, err := s.orderCache.GetPendingOrder(ctx, email)
	if err != nil {
		slog.Error("pending order cache read failed", "email", email, "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	amountMinor := s.cfg.RazorpayCfg.RegistrationFee * paisePerRupee
	qr, err := s.gatewayClient.CreateSingleUseQR(ctx, customerID, amountMinor, s.policy.QRDescription, closeBy)
	if err != nil {
		return nil, err
	}

	order := &models.PendingOrder{
		ID:         qr.ID,
		QRImageURL: qr.ImageURL,
		Amount:     qr.Amount,
		Currency:   qr.Currency,
		CustomerID: qr.CustomerID,
	}
	if err := s.orderCache.PutPendingOrder(ctx, email, order); err != nil {
		slog.Error("pending order cache write failed", "email", email, "error", err)
	}

	return order, nil
}

// ConfirmPayment is the external confirmation path referenced by the account
// lifecycle: it flips is_paid and is_active in one update. Confirming an
// already-active account is a no-op success.
func (s *RegistrationService) ConfirmPayment(ctx context.Context, orderID string) (*models.Account, error) {
	account, err := s.accountRepo.MarkPaid(orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		// MarkPaid is idempotent, so the confirmation can simply be retried.
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	slog.Info("account activated", "account_id", account.ID, "order_id", orderID)
	return account, nil
}
