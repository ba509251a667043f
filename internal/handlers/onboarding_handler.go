package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"onboarding-service/internal/models"
	"onboarding-service/internal/services"
	"onboarding-service/utils"

	"github.com/gin-gonic/gin"
)

const sessionCookieName = "onboarding_session"

type OnboardingHandler struct {
	fieldExecRegistration services.IRegistrationService
	employeeRegistration  services.IRegistrationService
	otpAuthService        services.IOtpAuthService
	adminService          *services.AdminService
	targetService         services.ITargetAnalyticsService
}

func NewOnboardingHandler(fieldExecRegistration, employeeRegistration services.IRegistrationService, otpAuthService services.IOtpAuthService, adminService *services.AdminService, targetService services.ITargetAnalyticsService) *OnboardingHandler {
	return &OnboardingHandler{
		fieldExecRegistration: fieldExecRegistration,
		employeeRegistration:  employeeRegistration,
		otpAuthService:        otpAuthService,
		adminService:          adminService,
		targetService:         targetService,
	}
}

func (h *OnboardingHandler) RegisterRoutes(router *gin.Engine, mw *Middleware) {
	pub := router.Group("/onboarding/public")
	pub.POST("/register", h.Register)
	pub.POST("/employee/register", h.RegisterEmployee)
	pub.POST("/login/start", h.StartLogin)
	pub.POST("/login/verify", h.VerifyLogin)
	pub.POST("/payment/confirm", h.ConfirmPayment)
	pub.POST("/admin/login", h.AdminLogin)

	pro := router.Group("/onboarding/protected")
	pro.GET("/analytics", mw.RequireAuth(), h.Analytics)

	adm := pro.Group("/admin", mw.RequireAuth(models.AccountTypeAdmin))
	adm.POST("/accounts/deactivate", h.DeactivateAccount)
	adm.POST("/accounts/target", h.AssignTarget)
}

// Register creates a pending field-executive account with a live payment QR.
func (h *OnboardingHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid register request format: %v", err)
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid request format"))
		return
	}

	if err := validateRegisterRequest(&req); err != nil {
		log.Printf("Register validation failed: %v", err)
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("VALIDATION_ERROR", err.Error()))
		return
	}

	account, err := h.fieldExecRegistration.Register(c.Request.Context(), req, "")
	if err != nil {
		log.Printf("Registration failed for %s: %v", req.Email, err)
		statusCode, errorCode := mapServiceError(err)
		c.JSON(statusCode, utils.CreateErrorResponse(errorCode, userFacingMessage(err)))
		return
	}

	log.Printf("Successful registration for account %s", account.ID)
	c.JSON(http.StatusCreated, utils.CreateSuccessResponse(account))
}

// RegisterEmployee creates a pending employee account under an executive.
func (h *OnboardingHandler) RegisterEmployee(c *gin.Context) {
	var req models.EmployeeRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid employee register request format: %v", err)
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid request format"))
		return
	}

	if err := validateRegisterRequest(&req.RegisterRequest); err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("VALIDATION_ERROR", err.Error()))
		return
	}
	if ok, _ := utils.ValidateEmail(req.ExecutiveEmail); !ok {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("VALIDATION_ERROR", "executive_email format incorrect"))
		return
	}

	account, err := h.employeeRegistration.Register(c.Request.Context(), req.RegisterRequest, req.ExecutiveEmail)
	if err != nil {
		log.Printf("Employee registration failed for %s: %v", req.Email, err)
		statusCode, errorCode := mapServiceError(err)
		c.JSON(statusCode, utils.CreateErrorResponse(errorCode, userFacingMessage(err)))
		return
	}

	c.JSON(http.StatusCreated, utils.CreateSuccessResponse(account))
}

// StartLogin issues a login OTP for an activated account. Also serves as
// resend; a new code replaces the live one.
func (h *OnboardingHandler) StartLogin(c *gin.Context) {
	var req models.StartLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid request format"))
		return
	}

	if ok, _ := utils.ValidateEmail(req.Email); !ok {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("VALIDATION_ERROR", "email format incorrect"))
		return
	}
	if req.AccountType == "" {
		req.AccountType = models.AccountTypeFieldExecutive
	}

	if err := h.otpAuthService.StartLogin(c.Request.Context(), req.Email, req.AccountType); err != nil {
		log.Printf("Login start failed for %s: %v", req.Email, err)
		statusCode, errorCode := mapServiceError(err)
		c.JSON(statusCode, utils.CreateErrorResponse(errorCode, userFacingMessage(err)))
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{
		"message": "login code sent",
	}))
}

// VerifyLogin consumes the OTP and sets the session cookie.
func (h *OnboardingHandler) VerifyLogin(c *gin.Context) {
	var req models.VerifyLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid request format"))
		return
	}

	if !utils.ValidateOTPFormat(req.OTP) {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("VALIDATION_ERROR", "otp must be 6 digits"))
		return
	}
	if req.AccountType == "" {
		req.AccountType = models.AccountTypeFieldExecutive
	}

	token, err := h.otpAuthService.VerifyLogin(c.Request.Context(), req.Email, req.AccountType, req.OTP)
	if err != nil {
		statusCode, errorCode := mapServiceError(err)
		c.JSON(statusCode, utils.CreateErrorResponse(errorCode, userFacingMessage(err)))
		return
	}

	c.SetCookie(sessionCookieName, token, int((7*24*time.Hour).Seconds()), "/", "", true, true)
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{
		"token": token,
	}))
}

// ConfirmPayment is the gateway confirmation path: it activates the pending
// account matching the order id.
func (h *OnboardingHandler) ConfirmPayment(c *gin.Context) {
	var req models.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid request format"))
		return
	}
	if req.OrderID == "" {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("VALIDATION_ERROR", "order_id is required"))
		return
	}

	svc := h.fieldExecRegistration
	if req.AccountType == models.AccountTypeEmployee {
		svc = h.employeeRegistration
	}

	account, err := svc.ConfirmPayment(c.Request.Context(), req.OrderID)
	if err != nil {
		log.Printf("Payment confirmation failed for order %s: %v", req.OrderID, err)
		statusCode, errorCode := mapServiceError(err)
		c.JSON(statusCode, utils.CreateErrorResponse(errorCode, userFacingMessage(err)))
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(account))
}

func (h *OnboardingHandler) AdminLogin(c *gin.Context) {
	var req models.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid request format"))
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("VALIDATION_ERROR", "email and password are required"))
		return
	}

	token, err := h.adminService.Login(req.Email, req.Password)
	if err != nil {
		statusCode, errorCode := mapServiceError(err)
		c.JSON(statusCode, utils.CreateErrorResponse(errorCode, userFacingMessage(err)))
		return
	}

	c.SetCookie(sessionCookieName, token, int((7*24*time.Hour).Seconds()), "/", "", true, true)
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{
		"token": token,
	}))
}

// Analytics returns the executive's monthly assigned-vs-achieved window.
func (h *OnboardingHandler) Analytics(c *gin.Context) {
	email := c.Query("email")
	if ok, _ := utils.ValidateEmail(email); !ok {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("VALIDATION_ERROR", "email format incorrect"))
		return
	}

	progress, err := h.targetService.ComputeMonthlyProgress(email)
	if err != nil {
		statusCode, errorCode := mapServiceError(err)
		c.JSON(statusCode, utils.CreateErrorResponse(errorCode, userFacingMessage(err)))
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(progress))
}

func (h *OnboardingHandler) DeactivateAccount(c *gin.Context) {
	var req models.DeactivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid request format"))
		return
	}
	if req.AccountType == "" {
		req.AccountType = models.AccountTypeFieldExecutive
	}

	if err := h.adminService.Deactivate(req.Email, req.AccountType); err != nil {
		statusCode, errorCode := mapServiceError(err)
		c.JSON(statusCode, utils.CreateErrorResponse(errorCode, userFacingMessage(err)))
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{
		"message": "account deactivated",
	}))
}

func (h *OnboardingHandler) AssignTarget(c *gin.Context) {
	var req models.AssignTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", "Invalid request format"))
		return
	}

	targetDate, err := time.Parse("2006-01", req.TargetDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("VALIDATION_ERROR", "target_date must be in 2006-01 format"))
		return
	}

	if err := h.adminService.AssignTarget(req.Email, req.AssignedTarget, targetDate); err != nil {
		statusCode, errorCode := mapServiceError(err)
		c.JSON(statusCode, utils.CreateErrorResponse(errorCode, userFacingMessage(err)))
		return
	}

	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{
		"message": "target assigned",
	}))
}

func validateRegisterRequest(req *models.RegisterRequest) error {
	if req.Name == "" {
		return errors.New("name is required")
	}
	if ok, _ := utils.ValidateEmail(req.Email); !ok {
		return errors.New("email format incorrect")
	}
	if len(req.Phone) < 10 {
		return errors.New("invalid phone number format")
	}
	return nil
}

// mapServiceError translates the service error taxonomy to HTTP responses.
func mapServiceError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, services.ErrDuplicateAccount):
		return http.StatusConflict, "ACCOUNT_ALREADY_EXISTS"
	case errors.Is(err, services.ErrPaymentArtifact):
		return http.StatusBadGateway, "PAYMENT_GATEWAY_ERROR"
	case errors.Is(err, services.ErrPersistence):
		return http.StatusServiceUnavailable, "PERSISTENCE_ERROR"
	case errors.Is(err, services.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "STORE_UNAVAILABLE"
	case errors.Is(err, services.ErrInvalidOtp):
		return http.StatusUnauthorized, "INVALID_OTP"
	case errors.Is(err, services.ErrAccountNotActive):
		return http.StatusForbidden, "ACCOUNT_NOT_ACTIVE"
	case errors.Is(err, services.ErrAccountNotFound):
		return http.StatusNotFound, "ACCOUNT_NOT_FOUND"
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS"
	case errors.Is(err, services.ErrRateLimited):
		return http.StatusTooManyRequests, "TOO_MANY_REQUESTS"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// userFacingMessage keeps transport details out of client responses.
func userFacingMessage(err error) string {
	for _, sentinel := range []error{
		services.ErrValidation,
		services.ErrDuplicateAccount,
		services.ErrPaymentArtifact,
		services.ErrPersistence,
		services.ErrStoreUnavailable,
		services.ErrInvalidOtp,
		services.ErrAccountNotActive,
		services.ErrAccountNotFound,
		services.ErrInvalidCredentials,
		services.ErrRateLimited,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal error"
}
