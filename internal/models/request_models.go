package models

type RegisterRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Pincode string `json:"pincode"`
}

type EmployeeRegisterRequest struct {
	RegisterRequest
	ExecutiveEmail string `json:"executive_email"`
}

type StartLoginRequest struct {
	Email       string      `json:"email"`
	AccountType AccountType `json:"account_type"`
}

type VerifyLoginRequest struct {
	Email       string      `json:"email"`
	AccountType AccountType `json:"account_type"`
	OTP         string      `json:"otp"`
}

type ConfirmPaymentRequest struct {
	OrderID     string      `json:"order_id"`
	AccountType AccountType `json:"account_type"`
}

type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type DeactivateRequest struct {
	Email       string      `json:"email"`
	AccountType AccountType `json:"account_type"`
}

type AssignTargetRequest struct {
	Email          string `json:"email"`
	AssignedTarget int    `json:"assigned_target"`
	// TargetDate is the month the target applies to, "2006-01" format.
	TargetDate string `json:"target_date"`
}
