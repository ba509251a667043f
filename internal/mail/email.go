package mail

import (
	"onboarding-service/internal/template"

	"gopkg.in/gomail.v2"
)

type EmailService struct {
	dialer *gomail.Dialer
}

func NewEmailService(email, password string) *EmailService {
	d := gomail.NewDialer("smtp.gmail.com", 587, email, password)
	return &EmailService{dialer: d}
}

func (e *EmailService) PaymentLinkEmail(to, name, qrImageURL, deepLink string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", e.dialer.Username)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Complete your registration payment")
	m.SetBody("text/html", template.PaymentLinkTemplate(name, qrImageURL, deepLink))
	return e.dialer.DialAndSend(m)
}

func (e *EmailService) OTPEmail(to, code string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", e.dialer.Username)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your login code")
	m.SetBody("text/html", template.OTPTemplate(code))
	return e.dialer.DialAndSend(m)
}
