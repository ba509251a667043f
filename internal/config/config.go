package config

import (
	"os"
	"strconv"
)

type OnboardingServiceConfig struct {
	Port        string
	PostgresCfg PostgresConfig
	RedisCfg    RedisConfig
	RabbitMQCfg RabbitMQConfig
	RazorpayCfg RazorpayConfig
	SMTPCfg     SMTPConfig
	AuthCfg     AuthConfig
	PortalCfg   PortalConfig
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	Username string
	Password string
	Host     string
	Port     string
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	// RegistrationFee is in major currency units (rupees); it is scaled
	// to paise before it reaches the gateway.
	RegistrationFee int64
}

type SMTPConfig struct {
	Email    string
	Password string
}

type AuthConfig struct {
	JWTSecret  string
	AdminEmail string
	AdminPWD   string
}

type PortalConfig struct {
	// BaseURL is the public web portal origin used to build the payment
	// deep link embedded in onboarding emails.
	BaseURL string
}

func New() *OnboardingServiceConfig {
	return &OnboardingServiceConfig{
		Port: os.Getenv("PORT"),
		PostgresCfg: PostgresConfig{
			DBname:   os.Getenv("DB_NAME"),
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     os.Getenv("POSTGRES_PORT"),
		},
		RedisCfg: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     os.Getenv("REDIS_PORT"),
			Password: os.Getenv("REDIS_PWD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		RabbitMQCfg: RabbitMQConfig{
			Username: os.Getenv("RABBITMQ_USER"),
			Password: os.Getenv("RABBITMQ_PWD"),
			Host:     os.Getenv("RABBITMQ_HOST"),
			Port:     os.Getenv("RABBITMQ_PORT"),
		},
		RazorpayCfg: RazorpayConfig{
			KeyID:           os.Getenv("RAZORPAY_KEY_ID"),
			KeySecret:       os.Getenv("RAZORPAY_KEY_SECRET"),
			BaseURL:         getEnvDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
			RegistrationFee: int64(getEnvInt("REGISTRATION_FEE", 39)),
		},
		SMTPCfg: SMTPConfig{
			Email:    os.Getenv("SMTP_EMAIL"),
			Password: os.Getenv("SMTP_PWD"),
		},
		AuthCfg: AuthConfig{
			JWTSecret:  os.Getenv("JWT_SECRET"),
			AdminEmail: os.Getenv("ADMIN_EMAIL"),
			AdminPWD:   os.Getenv("ADMIN_PWD"),
		},
		PortalCfg: PortalConfig{
			BaseURL: os.Getenv("PORTAL_BASE_URL"),
		},
	}
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
