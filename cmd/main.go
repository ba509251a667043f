package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"onboarding-service/internal/config"
	"onboarding-service/internal/database/postgres"
	redisdb "onboarding-service/internal/database/redis"
	"onboarding-service/internal/event"
	"onboarding-service/internal/gateway"
	"onboarding-service/internal/handlers"
	"onboarding-service/internal/mail"
	"onboarding-service/internal/models"
	"onboarding-service/internal/repository"
	"onboarding-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("/onboarding", "log", "onboarding_service")
	err := os.MkdirAll(logDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.New()

	// Block until the database is up: repositories capture the handle, so
	// serving before a connection exists would hand them nil.
	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		log.Printf("error connect to database: %s, retrying until available", err)
		db = postgres.RetryConnectOnFailed(30*time.Second, cfg.PostgresCfg)
	}

	rdb := redisdb.NewClient(cfg.RedisCfg)

	rabbitConn, err := event.NewRabbitMQConnection(cfg.RabbitMQCfg)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rabbitConn.Close()

	// Outbound email pipeline: publisher on the service side, in-process
	// consumer draining the queue into SMTP.
	publisher := event.NewNotificationPublisher(rabbitConn)
	emailService := mail.NewEmailService(cfg.SMTPCfg.Email, cfg.SMTPCfg.Password)
	consumer, err := event.NewQueueConsumer(rabbitConn, emailService)
	if err != nil {
		log.Fatalf("Failed to set up queue consumer: %v", err)
	}
	go func() {
		if err := consumer.StartConsuming(context.Background()); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	// Repositories
	fieldExecRepo := repository.NewAccountRepository(db, "field_executives", models.AccountTypeFieldExecutive)
	employeeRepo := repository.NewAccountRepository(db, "employees", models.AccountTypeEmployee)
	adminRepo := repository.NewAdminRepository(db)
	otpStore := repository.NewOtpStore(rdb)
	orderCache := repository.NewOrderCache(rdb)

	accountRepos := map[models.AccountType]repository.IAccountRepository{
		models.AccountTypeFieldExecutive: fieldExecRepo,
		models.AccountTypeEmployee:       employeeRepo,
	}

	// The gateway client is constructed once here and injected; no package
	// level client state.
	razorpayClient := gateway.NewRazorpayClient(cfg.RazorpayCfg)

	// Services
	tokenService := services.NewTokenService(cfg.AuthCfg.JWTSecret)
	fieldExecRegistration := services.NewRegistrationService(fieldExecRepo, razorpayClient, orderCache, publisher, services.FieldExecutivePolicy, cfg)
	employeeRegistration := services.NewRegistrationService(employeeRepo, razorpayClient, orderCache, publisher, services.EmployeePolicy, cfg)
	// OTP resend throttling is an open product question; no limiter wired.
	otpAuthService := services.NewOtpAuthService(accountRepos, otpStore, tokenService, publisher, nil)
	adminService := services.NewAdminService(adminRepo, accountRepos, tokenService)
	targetService := services.NewTargetAnalyticsService(fieldExecRepo, employeeRepo)

	if cfg.AuthCfg.AdminEmail != "" && cfg.AuthCfg.AdminPWD != "" {
		err := adminRepo.CreateAdmin(&models.Admin{
			ID:           "ADM-" + uuid.New().String(),
			Email:        cfg.AuthCfg.AdminEmail,
			PasswordHash: cfg.AuthCfg.AdminPWD,
		})
		if err != nil {
			log.Printf("failed to seed default admin: %v", err)
		}
	}

	router := gin.Default()
	mw := handlers.NewMiddleware(tokenService)
	onboardingHandler := handlers.NewOnboardingHandler(fieldExecRegistration, employeeRegistration, otpAuthService, adminService, targetService)
	onboardingHandler.RegisterRoutes(router, mw)

	log.Printf("onboarding-service listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
