package main

import (
	"log"
	"time"

	"github.com/Govind-619/InfuseDesk/config"
	"github.com/Govind-619/InfuseDesk/controllers"
	"github.com/Govind-619/InfuseDesk/events"
	"github.com/Govind-619/InfuseDesk/lock"
	"github.com/Govind-619/InfuseDesk/routes"
	"github.com/Govind-619/InfuseDesk/services"
	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger("logs"); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer utils.SyncLoggers()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	config.App = cfg
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	if err := config.InitDB(cfg); err != nil {
		utils.LogError("Failed to initialize database: %v", err)
		log.Fatal("Failed to initialize database:", err)
	}

	// Create the configured admin
	if err := controllers.SeedAdmin(cfg.Admin); err != nil {
		utils.LogError("Failed to seed admin: %v", err)
		log.Fatal("Failed to seed admin:", err)
	}

	// Initialize Google OAuth
	config.InitGoogleOAuth(cfg)

	rdb := config.NewRedisClient(cfg)
	var locker lock.Locker = lock.NewLocal()
	if rdb != nil {
		locker = lock.NewRedis(rdb, 10*time.Minute)
		utils.LogInfo("Redis connected at %s", cfg.Redis.Addr)
	} else {
		utils.LogInfo("Redis not available, rate limiting disabled")
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.RabbitMQ.URL != "" {
		amqpPublisher := events.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	var notifier services.ApprovalNotifier
	if cfg.SMTP.Enabled() {
		notifier = utils.NewMailer(utils.EmailConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, cfg.ReviewerEmails)
	}

	controllers.Setup(config.DB, controllers.Deps{
		Publisher:       publisher,
		Notifier:        notifier,
		Locker:          locker,
		PackageValidity: cfg.PackageValidity(),
		JWTSecret:       cfg.JWTSecret,
		FrontendURL:     cfg.FrontendURL,
		Razorpay:        cfg.Razorpay,
	})

	// Set up router
	router := routes.SetupRouter(cfg, rdb)

	utils.LogInfo("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
