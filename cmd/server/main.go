package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/Saishivram/paperroute/internal/assistant"
	"github.com/Saishivram/paperroute/internal/config"
	"github.com/Saishivram/paperroute/internal/database"
	"github.com/Saishivram/paperroute/internal/handler"
	"github.com/Saishivram/paperroute/internal/middleware"
	"github.com/Saishivram/paperroute/internal/queue"
	"github.com/Saishivram/paperroute/internal/repository"
	"github.com/Saishivram/paperroute/internal/router"
)

func main() {
	// A missing .env is fine in deployed environments where real env vars
	// are set by the platform.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	e := echo.New()

	// Redis-backed middlewares degrade to no-ops when Redis is down, so a
	// nil client here only logs a warning.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: rate limiting and response cache disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	// The response cache is not mounted globally: cached bodies hold
	// owner-scoped data, so it runs inside the authenticated group only.
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	owners := repository.NewOwnerRepo(db)
	tokens := repository.NewTokenRepo(db)
	employees := repository.NewEmployeeRepo(db)
	customers := repository.NewCustomerRepo(db)
	newspapers := repository.NewNewspaperRepo(db)
	subscriptions := repository.NewSubscriptionRepo(db)
	payments := repository.NewPaymentRepo(db)
	deliveries := repository.NewDeliveryRepo(db)
	notifications := repository.NewNotificationRepo(db)

	llm := assistant.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
	contextBuilder := &assistant.ContextBuilder{
		Employees:     employees,
		Customers:     customers,
		Newspapers:    newspapers,
		Subscriptions: subscriptions,
		Payments:      payments,
	}

	auth := handler.NewAuthHandler(cfg, owners, employees, tokens)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, cfg.JWTSecret)
	router.RegisterOwner(e, router.OwnerHandlers{
		Profile:       handler.NewProfileHandler(cfg, owners),
		Employees:     handler.NewEmployeeHandler(cfg, employees),
		Customers:     handler.NewCustomerHandler(customers),
		Newspapers:    handler.NewNewspaperHandler(newspapers),
		Subscriptions: handler.NewSubscriptionHandler(subscriptions, customers, newspapers),
		Payments:      handler.NewPaymentHandler(payments, subscriptions, notifications),
		Deliveries:    handler.NewDeliveryHandler(cfg, deliveries, employees, customers, newspapers, subscriptions, notifications),
		Notifications: handler.NewNotificationHandler(notifications, subscriptions),
		Assistant:     handler.NewAssistantHandler(llm, contextBuilder),
	}, cfg.JWTSecret, cache)

	// The payment event consumer reconnects on its own; it must never take
	// the API down with it.
	go func() {
		if err := queue.StartPaymentConsumer(); err != nil {
			log.Printf("payment consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
