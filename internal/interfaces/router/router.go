package router

import (
	"context"
	"fmt"
	"net/http"

	"stocktochain-backend/internal/application/events"
	"stocktochain-backend/internal/application/oracle"
	vehiclesvc "stocktochain-backend/internal/application/vehicle"
	"stocktochain-backend/internal/config"
	"stocktochain-backend/internal/infrastructure/database"
	custodyhandler "stocktochain-backend/internal/interfaces/handlers/custody"
	healthhandler "stocktochain-backend/internal/interfaces/handlers/health"
	vehiclehandler "stocktochain-backend/internal/interfaces/handlers/vehicle"
	"stocktochain-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, nil, nil, fmt.Errorf("migrate: %w", err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("redis url: %w", err)
		}
		rdb = redis.NewClient(opt)
	}

	adapter, err := newOracle(cfg, rdb)
	if err != nil {
		return nil, nil, nil, err
	}
	var publisher vehiclesvc.Publisher
	if rdb != nil {
		publisher = events.NewRedisPublisher(rdb)
	}
	svc := vehiclesvc.NewService(db, cfg, adapter, publisher)
	if err := svc.Init(context.Background()); err != nil {
		return nil, nil, nil, fmt.Errorf("vehicle init: %w", err)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	custodyWebhook := &custodyhandler.WebhookHandler{
		DB:            db,
		Receiver:      svc,
		WebhookSecret: cfg.CustodyWebhookSecret,
	}
	app.Post("/api/v1/custody/webhook", custodyWebhook.HandleWebhook)

	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             &gormDBPinger{db: db},
		Vehicle:        svc,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	vh := &vehiclehandler.Handlers{Service: svc}
	vg := app.Group("/api/v1/vehicle", middleware.Caller())
	vg.Get("/workflow", vh.GetWorkflow)
	vg.Get("/price/sale", vh.SalePrice)
	vg.Get("/price/buyback", vh.BuybackPrice)
	vg.Get("/profits/rounds/:id", vh.GetRound)
	vg.Get("/investors", vh.ListInvestors)
	vg.Get("/investors/:address/summary", vh.Summary)
	vg.Get("/investors/:address/profit-share", vh.ProfitShare)
	vg.Get("/investors/:address", vh.GetInvestor)
	vg.Get("/events", vh.ListEvents)

	auth := middleware.RequireCaller()
	vg.Post("/whitelist/add", auth, vh.AddToWhitelist)
	vg.Post("/whitelist/remove", auth, vh.RemoveFromWhitelist)
	vg.Post("/workflow", auth, vh.SetWorkflow)
	vg.Post("/purchase", auth, vh.Purchase)
	vg.Post("/profits/distribute", auth, vh.Distribute)
	vg.Post("/profits/rounds/:id/batch", auth, vh.DistributeBatch)
	vg.Post("/profits/claim", auth, vh.Claim)
	vg.Post("/buyback/begin", auth, vh.BeginBuyback)
	vg.Post("/buyback/batch", auth, vh.BuybackBatch)
	vg.Post("/pause", auth, vh.Pause)
	vg.Post("/unpause", auth, vh.Unpause)
	vg.Post("/emergency-withdraw", auth, vh.EmergencyWithdraw)
	vg.Post("/ownership", auth, vh.TransferOwnership)
	vg.Post("/transfer", auth, vh.Transfer)
	vg.Post("/receive", auth, vh.Receive)

	return app, db, rdb, nil
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL != "" {
		return database.Open(cfg.DatabaseURL)
	}
	log.Info().Str("path", cfg.SQLitePath).Msg("DATABASE_URL not set, using SQLite")
	return database.OpenSQLite(cfg.SQLitePath)
}

func newOracle(cfg *config.Config, rdb *redis.Client) (*oracle.Adapter, error) {
	adapter := &oracle.Adapter{
		QuoteDecimals:   cfg.QuoteDecimals,
		PaymentDecimals: cfg.PaymentDecimals,
		MaxAge:          cfg.OracleMaxAge,
	}
	switch cfg.OracleSource {
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("oracle: ORACLE_SOURCE=redis requires REDIS_URL")
		}
		adapter.Quote = &oracle.RedisFeed{Client: rdb, Key: oracle.KeyQuoteUSD}
		adapter.Payment = &oracle.RedisFeed{Client: rdb, Key: oracle.KeyPaymentUSD}
	default:
		quote, err := oracle.ParseStaticFeed(cfg.QuoteUSDRate, cfg.FeedDecimals)
		if err != nil {
			return nil, fmt.Errorf("oracle: QUOTE_USD_RATE: %w", err)
		}
		payment, err := oracle.ParseStaticFeed(cfg.PaymentUSDRate, cfg.FeedDecimals)
		if err != nil {
			return nil, fmt.Errorf("oracle: PAYMENT_USD_RATE: %w", err)
		}
		adapter.Quote, adapter.Payment = quote, payment
	}
	return adapter, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
