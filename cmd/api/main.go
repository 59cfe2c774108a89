package main

import (
	"context"
	"net/http"

	"stocktochain-backend/internal/config"
	"stocktochain-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var fiberApp *fiber.App
var appCfg *config.Config
var startupDB *gorm.DB
var startupRdb *redis.Client

func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	appCfg = cfg
	app, db, rdb, err := router.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}
	fiberApp = app
	startupDB = db
	startupRdb = rdb
}

func Handler(w http.ResponseWriter, r *http.Request) {
	adaptor.FiberApp(fiberApp)(w, r)
}

func main() {
	port := appCfg.Port

	sqlDB, err := startupDB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("database handle")
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Bool("postgres", appCfg.DatabaseURL != "").Msg("database connected")

	if startupRdb != nil {
		if err := startupRdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		log.Info().Msg("redis connected")
	}
	log.Info().
		Str("port", port).
		Str("env", appCfg.Env).
		Str("owner", appCfg.Owner.Hex()).
		Str("vehicle", appCfg.VehicleAddress.Hex()).
		Str("oracle", appCfg.OracleSource).
		Msgf("server running at http://localhost:%s (health: /health/json)", port)

	if err := fiberApp.Listen(":" + port); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}
