package main

import (
	"context"
	"flag"
	"net/http"

	"go.uber.org/zap"

	"bank-ledger/config"
	"bank-ledger/database"
	"bank-ledger/handlers"
	"bank-ledger/ledger"
	"bank-ledger/reports"
	"bank-ledger/storage"
)

func main() {
	useMem := flag.Bool("mem", false, "use the in-memory store instead of MySQL")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	var store ledger.Store
	if *useMem {
		store = storage.NewMem()
		logger.Info("using in-memory store")
	} else {
		db, err := database.Connect(cfg.DBDSN)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		if err := database.EnsureSchema(context.Background(), db); err != nil {
			logger.Fatal("schema setup failed", zap.Error(err))
		}
		store = storage.NewMySQL(db)
		logger.Info("database connection established")
	}

	var cache *reports.Cache
	if cfg.RedisAddr != "" {
		cache = reports.NewCache(cfg.RedisAddr, cfg.RedisPassword, cfg.CacheTTL)
		logger.Info("report cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	led := ledger.New(store)
	led.OnAppend(func(ctx context.Context) { cache.Invalidate(ctx) })
	engine := reports.NewEngine(store, cache)

	h := handlers.New(store, led, engine, cache, logger)

	logger.Info("server is running", zap.String("addr", cfg.HTTPAddr))
	if err := http.ListenAndServe(cfg.HTTPAddr, h.Router()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
