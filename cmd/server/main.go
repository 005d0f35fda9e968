package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/SagarCoder007/modern-banking-system/configs"
	"github.com/SagarCoder007/modern-banking-system/internal/accounts"
	"github.com/SagarCoder007/modern-banking-system/internal/auth"
	"github.com/SagarCoder007/modern-banking-system/internal/handlers"
	"github.com/SagarCoder007/modern-banking-system/internal/job"
	"github.com/SagarCoder007/modern-banking-system/internal/ledger"
	"github.com/SagarCoder007/modern-banking-system/internal/logger"
	appmw "github.com/SagarCoder007/modern-banking-system/internal/middleware"
	"github.com/SagarCoder007/modern-banking-system/internal/routes"
	"github.com/SagarCoder007/modern-banking-system/internal/seed"
	"github.com/SagarCoder007/modern-banking-system/internal/store"
)

func main() {
	logger.Init()
	defer logger.Log.Sync()

	configs.LoadConfig()
	cfg := configs.AppConfig

	db, err := store.NewDB(cfg.DB.DSN)
	if err != nil {
		logger.Log.Fatal("database init failed", zap.Error(err))
	}
	if err := store.Migrate(db); err != nil {
		logger.Log.Fatal("migration failed", zap.Error(err))
	}

	policy := ledger.DefaultPolicy()
	if v, err := decimal.NewFromString(cfg.Ledger.MinAmount); err == nil {
		policy.MinAmount = v
	}
	if v, err := decimal.NewFromString(cfg.Ledger.MaxAmount); err == nil {
		policy.MaxAmount = v
	}

	engine := ledger.NewEngine(store.NewLedgerStore(db), policy)
	accountsSvc := accounts.NewService(store.NewAccountStore(db), engine)
	authSvc := auth.NewService(store.NewAuthStore(db), time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	reports := store.NewReportStore(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seed.Run(ctx, db, accountsSvc)

	sweeper := job.NewTokenSweeper(authSvc, time.Duration(cfg.Auth.SweepMinutes)*time.Minute)
	go sweeper.Start(ctx)

	router := routes.NewRoutes(routes.Deps{
		Auth:     handlers.NewAuthHandler(authSvc, accountsSvc),
		Customer: handlers.NewCustomerHandler(accountsSvc, engine, reports),
		Banker:   handlers.NewBankerHandler(accountsSvc, engine, reports),
		Verify:   appmw.Authenticated(authSvc),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Log.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("graceful shutdown failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Log.Error("db close skipped, reason:", zap.Error(err))
	} else {
		sqlDB.Close()
		logger.Log.Info("db closed")
	}

	logger.Log.Info("server stopped")
}
