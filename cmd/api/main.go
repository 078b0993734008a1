package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpadp "loan-ledger-backend/internal/adapter/http"
	mw "loan-ledger-backend/internal/adapter/middleware"
	"loan-ledger-backend/internal/adapter/repository/mysql"
	"loan-ledger-backend/internal/config"
	"loan-ledger-backend/internal/infrastructure/cache"
	"loan-ledger-backend/internal/infrastructure/db"
	"loan-ledger-backend/internal/infrastructure/events"
	"loan-ledger-backend/internal/infrastructure/oracle"
	loanuc "loan-ledger-backend/internal/usecase/loan"
	"loan-ledger-backend/internal/usecase/sweep"
	"loan-ledger-backend/internal/usecase/valuation"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	repo := mysql.NewLoanRepository(gdb)
	uow := mysql.NewGormUoW(gdb)
	po := oracle.NewRedisOracle(rdb, cfg.OraclePriceKey)
	val := valuation.New(valuation.DefaultConfig())
	pub := events.NewStreamPublisher(rdb, events.DefaultStream)

	registry := loanuc.NewUsecase(repo, uow, po, val, pub, cfg.EscrowAccountID)
	scanner := sweep.NewScanner(repo, po, val)
	runner := sweep.NewRunner(scanner, registry, cfg.SystemActorID,
		time.Duration(cfg.SweepIntervalSecs)*time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go runner.Run(ctx)

	h := httpadp.NewHandler()
	lh := httpadp.NewLoanHandler(registry)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	idemp := mw.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second)

	// routes
	e.GET("/health", h.Health)
	e.GET("/price", lh.GetLatestPrice)
	e.GET("/loans/active", lh.GetActiveLoans)
	e.GET("/loans/:loan_id", lh.GetLoan)
	e.GET("/loans/:loan_id/repayable", lh.GetTotalRepayable)

	// lifecycle operations move assets, so they carry idempotency keys
	e.POST("/loans", lh.RequestLoan, idemp)
	e.POST("/loans/:loan_id/fund", lh.FundLoan, idemp)
	e.POST("/loans/:loan_id/repay", lh.RepayLoan, idemp)
	e.POST("/loans/:loan_id/liquidate", lh.LiquidateLoan, idemp)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Println(err)
	}
}
