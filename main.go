package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpLayer "debt-tracker/http"
	"debt-tracker/repository"
	"debt-tracker/service"
)

const (
	idempotencyTTL    = 24 * time.Hour
	overdueSweepEvery = 1 * time.Hour
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	auth := httpLayer.NewAuthenticator(secret)

	var debtRepo repository.DebtRepository
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		repo, err := repository.NewDebtRepositoryGorm(dsn)
		if err != nil {
			log.Fatalf("connecting to postgres: %v", err)
		}
		debtRepo = repo
	} else {
		log.Println("DATABASE_URL not set, using in-memory repository")
		debtRepo = repository.NewDebtRepositoryMemory()
	}

	var cache repository.CacheRepository
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cache = repository.NewRedisCache(addr, idempotencyTTL)
	} else {
		log.Println("REDIS_ADDR not set, using in-memory cache")
		cache = repository.NewMockCache()
	}

	debtService := service.NewDebtService(debtRepo, cache)
	payoffService := service.NewPayoffService(debtRepo)
	termService := service.NewTermService()

	debtHandler := httpLayer.NewDebtHandler(debtService)
	payoffHandler := httpLayer.NewPayoffHandler(payoffService)
	breakdownHandler := httpLayer.NewBreakdownHandler()
	termHandler := httpLayer.NewTermHandler(termService)

	rateLimiter := httpLayer.NewRateLimiter(30, time.Minute)
	defer rateLimiter.Stop()

	// auth runs outside the limiter so authenticated traffic is keyed by
	// user id rather than source address
	protected := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(httpLayer.RateLimitMiddleware(rateLimiter, h))
	}
	open := func(h http.HandlerFunc) http.Handler {
		return httpLayer.RateLimitMiddleware(rateLimiter, h)
	}

	mux := http.NewServeMux()
	mux.Handle("POST /debts", protected(debtHandler.Create))
	mux.Handle("GET /debts", protected(debtHandler.List))
	mux.Handle("GET /debts/{id}", protected(debtHandler.Get))
	mux.Handle("DELETE /debts/{id}", protected(debtHandler.Delete))
	mux.Handle("POST /debts/{id}/payments", protected(debtHandler.ApplyPayment))
	mux.Handle("GET /debts/{id}/payments", protected(debtHandler.ListPayments))
	mux.Handle("POST /debts/{id}/cancel", protected(debtHandler.Cancel))
	mux.Handle("POST /debts/payoff-plan", protected(payoffHandler.Plan))
	mux.Handle("POST /loans/breakdown", open(breakdownHandler.Calculate))
	mux.Handle("POST /loans/recommend-term", open(termHandler.RecommendTerm))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweepOverdue(sweepCtx, debtService)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("debt tracker listening on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Printf("error starting server: %v", err)
		return
	case <-quit:
		log.Println("shutting down server...")
	}
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("error during server shutdown: %v", err)
	}

	log.Println("server exited")
}

// sweepOverdue periodically flips past-due debts to Overdue, standing in for
// the cron runner a larger deployment would use.
func sweepOverdue(ctx context.Context, debts *service.DebtService) {
	ticker := time.NewTicker(overdueSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			marked, err := debts.MarkOverdueDebts(ctx)
			if err != nil {
				log.Printf("overdue sweep: %v", err)
				continue
			}
			if marked > 0 {
				log.Printf("overdue sweep: marked %d debt(s)", marked)
			}
		case <-ctx.Done():
			return
		}
	}
}
