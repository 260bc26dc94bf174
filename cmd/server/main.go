package main

import (
	"context"
	"log"
	"net/http"

	"wompicol-be/internal/config"
	"wompicol-be/internal/db"
	"wompicol-be/internal/logger"
	"wompicol-be/internal/middleware"
	"wompicol-be/internal/transaction"
	"wompicol-be/internal/transport"
	"wompicol-be/internal/wompicol"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	repo := transaction.NewRepository(database)
	gateway := wompicol.NewGateway()
	verifier := wompicol.NewVerifier(gateway)

	svc := transaction.NewService(repo, gateway, verifier, transaction.Hooks{
		OnDone: func(ctx context.Context, tx *transaction.Transaction) error {
			logger.FromCtx(ctx).Info("payment confirmed",
				zap.String("reference", tx.Reference),
				zap.Float64("amount", tx.Amount),
			)
			return nil
		},
	})

	h := transport.NewHandler(svc)

	public := func(next http.HandlerFunc) http.Handler {
		return logger.RequestIDMiddleware(
			logger.LoggingMiddleware(
				middleware.RateLimitMiddleware(next),
			),
		)
	}
	admin := func(next http.HandlerFunc) http.Handler {
		return logger.RequestIDMiddleware(
			logger.LoggingMiddleware(
				middleware.RequireAuth(cfg.OperatorSecret, next),
			),
		)
	}

	mux := http.NewServeMux()
	mux.Handle(wompicol.WebhookPath, public(h.Webhook))
	mux.Handle(wompicol.TestWebhookPath, public(h.Webhook))
	mux.Handle(wompicol.ClientReturnPath, public(h.ClientReturn))
	mux.Handle("/admin/wompicol/reconcile", admin(h.AdminReconcile))
	mux.Handle("/admin/wompicol/metrics", admin(h.AdminMetrics))

	log.Printf("wompicol reconciliation server listening on :%s", cfg.AppPort)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, mux))
}
