package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"wompicol-be/internal/logger"
	"wompicol-be/internal/metrics"
	"wompicol-be/internal/transaction"
	"wompicol-be/internal/wompicol"

	"go.uber.org/zap"
)

// processRedirectURL is where both Wompi's servers and the returning client
// browser are sent after hitting the response endpoints.
const processRedirectURL = "/payment/process"

type Handler struct {
	Svc transaction.Service
}

func NewHandler(svc transaction.Service) *Handler {
	return &Handler{Svc: svc}
}

// Webhook receives Wompi event deliveries on both the prod and test paths.
// The path alone decides the environment; nothing in the body is trusted
// for that.
//
// The response is always a success-style redirect, whatever the pipeline
// outcome: a 4xx/5xx would trigger Wompi's delivery retries and turn one
// bad event into a notification storm. Failures are logged, not surfaced.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(zap.String("path", r.URL.Path))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Warn("failed to read webhook body", zap.Error(err))
		http.Redirect(w, r, processRedirectURL, http.StatusFound)
		return
	}
	defer r.Body.Close()

	if len(body) == 0 {
		// The response URL is also hit by client browsers returning
		// from Web Checkout with no event attached.
		log.Info("empty webhook body, client browser return")
		http.Redirect(w, r, processRedirectURL, http.StatusFound)
		return
	}

	metrics.WebhookEvents.Inc()

	event, err := wompicol.ParseEvent(body)
	if err != nil {
		log.Warn("rejected webhook payload", zap.Error(err))
		http.Redirect(w, r, processRedirectURL, http.StatusFound)
		return
	}

	event.Test = r.URL.Path == wompicol.TestWebhookPath

	if err := h.Svc.ProcessEvent(ctx, event); err != nil {
		log.Warn("webhook event not processed",
			zap.String("provider_tx_id", event.Data.Transaction.ID),
			zap.Error(err),
		)
	}

	http.Redirect(w, r, processRedirectURL, http.StatusFound)
}

// ClientReturn handles the redirect back from Web Checkout. When the
// webhook has not arrived yet this is the recovery trigger: the payment
// outcome is fetched straight from the Wompi API.
func (h *Handler) ClientReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx)

	id := r.FormValue("id")
	env := wompicol.ParseEnvironment(r.FormValue("env"))

	if id == "" {
		log.Info("client return without transaction id")
		http.Redirect(w, r, processRedirectURL, http.StatusFound)
		return
	}

	if err := h.Svc.Recover(ctx, id, env); err != nil {
		log.Warn("manual recovery failed",
			zap.String("provider_tx_id", id),
			zap.Error(err),
		)
	}

	http.Redirect(w, r, processRedirectURL, http.StatusFound)
}

type reconcileRequest struct {
	TransactionID string `json:"transaction_id"`
	Environment   string `json:"environment,omitempty"`
}

// AdminReconcile lets an operator force a reconciliation for a provider
// transaction id, reusing the manual-recovery path. Unlike the public
// endpoints this one reports failures honestly.
func (h *Handler) AdminReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TransactionID == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	env := wompicol.ParseEnvironment(req.Environment)

	if err := h.Svc.Recover(ctx, req.TransactionID, env); err != nil {
		logger.FromCtx(ctx).Error("operator reconcile failed",
			zap.String("provider_tx_id", req.TransactionID),
			zap.Error(err),
		)
		status := http.StatusInternalServerError
		if errors.Is(err, transaction.ErrReferenceNotFound) || errors.Is(err, transaction.ErrAmbiguousReference) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// AdminMetrics dumps the in-process reconciliation counters.
func (h *Handler) AdminMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(metrics.Snapshot())
}
