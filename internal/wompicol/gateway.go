package wompicol

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wompicol-be/internal/logger"
	"wompicol-be/internal/metrics"

	"go.uber.org/zap"
)

const (
	prodAPIBaseURL    = "https://production.wompi.co/v1"
	sandboxAPIBaseURL = "https://sandbox.wompi.co/v1"

	// CheckoutFormURL is where the redirect-to-pay form posts, for both
	// environments.
	CheckoutFormURL = "https://checkout.wompi.co/p/"

	fetchTimeout = 60 * time.Second
)

// Endpoint paths served by this module. The webhook paths are configured in
// the Wompi console as the event URLs; the client-return path is where Web
// Checkout sends the payer's browser back.
const (
	WebhookPath      = "/payment/wompicol/response"
	TestWebhookPath  = "/payment/wompicol_test/response"
	ClientReturnPath = "/payment/wompicol/client_return"
)

// Gateway fetches authoritative transaction records from the Wompi API.
// The read endpoint is public (lookup by transaction id), so no credentials
// are attached.
type Gateway interface {
	FetchTransaction(ctx context.Context, id string, env Environment) (*TransactionData, error)
}

type gateway struct {
	httpClient *http.Client
}

func NewGateway() Gateway {
	return &gateway{
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
	}
}

func apiBaseURL(env Environment) string {
	if env == EnvProd {
		return prodAPIBaseURL
	}
	return sandboxAPIBaseURL
}

func (g *gateway) FetchTransaction(ctx context.Context, id string, env Environment) (*TransactionData, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("provider_tx_id", id),
		zap.String("environment", string(env)),
	)

	url := fmt.Sprintf("%s/transactions/%s", apiBaseURL(env), id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Error("failed building request", zap.Error(err))
		return nil, err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		metrics.GatewayErrors.Inc()
		log.Warn("wompi request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.GatewayErrors.Inc()
		log.Warn("failed to read response body", zap.Error(err))
		return nil, fmt.Errorf("%w: reading response: %v", ErrGatewayUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.GatewayErrors.Inc()
		log.Warn("wompi returned non-200 status",
			zap.Int("http_status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	// The record comes wrapped in {"data": {...}} with a merchant
	// sub-object that reconciliation never reads.
	var res struct {
		Data TransactionData `json:"data"`
	}
	if err := json.Unmarshal(bodyBytes, &res); err != nil {
		log.Error("failed decoding wompi transaction", zap.Error(err))
		return nil, fmt.Errorf("wompicol: decoding transaction %s: %w", id, err)
	}

	log.Info("fetched wompi transaction",
		zap.String("reference", res.Data.Reference),
		zap.String("status", res.Data.Status),
	)

	return &res.Data, nil
}
