package wompicol

import (
	"context"
	"errors"
	"strconv"

	"wompicol-be/internal/logger"
	"wompicol-be/internal/metrics"
	"wompicol-be/internal/reference"

	"go.uber.org/zap"
)

// Verifier cross-checks an inbound event against the authoritative record
// Wompi holds for the same transaction id. Wompi webhooks are neither
// signed nor authenticated, so this re-fetch is the only trust anchor.
type Verifier interface {
	// Verify returns (true, nil) when the event matches the provider
	// record or carries NoConfirm (the data already came from the API).
	// A gateway failure yields (false, nil): could not verify, the caller
	// chooses conservative behavior. A field disagreement yields a
	// *TrustViolationError naming every mismatched field.
	Verify(ctx context.Context, event *Event, env Environment) (bool, error)
}

type apiVerifier struct {
	gw Gateway
}

func NewVerifier(gw Gateway) Verifier {
	return &apiVerifier{gw: gw}
}

func (v *apiVerifier) Verify(ctx context.Context, event *Event, env Environment) (bool, error) {
	eventTx := event.Data.Transaction

	log := logger.FromCtx(ctx).With(
		zap.String("provider_tx_id", eventTx.ID),
		zap.String("environment", string(env)),
	)

	if event.NoConfirm {
		log.Debug("event built from authoritative fetch, skipping verification")
		return true, nil
	}

	record, err := v.gw.FetchTransaction(ctx, eventTx.ID, env)
	if err != nil {
		if errors.Is(err, ErrGatewayUnavailable) {
			log.Warn("could not fetch authoritative record", zap.Error(err))
			return false, nil
		}
		return false, err
	}

	// Wompi echoes back the encoded reference; strip the suffix before
	// comparing against the event, which went through the same decode.
	recordRef, err := reference.Decode(record.Reference)
	if err != nil {
		recordRef = record.Reference
	}
	eventRef, err := reference.Decode(eventTx.Reference)
	if err != nil {
		eventRef = eventTx.Reference
	}

	var mismatches []FieldMismatch
	collect := func(field, got, want string) {
		if got != want {
			mismatches = append(mismatches, FieldMismatch{Field: field, Event: got, Provider: want})
		}
	}

	collect("id", eventTx.ID, record.ID)
	collect("reference", eventRef, recordRef)
	collect("currency", eventTx.Currency, record.Currency)
	collect("status", eventTx.Status, record.Status)
	collect("amount_in_cents",
		strconv.FormatInt(eventTx.AmountInCents, 10),
		strconv.FormatInt(record.AmountInCents, 10),
	)

	if len(mismatches) > 0 {
		metrics.TrustViolations.Inc()
		return false, &TrustViolationError{TransactionID: eventTx.ID, Mismatches: mismatches}
	}

	return true, nil
}
