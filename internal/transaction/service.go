package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wompicol-be/internal/logger"
	"wompicol-be/internal/metrics"
	"wompicol-be/internal/reference"
	"wompicol-be/internal/wompicol"

	"go.uber.org/zap"
)

// Hooks are the host order system's side effects around a confirmed
// payment. OnDone is the payment-confirmed callback; PostProcess runs
// exactly once per transaction after it first reaches done, guarded by
// is_processed.
type Hooks struct {
	OnDone      func(ctx context.Context, tx *Transaction) error
	PostProcess func(ctx context.Context, tx *Transaction) error
}

type Service interface {
	// ProcessEvent drives one verified Wompi event through resolution,
	// parameter checks and the state table. The webhook handler and the
	// manual-recovery path both end up here.
	ProcessEvent(ctx context.Context, event *wompicol.Event) error
	// Recover reconciles a transaction directly from the Wompi API when
	// the client's browser returned before any webhook arrived.
	Recover(ctx context.Context, providerTxID string, env wompicol.Environment) error
}

type service struct {
	repo     Repository
	gateway  wompicol.Gateway
	verifier wompicol.Verifier
	hooks    Hooks
}

func NewService(repo Repository, gw wompicol.Gateway, verifier wompicol.Verifier, hooks Hooks) Service {
	return &service{
		repo:     repo,
		gateway:  gw,
		verifier: verifier,
		hooks:    hooks,
	}
}

func (s *service) ProcessEvent(ctx context.Context, event *wompicol.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	data := event.Data.Transaction

	log := logger.FromCtx(ctx).With(
		zap.String("provider_tx_id", data.ID),
		zap.String("provider_reference", data.Reference),
		zap.String("status", data.Status),
		zap.Bool("test", event.Test),
	)

	// Wompi echoes back the encoded reference; strip the suffix before
	// the lookup.
	orderRef, err := reference.Decode(data.Reference)
	if err != nil {
		return err
	}

	env := wompicol.EnvProd
	if event.Test {
		env = wompicol.EnvTest
	}

	return s.repo.WithReferenceLock(ctx, orderRef, func(ctx context.Context) error {
		tx, err := s.resolve(ctx, orderRef)
		if err != nil {
			log.Warn("could not resolve transaction", zap.Error(err))
			return err
		}

		verified, err := s.verifier.Verify(ctx, event, env)
		if err != nil {
			log.Error("event failed verification", zap.Error(err))
			return err
		}
		if !verified {
			log.Warn("event left unverified, not processing")
			return fmt.Errorf("%w: reference %s", ErrUnverified, orderRef)
		}

		s.checkParameters(log, tx, &data)

		outcome, fireDone := s.buildOutcome(tx, event)

		if err := s.repo.ApplyReconciliation(ctx, outcome); err != nil {
			return fmt.Errorf("applying reconciliation for %s: %w", tx.Reference, err)
		}
		metrics.Reconciled.Inc()

		log.Info("transaction reconciled",
			zap.String("reference", tx.Reference),
			zap.String("state", string(outcome.State)),
		)

		if fireDone {
			s.runDoneHooks(ctx, log, tx)
		}
		return nil
	})
}

// resolve maps an order reference to exactly one transaction. The
// reference is the sole correlation key between Wompi and the host, so
// zero or multiple matches hard-stop processing instead of guessing.
func (s *service) resolve(ctx context.Context, orderRef string) (*Transaction, error) {
	matches, err := s.repo.FindByReference(ctx, orderRef)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrReferenceNotFound, orderRef)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s (%d matches)", ErrAmbiguousReference, orderRef, len(matches))
	}
}

// checkParameters reports amount and identity mismatches. Both checks are
// log-only: a mismatch is counted and warned about but does not gate the
// state transition.
func (s *service) checkParameters(log *zap.Logger, tx *Transaction, data *wompicol.TransactionData) {
	if data.AmountInCents != tx.ExpectedAmountCents() {
		metrics.InvalidParameters.Inc()
		log.Warn("amount mismatch",
			zap.String("reference", tx.Reference),
			zap.Int64("event_amount_in_cents", data.AmountInCents),
			zap.Int64("expected_amount_in_cents", tx.ExpectedAmountCents()),
		)
	}
	if tx.AcquirerReference != "" && tx.AcquirerReference != data.ID {
		metrics.InvalidParameters.Inc()
		log.Warn("acquirer reference mismatch",
			zap.String("reference", tx.Reference),
			zap.String("event_id", data.ID),
			zap.String("stored_acquirer_reference", tx.AcquirerReference),
		)
	}
}

// buildOutcome applies the Wompi status table. The returned bool says
// whether the done hooks must fire, which happens at most once per
// transaction.
func (s *service) buildOutcome(tx *Transaction, event *wompicol.Event) (*ReconciliationOutcome, bool) {
	status := event.Data.Transaction.Status

	message := fmt.Sprintf("Wompicol states the transactions as %s", status)
	if event.Test {
		message = "[test] " + message
	}

	outcome := &ReconciliationOutcome{
		TransactionID:     tx.ID,
		AcquirerReference: tx.AcquirerReference,
		StateMessage:      message,
		IsProcessed:       tx.IsProcessed,
		DoneAt:            tx.DoneAt,
	}
	// First successful validation claims the provider id; it is never
	// overwritten afterwards.
	if outcome.AcquirerReference == "" {
		outcome.AcquirerReference = event.Data.Transaction.ID
	}

	fireDone := false
	switch status {
	case wompicol.StatusApproved:
		outcome.State = StateDone
		now := time.Now()
		outcome.DoneAt = &now
		fireDone = !tx.IsProcessed
		outcome.IsProcessed = true
	case wompicol.StatusPending:
		outcome.State = StatePending
	case wompicol.StatusVoided, wompicol.StatusDeclined, wompicol.StatusError:
		outcome.State = StateCancel
	default:
		outcome.State = StateCancel
		outcome.StateMessage = fmt.Sprintf("Unrecognized status %q. %s", status, message)
	}

	return outcome, fireDone
}

// runDoneHooks fires the host callbacks after the done state has been
// persisted. Hook failures are logged, not propagated: the transaction is
// already reconciled and is_processed prevents a re-fire.
func (s *service) runDoneHooks(ctx context.Context, log *zap.Logger, tx *Transaction) {
	if s.hooks.OnDone != nil {
		if err := s.hooks.OnDone(ctx, tx); err != nil {
			log.Error("done callback failed", zap.String("reference", tx.Reference), zap.Error(err))
		}
	}
	if s.hooks.PostProcess != nil {
		if err := s.hooks.PostProcess(ctx, tx); err != nil {
			log.Error("post-process failed", zap.String("reference", tx.Reference), zap.Error(err))
		}
	}
}

func (s *service) Recover(ctx context.Context, providerTxID string, env wompicol.Environment) error {
	log := logger.FromCtx(ctx).With(
		zap.String("provider_tx_id", providerTxID),
		zap.String("environment", string(env)),
	)

	// A webhook may have landed while the client was on the checkout
	// page; if some transaction already claimed this provider id there
	// is nothing left to do.
	existing, err := s.repo.FindByAcquirerReference(ctx, providerTxID)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Info("transaction already reconciled", zap.String("reference", existing.Reference))
		return nil
	}

	record, err := s.gateway.FetchTransaction(ctx, providerTxID, env)
	if err != nil {
		if errors.Is(err, wompicol.ErrGatewayUnavailable) {
			log.Warn("wompi unreachable, nothing to reconcile yet", zap.Error(err))
			return nil
		}
		return err
	}

	metrics.ManualRecoveries.Inc()

	// Reshape the flat record into the event envelope the pipeline
	// expects. NoConfirm skips re-verification: the data just came from
	// the authoritative source.
	event := &wompicol.Event{
		Event:     "transaction.updated",
		Data:      wompicol.EventData{Transaction: *record},
		Test:      env == wompicol.EnvTest,
		NoConfirm: true,
	}
	return s.ProcessEvent(ctx, event)
}
