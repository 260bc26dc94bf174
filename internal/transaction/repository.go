package transaction

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ReconciliationOutcome is the full field set one processed event writes to
// a transaction row. It is applied as a single UPDATE so the caller never
// observes a partial application.
type ReconciliationOutcome struct {
	TransactionID     uint
	State             State
	AcquirerReference string
	StateMessage      string
	IsProcessed       bool
	DoneAt            *time.Time
}

type Repository interface {
	// FindByReference returns every transaction carrying the reference.
	// The strict one-match contract is the caller's to enforce.
	FindByReference(ctx context.Context, ref string) ([]*Transaction, error)
	// FindByAcquirerReference returns (nil, nil) when no transaction has
	// been reconciled against the given provider id.
	FindByAcquirerReference(ctx context.Context, acquirerRef string) (*Transaction, error)
	ApplyReconciliation(ctx context.Context, outcome *ReconciliationOutcome) error
	// WithReferenceLock serializes concurrent applies for one reference.
	// A webhook delivery and a manual recovery can race for the same
	// transaction; the lock preserves the is_processed guarantee.
	WithReferenceLock(ctx context.Context, ref string, fn func(ctx context.Context) error) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const txColumns = `id, reference, amount, state, acquirer_reference, state_message, is_processed, done_at, created_at, updated_at`

func (r *repository) FindByReference(ctx context.Context, ref string) ([]*Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+txColumns+`
		FROM payment_transactions WHERE reference = $1
	`, ref)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (r *repository) FindByAcquirerReference(ctx context.Context, acquirerRef string) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+txColumns+`
		FROM payment_transactions WHERE acquirer_reference = $1
	`, acquirerRef)

	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (r *repository) ApplyReconciliation(ctx context.Context, outcome *ReconciliationOutcome) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payment_transactions
		SET state = $1,
		    acquirer_reference = $2,
		    state_message = $3,
		    is_processed = $4,
		    done_at = $5,
		    updated_at = NOW()
		WHERE id = $6
	`,
		outcome.State, outcome.AcquirerReference, outcome.StateMessage,
		outcome.IsProcessed, outcome.DoneAt, outcome.TransactionID,
	)
	return err
}

func (r *repository) WithReferenceLock(ctx context.Context, ref string, fn func(ctx context.Context) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// Advisory lock keyed on the reference, held until commit/rollback.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, ref); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := fn(ctx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*Transaction, error) {
	var (
		t           Transaction
		acquirerRef sql.NullString
		message     sql.NullString
		doneAt      sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.Reference, &t.Amount, &t.State,
		&acquirerRef, &message, &t.IsProcessed, &doneAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.AcquirerReference = acquirerRef.String
	t.StateMessage = message.String
	if doneAt.Valid {
		t.DoneAt = &doneAt.Time
	}
	return &t, nil
}
