package transaction

import (
	"time"

	"wompicol-be/internal/wompicol"
)

type State string

const (
	StateDraft   State = "draft"
	StatePending State = "pending"
	StateDone    State = "done"
	StateCancel  State = "cancel"
)

// Transaction is the host order system's payment transaction record. It is
// created by the host order flow before any provider interaction;
// reconciliation only mutates it.
type Transaction struct {
	ID                uint
	Reference         string
	Amount            float64
	State             State
	AcquirerReference string
	StateMessage      string
	IsProcessed       bool
	DoneAt            *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ExpectedAmountCents is the amount Wompi must report for this transaction,
// in minor units with the ceiling rule applied.
func (t *Transaction) ExpectedAmountCents() int64 {
	return wompicol.AmountCents(t.Amount)
}
