package wompicol

import (
	"encoding/json"
	"fmt"
)

// Environment selects between the production and sandbox Wompi deployments.
type Environment string

const (
	EnvProd Environment = "prod"
	EnvTest Environment = "test"
)

// ParseEnvironment maps the env query parameter from the client-return
// redirect. Anything other than "test" is treated as prod.
func ParseEnvironment(s string) Environment {
	if s == string(EnvTest) {
		return EnvTest
	}
	return EnvProd
}

// Transaction statuses reported by Wompi.
const (
	StatusApproved = "APPROVED"
	StatusPending  = "PENDING"
	StatusVoided   = "VOIDED"
	StatusDeclined = "DECLINED"
	StatusError    = "ERROR"
)

const CurrencyCOP = "COP"

// TransactionData is the transaction object Wompi sends inside webhook
// events and returns from GET /transactions/{id}.
type TransactionData struct {
	ID                string  `json:"id"`
	AmountInCents     int64   `json:"amount_in_cents"`
	Reference         string  `json:"reference"`
	CustomerEmail     string  `json:"customer_email,omitempty"`
	Currency          string  `json:"currency"`
	PaymentMethodType string  `json:"payment_method_type,omitempty"`
	RedirectURL       string  `json:"redirect_url,omitempty"`
	Status            string  `json:"status"`
	PaymentLinkID     *string `json:"payment_link_id,omitempty"`
	PaymentSourceID   *string `json:"payment_source_id,omitempty"`
}

type EventData struct {
	Transaction TransactionData `json:"transaction"`
}

// Event is the envelope Wompi posts to the event URL. Wompi does not sign
// these payloads, so nothing in here can be trusted until the Verifier has
// cross-checked it against the API.
//
// NoConfirm marks events built internally from an authoritative API fetch;
// it must never arrive over the wire.
type Event struct {
	Event     string    `json:"event"`
	Data      EventData `json:"data"`
	SentAt    string    `json:"sent_at,omitempty"`
	Test      bool      `json:"test,omitempty"`
	NoConfirm bool      `json:"noconfirm,omitempty"`
}

// ParseEvent decodes a wire payload into a typed event and enforces the
// trust-boundary rules: required correlation fields must be present and
// internal-only flags must be absent.
func ParseEvent(body []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("wompicol: decoding event payload: %w", err)
	}
	if event.NoConfirm {
		return nil, ErrProtocolViolation
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	return &event, nil
}

// Validate checks the fields without which the event cannot be correlated
// to a local transaction.
func (e *Event) Validate() error {
	if e.Data.Transaction.ID == "" {
		return ErrMissingTransactionID
	}
	if e.Data.Transaction.Reference == "" {
		return ErrMissingReference
	}
	return nil
}
