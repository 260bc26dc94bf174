package wompicol

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// -- Wire validation --
	ErrProtocolViolation    = errors.New("wompicol: noconfirm flag set by remote caller")
	ErrMissingTransactionID = errors.New("wompicol: event data missing transaction id")
	ErrMissingReference     = errors.New("wompicol: event data missing reference")

	// -- Provider API --
	ErrGatewayUnavailable = errors.New("wompicol: gateway unavailable")
)

// FieldMismatch records one field on which the webhook event and the
// authoritative provider record disagree.
type FieldMismatch struct {
	Field    string
	Event    string
	Provider string
}

// TrustViolationError is raised when an inbound event disagrees with the
// record Wompi returns for the same transaction id. All mismatched fields
// are collected before failing so operators get the full diagnostic in one
// error instead of one field per delivery attempt.
type TrustViolationError struct {
	TransactionID string
	Mismatches    []FieldMismatch
}

func (e *TrustViolationError) Error() string {
	parts := make([]string, 0, len(e.Mismatches))
	for _, m := range e.Mismatches {
		parts = append(parts, fmt.Sprintf("%s (event=%q provider=%q)", m.Field, m.Event, m.Provider))
	}
	return fmt.Sprintf(
		"wompicol: event for transaction %s disagrees with provider record on: %s",
		e.TransactionID, strings.Join(parts, ", "),
	)
}
