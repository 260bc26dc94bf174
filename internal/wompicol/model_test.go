package wompicol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		body := `{
			"event": "transaction.updated",
			"data": {
				"transaction": {
					"id": "01-1532941443-49201",
					"amount_in_cents": 4490000,
					"reference": "MZQ3X2DE2SMX",
					"currency": "COP",
					"payment_method_type": "NEQUI",
					"status": "APPROVED"
				}
			},
			"sent_at": "2018-07-20T16:45:05.000Z"
		}`

		event, err := ParseEvent([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, "transaction.updated", event.Event)
		assert.Equal(t, "01-1532941443-49201", event.Data.Transaction.ID)
		assert.Equal(t, "MZQ3X2DE2SMX", event.Data.Transaction.Reference)
		assert.False(t, event.Test)
		assert.False(t, event.NoConfirm)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		_, err := ParseEvent([]byte(`{not json`))
		assert.Error(t, err)
	})

	t.Run("MissingTransactionID", func(t *testing.T) {
		body := `{"data": {"transaction": {"reference": "SO001", "status": "APPROVED"}}}`
		_, err := ParseEvent([]byte(body))
		assert.ErrorIs(t, err, ErrMissingTransactionID)
	})

	t.Run("MissingReference", func(t *testing.T) {
		body := `{"data": {"transaction": {"id": "tx-1", "status": "APPROVED"}}}`
		_, err := ParseEvent([]byte(body))
		assert.ErrorIs(t, err, ErrMissingReference)
	})

	t.Run("NoConfirmFromWireIsProtocolViolation", func(t *testing.T) {
		// noconfirm is internal-only; a remote caller setting it is
		// trying to bypass verification.
		body := `{
			"noconfirm": true,
			"data": {"transaction": {"id": "tx-1", "reference": "SO001", "status": "APPROVED"}}
		}`
		_, err := ParseEvent([]byte(body))
		assert.ErrorIs(t, err, ErrProtocolViolation)
	})
}
