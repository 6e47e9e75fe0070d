package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventKind(t *testing.T) {
	tests := []struct {
		trigger string
		want    EventKind
	}{
		{"STORE_TRANSACTION", EventTransactionCreated},
		{"TRIGGER_STORE_TRANSACTION", EventTransactionCreated},
		{"UPDATE_TRANSACTION", EventTransactionUpdated},
		{"DESTROY_TRANSACTION", EventTransactionRemoved},
		{"STORE_BUDGET", EventBudgetCreated},
		{"UPDATE_BUDGET", EventBudgetUpdated},
		{"DESTROY_BUDGET", EventBudgetRemoved},
		{"ANY_EVENT", EventAny},
		{"STORE_ACCOUNT", EventGeneric},
		{"", EventGeneric},
		{"store_transaction", EventGeneric},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseEventKind(tt.trigger), "trigger %q", tt.trigger)
	}
}

func TestWebhookEnvelope_Unmarshal(t *testing.T) {
	t.Run("numeric journal id", func(t *testing.T) {
		var env WebhookEnvelope
		require.NoError(t, json.Unmarshal([]byte(`{
			"trigger": "STORE_TRANSACTION",
			"content": {"transactions": [{"transaction_journal_id": 42, "description": "COFFEE", "amount": 5.75}]}
		}`), &env))

		require.Len(t, env.Content.Transactions, 1)
		assert.Equal(t, "42", env.Content.Transactions[0].JournalID.String())
	})

	t.Run("string journal id and amount", func(t *testing.T) {
		var env WebhookEnvelope
		require.NoError(t, json.Unmarshal([]byte(`{
			"trigger": "STORE_TRANSACTION",
			"content": {"transactions": [{"transaction_journal_id": "42", "description": "COFFEE", "amount": "5.75"}]}
		}`), &env))

		assert.Equal(t, "42", env.Content.Transactions[0].JournalID.String())
		assert.Equal(t, "5.75", env.Content.Transactions[0].Amount.String())
	})

	t.Run("budget payload", func(t *testing.T) {
		var env WebhookEnvelope
		require.NoError(t, json.Unmarshal([]byte(`{
			"trigger": "UPDATE_BUDGET",
			"content": {"budget": {"name": "Dining", "old_amount": 250, "new_amount": 300}}
		}`), &env))

		require.NotNil(t, env.Content.Budget)
		assert.Equal(t, "Dining", env.Content.Budget.Name)
		assert.Equal(t, "250", env.Content.Budget.OldAmount.String())
	})
}

func TestTransactionFromPayload(t *testing.T) {
	tx := TransactionFromPayload(TransactionPayload{
		JournalID:   "42",
		Description: "SAFEWAY",
		Amount:      "12.50",
		Type:        "withdrawal",
	})

	assert.Equal(t, "42", tx.ID)
	assert.Equal(t, TypeWithdrawal, tx.Type)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("12.50")))

	malformed := TransactionFromPayload(TransactionPayload{JournalID: "1", Amount: "not-a-number"})
	assert.True(t, malformed.Amount.IsZero(), "bad amounts never block categorization")
}

func TestCategory_NameEquals(t *testing.T) {
	cat := Category{ID: "1", Name: "Food & Drink"}
	assert.True(t, cat.NameEquals("food & drink"))
	assert.True(t, cat.NameEquals("FOOD & DRINK"))
	assert.False(t, cat.NameEquals("Food"))
}

func TestCorrect(t *testing.T) {
	assert.True(t, Correct("Groceries", "groceries"))
	assert.False(t, Correct("Groceries", "Shopping"))
}
