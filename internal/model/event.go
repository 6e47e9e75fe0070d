// Package model defines the core domain models used throughout the application.
package model

import "encoding/json"

// EventKind identifies the ledger webhook trigger that produced an event.
type EventKind string

// Webhook event kinds fired by the ledger.
const (
	EventTransactionCreated EventKind = "STORE_TRANSACTION"
	EventTransactionUpdated EventKind = "UPDATE_TRANSACTION"
	EventTransactionRemoved EventKind = "DESTROY_TRANSACTION"
	EventBudgetCreated      EventKind = "STORE_BUDGET"
	EventBudgetUpdated      EventKind = "UPDATE_BUDGET"
	EventBudgetRemoved      EventKind = "DESTROY_BUDGET"
	EventAny                EventKind = "ANY_EVENT"
	EventGeneric            EventKind = "GENERIC"

	// Legacy trigger name still sent by older ledger installs.
	eventLegacyStoreTransaction EventKind = "TRIGGER_STORE_TRANSACTION"
)

// ParseEventKind maps a raw trigger string to an EventKind. Unrecognized
// triggers map to EventGeneric; they are acknowledged but not acted on.
func ParseEventKind(trigger string) EventKind {
	switch EventKind(trigger) {
	case EventTransactionCreated, eventLegacyStoreTransaction:
		return EventTransactionCreated
	case EventTransactionUpdated, EventTransactionRemoved,
		EventBudgetCreated, EventBudgetUpdated, EventBudgetRemoved,
		EventAny:
		return EventKind(trigger)
	default:
		return EventGeneric
	}
}

// WebhookEnvelope is the versioned wire format of a ledger webhook delivery.
type WebhookEnvelope struct {
	Trigger string         `json:"trigger" validate:"required"`
	Content WebhookContent `json:"content"`
}

// Kind returns the event kind for the envelope's trigger.
func (e WebhookEnvelope) Kind() EventKind {
	return ParseEventKind(e.Trigger)
}

// WebhookContent carries the event-specific payload. Exactly one of the
// branches is populated depending on the trigger.
type WebhookContent struct {
	Transactions []TransactionPayload `json:"transactions,omitempty"`
	Budget       *BudgetPayload       `json:"budget,omitempty"`
}

// TransactionPayload is the transaction entry inside a webhook delivery.
// The ledger sends journal ids and amounts as either JSON numbers or
// strings depending on version, so both fields use json.Number.
type TransactionPayload struct {
	JournalID   json.Number `json:"transaction_journal_id"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount,omitempty"`
	Type        string      `json:"type,omitempty"`
}

// BudgetPayload is the budget entry inside budget lifecycle deliveries.
type BudgetPayload struct {
	Name      string      `json:"name"`
	Amount    json.Number `json:"amount,omitempty"`
	OldAmount json.Number `json:"old_amount,omitempty"`
	NewAmount json.Number `json:"new_amount,omitempty"`
}
