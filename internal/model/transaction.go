package model

import "github.com/shopspring/decimal"

// TransactionType identifies the direction of a ledger transaction.
type TransactionType string

// Transaction types used by the ledger.
const (
	TypeWithdrawal TransactionType = "withdrawal"
	TypeDeposit    TransactionType = "deposit"
	TypeTransfer   TransactionType = "transfer"
)

// Transaction is a ledger transaction as seen through webhook deliveries.
// The ledger owns the record; this system reads it and patches CategoryID.
type Transaction struct {
	ID          string
	Description string
	Amount      decimal.Decimal
	Type        TransactionType
	CategoryID  string // empty when uncategorized
}

// TransactionFromPayload converts a webhook payload entry into a Transaction.
// A missing or malformed amount is treated as zero; the amount is advisory
// and never gates categorization.
func TransactionFromPayload(p TransactionPayload) Transaction {
	amount, err := decimal.NewFromString(p.Amount.String())
	if err != nil {
		amount = decimal.Zero
	}
	return Transaction{
		ID:          p.JournalID.String(),
		Description: p.Description,
		Amount:      amount,
		Type:        TransactionType(p.Type),
	}
}
