package firefly

import (
	"context"
	"log/slog"

	"github.com/ledgersense/ledgersense/internal/model"
	"github.com/ledgersense/ledgersense/internal/service"
)

// TransactionUpdater writes a resolved category back to a ledger transaction.
// A single attempt only: a failed write degrades the response rather than
// blocking the webhook.
type TransactionUpdater struct {
	client service.LedgerClient
	logger *slog.Logger
}

// NewTransactionUpdater creates an updater backed by the given ledger client.
func NewTransactionUpdater(client service.LedgerClient, logger *slog.Logger) *TransactionUpdater {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionUpdater{client: client, logger: logger}
}

// Apply assigns the category to the transaction journal.
func (u *TransactionUpdater) Apply(ctx context.Context, journalID string, category model.Category) error {
	if err := u.client.UpdateTransactionCategory(ctx, journalID, category.ID); err != nil {
		return err
	}

	u.logger.Info("assigned category",
		"transaction_id", journalID,
		"category", category.Name,
	)
	return nil
}
