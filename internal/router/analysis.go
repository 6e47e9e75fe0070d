package router

import (
	"context"
	"fmt"

	"github.com/ledgersense/ledgersense/internal/model"
)

// Budget and lifecycle events get lightweight advisory analysis. These
// handlers never fail the request: analysis errors are logged and the
// advisory status is returned anyway.

func (r *Router) analyzeBudgetCreation(ctx context.Context, content model.WebhookContent) (model.RouteResult, error) {
	name := budgetName(content)
	r.logBudgetContext(ctx, "budget created", name)

	return model.RouteResult{
		Status: model.StatusBudgetAnalyzed,
		State:  model.StateCompleted,
		Reason: fmt.Sprintf("budget %q analyzed", name),
	}, nil
}

// analyzeBudgetChange distinguishes amount changes from other budget
// edits: deliveries carrying both old and new amounts report the change.
func (r *Router) analyzeBudgetChange(ctx context.Context, content model.WebhookContent) (model.RouteResult, error) {
	name := budgetName(content)

	if b := content.Budget; b != nil && b.OldAmount != "" {
		newAmount := b.NewAmount
		if newAmount == "" {
			newAmount = b.Amount
		}
		if newAmount != "" {
			r.logger.Info("budget amount changed",
				"budget", name,
				"old_amount", b.OldAmount.String(),
				"new_amount", newAmount.String(),
			)
			return model.RouteResult{
				Status: model.StatusBudgetAmountChanged,
				State:  model.StateCompleted,
				Reason: fmt.Sprintf("budget %q amount changed from %s to %s", name, b.OldAmount, newAmount),
			}, nil
		}
	}

	r.logBudgetContext(ctx, "budget updated", name)
	return model.RouteResult{
		Status: model.StatusBudgetUpdated,
		State:  model.StateCompleted,
		Reason: fmt.Sprintf("budget %q update analyzed", name),
	}, nil
}

func (r *Router) analyzeBudgetRemoval(_ context.Context, content model.WebhookContent) (model.RouteResult, error) {
	name := budgetName(content)
	r.logger.Info("budget removed", "budget", name)

	return model.RouteResult{
		Status: model.StatusBudgetRemoved,
		State:  model.StateCompleted,
		Reason: fmt.Sprintf("budget %q removal impact analyzed", name),
	}, nil
}

func (r *Router) analyzeTransactionUpdate(_ context.Context, content model.WebhookContent) (model.RouteResult, error) {
	result := model.RouteResult{
		Status: model.StatusUpdateProcessed,
		State:  model.StateCompleted,
		Reason: "transaction update analyzed",
	}
	if len(content.Transactions) > 0 {
		result.TransactionID = content.Transactions[0].JournalID.String()
	}
	return result, nil
}

func (r *Router) analyzeTransactionRemoval(_ context.Context, content model.WebhookContent) (model.RouteResult, error) {
	result := model.RouteResult{
		Status: model.StatusRemovalProcessed,
		State:  model.StateCompleted,
		Reason: "transaction removal impact analyzed",
	}
	if len(content.Transactions) > 0 {
		result.TransactionID = content.Transactions[0].JournalID.String()
	}
	return result, nil
}

func (r *Router) analyzeAnyEvent(ctx context.Context, _ model.WebhookContent) (model.RouteResult, error) {
	r.logBudgetContext(ctx, "any-event webhook", "")

	return model.RouteResult{
		Status: model.StatusAnyEventProcessed,
		State:  model.StateCompleted,
		Reason: "recent activity analyzed",
	}, nil
}

// logBudgetContext enriches advisory log lines with prediction-log totals.
// Metrics lookups here are strictly best-effort.
func (r *Router) logBudgetContext(ctx context.Context, msg, budget string) {
	attrs := []any{}
	if budget != "" {
		attrs = append(attrs, "budget", budget)
	}

	if r.metrics != nil {
		summary, err := r.metrics.Summary(ctx)
		if err != nil {
			r.logger.Warn("failed to load metrics summary", "error", err)
		} else if summary != nil {
			attrs = append(attrs,
				"recent_predictions", summary.TotalPredictions,
				"avg_confidence", summary.AvgConfidence,
			)
		}
	}

	r.logger.Info(msg, attrs...)
}

func budgetName(content model.WebhookContent) string {
	if content.Budget != nil && content.Budget.Name != "" {
		return content.Budget.Name
	}
	return "Unknown Budget"
}
