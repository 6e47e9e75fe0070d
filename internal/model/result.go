package model

// PipelineState tracks how far a transaction-create event progressed.
type PipelineState string

// Pipeline states. CompletedWithWarning is terminal but non-fatal: the
// category was predicted but could not be persisted to the ledger.
const (
	StateReceived             PipelineState = "RECEIVED"
	StateValidated            PipelineState = "VALIDATED"
	StateCategorized          PipelineState = "CATEGORIZED"
	StateCategoryResolved     PipelineState = "CATEGORY_RESOLVED"
	StateApplied              PipelineState = "APPLIED"
	StateCompleted            PipelineState = "COMPLETED"
	StateCompletedWithWarning PipelineState = "COMPLETED_WITH_WARNING"
	StateIgnored              PipelineState = "IGNORED"
	StateFailed               PipelineState = "FAILED"
)

// RouteStatus is the discriminator returned to the webhook caller. The
// HTTP response is always 200 for recognized payloads; the status string
// tells the caller whether the category was persisted, merely predicted,
// or not attempted.
type RouteStatus string

// Route statuses.
const (
	StatusCategoryUpdated        RouteStatus = "category_updated"
	StatusIgnored                RouteStatus = "ignored"
	StatusLowConfidence          RouteStatus = "low_confidence"
	StatusNoModel                RouteStatus = "no_model_available"
	StatusCategoryCreationFailed RouteStatus = "category_creation_failed"
	StatusAssignmentFailed       RouteStatus = "assignment_failed"
	StatusAuthRequired           RouteStatus = "auth_required"
	StatusDuplicateDelivery      RouteStatus = "duplicate_delivery"

	StatusBudgetAnalyzed      RouteStatus = "budget_analyzed"
	StatusBudgetUpdated       RouteStatus = "budget_updated"
	StatusBudgetAmountChanged RouteStatus = "budget_amount_changed"
	StatusBudgetRemoved       RouteStatus = "budget_removed_processed"
	StatusUpdateProcessed     RouteStatus = "update_processed"
	StatusRemovalProcessed    RouteStatus = "removal_processed"
	StatusAnyEventProcessed   RouteStatus = "any_event_processed"
	StatusUnknownEvent        RouteStatus = "unknown_event"
)

// RouteResult is the outcome of dispatching one webhook event.
type RouteResult struct {
	Status        RouteStatus
	State         PipelineState
	Reason        string
	TransactionID string
	Category      string
	Confidence    float64
	UsedFallback  bool
}
