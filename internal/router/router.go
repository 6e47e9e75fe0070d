// Package router dispatches ledger webhook events. Transaction-create
// events run the full categorization pipeline; budget and lifecycle events
// get lightweight advisory analysis. The router never returns an error for
// a recognized payload, only for structurally invalid ones.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledgersense/ledgersense/internal/common"
	"github.com/ledgersense/ledgersense/internal/engine"
	"github.com/ledgersense/ledgersense/internal/model"
	"github.com/ledgersense/ledgersense/internal/service"
)

// defaultMinConfidence is the floor below which a prediction is reported
// but not applied to the ledger.
const defaultMinConfidence = 0.30

// Categorizer produces a category decision for a transaction description.
type Categorizer interface {
	Categorize(ctx context.Context, description string, suggested []string) engine.Decision
}

// CategoryResolver maps category names to ledger categories.
type CategoryResolver interface {
	Categories(ctx context.Context) ([]model.Category, error)
	ResolveAmong(ctx context.Context, name string, categories []model.Category) (model.Category, error)
}

// TransactionUpdater persists a category assignment to the ledger.
type TransactionUpdater interface {
	Apply(ctx context.Context, journalID string, category model.Category) error
}

// Config holds the router's tunables.
type Config struct {
	// MinConfidence is the lowest confidence worth persisting.
	MinConfidence float64
	// DedupeTTL bounds how long a delivery key is remembered.
	DedupeTTL time.Duration
}

// Router routes webhook envelopes to their handlers.
type Router struct {
	categorizer Categorizer
	resolver    CategoryResolver
	updater     TransactionUpdater
	metrics     service.MetricsStore
	dedupe      *dedupeSet
	logger      *slog.Logger

	minConfidence float64
}

// New creates a router. A nil categorizer means no classification model is
// available; transaction events then report no_model_available.
func New(cfg Config, categorizer Categorizer, resolver CategoryResolver, updater TransactionUpdater, metrics service.MetricsStore, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}

	minConfidence := cfg.MinConfidence
	if minConfidence <= 0 {
		minConfidence = defaultMinConfidence
	}

	return &Router{
		categorizer:   categorizer,
		resolver:      resolver,
		updater:       updater,
		metrics:       metrics,
		dedupe:        newDedupeSet(cfg.DedupeTTL),
		logger:        logger,
		minConfidence: minConfidence,
	}
}

// Close releases the router's background resources.
func (r *Router) Close() {
	r.dedupe.stop()
}

// Route dispatches one webhook envelope. The returned error is non-nil
// only for structurally invalid payloads (a ValidationError); every other
// outcome, including external failures, is folded into the RouteResult.
func (r *Router) Route(ctx context.Context, env *model.WebhookEnvelope) (model.RouteResult, error) {
	if env == nil || env.Trigger == "" {
		return model.RouteResult{}, common.NewValidationError("trigger is required")
	}

	kind := model.ParseEventKind(env.Trigger)
	r.logger.Info("processing webhook event", "trigger", env.Trigger, "kind", string(kind))

	switch kind {
	case model.EventTransactionCreated:
		return r.routeTransactionCreate(ctx, kind, env.Content)
	case model.EventTransactionUpdated:
		return r.analyzeTransactionUpdate(ctx, env.Content)
	case model.EventTransactionRemoved:
		return r.analyzeTransactionRemoval(ctx, env.Content)
	case model.EventBudgetCreated:
		return r.analyzeBudgetCreation(ctx, env.Content)
	case model.EventBudgetUpdated:
		return r.analyzeBudgetChange(ctx, env.Content)
	case model.EventBudgetRemoved:
		return r.analyzeBudgetRemoval(ctx, env.Content)
	case model.EventAny:
		return r.analyzeAnyEvent(ctx, env.Content)
	default:
		r.logger.Warn("unknown event trigger", "trigger", env.Trigger)
		return model.RouteResult{
			Status: model.StatusUnknownEvent,
			State:  model.StateIgnored,
			Reason: fmt.Sprintf("event %q logged, no handler", env.Trigger),
		}, nil
	}
}

// routeTransactionCreate runs the categorization pipeline for a new
// transaction. States advance Received -> Validated -> Categorized ->
// CategoryResolved -> Applied -> Completed; ledger failures after
// categorization degrade to CompletedWithWarning instead of failing.
func (r *Router) routeTransactionCreate(ctx context.Context, kind model.EventKind, content model.WebhookContent) (model.RouteResult, error) {
	if len(content.Transactions) == 0 {
		return model.RouteResult{}, common.NewValidationError("transaction event carries no transactions")
	}

	payload := content.Transactions[0]
	journalID := payload.JournalID.String()
	if journalID == "" {
		return model.RouteResult{}, common.NewValidationError("transaction_journal_id is required")
	}

	result := model.RouteResult{
		State:         model.StateReceived,
		TransactionID: journalID,
	}

	if payload.Description == "" {
		result.Status = model.StatusIgnored
		result.State = model.StateIgnored
		result.Reason = "no description"
		return result, nil
	}
	result.State = model.StateValidated

	tx := model.TransactionFromPayload(payload)
	r.logger.Info("transaction received",
		"transaction_id", tx.ID,
		"description", tx.Description,
		"amount", tx.Amount.String(),
		"type", string(tx.Type),
	)

	if r.dedupe.seen(string(kind) + ":" + journalID) {
		r.logger.Info("duplicate delivery", "transaction_id", journalID)
		result.Status = model.StatusDuplicateDelivery
		result.State = model.StateIgnored
		result.Reason = "event already processed"
		return result, nil
	}

	if r.categorizer == nil {
		result.Status = model.StatusNoModel
		result.State = model.StateFailed
		result.Reason = "no classification model available"
		return result, nil
	}

	// The category list doubles as classifier suggestions and as the
	// resolution universe; a failed fetch degrades both, it does not
	// stop the classification.
	categories, listErr := r.resolver.Categories(ctx)
	if listErr != nil {
		r.logger.Warn("failed to list ledger categories", "error", listErr)
	}
	names := make([]string, 0, len(categories))
	for _, cat := range categories {
		names = append(names, cat.Name)
	}

	decision := r.categorizer.Categorize(ctx, payload.Description, names)
	result.State = model.StateCategorized
	result.Category = decision.Category
	result.Confidence = decision.Confidence
	result.UsedFallback = decision.UsedFallback

	if decision.Confidence < r.minConfidence {
		result.Status = model.StatusLowConfidence
		result.Reason = "confidence below threshold"
		return result, nil
	}

	if listErr != nil {
		return r.degrade(result, listErr, model.StatusCategoryCreationFailed), nil
	}

	category, err := r.resolver.ResolveAmong(ctx, decision.Category, categories)
	if err != nil {
		return r.degrade(result, err, model.StatusCategoryCreationFailed), nil
	}
	result.State = model.StateCategoryResolved
	result.Category = category.Name

	if err := r.updater.Apply(ctx, journalID, category); err != nil {
		return r.degrade(result, err, model.StatusAssignmentFailed), nil
	}
	result.State = model.StateApplied

	result.Status = model.StatusCategoryUpdated
	result.State = model.StateCompleted
	return result, nil
}

// degrade folds a ledger failure into a terminal non-fatal result. The
// predicted category and confidence stay on the result so the caller still
// learns the outcome of the classification.
func (r *Router) degrade(result model.RouteResult, err error, status model.RouteStatus) model.RouteResult {
	if common.KindOf(err) == common.KindAuthExpired {
		status = model.StatusAuthRequired
	}

	r.logger.Warn("pipeline degraded",
		"transaction_id", result.TransactionID,
		"stage", common.StageOf(err, "ledger"),
		"status", string(status),
		"error", err,
	)

	result.Status = status
	result.State = model.StateCompletedWithWarning
	result.Reason = stageReason(err)
	return result
}

func stageReason(err error) string {
	var extErr *common.ExternalError
	if errors.As(err, &extErr) {
		return fmt.Sprintf("%s failed (%s)", extErr.Stage, extErr.Kind)
	}
	return err.Error()
}
