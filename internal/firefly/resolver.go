package firefly

import (
	"context"
	"log/slog"

	"github.com/ledgersense/ledgersense/internal/model"
	"github.com/ledgersense/ledgersense/internal/service"
)

// CategoryResolver maps a category name to a ledger category, creating it
// when missing. Matching is case-insensitive; when a match exists the
// ledger's spelling wins.
type CategoryResolver struct {
	client service.LedgerClient
	logger *slog.Logger
}

// NewCategoryResolver creates a resolver backed by the given ledger client.
func NewCategoryResolver(client service.LedgerClient, logger *slog.Logger) *CategoryResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryResolver{client: client, logger: logger}
}

// Categories lists the ledger's categories.
func (r *CategoryResolver) Categories(ctx context.Context) ([]model.Category, error) {
	return r.client.ListCategories(ctx)
}

// Resolve finds or creates the category with the given name.
func (r *CategoryResolver) Resolve(ctx context.Context, name string) (model.Category, error) {
	categories, err := r.client.ListCategories(ctx)
	if err != nil {
		return model.Category{}, err
	}
	return r.ResolveAmong(ctx, name, categories)
}

// ResolveAmong resolves against an already-fetched category list, saving a
// round trip when the caller listed categories earlier in the same request.
// The ledger allows duplicate names, so a concurrent create can still race;
// whichever category the retried lookup finds first is used.
func (r *CategoryResolver) ResolveAmong(ctx context.Context, name string, categories []model.Category) (model.Category, error) {
	for _, cat := range categories {
		if cat.NameEquals(name) {
			return cat, nil
		}
	}

	created, err := r.client.CreateCategory(ctx, name)
	if err != nil {
		return model.Category{}, err
	}

	r.logger.Info("created ledger category", "category", created.Name, "id", created.ID)
	return *created, nil
}
