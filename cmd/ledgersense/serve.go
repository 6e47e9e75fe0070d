package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/ledgersense/ledgersense/internal/classification"
	"github.com/ledgersense/ledgersense/internal/common"
	"github.com/ledgersense/ledgersense/internal/engine"
	"github.com/ledgersense/ledgersense/internal/firefly"
	"github.com/ledgersense/ledgersense/internal/llm"
	"github.com/ledgersense/ledgersense/internal/model"
	"github.com/ledgersense/ledgersense/internal/router"
	"github.com/ledgersense/ledgersense/internal/server"
	"github.com/ledgersense/ledgersense/internal/service"
	"github.com/ledgersense/ledgersense/internal/storage"
)

// estimatedModelAccuracy seeds a fresh model-version row before enough
// feedback exists to measure it.
const estimatedModelAccuracy = 0.85

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook categorization server",
		Long: `Starts the HTTP server that receives ledger webhooks, categorizes new
transactions, and writes categories back to the ledger.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("db", "", "database file path (default: $HOME/.local/share/ledgersense/ledgersense.db)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("database.path", cmd.Flags().Lookup("db"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("classifier.timeout", "30s")
	viper.SetDefault("ledger.timeout", "10s")
	viper.SetDefault("router.min_confidence", 0.3)
	viper.SetDefault("router.dedupe_ttl", "5m")

	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = storage.DefaultDatabasePath()
	}

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("failed to close storage", "error", err)
		}
	}()

	classifier := buildClassifier()
	if classifier != nil {
		if err := recordModelVersion(ctx, store, classifier); err != nil {
			slog.Warn("failed to record model version", "error", err)
		}
	}

	ledger, err := firefly.NewClient(firefly.Config{
		BaseURL: viper.GetString("ledger.url"),
		Token:   viper.GetString("ledger.token"),
		Timeout: viper.GetDuration("ledger.timeout"),
	}, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create ledger client: %w", err)
	}
	probeLedger(ctx, ledger)

	resolver := firefly.NewCategoryResolver(ledger, slog.Default())
	updater := firefly.NewTransactionUpdater(ledger, slog.Default())

	var categorizer router.Categorizer
	if classifier != nil {
		categorizer = engine.New(classifier, classification.NewKeywordClassifier(nil), store)
	}

	rt := router.New(router.Config{
		MinConfidence: viper.GetFloat64("router.min_confidence"),
		DedupeTTL:     viper.GetDuration("router.dedupe_ttl"),
	}, categorizer, resolver, updater, store, slog.Default())
	defer rt.Close()

	var svcClassifier service.Classifier
	if classifier != nil {
		svcClassifier = classifier
	}

	srv := server.New(server.Config{
		Addr: viper.GetString("server.addr"),
	}, rt, store, svcClassifier, server.NewMetrics(), slog.Default())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildClassifier creates the primary classifier, or returns nil when no
// API key is configured. The pipeline then reports no_model_available for
// transaction events but still serves feedback and metrics.
func buildClassifier() *llm.Classifier {
	apiKey := viper.GetString("classifier.api_key")
	if apiKey == "" {
		slog.Warn("no classifier API key configured, transaction events will not be categorized")
		return nil
	}

	classifier, err := llm.NewClassifier(llm.Config{
		Provider: viper.GetString("classifier.provider"),
		APIKey:   apiKey,
		Model:    viper.GetString("classifier.model"),
		BaseURL:  viper.GetString("classifier.base_url"),
	}, viper.GetDuration("classifier.timeout"), slog.Default())
	if err != nil {
		slog.Warn("failed to create classifier", "error", err)
		return nil
	}
	return classifier
}

// recordModelVersion keeps the version log current: a new model identifier
// gets a row seeded with estimated quality until feedback measures it.
func recordModelVersion(ctx context.Context, store service.MetricsStore, classifier *llm.Classifier) error {
	current := classifier.ModelVersion()

	latest, err := store.LatestModelVersion(ctx)
	if err == nil && latest.ID == current {
		return nil
	}
	if err != nil && !errors.Is(err, common.ErrNoModel) {
		return err
	}

	slog.Info("recording new model version", "model", current)
	return store.RecordModelVersion(ctx, &model.ModelVersion{
		ID:        current,
		Accuracy:  estimatedModelAccuracy,
		CreatedAt: time.Now().UTC(),
	})
}

// probeLedger checks ledger connectivity at startup. Failures are logged,
// not fatal: the ledger may come up after us.
func probeLedger(ctx context.Context, ledger *firefly.Client) {
	err := common.WithRetry(ctx, func() error {
		if _, err := ledger.ListCategories(ctx); err != nil {
			return &common.RetryableError{Err: err, Retryable: true}
		}
		return nil
	}, common.RetryOptions{MaxAttempts: 3, InitialDelay: time.Second})
	if err != nil {
		slog.Warn("ledger unreachable at startup", "error", err)
		return
	}
	slog.Info("ledger connection verified")
}
