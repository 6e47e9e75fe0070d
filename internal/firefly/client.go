// Package firefly talks to the Firefly III ledger API: listing and creating
// categories and assigning categories to transactions. Every call is a single
// attempt with a short timeout; callers decide what a failure means for the
// pipeline, the client only labels it.
package firefly

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ledgersense/ledgersense/internal/common"
	"github.com/ledgersense/ledgersense/internal/model"
)

const defaultTimeout = 10 * time.Second

const (
	stageCategoryList      = "category_list"
	stageCategoryCreate    = "category_create"
	stageTransactionUpdate = "transaction_update"
)

// Config holds the ledger connection settings.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client is an HTTP client for the ledger API.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	token      string
}

// NewClient creates a ledger client. The base URL must include the scheme;
// trailing slashes are tolerated.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: ledger base URL is required", common.ErrMissingConfig)
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: ledger API token is required", common.ErrMissingConfig)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			// The ledger answers expired sessions with a redirect to its
			// login page. Surfacing the 302 keeps it distinguishable from
			// a real success.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger:  logger,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
	}, nil
}

type categoryData struct {
	Data []struct {
		ID         string `json:"id"`
		Attributes struct {
			Name string `json:"name"`
		} `json:"attributes"`
	} `json:"data"`
}

type singleCategoryData struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Name string `json:"name"`
		} `json:"attributes"`
	} `json:"data"`
}

// ListCategories fetches every category known to the ledger.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/categories", nil, stageCategoryList)
	if err != nil {
		return nil, err
	}

	var parsed categoryData
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, common.NewExternalError(
			stageCategoryList, common.KindMalformed,
			fmt.Errorf("failed to parse category list: %w", err),
		)
	}

	categories := make([]model.Category, 0, len(parsed.Data))
	for _, d := range parsed.Data {
		categories = append(categories, model.Category{ID: d.ID, Name: d.Attributes.Name})
	}

	return categories, nil
}

// CreateCategory creates a category with the given name and returns it.
func (c *Client) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	payload, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return nil, fmt.Errorf("failed to encode category: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/api/v1/categories", payload, stageCategoryCreate)
	if err != nil {
		return nil, err
	}

	var parsed singleCategoryData
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, common.NewExternalError(
			stageCategoryCreate, common.KindMalformed,
			fmt.Errorf("failed to parse created category: %w", err),
		)
	}

	return &model.Category{ID: parsed.Data.ID, Name: parsed.Data.Attributes.Name}, nil
}

// UpdateTransactionCategory assigns a category to a transaction journal.
// Rule processing and webhook firing are suppressed on the update so the
// assignment cannot re-enter the pipeline.
func (c *Client) UpdateTransactionCategory(ctx context.Context, journalID, categoryID string) error {
	payload, err := json.Marshal(map[string]any{
		"apply_rules":   false,
		"fire_webhooks": false,
		"transactions": []map[string]any{
			{"category_id": categoryID},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to encode transaction update: %w", err)
	}

	_, err = c.do(ctx, http.MethodPut, "/api/v1/transactions/"+journalID, payload, stageTransactionUpdate)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, stage string) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, common.NewExternalError(
			stage, transportKind(err),
			fmt.Errorf("ledger request failed: %w", err),
		)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, common.NewExternalError(
			stage, common.KindUnavailable,
			fmt.Errorf("failed to read ledger response: %w", err),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("ledger request failed",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
		)
		return nil, common.NewExternalError(
			stage, statusKind(resp.StatusCode),
			fmt.Errorf("ledger returned status %d", resp.StatusCode),
		)
	}

	return body, nil
}

func statusKind(status int) common.ErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusFound:
		return common.KindAuthExpired
	case http.StatusTooManyRequests:
		return common.KindQuotaExceeded
	default:
		return common.KindUnavailable
	}
}

func transportKind(err error) common.ErrorKind {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return common.KindTimeout
	}
	return common.KindUnavailable
}
