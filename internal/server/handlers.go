package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ledgersense/ledgersense/internal/common"
	"github.com/ledgersense/ledgersense/internal/model"
)

// webhookResponse is the always-200 envelope returned to the ledger. The
// status string discriminates the outcome; category and confidence are
// present whenever a prediction was made, even if persisting it failed.
type webhookResponse struct {
	Status        model.RouteStatus `json:"status"`
	State         string            `json:"state,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	TransactionID string            `json:"transaction_id,omitempty"`
	Category      string            `json:"category,omitempty"`
	Confidence    *float64          `json:"confidence,omitempty"`
	UsedFallback  bool              `json:"used_fallback,omitempty"`
}

type errorResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}

func badRequest(c echo.Context, detail string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Status: "error", Detail: detail})
}

// handleWebhook ingests a ledger webhook delivery. Structurally invalid
// payloads get a 400; every recognized payload gets a 200 whose status
// string describes the outcome.
func (s *Server) handleWebhook(c echo.Context) error {
	var env model.WebhookEnvelope
	if err := c.Bind(&env); err != nil {
		return badRequest(c, "invalid JSON payload")
	}
	if err := c.Validate(&env); err != nil {
		return badRequest(c, err.Error())
	}

	start := time.Now()
	result, err := s.router.Route(c.Request().Context(), &env)
	if err != nil {
		var vErr *common.ValidationError
		if errors.As(err, &vErr) {
			return badRequest(c, vErr.Detail)
		}
		s.logger.Error("webhook routing failed", "trigger", env.Trigger, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Status: "error",
			Detail: "internal error",
		})
	}

	s.metrics.ObserveEvent(env.Trigger, result, time.Since(start))

	resp := webhookResponse{
		Status:        result.Status,
		State:         string(result.State),
		Reason:        result.Reason,
		TransactionID: result.TransactionID,
		Category:      result.Category,
		UsedFallback:  result.UsedFallback,
	}
	if result.Category != "" {
		confidence := result.Confidence
		resp.Confidence = &confidence
	}

	return c.JSON(http.StatusOK, resp)
}

// feedbackRequest carries a manual category correction, in the same shape
// the ledger uses for transaction payloads.
type feedbackRequest struct {
	Transactions []struct {
		Description  string `json:"description" validate:"required"`
		CategoryName string `json:"category_name" validate:"required"`
	} `json:"transactions" validate:"required,min=1,dive"`
}

// handleFeedback stores a user's category correction against the most
// recent matching prediction.
func (s *Server) handleFeedback(c echo.Context) error {
	var req feedbackRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid JSON payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	tx := req.Transactions[0]
	feedback, err := s.store.RecordCorrection(c.Request().Context(), tx.Description, tx.CategoryName, model.FeedbackSourceUser)
	if err != nil {
		s.logger.Error("failed to store feedback", "category", tx.CategoryName, "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Status: "error",
			Detail: "failed to store feedback",
		})
	}

	s.metrics.ObserveFeedback(feedback.IsCorrect)
	s.logger.Info("stored category correction",
		"predicted", feedback.PredictedCategory,
		"actual", feedback.ActualCategory,
		"correct", feedback.IsCorrect,
	)

	return c.JSON(http.StatusOK, map[string]string{
		"status":   "Feedback stored",
		"category": tx.CategoryName,
	})
}

// metricsResponse is the read-only aggregate served at /api/metrics.
type metricsResponse struct {
	TotalPredictions int                     `json:"total_predictions"`
	AvgConfidence    float64                 `json:"avg_confidence"`
	CorrectCount     int                     `json:"correct_count"`
	FallbackCount    int                     `json:"fallback_count"`
	ModelVersion     string                  `json:"model_version,omitempty"`
	ByCategory       []categoryAccuracyEntry `json:"by_category"`
}

type categoryAccuracyEntry struct {
	Category   string  `json:"category"`
	SampleSize int     `json:"sample_size"`
	Accuracy   float64 `json:"accuracy"`
}

// handleMetrics serves the aggregate prediction/feedback summary.
func (s *Server) handleMetrics(c echo.Context) error {
	summary, err := s.store.Summary(c.Request().Context())
	if err != nil {
		s.logger.Error("failed to load metrics summary", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Status: "error",
			Detail: "failed to load metrics",
		})
	}

	resp := metricsResponse{
		TotalPredictions: summary.TotalPredictions,
		AvgConfidence:    summary.AvgConfidence,
		CorrectCount:     summary.CorrectCount,
		FallbackCount:    summary.FallbackCount,
		ByCategory:       make([]categoryAccuracyEntry, 0, len(summary.ByCategory)),
	}
	for _, acc := range summary.ByCategory {
		resp.ByCategory = append(resp.ByCategory, categoryAccuracyEntry{
			Category:   acc.Category,
			SampleSize: acc.SampleSize,
			Accuracy:   acc.Accuracy,
		})
	}

	if version, err := s.store.LatestModelVersion(c.Request().Context()); err == nil {
		resp.ModelVersion = version.ID
	} else if !errors.Is(err, common.ErrNoModel) {
		s.logger.Warn("failed to load model version", "error", err)
	}

	return c.JSON(http.StatusOK, resp)
}

// handleHealth reports service liveness and classifier-model availability.
func (s *Server) handleHealth(c echo.Context) error {
	modelStatus := "not_available"
	if s.classifier != nil {
		modelStatus = "available"
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
		"model":  modelStatus,
	})
}
