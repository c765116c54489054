// ABOUTME: HTTP handler triggering one audit pass.
// ABOUTME: Returns the finding count on success, the fetch diagnostic on failure.

package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// AuditRunner is the narrow engine interface the audit endpoint needs.
type AuditRunner interface {
	RunAudit(ctx context.Context) (int, error)
}

type AuditHandler struct {
	runner AuditRunner
	logger *logrus.Logger
}

type AuditResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

func NewAuditHandler(runner AuditRunner, logger *logrus.Logger) *AuditHandler {
	return &AuditHandler{
		runner: runner,
		logger: logger,
	}
}

func (a *AuditHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := a.logger.WithField("endpoint", "/api/audit")

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	count, err := a.runner.RunAudit(r.Context())
	if err != nil {
		logger.WithError(err).Error("Audit run failed")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(AuditResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	logger.WithField("finding_count", count).Info("Audit run completed")

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(AuditResponse{
		Status:  "success",
		Message: "Audit complete",
		Count:   count,
	}); err != nil {
		logger.WithError(err).Error("Failed to encode JSON response")
	}
}

// CreateAuditHandler creates a standard HTTP handler
func CreateAuditHandler(runner AuditRunner, logger *logrus.Logger) http.HandlerFunc {
	handler := NewAuditHandler(runner, logger)
	return handler.ServeHTTP
}
