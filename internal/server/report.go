// ABOUTME: HTTP handler serving the last committed audit report.
// ABOUTME: Supports severity, category, and namespace filtering with validation.

package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/policyrelay/policyrelay/internal/types"
)

// ReportReader is the narrow engine interface the report endpoint needs.
type ReportReader interface {
	LastReport() []types.Finding
	LastRunTime() time.Time
}

type ReportHandler struct {
	reader ReportReader
	logger *logrus.Logger
}

type ReportResponse struct {
	Data        []types.Finding `json:"data"`
	Count       int             `json:"count"`
	LastUpdated string          `json:"last_updated,omitempty"`
}

func NewReportHandler(reader ReportReader, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{
		reader: reader,
		logger: logger,
	}
}

func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.WithField("endpoint", "/api/report")

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	severityFilter := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("severity")))
	categoryFilter := strings.TrimSpace(r.URL.Query().Get("category"))
	namespaceFilter := strings.TrimSpace(r.URL.Query().Get("namespace"))

	if severityFilter != "" {
		validSeverities := map[string]bool{
			string(types.SeverityCritical): true,
			string(types.SeverityHigh):     true,
			string(types.SeverityWarn):     true,
		}
		if !validSeverities[severityFilter] {
			http.Error(w, "Invalid severity filter. Must be one of: CRITICAL, HIGH, WARN", http.StatusBadRequest)
			return
		}
	}

	if categoryFilter != "" {
		validCategories := map[string]bool{
			string(types.CategoryStability): true,
			string(types.CategorySecurity):  true,
			string(types.CategoryFinOps):    true,
		}
		if !validCategories[categoryFilter] {
			http.Error(w, "Invalid category filter. Must be one of: Stability, Security, FinOps", http.StatusBadRequest)
			return
		}
	}

	findings := h.reader.LastReport()

	filtered := make([]types.Finding, 0, len(findings))
	for _, finding := range findings {
		if severityFilter != "" && string(finding.Severity) != severityFilter {
			continue
		}
		if categoryFilter != "" && string(finding.Category) != categoryFilter {
			continue
		}
		if namespaceFilter != "" && finding.Namespace != namespaceFilter {
			continue
		}
		filtered = append(filtered, finding)
	}

	response := ReportResponse{
		Data:  filtered,
		Count: len(filtered),
	}
	if lastRun := h.reader.LastRunTime(); !lastRun.IsZero() {
		response.LastUpdated = lastRun.UTC().Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")

	encoder := json.NewEncoder(w)
	if r.URL.Query().Get("pretty") != "" {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(response); err != nil {
		logger.WithError(err).Error("Failed to encode JSON response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logger.WithFields(logrus.Fields{
		"total_findings":    len(findings),
		"filtered_findings": len(filtered),
	}).Debug("Served report response")
}

// CreateReportHandler creates a standard HTTP handler
func CreateReportHandler(reader ReportReader, logger *logrus.Logger) http.HandlerFunc {
	handler := NewReportHandler(reader, logger)
	return handler.ServeHTTP
}
