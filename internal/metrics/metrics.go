// ABOUTME: Prometheus metrics exposition for audit report data.
// ABOUTME: Defines finding gauges and provides the HTTP handler for /metrics.

package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/policyrelay/policyrelay/internal/types"
)

type ReportReader interface {
	LastReport() []types.Finding
	LastRunTime() time.Time
}

type MetricsHandler struct {
	reader ReportReader
	logger *logrus.Logger

	// Prometheus metrics
	findingsBySeverity *prometheus.GaugeVec
	findingsByCategory *prometheus.GaugeVec
	findingsByIssue    *prometheus.GaugeVec
	auditInfo          *prometheus.GaugeVec
}

func NewMetricsHandler(reader ReportReader, logger *logrus.Logger) *MetricsHandler {
	return &MetricsHandler{
		reader: reader,
		logger: logger,

		findingsBySeverity: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "policyrelay_findings_by_severity",
				Help: "Number of findings in the last audit report by severity",
			},
			[]string{"severity"},
		),

		findingsByCategory: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "policyrelay_findings_by_category",
				Help: "Number of findings in the last audit report by category",
			},
			[]string{"category"},
		),

		findingsByIssue: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "policyrelay_findings_by_issue",
				Help: "Number of findings in the last audit report by issue type",
			},
			[]string{"issue_type", "severity", "category"},
		),

		auditInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "policyrelay_audit_info",
				Help: "Information about the last committed audit run",
			},
			[]string{"info_type"},
		),
	}
}

func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Create a new registry for this request to avoid conflicts
	registry := prometheus.NewRegistry()

	registry.MustRegister(m.findingsBySeverity)
	registry.MustRegister(m.findingsByCategory)
	registry.MustRegister(m.findingsByIssue)
	registry.MustRegister(m.auditInfo)

	// Reset all metrics to avoid stale data
	m.findingsBySeverity.Reset()
	m.findingsByCategory.Reset()
	m.findingsByIssue.Reset()
	m.auditInfo.Reset()

	findings := m.reader.LastReport()

	for _, finding := range findings {
		m.findingsBySeverity.WithLabelValues(string(finding.Severity)).Inc()
		m.findingsByCategory.WithLabelValues(string(finding.Category)).Inc()
		m.findingsByIssue.WithLabelValues(
			sanitizeLabelValue(finding.IssueType),
			string(finding.Severity),
			string(finding.Category),
		).Inc()
	}

	m.auditInfo.WithLabelValues("findings_total").Set(float64(len(findings)))
	if lastRun := m.reader.LastRunTime(); !lastRun.IsZero() {
		m.auditInfo.WithLabelValues("last_run_timestamp").Set(float64(lastRun.Unix()))
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	handler.ServeHTTP(w, r)
}

// sanitizeLabelValue cleans strings for use as Prometheus labels
func sanitizeLabelValue(value string) string {
	if value == "" {
		return "unknown"
	}

	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\t", " ")

	if len(value) > 200 {
		value = value[:200] + "..."
	}

	return strings.TrimSpace(value)
}

// CreateMetricsHandler creates a standard HTTP handler that can be used with http.ServeMux
func CreateMetricsHandler(reader ReportReader, logger *logrus.Logger) http.HandlerFunc {
	metricsHandler := NewMetricsHandler(reader, logger)
	return metricsHandler.ServeHTTP
}
