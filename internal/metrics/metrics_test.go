// ABOUTME: Unit tests for the Prometheus metrics handler.
// ABOUTME: Scrapes the handler via httptest and checks the exposed series.

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/policyrelay/policyrelay/internal/types"
)

type MockReportReader struct {
	findings []types.Finding
	lastRun  time.Time
}

func (m *MockReportReader) LastReport() []types.Finding {
	return m.findings
}

func (m *MockReportReader) LastRunTime() time.Time {
	return m.lastRun
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce noise in tests
	return logger
}

func scrape(t *testing.T, reader ReportReader) string {
	t.Helper()

	handler := CreateMetricsHandler(reader, testLogger())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	return rec.Body.String()
}

func TestMetricsHandler(t *testing.T) {
	lastRun := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	reader := &MockReportReader{
		findings: []types.Finding{
			{
				Severity:  types.SeverityCritical,
				IssueType: "Missing Requests",
				Category:  types.CategoryStability,
			},
			{
				Severity:  types.SeverityCritical,
				IssueType: "Missing Requests",
				Category:  types.CategoryStability,
			},
			{
				Severity:  types.SeverityHigh,
				IssueType: "Privileged Container",
				Category:  types.CategorySecurity,
			},
		},
		lastRun: lastRun,
	}

	body := scrape(t, reader)

	expected := []string{
		`policyrelay_findings_by_severity{severity="CRITICAL"} 2`,
		`policyrelay_findings_by_severity{severity="HIGH"} 1`,
		`policyrelay_findings_by_category{category="Stability"} 2`,
		`policyrelay_findings_by_category{category="Security"} 1`,
		`policyrelay_findings_by_issue{category="Stability",issue_type="Missing Requests",severity="CRITICAL"} 2`,
		`policyrelay_audit_info{info_type="findings_total"} 3`,
	}
	for _, line := range expected {
		if !strings.Contains(body, line) {
			t.Errorf("metrics output missing %q\n%s", line, body)
		}
	}

	if !strings.Contains(body, `policyrelay_audit_info{info_type="last_run_timestamp"}`) {
		t.Errorf("metrics output missing last_run_timestamp series\n%s", body)
	}
}

func TestMetricsHandlerEmptyReport(t *testing.T) {
	body := scrape(t, &MockReportReader{})

	if !strings.Contains(body, `policyrelay_audit_info{info_type="findings_total"} 0`) {
		t.Errorf("metrics output missing zero findings_total\n%s", body)
	}
	if strings.Contains(body, "last_run_timestamp") {
		t.Errorf("last_run_timestamp must be absent before the first commit\n%s", body)
	}
}

func TestMetricsHandlerNoStaleSeries(t *testing.T) {
	reader := &MockReportReader{
		findings: []types.Finding{
			{
				Severity:  types.SeverityWarn,
				IssueType: "Using Latest Tag",
				Category:  types.CategoryStability,
			},
		},
		lastRun: time.Now(),
	}
	handler := CreateMetricsHandler(reader, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	if !strings.Contains(rec.Body.String(), `severity="WARN"`) {
		t.Fatalf("first scrape missing WARN series\n%s", rec.Body.String())
	}

	// Shrink the report; the WARN series must disappear on the next scrape.
	reader.findings = nil
	rec = httptest.NewRecorder()
	handler(rec, req)
	if strings.Contains(rec.Body.String(), `severity="WARN"`) {
		t.Errorf("stale WARN series survived a rescrape\n%s", rec.Body.String())
	}
}

func TestSanitizeLabelValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty becomes unknown", "", "unknown"},
		{"plain value untouched", "Missing Requests", "Missing Requests"},
		{"newlines flattened", "line1\nline2", "line1 line2"},
		{"surrounding whitespace trimmed", "  padded\t", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLabelValue(tt.input); got != tt.expected {
				t.Errorf("sanitizeLabelValue(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}

	t.Run("long value truncated", func(t *testing.T) {
		long := strings.Repeat("x", 300)
		got := sanitizeLabelValue(long)
		if len(got) != 203 || !strings.HasSuffix(got, "...") {
			t.Errorf("truncated value has length %d", len(got))
		}
	})
}
