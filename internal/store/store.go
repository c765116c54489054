// ABOUTME: In-memory single-slot store for the most recent audit report.
// ABOUTME: Replaced wholesale on commit, never merged; reads see full lists only.

package store

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/policyrelay/policyrelay/internal/types"
)

// ReportStore holds the findings of the last committed audit run.
type ReportStore struct {
	mutex       sync.RWMutex
	findings    []types.Finding
	committedAt time.Time
	logger      *logrus.Logger
}

func NewReportStore(logger *logrus.Logger) *ReportStore {
	return &ReportStore{logger: logger}
}

// Commit atomically replaces the stored report. A failed run never reaches
// Commit, so the previous report stays visible.
func (s *ReportStore) Commit(findings []types.Finding) {
	s.mutex.Lock()
	s.findings = findings
	s.committedAt = time.Now()
	s.mutex.Unlock()

	s.logger.WithField("finding_count", len(findings)).Debug("Committed audit report")
}

// Read returns a copy of the current report, empty before any run has
// committed. Callers own the returned slice.
func (s *ReportStore) Read() []types.Finding {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	findings := make([]types.Finding, len(s.findings))
	copy(findings, s.findings)
	return findings
}

// LastCommit returns the time of the most recent commit, zero before the
// first one.
func (s *ReportStore) LastCommit() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.committedAt
}
