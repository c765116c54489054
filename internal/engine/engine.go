// ABOUTME: Audit orchestration engine driving one deterministic pass per run.
// ABOUTME: Coordinates snapshot provider, resource index, rule catalog, and report store.

package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/policyrelay/policyrelay/internal/index"
	"github.com/policyrelay/policyrelay/internal/rules"
	"github.com/policyrelay/policyrelay/internal/store"
	"github.com/policyrelay/policyrelay/internal/types"
)

// SnapshotProvider interface abstracts how the cluster resource snapshot is
// retrieved (Kubernetes API, kubectl, manifest file, mock).
type SnapshotProvider interface {
	Name() string
	FetchSnapshot(ctx context.Context) ([]unstructured.Unstructured, error)
}

// Config holds configuration for the audit engine
type Config struct {
	Mode              string
	Port              int
	ManifestFile      string
	KubectlPath       string
	ExcludeNamespaces []string
	AuditOnStart      bool
	MockMode          bool // Use the mock snapshot provider for local testing
}

// globallyHandledKinds are resource kinds checked exclusively by global
// rules; the per-resource iteration skips them.
var globallyHandledKinds = map[string]struct{}{
	types.KindService:          {},
	types.KindPersistentVolume: {},
	types.KindAutoscaler:       {},
	types.KindIngress:          {},
	types.KindResourceQuota:    {},
	types.KindDisruptionBudget: {},
	types.KindNetworkPolicy:    {},
}

// Engine runs audit passes and commits their reports
type Engine struct {
	provider   SnapshotProvider
	store      *store.ReportStore
	catalog    rules.Catalog
	exclusions rules.Exclusions
	config     *Config
	logger     *logrus.Logger

	// Serializes audit passes so no two runs interleave their commits
	runMutex sync.Mutex
}

// NewEngine creates a new audit engine
func NewEngine(provider SnapshotProvider, config *Config, logger *logrus.Logger) *Engine {
	return &Engine{
		provider:   provider,
		store:      store.NewReportStore(logger),
		catalog:    rules.DefaultCatalog(),
		exclusions: rules.NewExclusions(config.ExcludeNamespaces),
		config:     config,
		logger:     logger,
	}
}

// RunAudit executes one audit pass: fetch snapshot, build index, run global
// rules once, then per-resource and per-container rules in snapshot order.
// On success the report store is replaced and the finding count returned.
// On snapshot failure nothing is committed and the previous report stays.
func (e *Engine) RunAudit(ctx context.Context) (int, error) {
	e.runMutex.Lock()
	defer e.runMutex.Unlock()

	logger := e.logger.WithField("component", "audit_engine")
	startTime := time.Now()

	logger.WithField("provider", e.provider.Name()).Info("Starting audit pass")

	items, err := e.provider.FetchSnapshot(ctx)
	if err != nil {
		logger.WithError(err).Error("Snapshot fetch failed, aborting pass")
		return 0, fmt.Errorf("snapshot fetch failed: %w", err)
	}

	idx := index.Build(items)

	// One timestamp for every finding of this pass
	timestamp := time.Now().UTC().Format(time.RFC3339)

	var findings []types.Finding

	globalCtx := rules.GlobalContext{
		Index:      idx,
		Exclusions: e.exclusions,
		Timestamp:  timestamp,
	}
	for _, rule := range e.catalog.Global {
		findings = append(findings, rule.Check(globalCtx)...)
	}

	for i := range items {
		item := &items[i]
		if _, global := globallyHandledKinds[item.GetKind()]; global {
			continue
		}
		if e.exclusions.Excluded(item.GetNamespace()) {
			continue
		}
		findings = append(findings, e.auditResource(item, idx, timestamp)...)
	}

	e.store.Commit(findings)

	logger.WithFields(logrus.Fields{
		"duration":           time.Since(startTime),
		"resources_scanned":  len(items),
		"findings_generated": len(findings),
	}).Info("Audit pass completed")

	return len(findings), nil
}

func (e *Engine) auditResource(item *unstructured.Unstructured, idx *index.Index, timestamp string) []types.Finding {
	var findings []types.Finding

	podSpec := index.PodTemplateSpec(item)

	resourceCtx := rules.ResourceContext{
		Resource:   item,
		PodSpec:    podSpec,
		Index:      idx,
		Exclusions: e.exclusions,
		Timestamp:  timestamp,
	}
	for _, rule := range e.catalog.Resource {
		findings = append(findings, rule.Check(resourceCtx)...)
	}

	for _, container := range index.Containers(podSpec) {
		containerCtx := rules.ContainerContext{
			Container:  container,
			Kind:       item.GetKind(),
			Name:       item.GetName(),
			Namespace:  item.GetNamespace(),
			Index:      idx,
			Exclusions: e.exclusions,
			Timestamp:  timestamp,
		}
		for _, rule := range e.catalog.Container {
			findings = append(findings, rule.Check(containerCtx)...)
		}
	}

	return findings
}

// LastReport returns the findings of the last committed run, empty before
// any run has committed.
func (e *Engine) LastReport() []types.Finding {
	return e.store.Read()
}

// LastRunTime returns when the last report was committed.
func (e *Engine) LastRunTime() time.Time {
	return e.store.LastCommit()
}
