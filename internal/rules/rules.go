// ABOUTME: Rule catalog registry for the audit engine.
// ABOUTME: Declares rule descriptors and their fixed evaluation order.

package rules

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/policyrelay/policyrelay/internal/index"
	"github.com/policyrelay/policyrelay/internal/types"
)

// Exclusions is the set of namespaces no namespace-scoped rule may report on.
type Exclusions map[string]struct{}

// NewExclusions builds the exclusion set from a list of namespace names.
// Empty entries are dropped.
func NewExclusions(namespaces []string) Exclusions {
	ex := make(Exclusions, len(namespaces))
	for _, ns := range namespaces {
		if ns != "" {
			ex[ns] = struct{}{}
		}
	}
	return ex
}

// Excluded reports whether the namespace is excluded from auditing.
func (e Exclusions) Excluded(namespace string) bool {
	_, ok := e[namespace]
	return ok
}

// ContainerContext is the input to a per-container rule: one container spec
// plus the identity of the owning resource.
type ContainerContext struct {
	Container  map[string]interface{}
	Kind       string
	Name       string
	Namespace  string
	Index      *index.Index
	Exclusions Exclusions
	Timestamp  string
}

// ResourceContext is the input to a per-resource rule: one workload
// resource plus its pod template spec.
type ResourceContext struct {
	Resource   *unstructured.Unstructured
	PodSpec    map[string]interface{}
	Index      *index.Index
	Exclusions Exclusions
	Timestamp  string
}

// GlobalContext is the input to a cross-resource rule evaluated once per
// audit pass against the whole index.
type GlobalContext struct {
	Index      *index.Index
	Exclusions Exclusions
	Timestamp  string
}

// ContainerRule checks one container spec.
type ContainerRule struct {
	Name  string
	Check func(ContainerContext) []types.Finding
}

// ResourceRule checks one workload resource.
type ResourceRule struct {
	Name  string
	Check func(ResourceContext) []types.Finding
}

// GlobalRule checks the whole resource index once per pass.
type GlobalRule struct {
	Name  string
	Check func(GlobalContext) []types.Finding
}

// Catalog holds the full rule set. Slice order is the evaluation order and
// part of the deterministic-output contract.
type Catalog struct {
	Container []ContainerRule
	Resource  []ResourceRule
	Global    []GlobalRule
}

// DefaultCatalog returns the compiled-in rule set.
func DefaultCatalog() Catalog {
	return Catalog{
		Container: []ContainerRule{
			{Name: "missing-requests", Check: checkMissingRequests},
			{Name: "missing-limits", Check: checkMissingLimits},
			{Name: "missing-liveness-probe", Check: checkLivenessProbe},
			{Name: "missing-readiness-probe", Check: checkReadinessProbe},
			{Name: "latest-image-tag", Check: checkImageTag},
			{Name: "high-cpu-request", Check: checkHighCPURequest},
			{Name: "high-memory-request", Check: checkHighMemoryRequest},
			{Name: "container-security-context", Check: checkSecurityContext},
		},
		Resource: []ResourceRule{
			{Name: "single-replica", Check: checkSingleReplica},
			{Name: "host-access", Check: checkHostAccess},
		},
		Global: []GlobalRule{
			{Name: "missing-resource-quota", Check: checkNamespaceQuotas},
			{Name: "spot-candidate", Check: checkSpotSuitability},
			{Name: "hpa-coverage", Check: checkAutoscalerCoverage},
			{Name: "released-volume", Check: checkReleasedVolumes},
			{Name: "unprovisioned-lb", Check: checkUnprovisionedLoadBalancers},
			{Name: "missing-network-policy", Check: checkNetworkPolicies},
			{Name: "ingress-tls", Check: checkIngressTLS},
		},
	}
}
