// ABOUTME: FinOps rules covering oversized requests, quota coverage,
// ABOUTME: spot suitability, and unused cloud resources.

package rules

import (
	"fmt"

	"github.com/policyrelay/policyrelay/internal/index"
	"github.com/policyrelay/policyrelay/internal/quantity"
	"github.com/policyrelay/policyrelay/internal/types"
)

const (
	highCPUCores     = 4
	highMemoryGiB    = 8
	spotMinReplicas  = 3
	phaseReleasedPV  = "Released"
	typeLoadBalancer = "LoadBalancer"
)

func checkHighCPURequest(ctx ContainerContext) []types.Finding {
	requested := index.StringField(index.ResourceRequests(ctx.Container), "cpu")
	cores, ok := quantity.CPUCores(requested)
	if !ok || cores < highCPUCores {
		return nil
	}
	return []types.Finding{{
		Timestamp:      ctx.Timestamp,
		Namespace:      ctx.Namespace,
		ResourceType:   ctx.Kind,
		ResourceName:   ctx.Name,
		Severity:       types.SeverityWarn,
		IssueType:      "High Resource Request",
		Category:       types.CategoryFinOps,
		Detail:         fmt.Sprintf("Container: %s requests %s CPU", index.ContainerName(ctx.Container), requested),
		Recommendation: "Review if this large allocation is efficiently used",
	}}
}

func checkHighMemoryRequest(ctx ContainerContext) []types.Finding {
	requested := index.StringField(index.ResourceRequests(ctx.Container), "memory")
	gib, ok := quantity.MemoryGiB(requested)
	if !ok || gib < highMemoryGiB {
		return nil
	}
	return []types.Finding{{
		Timestamp:      ctx.Timestamp,
		Namespace:      ctx.Namespace,
		ResourceType:   ctx.Kind,
		ResourceName:   ctx.Name,
		Severity:       types.SeverityWarn,
		IssueType:      "High Memory Request",
		Category:       types.CategoryFinOps,
		Detail:         fmt.Sprintf("Container: %s requests %s", index.ContainerName(ctx.Container), requested),
		Recommendation: "Verify if >8GB memory is constantly needed",
	}}
}

// checkNamespaceQuotas flags every observed namespace without at least one
// ResourceQuota object.
func checkNamespaceQuotas(ctx GlobalContext) []types.Finding {
	covered := make(map[string]struct{})
	for _, quota := range ctx.Index.ByKind(types.KindResourceQuota) {
		covered[quota.GetNamespace()] = struct{}{}
	}

	var findings []types.Finding
	for _, ns := range ctx.Index.Namespaces() {
		if ctx.Exclusions.Excluded(ns) {
			continue
		}
		if _, ok := covered[ns]; ok {
			continue
		}
		findings = append(findings, types.Finding{
			Timestamp:      ctx.Timestamp,
			Namespace:      ns,
			ResourceType:   "Namespace",
			ResourceName:   ns,
			Severity:       types.SeverityWarn,
			IssueType:      "Missing ResourceQuota",
			Category:       types.CategoryFinOps,
			Detail:         "No ResourceQuota found",
			Recommendation: "Apply quotas to prevent cost overruns",
		})
	}
	return findings
}

// checkSpotSuitability flags highly replicated deployments whose own label
// selector is covered by a same-namespace disruption budget: safe to drain,
// so a candidate for preemptible capacity.
func checkSpotSuitability(ctx GlobalContext) []types.Finding {
	var findings []types.Finding
	for _, deployment := range ctx.Index.ByKind(types.KindDeployment) {
		ns := deployment.GetNamespace()
		if ctx.Exclusions.Excluded(ns) {
			continue
		}
		if index.Replicas(&deployment) < spotMinReplicas {
			continue
		}

		labels := index.MatchLabels(&deployment)
		covered := false
		for _, selector := range ctx.Index.BudgetSelectors(ns) {
			if index.Covers(selector, labels) {
				covered = true
				break
			}
		}
		if !covered {
			continue
		}

		findings = append(findings, types.Finding{
			Timestamp:      ctx.Timestamp,
			Namespace:      ns,
			ResourceType:   types.KindDeployment,
			ResourceName:   deployment.GetName(),
			Severity:       types.SeverityWarn,
			IssueType:      "Spot Instance Candidate",
			Category:       types.CategoryFinOps,
			Detail:         "HA (3+ Replicas) & PDB detected",
			Recommendation: "Migrate to Spot Nodes for ~60-90% savings",
		})
	}
	return findings
}

// checkReleasedVolumes flags persistent volumes stuck in the Released
// phase. These are cluster-scoped, so the namespace exclusion set does not
// apply.
func checkReleasedVolumes(ctx GlobalContext) []types.Finding {
	var findings []types.Finding
	for _, volume := range ctx.Index.ByKind(types.KindPersistentVolume) {
		if index.StatusPhase(&volume) != phaseReleasedPV {
			continue
		}
		findings = append(findings, types.Finding{
			Timestamp:      ctx.Timestamp,
			Namespace:      types.ClusterScope,
			ResourceType:   types.KindPersistentVolume,
			ResourceName:   volume.GetName(),
			Severity:       types.SeverityWarn,
			IssueType:      "Unused PV Cost",
			Category:       types.CategoryFinOps,
			Detail:         "Status is Released",
			Recommendation: "Delete or Reclaim Volume",
		})
	}
	return findings
}

// checkUnprovisionedLoadBalancers flags LoadBalancer services whose ingress
// point list is still empty.
func checkUnprovisionedLoadBalancers(ctx GlobalContext) []types.Finding {
	var findings []types.Finding
	for _, service := range ctx.Index.ByKind(types.KindService) {
		ns := service.GetNamespace()
		if ctx.Exclusions.Excluded(ns) {
			continue
		}
		if index.ServiceType(&service) != typeLoadBalancer {
			continue
		}
		if len(index.LoadBalancerIngress(&service)) > 0 {
			continue
		}
		findings = append(findings, types.Finding{
			Timestamp:      ctx.Timestamp,
			Namespace:      ns,
			ResourceType:   types.KindService,
			ResourceName:   service.GetName(),
			Severity:       types.SeverityWarn,
			IssueType:      "Unprovisioned LB",
			Category:       types.CategoryFinOps,
			Detail:         "LoadBalancer ingress empty",
			Recommendation: "Check cloud provider status",
		})
	}
	return findings
}
