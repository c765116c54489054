// ABOUTME: Stability rules covering resource declarations, probes, tags,
// ABOUTME: replica counts, and autoscaler coverage.

package rules

import (
	"fmt"
	"strings"

	"github.com/policyrelay/policyrelay/internal/index"
	"github.com/policyrelay/policyrelay/internal/types"
)

func checkMissingRequests(ctx ContainerContext) []types.Finding {
	if len(index.ResourceRequests(ctx.Container)) > 0 {
		return nil
	}
	return []types.Finding{{
		Timestamp:      ctx.Timestamp,
		Namespace:      ctx.Namespace,
		ResourceType:   ctx.Kind,
		ResourceName:   ctx.Name,
		Severity:       types.SeverityCritical,
		IssueType:      "Missing Requests",
		Category:       types.CategoryStability,
		Detail:         fmt.Sprintf("Container: %s", index.ContainerName(ctx.Container)),
		Recommendation: "Define resources.requests",
	}}
}

func checkMissingLimits(ctx ContainerContext) []types.Finding {
	if len(index.ResourceLimits(ctx.Container)) > 0 {
		return nil
	}
	return []types.Finding{{
		Timestamp:      ctx.Timestamp,
		Namespace:      ctx.Namespace,
		ResourceType:   ctx.Kind,
		ResourceName:   ctx.Name,
		Severity:       types.SeverityCritical,
		IssueType:      "Missing Limits",
		Category:       types.CategoryStability,
		Detail:         fmt.Sprintf("Container: %s", index.ContainerName(ctx.Container)),
		Recommendation: "Define resources.limits",
	}}
}

func checkLivenessProbe(ctx ContainerContext) []types.Finding {
	if index.HasField(ctx.Container, "livenessProbe") {
		return nil
	}
	return []types.Finding{{
		Timestamp:      ctx.Timestamp,
		Namespace:      ctx.Namespace,
		ResourceType:   ctx.Kind,
		ResourceName:   ctx.Name,
		Severity:       types.SeverityHigh,
		IssueType:      "Missing LivenessProbe",
		Category:       types.CategoryStability,
		Detail:         fmt.Sprintf("Container: %s", index.ContainerName(ctx.Container)),
		Recommendation: "Add livenessProbe",
	}}
}

func checkReadinessProbe(ctx ContainerContext) []types.Finding {
	if index.HasField(ctx.Container, "readinessProbe") {
		return nil
	}
	return []types.Finding{{
		Timestamp:      ctx.Timestamp,
		Namespace:      ctx.Namespace,
		ResourceType:   ctx.Kind,
		ResourceName:   ctx.Name,
		Severity:       types.SeverityHigh,
		IssueType:      "Missing ReadinessProbe",
		Category:       types.CategoryStability,
		Detail:         fmt.Sprintf("Container: %s", index.ContainerName(ctx.Container)),
		Recommendation: "Add readinessProbe",
	}}
}

func checkImageTag(ctx ContainerContext) []types.Finding {
	image := index.ContainerImage(ctx.Container)
	if !strings.HasSuffix(image, ":latest") && strings.Contains(image, ":") {
		return nil
	}
	return []types.Finding{{
		Timestamp:      ctx.Timestamp,
		Namespace:      ctx.Namespace,
		ResourceType:   ctx.Kind,
		ResourceName:   ctx.Name,
		Severity:       types.SeverityWarn,
		IssueType:      "Using Latest Tag",
		Category:       types.CategoryStability,
		Detail:         fmt.Sprintf("Container: %s (%s)", index.ContainerName(ctx.Container), image),
		Recommendation: "Use specific version tag",
	}}
}

// replicatedKinds are the workload kinds carrying replica semantics. A
// DaemonSet has no spec.replicas, so the default-1 rule must not apply.
var replicatedKinds = map[string]struct{}{
	types.KindDeployment:  {},
	types.KindStatefulSet: {},
}

func checkSingleReplica(ctx ResourceContext) []types.Finding {
	kind := ctx.Resource.GetKind()
	if _, ok := replicatedKinds[kind]; !ok {
		return nil
	}
	if index.Replicas(ctx.Resource) != 1 {
		return nil
	}
	return []types.Finding{{
		Timestamp:      ctx.Timestamp,
		Namespace:      ctx.Resource.GetNamespace(),
		ResourceType:   kind,
		ResourceName:   ctx.Resource.GetName(),
		Severity:       types.SeverityWarn,
		IssueType:      "Single Replica",
		Category:       types.CategoryStability,
		Detail:         "replicas=1",
		Recommendation: "Increase replicas > 1 for HA",
	}}
}

// checkAutoscalerCoverage flags deployments outside the exclusion set that
// no same-namespace autoscaler targets by name.
func checkAutoscalerCoverage(ctx GlobalContext) []types.Finding {
	var findings []types.Finding
	for _, deployment := range ctx.Index.ByKind(types.KindDeployment) {
		ns := deployment.GetNamespace()
		if ctx.Exclusions.Excluded(ns) {
			continue
		}
		if ctx.Index.HasScaleTarget(ns, deployment.GetName()) {
			continue
		}
		findings = append(findings, types.Finding{
			Timestamp:      ctx.Timestamp,
			Namespace:      ns,
			ResourceType:   types.KindDeployment,
			ResourceName:   deployment.GetName(),
			Severity:       types.SeverityWarn,
			IssueType:      "Missing HPA",
			Category:       types.CategoryStability,
			Detail:         "No HPA targeting this deployment",
			Recommendation: "Configure HPA for auto-scaling",
		})
	}
	return findings
}
