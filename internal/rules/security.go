// ABOUTME: Security rules covering privilege escalation, host access,
// ABOUTME: network policy coverage, and ingress TLS.

package rules

import (
	"fmt"

	"github.com/policyrelay/policyrelay/internal/index"
	"github.com/policyrelay/policyrelay/internal/types"
)

// dangerousCapabilities is the fixed deny-list of added capabilities.
// Iterated in declared order so findings are deterministic.
var dangerousCapabilities = []string{"SYS_ADMIN", "NET_ADMIN", "ALL"}

// checkSecurityContext flags privileged mode, root user, and dangerous
// added capabilities. A container without a securityContext raises nothing:
// absence is not a violation for these checks.
func checkSecurityContext(ctx ContainerContext) []types.Finding {
	securityContext := index.SecurityContext(ctx.Container)
	if securityContext == nil {
		return nil
	}

	containerName := index.ContainerName(ctx.Container)
	var findings []types.Finding

	if index.BoolField(securityContext, "privileged") {
		findings = append(findings, types.Finding{
			Timestamp:      ctx.Timestamp,
			Namespace:      ctx.Namespace,
			ResourceType:   ctx.Kind,
			ResourceName:   ctx.Name,
			Severity:       types.SeverityHigh,
			IssueType:      "Privileged Container",
			Category:       types.CategorySecurity,
			Detail:         fmt.Sprintf("Container: %s", containerName),
			Recommendation: "Avoid privileged mode",
		})
	}

	if uid, ok := index.Int64Field(securityContext, "runAsUser"); ok && uid == 0 {
		findings = append(findings, types.Finding{
			Timestamp:      ctx.Timestamp,
			Namespace:      ctx.Namespace,
			ResourceType:   ctx.Kind,
			ResourceName:   ctx.Name,
			Severity:       types.SeverityHigh,
			IssueType:      "Runs as Root",
			Category:       types.CategorySecurity,
			Detail:         fmt.Sprintf("Container: %s", containerName),
			Recommendation: "Set runAsUser to non-zero",
		})
	}

	added := index.AddedCapabilities(securityContext)
	for _, capability := range dangerousCapabilities {
		if !contains(added, capability) {
			continue
		}
		findings = append(findings, types.Finding{
			Timestamp:      ctx.Timestamp,
			Namespace:      ctx.Namespace,
			ResourceType:   ctx.Kind,
			ResourceName:   ctx.Name,
			Severity:       types.SeverityHigh,
			IssueType:      fmt.Sprintf("Dangerous Capability: %s", capability),
			Category:       types.CategorySecurity,
			Detail:         fmt.Sprintf("Container: %s adds %s", containerName, capability),
			Recommendation: fmt.Sprintf("Drop %s capability", capability),
		})
	}

	return findings
}

// checkHostAccess flags hostNetwork and hostPID at the pod-template level.
func checkHostAccess(ctx ResourceContext) []types.Finding {
	var findings []types.Finding

	if index.BoolField(ctx.PodSpec, "hostNetwork") {
		findings = append(findings, types.Finding{
			Timestamp:      ctx.Timestamp,
			Namespace:      ctx.Resource.GetNamespace(),
			ResourceType:   ctx.Resource.GetKind(),
			ResourceName:   ctx.Resource.GetName(),
			Severity:       types.SeverityHigh,
			IssueType:      "Host Network Access",
			Category:       types.CategorySecurity,
			Detail:         "hostNetwork: true",
			Recommendation: "Disable hostNetwork",
		})
	}

	if index.BoolField(ctx.PodSpec, "hostPID") {
		findings = append(findings, types.Finding{
			Timestamp:      ctx.Timestamp,
			Namespace:      ctx.Resource.GetNamespace(),
			ResourceType:   ctx.Resource.GetKind(),
			ResourceName:   ctx.Resource.GetName(),
			Severity:       types.SeverityHigh,
			IssueType:      "Host PID Access",
			Category:       types.CategorySecurity,
			Detail:         "hostPID: true",
			Recommendation: "Disable hostPID",
		})
	}

	return findings
}

// checkNetworkPolicies flags every observed namespace without at least one
// NetworkPolicy object.
func checkNetworkPolicies(ctx GlobalContext) []types.Finding {
	covered := make(map[string]struct{})
	for _, policy := range ctx.Index.ByKind(types.KindNetworkPolicy) {
		covered[policy.GetNamespace()] = struct{}{}
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
			Severity:       types.SeverityHigh,
			IssueType:      "Missing NetworkPolicy",
			Category:       types.CategorySecurity,
			Detail:         "No NetworkPolicy found",
			Recommendation: "Restrict pod traffic with a NetworkPolicy",
		})
	}
	return findings
}

// checkIngressTLS flags ingresses outside the exclusion set that declare no
// TLS configuration.
func checkIngressTLS(ctx GlobalContext) []types.Finding {
	var findings []types.Finding
	for _, ingress := range ctx.Index.ByKind(types.KindIngress) {
		ns := ingress.GetNamespace()
		if ctx.Exclusions.Excluded(ns) {
			continue
		}
		if len(index.IngressTLS(&ingress)) > 0 {
			continue
		}
		findings = append(findings, types.Finding{
			Timestamp:      ctx.Timestamp,
			Namespace:      ns,
			ResourceType:   types.KindIngress,
			ResourceName:   ingress.GetName(),
			Severity:       types.SeverityHigh,
			IssueType:      "Missing TLS",
			Category:       types.CategorySecurity,
			Detail:         "Ingress has no TLS configuration",
			Recommendation: "Enable TLS for secure access",
		})
	}
	return findings
}

func contains(list []string, value string) bool {
	for _, entry := range list {
		if entry == value {
			return true
		}
	}
	return false
}
