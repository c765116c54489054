// ABOUTME: Common types shared across the PolicyRelay system.
// ABOUTME: Defines severities, categories, and the audit finding structure.

package types

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Severity levels for audit findings
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityWarn     Severity = "WARN"
)

// Category groups findings by the operational concern they report on
type Category string

const (
	CategoryStability Category = "Stability"
	CategorySecurity  Category = "Security"
	CategoryFinOps    Category = "FinOps"
)

// ClusterScope is the namespace sentinel used for cluster-scoped resources
const ClusterScope = "cluster-scope"

// Kind names of the resources the audit catalog inspects
const (
	KindDeployment       = "Deployment"
	KindStatefulSet      = "StatefulSet"
	KindDaemonSet        = "DaemonSet"
	KindPod              = "Pod"
	KindService          = "Service"
	KindPersistentVolume = "PersistentVolume"
	KindAutoscaler       = "HorizontalPodAutoscaler"
	KindIngress          = "Ingress"
	KindResourceQuota    = "ResourceQuota"
	KindDisruptionBudget = "PodDisruptionBudget"
	KindNetworkPolicy    = "NetworkPolicy"
)

// Finding represents a single policy violation or observation
type Finding struct {
	Timestamp      string   `json:"timestamp"`
	Namespace      string   `json:"namespace"`
	ResourceType   string   `json:"resource_type"`
	ResourceName   string   `json:"resource_name"`
	Severity       Severity `json:"severity"`
	IssueType      string   `json:"issue_type"`
	Category       Category `json:"category"`
	Detail         string   `json:"detail"`
	Recommendation string   `json:"recommendation"`
}

// Snapshot is a point-in-time list of cluster resource manifests
type Snapshot = []unstructured.Unstructured
