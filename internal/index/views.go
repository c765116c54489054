// ABOUTME: Typed views over unstructured manifest data for rule evaluation.
// ABOUTME: Centralizes nested field access so missing fields default in one place.

package index

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/policyrelay/policyrelay/internal/types"
)

// PodTemplateSpec returns the pod spec of a workload resource: the spec
// itself for Pods, spec.template.spec for everything else. Missing fields
// yield an empty map, never an error.
func PodTemplateSpec(obj *unstructured.Unstructured) map[string]interface{} {
	var spec map[string]interface{}
	if obj.GetKind() == types.KindPod {
		spec, _, _ = unstructured.NestedMap(obj.Object, "spec")
	} else {
		spec, _, _ = unstructured.NestedMap(obj.Object, "spec", "template", "spec")
	}
	if spec == nil {
		return map[string]interface{}{}
	}
	return spec
}

// Containers returns the container list of a pod spec.
func Containers(podSpec map[string]interface{}) []map[string]interface{} {
	var containers []map[string]interface{}
	for _, entry := range asSlice(podSpec["containers"]) {
		if c := asMap(entry); c != nil {
			containers = append(containers, c)
		}
	}
	return containers
}

// MatchLabels returns spec.selector.matchLabels of a resource, or an empty
// map when absent.
func MatchLabels(obj *unstructured.Unstructured) map[string]string {
	labels, _, _ := unstructured.NestedStringMap(obj.Object, "spec", "selector", "matchLabels")
	if labels == nil {
		return map[string]string{}
	}
	return labels
}

// Replicas returns spec.replicas, defaulting to 1 when unspecified.
func Replicas(obj *unstructured.Unstructured) int64 {
	replicas, found, err := unstructured.NestedInt64(obj.Object, "spec", "replicas")
	if !found || err != nil {
		return 1
	}
	return replicas
}

// StatusPhase returns status.phase, empty when absent.
func StatusPhase(obj *unstructured.Unstructured) string {
	phase, _, _ := unstructured.NestedString(obj.Object, "status", "phase")
	return phase
}

// ServiceType returns spec.type of a Service resource.
func ServiceType(obj *unstructured.Unstructured) string {
	svcType, _, _ := unstructured.NestedString(obj.Object, "spec", "type")
	return svcType
}

// LoadBalancerIngress returns status.loadBalancer.ingress of a Service.
func LoadBalancerIngress(obj *unstructured.Unstructured) []interface{} {
	ingress, _, _ := unstructured.NestedSlice(obj.Object, "status", "loadBalancer", "ingress")
	return ingress
}

// IngressTLS returns spec.tls of an Ingress resource.
func IngressTLS(obj *unstructured.Unstructured) []interface{} {
	tls, _, _ := unstructured.NestedSlice(obj.Object, "spec", "tls")
	return tls
}

// ContainerName returns the name field of a container spec.
func ContainerName(container map[string]interface{}) string {
	return asString(container["name"])
}

// ContainerImage returns the image field of a container spec.
func ContainerImage(container map[string]interface{}) string {
	return asString(container["image"])
}

// ResourceRequests returns resources.requests of a container spec.
func ResourceRequests(container map[string]interface{}) map[string]interface{} {
	return asMap(asMap(container["resources"])["requests"])
}

// ResourceLimits returns resources.limits of a container spec.
func ResourceLimits(container map[string]interface{}) map[string]interface{} {
	return asMap(asMap(container["resources"])["limits"])
}

// SecurityContext returns the securityContext of a container spec, nil
// when absent. Callers distinguish absent from present-but-empty: a
// container with no securityContext raises no privilege findings.
func SecurityContext(container map[string]interface{}) map[string]interface{} {
	return asMap(container["securityContext"])
}

// AddedCapabilities returns securityContext.capabilities.add as strings.
func AddedCapabilities(securityContext map[string]interface{}) []string {
	var caps []string
	for _, entry := range asSlice(asMap(securityContext["capabilities"])["add"]) {
		if s := asString(entry); s != "" {
			caps = append(caps, s)
		}
	}
	return caps
}

// HasField reports whether the container spec declares the given top-level
// field, regardless of its value.
func HasField(container map[string]interface{}, field string) bool {
	_, ok := container[field]
	return ok
}

// BoolField returns a boolean field of a pod or container spec.
func BoolField(m map[string]interface{}, field string) bool {
	return asBool(m[field])
}

// StringField returns a string field of a generic manifest map.
func StringField(m map[string]interface{}, field string) string {
	return asString(m[field])
}

// Int64Field returns a numeric field of a manifest map. JSON decoding
// yields float64 while the typed-object converter yields int64; both are
// accepted.
func Int64Field(m map[string]interface{}, field string) (int64, bool) {
	switch v := m[field].(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	}
	return 0, false
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}
