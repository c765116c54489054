// ABOUTME: Mock snapshot provider for local testing and demos.
// ABOUTME: Returns a fixed snapshot exercising most of the rule catalog.

package mock

import (
	"context"

	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// MockProvider implements SnapshotProvider with canned manifest data
type MockProvider struct {
	logger *logrus.Logger
}

// NewMockProvider creates a new mock snapshot provider
func NewMockProvider(logger *logrus.Logger) *MockProvider {
	return &MockProvider{logger: logger}
}

// Name returns the provider name
func (m *MockProvider) Name() string {
	return "mock"
}

// FetchSnapshot returns a fixed resource snapshot. It contains a spot
// candidate with its disruption budget, an oversized single-replica
// workload, an unprovisioned load balancer, a released volume, a bare pod
// in an unguarded namespace, and an ingress without TLS.
func (m *MockProvider) FetchSnapshot(ctx context.Context) ([]unstructured.Unstructured, error) {
	m.logger.Info("Serving mock cluster snapshot")

	return []unstructured.Unstructured{
		{Object: map[string]interface{}{
			"kind":       "Deployment",
			"apiVersion": "apps/v1",
			"metadata": map[string]interface{}{
				"name":      "spot-ready",
				"namespace": "default",
			},
			"spec": map[string]interface{}{
				"replicas": int64(3),
				"selector": map[string]interface{}{
					"matchLabels": map[string]interface{}{"app": "spot-ready"},
				},
				"template": map[string]interface{}{
					"spec": map[string]interface{}{
						"containers": []interface{}{
							map[string]interface{}{
								"name":  "web",
								"image": "registry.example.com/web:1.4.2",
								"resources": map[string]interface{}{
									"requests": map[string]interface{}{"cpu": "250m", "memory": "256Mi"},
									"limits":   map[string]interface{}{"cpu": "500m", "memory": "512Mi"},
								},
								"livenessProbe":  map[string]interface{}{"httpGet": map[string]interface{}{"path": "/healthz"}},
								"readinessProbe": map[string]interface{}{"httpGet": map[string]interface{}{"path": "/ready"}},
							},
						},
					},
				},
			},
		}},
		{Object: map[string]interface{}{
			"kind":       "PodDisruptionBudget",
			"apiVersion": "policy/v1",
			"metadata": map[string]interface{}{
				"name":      "spot-ready-pdb",
				"namespace": "default",
			},
			"spec": map[string]interface{}{
				"selector": map[string]interface{}{
					"matchLabels": map[string]interface{}{"app": "spot-ready"},
				},
			},
		}},
		{Object: map[string]interface{}{
			"kind":       "Deployment",
			"apiVersion": "apps/v1",
			"metadata": map[string]interface{}{
				"name":      "mem-hog",
				"namespace": "default",
			},
			"spec": map[string]interface{}{
				"replicas": int64(1),
				"template": map[string]interface{}{
					"spec": map[string]interface{}{
						"containers": []interface{}{
							map[string]interface{}{
								"name":  "hog",
								"image": "registry.example.com/hog:latest",
								"resources": map[string]interface{}{
									"requests": map[string]interface{}{"cpu": "4", "memory": "10Gi"},
								},
								"securityContext": map[string]interface{}{
									"runAsUser": int64(0),
								},
							},
						},
					},
				},
			},
		}},
		{Object: map[string]interface{}{
			"kind":       "HorizontalPodAutoscaler",
			"apiVersion": "autoscaling/v2",
			"metadata": map[string]interface{}{
				"name":      "mem-hog-hpa",
				"namespace": "default",
			},
			"spec": map[string]interface{}{
				"scaleTargetRef": map[string]interface{}{
					"kind": "Deployment",
					"name": "mem-hog",
				},
			},
		}},
		{Object: map[string]interface{}{
			"kind":       "Service",
			"apiVersion": "v1",
			"metadata": map[string]interface{}{
				"name":      "web-lb",
				"namespace": "default",
			},
			"spec": map[string]interface{}{
				"type": "LoadBalancer",
			},
			"status": map[string]interface{}{
				"loadBalancer": map[string]interface{}{},
			},
		}},
		{Object: map[string]interface{}{
			"kind":       "PersistentVolume",
			"apiVersion": "v1",
			"metadata": map[string]interface{}{
				"name": "orphan-pv",
			},
			"status": map[string]interface{}{
				"phase": "Released",
			},
		}},
		{Object: map[string]interface{}{
			"kind":       "Pod",
			"apiVersion": "v1",
			"metadata": map[string]interface{}{
				"name":      "exposed-pod",
				"namespace": "open-ns",
			},
			"spec": map[string]interface{}{
				"containers": []interface{}{
					map[string]interface{}{
						"name":  "shell",
						"image": "busybox",
					},
				},
			},
		}},
		{Object: map[string]interface{}{
			"kind":       "Ingress",
			"apiVersion": "networking.k8s.io/v1",
			"metadata": map[string]interface{}{
				"name":      "web-ingress",
				"namespace": "default",
			},
			"spec": map[string]interface{}{
				"rules": []interface{}{
					map[string]interface{}{"host": "web.example.com"},
				},
			},
		}},
	}, nil
}
