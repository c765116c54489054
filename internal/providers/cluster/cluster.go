// ABOUTME: Kubernetes API snapshot provider for in-cluster or kubeconfig use.
// ABOUTME: Lists all audited resource kinds and converts them to unstructured form.

package cluster

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/policyrelay/policyrelay/internal/types"
)

// ClusterProvider implements SnapshotProvider against the Kubernetes API
type ClusterProvider struct {
	clientset kubernetes.Interface
	logger    *logrus.Logger
}

// NewClusterProvider creates a provider connected to the cluster the process
// runs in, falling back to the local kubeconfig for development.
func NewClusterProvider(logger *logrus.Logger) (*ClusterProvider, error) {
	var config *rest.Config
	var err error

	config, err = rest.InClusterConfig()
	if err != nil {
		logger.Info("In-cluster config not available, trying kubeconfig")
		config, err = clientcmd.BuildConfigFromFlags("", clientcmd.RecommendedHomeFile)
		if err != nil {
			return nil, fmt.Errorf("failed to build kubernetes config: %w", err)
		}
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	logger.Info("Successfully connected to cluster")
	return &ClusterProvider{
		clientset: clientset,
		logger:    logger,
	}, nil
}

// NewClusterProviderWithClient creates a provider over an existing clientset.
// Used by tests with a fake clientset.
func NewClusterProviderWithClient(clientset kubernetes.Interface, logger *logrus.Logger) *ClusterProvider {
	return &ClusterProvider{clientset: clientset, logger: logger}
}

// Name returns the provider name
func (c *ClusterProvider) Name() string {
	return "cluster"
}

// FetchSnapshot lists every audited kind across all namespaces. Any single
// list failure fails the whole snapshot: a partial snapshot would silently
// suppress findings.
func (c *ClusterProvider) FetchSnapshot(ctx context.Context) ([]unstructured.Unstructured, error) {
	logger := c.logger.WithField("operation", "fetch_snapshot_cluster")

	var items []unstructured.Unstructured

	collectors := []struct {
		kind string
		list func(context.Context) ([]unstructured.Unstructured, error)
	}{
		{types.KindDeployment, c.listDeployments},
		{types.KindStatefulSet, c.listStatefulSets},
		{types.KindDaemonSet, c.listDaemonSets},
		{types.KindService, c.listServices},
		{types.KindPersistentVolume, c.listPersistentVolumes},
		{types.KindAutoscaler, c.listAutoscalers},
		{types.KindIngress, c.listIngresses},
		{types.KindResourceQuota, c.listResourceQuotas},
		{types.KindDisruptionBudget, c.listDisruptionBudgets},
		{types.KindNetworkPolicy, c.listNetworkPolicies},
	}

	for _, collector := range collectors {
		kindItems, err := collector.list(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", collector.kind, err)
		}
		items = append(items, kindItems...)
	}

	logger.WithField("resource_count", len(items)).Info("Fetched cluster snapshot via API")
	return items, nil
}

func (c *ClusterProvider) listDeployments(ctx context.Context) ([]unstructured.Unstructured, error) {
	list, err := c.clientset.AppsV1().Deployments("").List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	var items []unstructured.Unstructured
	for i := range list.Items {
		obj, err := toUnstructured(&list.Items[i], types.KindDeployment, "apps/v1")
		if err != nil {
			return nil, err
		}
		items = append(items, obj)
	}
	return items, nil
}

func (c *ClusterProvider) listStatefulSets(ctx context.Context) ([]unstructured.Unstructured, error) {
	list, err := c.clientset.AppsV1().StatefulSets("").List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	var items []unstructured.Unstructured
	for i := range list.Items {
		obj, err := toUnstructured(&list.Items[i], types.KindStatefulSet, "apps/v1")
		if err != nil {
			return nil, err
		}
		items = append(items, obj)
	}
	return items, nil
}

func (c *ClusterProvider) listDaemonSets(ctx context.Context) ([]unstructured.Unstructured, error) {
	list, err := c.clientset.AppsV1().DaemonSets("").List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	var items []unstructured.Unstructured
	for i := range list.Items {
		obj, err := toUnstructured(&list.Items[i], types.KindDaemonSet, "apps/v1")
		if err != nil {
			return nil, err
		}
		items = append(items, obj)
	}
	return items, nil
}

func (c *ClusterProvider) listServices(ctx context.Context) ([]unstructured.Unstructured, error) {
	list, err := c.clientset.CoreV1().Services("").List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	var items []unstructured.Unstructured
	for i := range list.Items {
		obj, err := toUnstructured(&list.Items[i], types.KindService, "v1")
		if err != nil {
			return nil, err
		}
		items = append(items, obj)
	}
	return items, nil
}

func (c *ClusterProvider) listPersistentVolumes(ctx context.Context) ([]unstructured.Unstructured, error) {
	list, err := c.clientset.CoreV1().PersistentVolumes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	var items []unstructured.Unstructured
	for i := range list.Items {
		obj, err := toUnstructured(&list.Items[i], types.KindPersistentVolume, "v1")
		if err != nil {
			return nil, err
		}
		items = append(items, obj)
	}
	return items, nil
}

func (c *ClusterProvider) listAutoscalers(ctx context.Context) ([]unstructured.Unstructured, error) {
	list, err := c.clientset.AutoscalingV2().HorizontalPodAutoscalers("").List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	var items []unstructured.Unstructured
	for i := range list.Items {
		obj, err := toUnstructured(&list.Items[i], types.KindAutoscaler, "autoscaling/v2")
		if err != nil {
			return nil, err
		}
		items = append(items, obj)
	}
	return items, nil
}

func (c *ClusterProvider) listIngresses(ctx context.Context) ([]unstructured.Unstructured, error) {
	list, err := c.clientset.NetworkingV1().Ingresses("").List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	var items []unstructured.Unstructured
	for i := range list.Items {
		obj, err := toUnstructured(&list.Items[i], types.KindIngress, "networking.k8s.io/v1")
		if err != nil {
			return nil, err
		}
		items = append(items, obj)
	}
	return items, nil
}

func (c *ClusterProvider) listResourceQuotas(ctx context.Context) ([]unstructured.Unstructured, error) {
	list, err := c.clientset.CoreV1().ResourceQuotas("").List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	var items []unstructured.Unstructured
	for i := range list.Items {
		obj, err := toUnstructured(&list.Items[i], types.KindResourceQuota, "v1")
		if err != nil {
			return nil, err
		}
		items = append(items, obj)
	}
	return items, nil
}

func (c *ClusterProvider) listDisruptionBudgets(ctx context.Context) ([]unstructured.Unstructured, error) {
	list, err := c.clientset.PolicyV1().PodDisruptionBudgets("").List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	var items []unstructured.Unstructured
	for i := range list.Items {
		obj, err := toUnstructured(&list.Items[i], types.KindDisruptionBudget, "policy/v1")
		if err != nil {
			return nil, err
		}
		items = append(items, obj)
	}
	return items, nil
}

func (c *ClusterProvider) listNetworkPolicies(ctx context.Context) ([]unstructured.Unstructured, error) {
	list, err := c.clientset.NetworkingV1().NetworkPolicies("").List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	var items []unstructured.Unstructured
	for i := range list.Items {
		obj, err := toUnstructured(&list.Items[i], types.KindNetworkPolicy, "networking.k8s.io/v1")
		if err != nil {
			return nil, err
		}
		items = append(items, obj)
	}
	return items, nil
}

// toUnstructured converts a typed API object, restoring the kind and
// apiVersion that list responses omit.
func toUnstructured(obj interface{}, kind, apiVersion string) (unstructured.Unstructured, error) {
	content, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return unstructured.Unstructured{}, fmt.Errorf("failed to convert %s: %w", kind, err)
	}
	u := unstructured.Unstructured{Object: content}
	u.SetKind(kind)
	u.SetAPIVersion(apiVersion)
	return u, nil
}
