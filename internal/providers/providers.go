// ABOUTME: Provider interface for cluster snapshot retrieval.
// ABOUTME: Defines the contract implemented by cluster, kubectl, local, and mock backends.

package providers

import (
	"context"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// SnapshotProvider interface abstracts how the cluster resource snapshot is
// retrieved (Kubernetes API, kubectl, manifest file, mock).
type SnapshotProvider interface {
	Name() string
	FetchSnapshot(ctx context.Context) ([]unstructured.Unstructured, error)
}
