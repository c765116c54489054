// ABOUTME: Local file-based snapshot provider for development and testing.
// ABOUTME: Reads resource manifests from a JSON file without cluster access.

package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// LocalProvider implements SnapshotProvider over a manifest list file
type LocalProvider struct {
	manifestFile string
	logger       *logrus.Logger
}

// NewLocalProvider creates a new file-based snapshot provider
func NewLocalProvider(manifestFile string, logger *logrus.Logger) *LocalProvider {
	return &LocalProvider{
		manifestFile: manifestFile,
		logger:       logger,
	}
}

// Name returns the provider name
func (l *LocalProvider) Name() string {
	return "local"
}

// FetchSnapshot reads resource manifests from the JSON file. Both a
// kubectl-style List object and a bare array of manifests are accepted.
func (l *LocalProvider) FetchSnapshot(ctx context.Context) ([]unstructured.Unstructured, error) {
	logger := l.logger.WithField("operation", "fetch_snapshot_local")

	data, err := os.ReadFile(l.manifestFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file '%s': %w", l.manifestFile, err)
	}

	var list struct {
		Items []unstructured.Unstructured `json:"items"`
	}
	if err := json.Unmarshal(data, &list); err == nil {
		logger.WithField("resource_count", len(list.Items)).Info("Read manifest list from file")
		return list.Items, nil
	}

	var items []unstructured.Unstructured
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse manifest JSON: %w", err)
	}

	logger.WithField("resource_count", len(items)).Info("Read manifest array from file")
	return items, nil
}
