// ABOUTME: Factory for creating snapshot providers.
// ABOUTME: Centralizes provider instantiation and configuration logic.

package providers

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/policyrelay/policyrelay/internal/engine"
	"github.com/policyrelay/policyrelay/internal/providers/cluster"
	"github.com/policyrelay/policyrelay/internal/providers/kubectl"
	"github.com/policyrelay/policyrelay/internal/providers/local"
	"github.com/policyrelay/policyrelay/internal/providers/mock"
)

// ProviderConfig holds configuration for creating snapshot providers
type ProviderConfig struct {
	Mode         string
	ManifestFile string
	KubectlPath  string
	MockMode     bool // Use the mock snapshot for local testing
}

// CreateSnapshotProvider creates a snapshot provider based on configuration
func CreateSnapshotProvider(config *ProviderConfig, logger *logrus.Logger) (engine.SnapshotProvider, error) {
	if config.MockMode {
		logger.Info("Using mock snapshot provider for testing")
		return mock.NewMockProvider(logger), nil
	}

	switch config.Mode {
	case "cluster":
		return cluster.NewClusterProvider(logger)
	case "kubectl":
		return kubectl.NewKubectlProvider(config.KubectlPath, logger), nil
	case "local":
		if config.ManifestFile == "" {
			return nil, fmt.Errorf("manifest file is required for local mode")
		}
		return local.NewLocalProvider(config.ManifestFile, logger), nil
	default:
		return nil, fmt.Errorf("unsupported mode: %s", config.Mode)
	}
}
