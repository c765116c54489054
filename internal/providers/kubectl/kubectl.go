// ABOUTME: Snapshot provider that shells out to kubectl for resource retrieval.
// ABOUTME: Runs one kubectl get across all audited kinds and parses the JSON list.

package kubectl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// auditedResources is the comma-joined kind list handed to kubectl get.
const auditedResources = "deployments,statefulsets,daemonsets,services,persistentvolumes," +
	"horizontalpodautoscalers,ingresses,resourcequotas,poddisruptionbudgets,networkpolicies"

// Runner abstracts command execution so tests can substitute kubectl.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// OSRunner executes commands with os/exec, folding stderr into the error.
type OSRunner struct{}

func (OSRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%s failed: %w: %s", name, err, stderr.String())
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// KubectlProvider implements SnapshotProvider by invoking the kubectl binary
type KubectlProvider struct {
	kubectlPath string
	runner      Runner
	logger      *logrus.Logger
}

// NewKubectlProvider creates a kubectl-backed snapshot provider. An empty
// path falls back to "kubectl" on PATH.
func NewKubectlProvider(kubectlPath string, logger *logrus.Logger) *KubectlProvider {
	if kubectlPath == "" {
		kubectlPath = "kubectl"
	}
	return &KubectlProvider{
		kubectlPath: kubectlPath,
		runner:      OSRunner{},
		logger:      logger,
	}
}

// Name returns the provider name
func (k *KubectlProvider) Name() string {
	return "kubectl"
}

// FetchSnapshot retrieves all audited resources across all namespaces in one
// kubectl invocation. A non-zero exit or unparsable payload is a fetch error.
func (k *KubectlProvider) FetchSnapshot(ctx context.Context) ([]unstructured.Unstructured, error) {
	logger := k.logger.WithField("operation", "fetch_snapshot_kubectl")

	out, err := k.runner.Run(ctx, k.kubectlPath, "get", auditedResources, "-A", "-o", "json")
	if err != nil {
		return nil, err
	}

	var list struct {
		Items []unstructured.Unstructured `json:"items"`
	}
	if err := json.Unmarshal(out, &list); err != nil {
		return nil, fmt.Errorf("invalid kubectl json output: %w", err)
	}

	logger.WithField("resource_count", len(list.Items)).Info("Fetched cluster snapshot via kubectl")
	return list.Items, nil
}
