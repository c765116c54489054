// ABOUTME: Unit tests for the file-based snapshot provider.
// ABOUTME: Tests both accepted JSON shapes and the read/parse error paths.

package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce noise in tests
	return logger
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifests.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write manifest file: %v", err)
	}
	return path
}

func TestFetchSnapshotListObject(t *testing.T) {
	path := writeManifest(t, `{
		"apiVersion": "v1",
		"kind": "List",
		"items": [
			{"apiVersion": "apps/v1", "kind": "Deployment", "metadata": {"name": "web", "namespace": "default"}}
		]
	}`)
	provider := NewLocalProvider(path, testLogger())

	items, err := provider.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("FetchSnapshot failed: %v", err)
	}
	if len(items) != 1 || items[0].GetName() != "web" {
		t.Errorf("unexpected items: %v", items)
	}
}

func TestFetchSnapshotBareArray(t *testing.T) {
	path := writeManifest(t, `[
		{"apiVersion": "v1", "kind": "Service", "metadata": {"name": "svc-a", "namespace": "default"}},
		{"apiVersion": "v1", "kind": "Service", "metadata": {"name": "svc-b", "namespace": "default"}}
	]`)
	provider := NewLocalProvider(path, testLogger())

	items, err := provider.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("FetchSnapshot failed: %v", err)
	}
	if len(items) != 2 || items[1].GetName() != "svc-b" {
		t.Errorf("unexpected items: %v", items)
	}
}

func TestFetchSnapshotMissingFile(t *testing.T) {
	provider := NewLocalProvider(filepath.Join(t.TempDir(), "missing.json"), testLogger())

	_, err := provider.FetchSnapshot(context.Background())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read manifest file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFetchSnapshotInvalidJSON(t *testing.T) {
	path := writeManifest(t, `kind: Deployment`)
	provider := NewLocalProvider(path, testLogger())

	_, err := provider.FetchSnapshot(context.Background())
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "failed to parse manifest JSON") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestName(t *testing.T) {
	provider := NewLocalProvider("manifests.json", testLogger())
	if provider.Name() != "local" {
		t.Errorf("Name() = %q, want local", provider.Name())
	}
}
