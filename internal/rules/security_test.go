// ABOUTME: Unit tests for security rules.
// ABOUTME: Covers security contexts, host access, network policy, and ingress TLS.

package rules

import (
	"reflect"
	"testing"

	"github.com/policyrelay/policyrelay/internal/types"
)

func TestCheckSecurityContext(t *testing.T) {
	t.Run("absent securityContext raises nothing", func(t *testing.T) {
		ctx := containerCtx(map[string]interface{}{"name": "web"})
		if got := checkSecurityContext(ctx); len(got) != 0 {
			t.Errorf("absence is not a violation, got %v", got)
		}
	})

	t.Run("privileged container", func(t *testing.T) {
		ctx := containerCtx(map[string]interface{}{
			"name":            "web",
			"securityContext": map[string]interface{}{"privileged": true},
		})
		got := checkSecurityContext(ctx)
		if len(got) != 1 || got[0].IssueType != "Privileged Container" {
			t.Fatalf("unexpected findings: %v", got)
		}
		if got[0].Severity != types.SeverityHigh || got[0].Category != types.CategorySecurity {
			t.Errorf("unexpected severity/category: %+v", got[0])
		}
	})

	t.Run("root user from converter and json encodings", func(t *testing.T) {
		for name, uid := range map[string]interface{}{"int64": int64(0), "float64": float64(0)} {
			ctx := containerCtx(map[string]interface{}{
				"name":            "web",
				"securityContext": map[string]interface{}{"runAsUser": uid},
			})
			got := checkSecurityContext(ctx)
			if len(got) != 1 || got[0].IssueType != "Runs as Root" {
				t.Errorf("%s encoding: unexpected findings: %v", name, got)
			}
		}
	})

	t.Run("non-root user passes", func(t *testing.T) {
		ctx := containerCtx(map[string]interface{}{
			"name":            "web",
			"securityContext": map[string]interface{}{"runAsUser": int64(1000)},
		})
		if got := checkSecurityContext(ctx); len(got) != 0 {
			t.Errorf("unexpected findings: %v", got)
		}
	})

	t.Run("dangerous capabilities in deny-list order", func(t *testing.T) {
		ctx := containerCtx(map[string]interface{}{
			"name": "web",
			"securityContext": map[string]interface{}{
				"capabilities": map[string]interface{}{
					"add": []interface{}{"ALL", "CHOWN", "SYS_ADMIN"},
				},
			},
		})
		got := checkSecurityContext(ctx)
		want := []string{"Dangerous Capability: SYS_ADMIN", "Dangerous Capability: ALL"}
		if !reflect.DeepEqual(issueTypes(got), want) {
			t.Errorf("issue types = %v, want %v", issueTypes(got), want)
		}
	})

	t.Run("benign capabilities pass", func(t *testing.T) {
		ctx := containerCtx(map[string]interface{}{
			"name": "web",
			"securityContext": map[string]interface{}{
				"capabilities": map[string]interface{}{
					"add": []interface{}{"CHOWN", "NET_BIND_SERVICE"},
				},
			},
		})
		if got := checkSecurityContext(ctx); len(got) != 0 {
			t.Errorf("unexpected findings: %v", got)
		}
	})
}

func TestCheckHostAccess(t *testing.T) {
	t.Run("both flags set", func(t *testing.T) {
		dep := makeResource("Deployment", "default", "agent", map[string]interface{}{
			"template": map[string]interface{}{
				"spec": map[string]interface{}{
					"hostNetwork": true,
					"hostPID":     true,
				},
			},
		}, nil)
		got := checkHostAccess(resourceCtx(dep))
		want := []string{"Host Network Access", "Host PID Access"}
		if !reflect.DeepEqual(issueTypes(got), want) {
			t.Errorf("issue types = %v, want %v", issueTypes(got), want)
		}
	})

	t.Run("flags absent or false", func(t *testing.T) {
		dep := makeResource("Deployment", "default", "plain", map[string]interface{}{
			"template": map[string]interface{}{
				"spec": map[string]interface{}{
					"hostNetwork": false,
				},
			},
		}, nil)
		if got := checkHostAccess(resourceCtx(dep)); len(got) != 0 {
			t.Errorf("unexpected findings: %v", got)
		}
	})
}

func TestCheckNetworkPolicies(t *testing.T) {
	ctx := globalCtx(nil,
		makeResource("Pod", "open-ns", "exposed-pod", nil, nil),
		makeResource("Pod", "guarded-ns", "safe-pod", nil, nil),
		makeResource("NetworkPolicy", "guarded-ns", "default-deny", nil, nil),
	)

	got := checkNetworkPolicies(ctx)
	if len(got) != 1 {
		t.Fatalf("expected one finding, got %v", got)
	}
	if got[0].Namespace != "open-ns" || got[0].IssueType != "Missing NetworkPolicy" {
		t.Errorf("unexpected finding: %+v", got[0])
	}
}

func TestCheckIngressTLS(t *testing.T) {
	withTLS := makeResource("Ingress", "default", "secure", map[string]interface{}{
		"tls": []interface{}{
			map[string]interface{}{"secretName": "web-cert"},
		},
	}, nil)
	withoutTLS := makeResource("Ingress", "default", "plain", map[string]interface{}{}, nil)

	got := checkIngressTLS(globalCtx(nil, withTLS, withoutTLS))
	if len(got) != 1 {
		t.Fatalf("expected one finding, got %v", got)
	}
	if got[0].ResourceName != "plain" || got[0].IssueType != "Missing TLS" {
		t.Errorf("unexpected finding: %+v", got[0])
	}
}
