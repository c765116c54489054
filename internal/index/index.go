// ABOUTME: Resource index built once per audit pass over the raw snapshot.
// ABOUTME: Provides by-kind, namespace, and targeting-selector lookups for rules.

package index

import (
	"sort"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/policyrelay/policyrelay/internal/types"
)

// Index holds lookup structures derived from one snapshot. It is read-only
// after Build returns; rules must not mutate it.
type Index struct {
	byKind          map[string][]unstructured.Unstructured
	namespaces      []string
	budgetSelectors map[string][]map[string]string
	scaleTargets    map[string]struct{}
}

// Build constructs the index from the flat snapshot list. Absent fields
// default to empty containers; Build never fails.
func Build(items []unstructured.Unstructured) *Index {
	idx := &Index{
		byKind:          make(map[string][]unstructured.Unstructured),
		budgetSelectors: make(map[string][]map[string]string),
		scaleTargets:    make(map[string]struct{}),
	}

	seen := make(map[string]struct{})
	for _, item := range items {
		kind := item.GetKind()
		idx.byKind[kind] = append(idx.byKind[kind], item)

		if ns := item.GetNamespace(); ns != "" {
			seen[ns] = struct{}{}
		}

		switch kind {
		case types.KindDisruptionBudget:
			if sel := MatchLabels(&item); len(sel) > 0 {
				ns := item.GetNamespace()
				idx.budgetSelectors[ns] = append(idx.budgetSelectors[ns], sel)
			}
		case types.KindAutoscaler:
			targetKind, _, _ := unstructured.NestedString(item.Object, "spec", "scaleTargetRef", "kind")
			targetName, _, _ := unstructured.NestedString(item.Object, "spec", "scaleTargetRef", "name")
			if targetKind == types.KindDeployment && targetName != "" {
				idx.scaleTargets[item.GetNamespace()+"/"+targetName] = struct{}{}
			}
		}
	}

	idx.namespaces = make([]string, 0, len(seen))
	for ns := range seen {
		idx.namespaces = append(idx.namespaces, ns)
	}
	sort.Strings(idx.namespaces)

	return idx
}

// ByKind returns all resources of the given kind in snapshot order.
func (idx *Index) ByKind(kind string) []unstructured.Unstructured {
	return idx.byKind[kind]
}

// Namespaces returns the sorted set of namespaces observed in the snapshot.
// Cluster-scoped resources contribute nothing.
func (idx *Index) Namespaces() []string {
	return idx.namespaces
}

// BudgetSelectors returns the matchLabels selectors of all disruption
// budgets declared in the given namespace. Empty selectors are dropped at
// build time since they never cover anything.
func (idx *Index) BudgetSelectors(namespace string) []map[string]string {
	return idx.budgetSelectors[namespace]
}

// HasScaleTarget reports whether any autoscaler in the namespace targets
// the named deployment.
func (idx *Index) HasScaleTarget(namespace, name string) bool {
	_, ok := idx.scaleTargets[namespace+"/"+name]
	return ok
}
