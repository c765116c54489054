// ABOUTME: Label selector coverage check used by cross-resource rules.
// ABOUTME: Subset-match semantics; an empty selector never matches anything.

package index

// Covers reports whether the selector covers the label set: every key in
// the selector must be present in labels with an equal value. An empty
// selector is inapplicable and returns false, never "matches everything" -
// a disruption budget with no selector covers no workload.
func Covers(selector, labels map[string]string) bool {
	if len(selector) == 0 {
		return false
	}
	for key, want := range selector {
		if got, ok := labels[key]; !ok || got != want {
			return false
		}
	}
	return true
}
