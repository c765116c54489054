// ABOUTME: Normalization of resource quantity strings for threshold rules.
// ABOUTME: Malformed quantities are reported as non-matching, never as errors.

package quantity

import (
	"strconv"
	"strings"
)

// memoryUnits maps a quantity suffix to its GiB multiplier.
var memoryUnits = map[string]float64{
	"Gi": 1,
	"Mi": 1.0 / 1024,
}

// CPUCores interprets a CPU quantity as whole cores. Only bare non-negative
// integer strings qualify; millicore notation and anything malformed return
// ok=false so threshold rules stay conservative.
func CPUCores(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return float64(n), true
}

// MemoryGiB normalizes a memory quantity to GiB using the unit table.
// Unknown suffixes and malformed payloads return ok=false.
func MemoryGiB(s string) (float64, bool) {
	for suffix, multiplier := range memoryUnits {
		if !strings.HasSuffix(s, suffix) {
			continue
		}
		payload := strings.TrimSuffix(s, suffix)
		value, err := strconv.ParseFloat(payload, 64)
		if err != nil || value < 0 {
			return 0, false
		}
		return value * multiplier, true
	}
	return 0, false
}
