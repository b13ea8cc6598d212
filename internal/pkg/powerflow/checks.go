package powerflow

import "fmt"

// assertf panics on invariant violations in debug builds (the powerdebug
// tag) and compiles to nothing otherwise. Violations mean a topology or
// invalidation bug upstream, not a runtime condition worth repairing.
func assertf(cond bool, format string, args ...interface{}) {
	if !debugChecks {
		return
	}
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
