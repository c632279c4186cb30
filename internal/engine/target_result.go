package engine

import "bitvcheck/internal/audit"

// TargetResult is the outcome of auditing a single target. Exactly one of
// Result and Err is set.
//
// It is emitted by the scheduler and consumed by the engine while the run
// streams.
type TargetResult struct {
	Target string
	Result *audit.RunResult
	Err    error
}
