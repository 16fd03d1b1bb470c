package internaldefs

import (
	goOTP "github.com/MrEthical07/goOTP"
)

// CounterDef defines a public type used by goOTP APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goOTP.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goOTP APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goOTP.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the passcode engine.
var CounterDefs = []CounterDef{
	{ID: goOTP.MetricIssueSuccess, Name: "gootp_issue_success_total", Help: "Successfully issued one-time codes."},
	{ID: goOTP.MetricIssueFailure, Name: "gootp_issue_failure_total", Help: "Failed issue operations."},
	{ID: goOTP.MetricIssueRateLimited, Name: "gootp_issue_rate_limited_total", Help: "Rate-limited issue attempts."},
	{ID: goOTP.MetricVerifyValid, Name: "gootp_verify_valid_total", Help: "Verifications that matched a pending code."},
	{ID: goOTP.MetricVerifyNotFound, Name: "gootp_verify_not_found_total", Help: "Verifications with no pending code."},
	{ID: goOTP.MetricVerifyExpired, Name: "gootp_verify_expired_total", Help: "Verifications against an expired code."},
	{ID: goOTP.MetricVerifyAttemptsExceeded, Name: "gootp_verify_attempts_exceeded_total", Help: "Verifications blocked by the attempt budget."},
	{ID: goOTP.MetricVerifyInvalid, Name: "gootp_verify_invalid_total", Help: "Verifications with a mismatched code."},
	{ID: goOTP.MetricVerifyRateLimited, Name: "gootp_verify_rate_limited_total", Help: "Rate-limited verify attempts."},
	{ID: goOTP.MetricVerifyFailure, Name: "gootp_verify_failure_total", Help: "Verify operations that failed before a compare."},
	{ID: goOTP.MetricCancel, Name: "gootp_cancel_total", Help: "Cancelled pending codes."},
	{ID: goOTP.MetricSweepRuns, Name: "gootp_sweep_runs_total", Help: "Completed sweep passes."},
	{ID: goOTP.MetricSweepEvicted, Name: "gootp_sweep_evicted_total", Help: "Records evicted by sweep passes."},
}

// HistogramDefs is an exported constant or variable used by the passcode engine.
var HistogramDefs = []HistogramDef{
	{ID: goOTP.MetricVerifyLatency, Name: "gootp_verify_latency_seconds", Help: "Verify latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the passcode engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the passcode engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
