// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package eventhandler

// Config carries the lazy-recovery, contention, and eager-recovery
// tuning knobs named in spec.md §4.4-§4.5.
type Config struct {
	// RecoveryThreshold is the base T_eff a stripe must fall to or below
	// before a scheduled recovery rebuilds it.
	RecoveryThreshold int
	// AvailabilityCountsForRecovery switches the threshold predicate from
	// durable_count to available_count.
	AvailabilityCountsForRecovery bool
	// LazyOnlyAvailable, once the global degraded-stripe count crosses
	// MaxDegradedSlices*S, relaxes T_eff to n-1 (pure availability-based
	// lazy rebuild) until the queue drains.
	LazyOnlyAvailable bool
	MaxDegradedSlices float64

	// InstallmentSize is the chunk-count granularity of an eager-recovery
	// installment (spec.md §4.4).
	InstallmentSize int

	// QueueDisable turns off the bandwidth-contention re-materialization
	// described in spec.md §4.5; every recovery applies immediately.
	QueueDisable bool
	// NominalRepairDuration is the wall-clock duration charged against
	// the contention model for one recovery's queued request.
	NominalRepairDuration float64

	// Hierarchical and Racks feed DRS.RepairTraffic's traffic-scaling
	// term (spec.md §4.1).
	Hierarchical bool
	Racks        int

	// RecoveryProbability is the piecewise function named in spec.md
	// §4.4 mapping a scheduled recovery's elapsed time since failure to
	// the probability T_eff is bumped to n-1-recovery_threshold higher.
	// nil disables the adjustment.
	RecoveryProbability func(elapsed float64) float64

	// EagerBandwidthCap is the total cross-rack bandwidth (chunk-
	// equivalents per unit time) available for speculative rebuild
	// during a long transient (spec.md §4.4).
	EagerBandwidthCap float64

	// DetectIntervals is d1..d(n-k), the RAFI per-failure-count
	// detection threshold (spec.md §4.6). A nil slice disables the RAFI
	// overlay entirely.
	DetectIntervals []float64
}

// StepRecoveryProbability builds a Config.RecoveryProbability function
// from parallel threshold/probability tables (spec.md §6's
// availability_to_durability_threshold/recovery_probability scenario
// fields): it returns probabilities[i] for the highest thresholds[i]
// not exceeding elapsed, clamping to the first/last bucket outside the
// table's range. A nil/mismatched-length pair disables the adjustment
// (returns nil, matching Config.RecoveryProbability's "nil disables"
// contract) rather than reproducing the stale-loop-index ambiguity of
// the original `getAvailableLazyThreshold`.
func StepRecoveryProbability(thresholds, probabilities []float64) func(elapsed float64) float64 {
	if len(thresholds) == 0 || len(thresholds) != len(probabilities) {
		return nil
	}
	return func(elapsed float64) float64 {
		index := 0
		for i, t := range thresholds {
			if elapsed >= t {
				index = i
			} else {
				break
			}
		}
		return probabilities[index]
	}
}

// detectInterval returns the detection threshold for f concurrent
// failures, clamping to the last configured interval once f exceeds the
// table (spec.md §4.6 names d1..dn-k but failures can exceed n-k before
// the stripe is declared Lost).
func (c Config) detectInterval(f int) float64 {
	if len(c.DetectIntervals) == 0 {
		return 0
	}
	if f > len(c.DetectIntervals) {
		f = len(c.DetectIntervals)
	}
	return c.DetectIntervals[f-1]
}
