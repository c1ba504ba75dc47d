// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package simulation

import (
	"github.com/shopspring/decimal"

	"storj.io/crsim/contention"
	"storj.io/crsim/eventhandler"
)

// AggregateResult is the Monte-Carlo average over every completed
// trial's Result (spec.md §3's Result record, §9's "process-wide record
// ... model as a value type").
type AggregateResult struct {
	Trials int

	PDL   float64
	PUA   float64
	NOMDL float64
	TRC   float64

	UndurableByCause   map[string]int
	AnomalousAvailable int
	Queue              contention.Stats
}

// Params carries the static cluster facts Aggregate needs to turn raw
// per-trial counts into the spec.md §3 ratios.
type Params struct {
	TotalSlices        int
	ChunkSize          float64
	K                  int
	TotalActiveStorage float64
	LiveStripeSeconds  float64 // Σ live_stripes(t)·dt over the horizon
}

// Aggregate folds one trial's Result into a running AggregateResult.
// The PDL, PUA and TRC sums are accumulated through shopspring/decimal
// (NOMDL is derived from the PDL sum) so that
// summing many millions of per-event chunk-equivalent charges across a
// long Monte-Carlo run does not accumulate float64 rounding drift — the
// same rationale the teacher's compensation/accounting code applies to
// money, here applied to repair-cost chunk-equivalents.
type Aggregate struct {
	params Params

	trials int
	pdlSum decimal.Decimal
	puaSum decimal.Decimal
	trcSum decimal.Decimal

	undurableByCause   map[string]int
	anomalousAvailable int
	queue              contention.Stats
}

// NewAggregate returns an empty accumulator for the given static
// cluster parameters.
func NewAggregate(params Params) *Aggregate {
	return &Aggregate{params: params, undurableByCause: make(map[string]int)}
}

// Add folds one trial's Result in.
func (a *Aggregate) Add(result eventhandler.Result) {
	a.trials++

	pdl := decimal.NewFromFloat(float64(result.UndurableCount)).Div(decimal.NewFromInt(int64(a.params.TotalSlices)))
	a.pdlSum = a.pdlSum.Add(pdl)

	if a.params.LiveStripeSeconds > 0 {
		pua := decimal.NewFromFloat(result.UnavailableSeconds).Div(decimal.NewFromFloat(a.params.LiveStripeSeconds))
		a.puaSum = a.puaSum.Add(pua)
	}

	a.trcSum = a.trcSum.Add(decimal.NewFromFloat(result.TRC))

	for _, cause := range result.Causes {
		a.undurableByCause[causeBucket(cause.Reason)]++
	}
	a.anomalousAvailable += result.AnomalousAvailable

	a.queue = mergeQueueStats(a.queue, result.Queue)
}

// causeBucket collapses a free-form cause string ("disk 42", "topology
// failure") into one of two buckets: "disk" for reasons starting with
// "disk", "topology" for everything else. Node and LSE causes are not
// given buckets of their own.
func causeBucket(reason string) string {
	switch {
	case len(reason) >= 4 && reason[:4] == "disk":
		return "disk"
	default:
		return "topology"
	}
}

func mergeQueueStats(a, b contention.Stats) contention.Stats {
	if a.Queued() == 0 {
		return b
	}
	if b.Queued() == 0 {
		return a
	}
	return a.Merge(b)
}

// Result returns the final Monte-Carlo average across every trial
// folded in so far.
func (a *Aggregate) Result() AggregateResult {
	out := AggregateResult{
		Trials:             a.trials,
		UndurableByCause:   a.undurableByCause,
		AnomalousAvailable: a.anomalousAvailable,
		Queue:              a.queue,
	}
	if a.trials == 0 {
		return out
	}
	n := decimal.NewFromInt(int64(a.trials))
	out.PDL, _ = a.pdlSum.Div(n).Float64()
	out.PUA, _ = a.puaSum.Div(n).Float64()
	out.TRC, _ = a.trcSum.Div(n).Float64()

	avgUndurable := a.pdlSum.Div(n).Mul(decimal.NewFromInt(int64(a.params.TotalSlices)))
	if a.params.TotalActiveStorage > 0 {
		nomdl := avgUndurable.
			Mul(decimal.NewFromFloat(a.params.ChunkSize)).
			Mul(decimal.NewFromInt(int64(a.params.K))).
			Div(decimal.NewFromFloat(a.params.TotalActiveStorage))
		out.NOMDL, _ = nomdl.Float64()
	}
	return out
}
