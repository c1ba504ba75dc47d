// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package simulation

import (
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/crsim/drs"
	"storj.io/crsim/eventhandler"
	"storj.io/crsim/eventqueue"
	"storj.io/crsim/rng"
	"storj.io/crsim/topology"
)

// Error is the error class for run-orchestration failures.
var Error = errs.Class("simulation")

var mon = monkit.Package()

// TrialConfig bundles everything one independent Monte-Carlo trial
// needs: a fully-built topology (generators already attached, any
// perturbation-layer mutations already applied) and the already-placed
// stripes (one Group per stripe).
type TrialConfig struct {
	Scheme     drs.Scheme
	Tree       *topology.Tree
	Horizon    float64
	Classify   topology.MachineClassifier
	Placements [][]topology.ID
	Handler    eventhandler.Config
	Seed       int64

	// BlockFailure, if non-nil, is applied to the handler's freshly built
	// stripe population before any event is processed (spec.md §4.7).
	BlockFailure func(h *eventhandler.Handler, r *rng.Source)
}

// RunTrial executes one independent trial to completion: it builds the
// handler, optionally applies block failure, generates the tree's
// natural event sequence, then drains the queue dispatching every event,
// per spec.md §5's single-threaded cooperative event loop.
func RunTrial(log *zap.Logger, cfg TrialConfig) (result eventhandler.Result, err error) {
	defer mon.Task()(nil)(&err)

	r := rng.New(cfg.Seed)
	queue := eventqueue.New()

	h := eventhandler.New(log, cfg.Scheme, cfg.Tree, r, queue, cfg.Handler, cfg.Placements)
	if cfg.BlockFailure != nil {
		cfg.BlockFailure(h, r)
	}

	for _, ev := range topology.Generate(cfg.Tree, cfg.Horizon, r, cfg.Classify) {
		queue.Push(ev)
	}

	for {
		ev, ok := queue.Pop()
		if !ok {
			break
		}
		if err := h.Handle(ev); err != nil {
			return eventhandler.Result{}, Error.Wrap(err)
		}
	}

	return h.Result(), nil
}
