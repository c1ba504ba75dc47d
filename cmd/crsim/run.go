// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"context"
	"runtime"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/loov/hrtime"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"storj.io/crsim/crsimconfig"
	"storj.io/crsim/drs"
	"storj.io/crsim/eventhandler"
	"storj.io/crsim/placement"
	"storj.io/crsim/resultio"
	"storj.io/crsim/rng"
	"storj.io/crsim/simulation"
	"storj.io/crsim/topology"
)

const hoursPerYear = 365.25 * 24

// RunCommand runs every trial a scenario file names and writes the
// aggregated result to the configured CSV file and run-history store
// (spec.md §2, the end-to-end wiring of every external collaborator).
func RunCommand(log *zap.Logger) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "run a scenario's Monte-Carlo trials and record the aggregate result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarioPath := args[0]
			cfg, err := crsimconfig.Load(scenarioPath)
			if err != nil {
				return err
			}
			crsimconfig.ApplyOverrides(cfg, v)

			start := hrtime.Now()
			result, err := runScenario(cmd.Context(), log, *cfg)
			if err != nil {
				return err
			}
			log.Info("trials complete",
				zap.Int("trials", result.Trials),
				zap.Duration("elapsed", hrtime.Since(start)))

			return recordResult(cmd.Context(), *cfg, scenarioPath, result)
		},
	}

	if err := crsimconfig.BindFlags(v, cmd.Flags()); err != nil {
		log.Warn("binding override flags", zap.Error(err))
	}

	return cmd
}

// runScenario builds the cluster, places every stripe once against a
// seed tree, then fans cfg.Trial.Count independent trials out across
// available CPUs, folding each into a running simulation.Aggregate as
// it completes. Each trial regenerates its own tree (fresh failure
// timelines) but reuses the same placement, matching spec.md §2's split
// between "placement is fixed per scenario" and "failure generation is
// per trial".
func runScenario(ctx context.Context, log *zap.Logger, cfg crsimconfig.Config) (simulation.AggregateResult, error) {
	scheme, err := drs.Parse(cfg.Scheme.Spec)
	if err != nil {
		return simulation.AggregateResult{}, err
	}

	seedTree, _ := buildTree(log, cfg)
	engine := buildEngine(cfg, seedTree, rng.New(cfg.Trial.Seed), scheme.N())

	placements := make([][]topology.ID, 0, cfg.Trial.StripeCount)
	placeSource := rng.New(cfg.Trial.Seed)
	for i := 0; i < cfg.Trial.StripeCount; i++ {
		group, err := placement.Place(engine, seedTree, placeSource)
		if err != nil {
			return simulation.AggregateResult{}, resultio.Error.Wrap(err)
		}
		placements = append(placements, []topology.ID(group))
	}

	handlerCfg := toHandlerConfig(cfg)
	horizon := cfg.Trial.HorizonYears * hoursPerYear

	params := simulation.Params{
		TotalSlices:        cfg.Trial.StripeCount,
		ChunkSize:          cfg.Trial.ChunkSize,
		K:                  scheme.K(),
		TotalActiveStorage: cfg.Trial.TotalActiveStorage,
		LiveStripeSeconds:  simulation.Schedule(nil).LiveStripeSeconds(horizon, horizon/1000, cfg.Trial.StripeCount),
	}
	agg := simulation.NewAggregate(params)

	bar := pb.StartNew(cfg.Trial.Count)
	defer bar.Finish()
	// redraw paces the progress bar so a run of many thousand
	// sub-second trials does not spend more wall-clock time repainting
	// the terminal than simulating (golang.org/x/time/rate).
	redraw := rate.NewLimiter(rate.Every(100*time.Millisecond), 1)

	classify := topology.DefaultClassifier(cfg.Topology.TransientTimeoutHours, cfg.Topology.PermanentFailureProbability)

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.NumCPU())

	results := make(chan eventhandler.Result, cfg.Trial.Count)
	for i := 0; i < cfg.Trial.Count; i++ {
		trial := i
		group.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			tree, _ := buildTree(log, cfg)
			res, err := simulation.RunTrial(log, simulation.TrialConfig{
				Scheme:     scheme,
				Tree:       tree,
				Horizon:    horizon,
				Classify:   classify,
				Placements: placements,
				Handler:    handlerCfg,
				Seed:       cfg.Trial.Seed + int64(trial),
			})
			if err != nil {
				return err
			}
			results <- res
			if redraw.Allow() {
				bar.Increment()
			}
			return nil
		})
	}

	go func() {
		_ = group.Wait()
		close(results)
	}()

	for res := range results {
		agg.Add(res)
	}
	if err := group.Wait(); err != nil {
		return simulation.AggregateResult{}, err
	}
	bar.SetCurrent(int64(cfg.Trial.Count))

	return agg.Result(), nil
}
