// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package topology_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/crsim/topology"
)

func TestInjectedIntervalSnapsNaturalWindow(t *testing.T) {
	tr := topology.NewTree(zaptest.NewLogger(t))
	machine := tr.AddNode(tr.RootID, topology.Machine)
	n := tr.Node(machine)
	n.Inject(topology.FailureInterval{Start: 10, End: 20, Lost: true})

	classify := topology.DefaultClassifier(1000, 0)
	n.Failure = fixedSampler(5)
	n.Recovery = fixedSampler(3)

	events := topology.Generate(tr, 100, newDeterministicRNG(), classify)

	var sawLost bool
	for _, ev := range events {
		if ev.Unit == int(machine) && ev.Info == 3 {
			sawLost = true
		}
	}
	require.True(t, sawLost, "expected a snapped window to report Permanent info")
}

func TestUnconsumedIntervalEmittedStandalone(t *testing.T) {
	tr := topology.NewTree(zaptest.NewLogger(t))
	machine := tr.AddNode(tr.RootID, topology.Machine)
	n := tr.Node(machine)
	n.Inject(topology.FailureInterval{Start: 90, End: 95, Lost: false})
	n.Failure = fixedSampler(5)
	n.Recovery = fixedSampler(1)

	classify := topology.DefaultClassifier(1000, 0)
	events := topology.Generate(tr, 100, newDeterministicRNG(), classify)

	found := false
	for _, ev := range events {
		if ev.Time == 90 && ev.Kind.String() == "Failure" {
			found = true
		}
	}
	require.True(t, found, "expected the never-overlapped injected interval to surface as its own Failure event")
}
