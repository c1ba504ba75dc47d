// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package drs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"storj.io/crsim/drs"
)

func normalState(n int) drs.Vector {
	v := make(drs.Vector, n)
	for i := range v {
		v[i] = drs.Normal
	}
	return v
}

func TestRSSingleRepairCost(t *testing.T) {
	// Boundary scenario 1: RS(9,6), one disk failure.
	scheme, err := drs.NewRS(9, 6)
	require.NoError(t, err)

	state := normalState(9)
	state[3] = drs.Corrupted
	require.True(t, scheme.IsRepairable(state))
	require.Equal(t, float64(6), scheme.SingleRepair(state, 3))
}

func TestRSReplicationLost(t *testing.T) {
	// Boundary scenario 2: RS(3,1) replication, all copies permanently
	// fail before any repair can run; the stripe has no durable copy
	// left and becomes Lost.
	scheme, err := drs.NewRS(3, 1)
	require.NoError(t, err)

	state := normalState(3)
	state[0] = drs.Corrupted
	state[1] = drs.Corrupted
	state[2] = drs.Corrupted
	require.False(t, scheme.IsRepairable(state))
}

func TestLRCLocalSingleLoss(t *testing.T) {
	// Boundary scenario 3: LRC(10,6,2), single data-chunk loss inside a
	// local group with no other loss in that group.
	scheme, err := drs.NewLRC(10, 6, 2)
	require.NoError(t, err)

	state := normalState(10)
	state[0] = drs.Corrupted // group 0: positions [0,3), local parity at 6
	require.True(t, scheme.IsRepairable(state))
	require.InDelta(t, 3.0, scheme.SingleRepair(state, 0), 1e-9)
	require.InDelta(t, 6.0, scheme.RC(), 1e-9)
}

func TestLRCUnrepairable(t *testing.T) {
	scheme, err := drs.NewLRC(10, 6, 2)
	require.NoError(t, err)

	state := normalState(10)
	// Lose all 3 data chunks of group 0 (local parity alone can't cover
	// it) plus one global parity; durable count is still 6 = k, but the
	// surviving equations (1 spare local parity + 2 global parities)
	// fall short of the 4 losses that need them.
	state[0] = drs.Corrupted
	state[1] = drs.Corrupted
	state[2] = drs.Corrupted
	state[8] = drs.Corrupted // a global parity
	require.False(t, scheme.IsRepairable(state))
}

func TestMSRSingleFailureOptimal(t *testing.T) {
	// Boundary scenario 4: MSR(14,10,12), one chunk lost, 13 Normal.
	scheme, err := drs.NewMSR(14, 10, 12)
	require.NoError(t, err)

	state := normalState(14)
	state[11] = drs.Corrupted
	require.True(t, scheme.IsRepairable(state))
	got := scheme.ParallelRepair(state, true)
	require.InDelta(t, 4.0, got, 1e-9)
}

func TestXORBASImpliedParity(t *testing.T) {
	scheme, err := drs.NewXORBAS(10, 6, 2)
	require.NoError(t, err)

	state := normalState(10)
	state[6] = drs.Corrupted // a local parity, recoverable via the implied-parity closure
	require.True(t, scheme.IsRepairable(state))
}

func TestDRCRepairTrafficIsORC(t *testing.T) {
	scheme, err := drs.NewDRC(8, 6, 4)
	require.NoError(t, err)
	require.Equal(t, scheme.ORC(), scheme.RepairTraffic(true, 3))
}

func TestParseSchemeStrings(t *testing.T) {
	for _, tc := range []struct {
		spec     string
		wantName string
	}{
		{"RS_14_10", "RS(14,10)"},
		{"LRC_16_10_2", "LRC(16,10,2)"},
		{"MSR_14_10_12", "MSR(14,10,12)"},
		{"XORBAS_10_6_2", "XORBAS(10,6,2)"},
		{"DRC_8_6_4", "DRC(8,6,4)"},
		{"DOUBLER_8_4_2", "DOUBLER(8,4,2)"},
	} {
		scheme, err := drs.Parse(tc.spec)
		require.NoError(t, err, tc.spec)
		require.Equal(t, tc.wantName, scheme.Name())
	}

	_, err := drs.Parse("BOGUS_1_2")
	require.Error(t, err)
}
