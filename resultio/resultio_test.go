// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package resultio_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"storj.io/crsim/resultio"
	"storj.io/crsim/simulation"
)

func TestCSVWriterPublishesAtomically(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "results.csv")

	w, err := resultio.NewCSVWriter(dest)
	require.NoError(t, err)

	require.NoError(t, resultio.WriteAggregate(w, 0, simulation.AggregateResult{PDL: 0.01, Trials: 10}))
	require.NoError(t, resultio.WriteAggregate(w, 1, simulation.AggregateResult{PDL: 0.02, Trials: 10}))

	_, statErrBefore := os.Stat(dest)
	require.Error(t, statErrBefore, "dest must not exist before Close publishes it")

	require.NoError(t, w.Close())

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + 2 rows
	require.Equal(t, resultio.Columns, records[0])
	require.Equal(t, "0", records[1][0])
	require.Equal(t, "1", records[2][0])
}
