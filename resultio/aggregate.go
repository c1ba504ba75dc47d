// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package resultio

import (
	"strconv"

	"storj.io/crsim/simulation"
)

// WriteAggregate formats one scenario's Monte-Carlo AggregateResult as
// the single row named by Columns and writes it through w, writing the
// header first if this is the first row w has seen (trial == 0).
func WriteAggregate(w RowWriter, trial int, result simulation.AggregateResult) error {
	if trial == 0 {
		if err := w.WriteHeader(Columns); err != nil {
			return err
		}
	}

	row := []string{
		strconv.Itoa(trial),
		strconv.FormatFloat(result.PDL, 'g', -1, 64),
		strconv.FormatFloat(result.PUA, 'g', -1, 64),
		strconv.FormatFloat(result.NOMDL, 'g', -1, 64),
		strconv.FormatFloat(result.TRC, 'g', -1, 64),
		strconv.Itoa(result.UndurableByCause["disk"]),
		strconv.Itoa(result.UndurableByCause["topology"]),
		strconv.Itoa(result.AnomalousAvailable),
		strconv.Itoa(result.Queue.Queued()),
		strconv.FormatFloat(result.Queue.MeanWait(), 'g', -1, 64),
		strconv.FormatFloat(result.Queue.Percentile(50), 'g', -1, 64),
		strconv.FormatFloat(result.Queue.Percentile(99), 'g', -1, 64),
	}
	return w.WriteRow(row)
}
