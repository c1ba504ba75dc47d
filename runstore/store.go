// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

// Package runstore persists one row per completed scenario run into an
// embedded sqlite database, so `cmd/crsim report` can compare scenarios
// across invocations without re-running them (SPEC_FULL.md §2.7,
// supplemental to spec.md).
package runstore

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/zeebo/errs"

	"storj.io/crsim/simulation"
)

// Error is the run-history persistence error class.
var Error = errs.Class("runstore")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	scenario TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	trials INTEGER NOT NULL,
	pdl REAL NOT NULL,
	pua REAL NOT NULL,
	nomdl REAL NOT NULL,
	trc REAL NOT NULL,
	anomalous_available INTEGER NOT NULL
);
`

// Store wraps a *sql.DB opened against a single local sqlite file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures its schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, Error.Wrap(err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return Error.Wrap(s.db.Close())
}

// Record is one persisted run-history row.
type Record struct {
	ID                 int64
	Scenario           string
	StartedAt          time.Time
	simulation.AggregateResult
}

// Insert writes one scenario's aggregate result as a new row and
// returns its generated ID.
func (s *Store) Insert(ctx context.Context, scenario string, startedAt time.Time, result simulation.AggregateResult) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (scenario, started_at, trials, pdl, pua, nomdl, trc, anomalous_available)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		scenario, startedAt, result.Trials, result.PDL, result.PUA, result.NOMDL, result.TRC, result.AnomalousAvailable,
	)
	if err != nil {
		return 0, Error.Wrap(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, Error.Wrap(err)
	}
	return id, nil
}

// ListByScenario returns every recorded run for scenario, most recent
// first.
func (s *Store) ListByScenario(ctx context.Context, scenario string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, scenario, started_at, trials, pdl, pua, nomdl, trc, anomalous_available
		 FROM runs WHERE scenario = ? ORDER BY started_at DESC`, scenario)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Scenario, &r.StartedAt, &r.Trials, &r.PDL, &r.PUA, &r.NOMDL, &r.TRC, &r.AnomalousAvailable); err != nil {
			return nil, Error.Wrap(err)
		}
		out = append(out, r)
	}
	return out, Error.Wrap(rows.Err())
}
