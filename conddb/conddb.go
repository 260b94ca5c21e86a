// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package conddb holds types to retrieve the configuration of digitizer
// boards from the configuration database.
package conddb // import "github.com/go-lpc/alazar/conddb"

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-lpc/alazar/ats"
	_ "github.com/go-sql-driver/mysql"
)

const (
	host = "localhost"
)

var (
	usr = "username"
	pwd = "s3cr3t"

	drvName = "mysql"
)

// DB exposes convenience methods to easily retrieve board configurations
// from the database.
type DB struct {
	db   *sql.DB
	name string // name of the configuration database
}

// Open opens a connection to the configuration database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("conddb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("conddb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// LastBoardConfig returns the name of the most recent board configuration.
func (db *DB) LastBoardConfig(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	name := ""
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT name FROM boards ORDER BY datetime DESC LIMIT 1",
	)
	if err != nil {
		return name, fmt.Errorf("conddb: could not query last board cfg: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		err = rows.Scan(&name)
		if err != nil {
			return name, fmt.Errorf("conddb: could not get last board cfg value: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return name, fmt.Errorf("conddb: could not scan db for last board cfg: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return name, fmt.Errorf("conddb: context error while retrieving last board cfg: %w", err)
	}

	if name == "" {
		return name, fmt.Errorf("conddb: no board cfg: %w", sql.ErrNoRows)
	}

	return name, nil
}

const queryBoardConfig = `
SELECT
	clock_source, sample_rate, decimation, clock_edge,
	input_range, channel, coupling, impedance, bandwidth,
	trig_source, trig_slope, trig_level, ext_coupling, ext_range, trig_delay
FROM boards
WHERE name=?
ORDER BY datetime DESC LIMIT 1
`

// BoardConfig returns the most recent board configuration registered
// under the provided name.
func (db *DB) BoardConfig(ctx context.Context, name string) (ats.Config, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var cfg ats.Config
	rows, err := db.db.QueryContext(ctx, queryBoardConfig, name)
	if err != nil {
		return cfg, fmt.Errorf("conddb: could not run board cfg query %q: %w", name, err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		err = rows.Scan(
			&cfg.ClockSource, &cfg.SampleRate, &cfg.Decimation, &cfg.ClockEdge,
			&cfg.InputRange, &cfg.Channel, &cfg.Coupling, &cfg.Impedance, &cfg.Bandwidth,
			&cfg.TrigSource, &cfg.TrigSlope, &cfg.TrigLevel,
			&cfg.ExtCoupling, &cfg.ExtRange, &cfg.TrigDelay,
		)
		if err != nil {
			return cfg, fmt.Errorf("conddb: could not scan board cfg %q: %w", name, err)
		}
		n++
	}

	if err := rows.Err(); err != nil {
		return cfg, fmt.Errorf("conddb: could not scan db for board cfg %q: %w", name, err)
	}

	if err := ctx.Err(); err != nil {
		return cfg, fmt.Errorf("conddb: context error while retrieving board cfg %q: %w", name, err)
	}

	if n == 0 {
		return cfg, fmt.Errorf("conddb: no board cfg %q: %w", name, sql.ErrNoRows)
	}

	return cfg, nil
}
