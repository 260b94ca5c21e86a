// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fakedb provides an in-memory database/sql driver serving
// canned rows.
package fakedb // import "github.com/go-lpc/alazar/internal/fakedb"

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"sync"
)

// Name is the name under which the driver is registered.
const Name = "fakedb"

var state struct {
	mu      sync.Mutex
	results []Rows
	queries []Query
}

func init() {
	sql.Register(Name, &Driver{})
}

// Query is a query received by the driver.
type Query struct {
	SQL  string
	Args []driver.Value
}

// Run serves results, in order, to the queries issued by f.
// Run returns the queries received while f was running.
func Run(ctx context.Context, f func(ctx context.Context) error, results ...Rows) ([]Query, error) {
	state.mu.Lock()
	defer state.mu.Unlock()

	state.results = results
	state.queries = nil
	defer func() {
		state.results = nil
		state.queries = nil
	}()

	err := f(ctx)
	return state.queries, err
}

func next(query string, args []driver.Value) (*Rows, error) {
	state.queries = append(state.queries, Query{SQL: query, Args: args})
	if len(state.results) == 0 {
		return nil, fmt.Errorf("fakedb: no result for query %q", query)
	}
	rows := state.results[0]
	state.results = state.results[1:]
	if rows.Err != nil {
		return nil, rows.Err
	}
	return &rows, nil
}

type Driver struct{}

// Open returns a new connection to the database.
func (drv *Driver) Open(name string) (driver.Conn, error) {
	return &Conn{}, nil
}

type Conn struct{}

func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return &Stmt{query: query}, nil
}

func (c *Conn) Close() error { return nil }

func (c *Conn) Begin() (driver.Tx, error) {
	return nil, fmt.Errorf("fakedb: transactions not supported")
}

type Stmt struct {
	query string
}

func (stmt *Stmt) Close() error  { return nil }
func (stmt *Stmt) NumInput() int { return -1 }

func (stmt *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	return nil, fmt.Errorf("fakedb: exec not supported")
}

func (stmt *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	return next(stmt.query, args)
}

func (stmt *Stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vs := make([]driver.Value, len(args))
	for i, arg := range args {
		vs[i] = arg.Value
	}
	return next(stmt.query, vs)
}

// Rows is a canned query result.
// A non-nil Err makes the query fail.
type Rows struct {
	Names  []string
	Values [][]driver.Value
	Err    error
}

func (rows *Rows) Columns() []string { return rows.Names }
func (rows *Rows) Close() error      { return nil }

// Next populates dest with the next row, or returns io.EOF.
func (rows *Rows) Next(dest []driver.Value) error {
	if len(rows.Values) == 0 {
		return io.EOF
	}
	copy(dest, rows.Values[0])
	rows.Values = rows.Values[1:]
	return nil
}

var (
	_ driver.Driver           = (*Driver)(nil)
	_ driver.Conn             = (*Conn)(nil)
	_ driver.Stmt             = (*Stmt)(nil)
	_ driver.StmtQueryContext = (*Stmt)(nil)
	_ driver.Rows             = (*Rows)(nil)
)
