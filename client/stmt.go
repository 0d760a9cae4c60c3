/*
 * Copyright 2026 The LiteSQL Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package client

import (
	"context"
	"database/sql/driver"
	"sync/atomic"
)

// stmt holds statement text for later runs. Nothing is prepared ahead of
// time: the server receives the full text on every execution, so a stmt is
// only a routing handle back to its connection.
type stmt struct {
	c       *Conn
	closed  int32
	pattern string
}

func newStmt(c *Conn, query string) (s *stmt) {
	s = &stmt{c: c, pattern: query}
	return
}

// Query runs the stored statement with positional arguments.
func (s *stmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), namedValues(args))
}

// Exec runs the stored statement with positional arguments.
func (s *stmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), namedValues(args))
}

// QueryContext routes the stored statement through the owning connection, so
// it gets the same local-or-remote decision as a direct query.
func (s *stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	if atomic.LoadInt32(&s.closed) != 0 || s.c == nil {
		return nil, driver.ErrBadConn
	}

	return s.c.QueryContext(ctx, s.pattern, args)
}

// ExecContext routes the stored statement through the owning connection.
func (s *stmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	if atomic.LoadInt32(&s.closed) != 0 || s.c == nil {
		return nil, driver.ErrBadConn
	}

	return s.c.ExecContext(ctx, s.pattern, args)
}

// Close detaches the statement from its connection.
func (s *stmt) Close() error {
	if atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		s.c = nil
	}
	return nil
}

// NumInput reports -1: placeholder arity is checked server-side, not by the
// driver.
func (s *stmt) NumInput() int {
	return -1
}

// namedValues lifts pre-context positional arguments into the named form the
// connection methods take. Ordinals are 1-based per the driver contract.
func namedValues(args []driver.Value) (dargs []driver.NamedValue) {
	dargs = make([]driver.NamedValue, len(args))

	for i, v := range args {
		dargs[i] = driver.NamedValue{
			Ordinal: i + 1,
			Value:   v,
		}
	}

	return
}
