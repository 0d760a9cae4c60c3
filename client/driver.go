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

// Package client implements a database/sql driver for LiteSQL. Statements
// run remotely over the streaming RPC channel, except read-only statements
// that a fresh local replica can answer; those are routed to the embedded
// replica instead when the DSN configures one.
//
//	db, err := sql.Open("litesql", "litesql://localhost:8080/app.db?token=secret")
package client

import (
	"database/sql"
	"database/sql/driver"
)

func init() {
	sql.Register("litesql", new(litesqlDriver))
}

// litesqlDriver implements the driver.Driver interface.
type litesqlDriver struct {
}

// Open returns a new connection to the database.
func (d *litesqlDriver) Open(dsn string) (conn driver.Conn, err error) {
	var cfg *Config
	if cfg, err = ParseDSN(dsn); err != nil {
		return
	}

	return newConn(cfg)
}
