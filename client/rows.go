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
	"database/sql"
	"database/sql/driver"
	"io"

	"github.com/litesql/litesql-go/rpc"
)

type rows struct {
	columns []string
	data    [][]driver.Value
}

// newRows adapts a remote result into driver rows.
func newRows(result *rpc.Result) *rows {
	r := &rows{columns: result.Columns}

	for _, row := range result.Rows {
		values := make([]driver.Value, len(row))
		for i, v := range row {
			values[i] = normalizeValue(v)
		}
		r.data = append(r.data, values)
	}

	return r
}

// newRowsFromSQL materializes a local replica result into driver rows.
func newRowsFromSQL(res *sql.Rows) (r *rows, err error) {
	var columns []string
	if columns, err = res.Columns(); err != nil {
		return
	}

	r = &rows{columns: columns}

	for res.Next() {
		values := make([]driver.Value, len(columns))
		targets := make([]interface{}, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err = res.Scan(targets...); err != nil {
			return nil, err
		}
		r.data = append(r.data, values)
	}

	if err = res.Err(); err != nil {
		return nil, err
	}

	return
}

// normalizeValue widens decoded scalars into the types database/sql accepts
// from a driver. driver.Value has no unsigned kind, so a uint64 above
// math.MaxInt64 reinterprets as a negative int64; SQLite integers are
// 64-bit signed, so such values cannot originate from a stored column.
func normalizeValue(v interface{}) driver.Value {
	switch v := v.(type) {
	case int32:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return float64(v)
	default:
		return v
	}
}

// Columns implements the driver.Rows.Columns method.
func (r *rows) Columns() []string {
	return r.columns[:]
}

// Close implements the driver.Rows.Close method.
func (r *rows) Close() error {
	r.data = nil
	return nil
}

// Next implements the driver.Rows.Next method.
func (r *rows) Next(dest []driver.Value) error {
	if len(r.data) == 0 {
		return io.EOF
	}

	copy(dest, r.data[0])
	r.data = r.data[1:]

	return nil
}
