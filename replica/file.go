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

package replica

import (
	"bytes"
	"io"
	"os"
)

// sqliteMagic is the 16-byte header every SQLite database file starts with.
var sqliteMagic = []byte("SQLite format 3\x00")

// minDatabaseSize is the smallest possible SQLite database file: one page
// header. Anything shorter cannot be a database.
const minDatabaseSize = 100

// IsSQLiteFile reports whether the file at path is a loadable SQLite
// database: at least 100 bytes long with the SQLite header magic. Any stat
// or read failure reports false.
func IsSQLiteFile(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || fi.Size() < minDatabaseSize {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	header := make([]byte, len(sqliteMagic))
	if _, err = io.ReadFull(f, header); err != nil {
		return false
	}

	return bytes.Equal(header, sqliteMagic)
}
