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

// execResult is the outcome of a remote write. The response carries only an
// affected-row count; there is no insert-id channel in the protocol.
type execResult struct {
	affectedRows int64
}

// LastInsertId always reports 0 without error, since the server never sends
// one. Callers needing the id should SELECT last_insert_rowid() in the same
// transaction.
func (r *execResult) LastInsertId() (int64, error) {
	return 0, nil
}

// RowsAffected reports the server-side affected-row count.
func (r *execResult) RowsAffected() (int64, error) {
	return r.affectedRows, nil
}
