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

package wire

// Row is one result row, positionally aligned with the column list of its
// ResultSet.
type Row struct {
	Values []Any
}

// ResultSet is an ordered column list plus ordered rows.
type ResultSet struct {
	Columns []string
	Rows    []Row
}

// QueryResponse is the server's answer to a QueryRequest. A nonzero TxSeq
// reports the transaction sequence number as of this response; zero means
// not reported. A non-empty Error is a server-side failure and any
// accompanying result payload must be discarded by the caller.
type QueryResponse struct {
	ResultSet    ResultSet
	RowsAffected uint64
	TxSeq        uint64
	Error        string
}

// DownloadResponse is one chunk of a streamed database snapshot.
type DownloadResponse struct {
	Data []byte
}

// ReplicationIDsResponse lists the replication ids the server knows.
type ReplicationIDsResponse struct {
	ReplicationIDs []string
}

// Field numbers of the response shapes.
const (
	responseFieldResultSet    = 1
	responseFieldRowsAffected = 2
	responseFieldTxSeq        = 3
	responseFieldError        = 4

	resultSetFieldColumn = 1
	resultSetFieldRow    = 2

	rowFieldValue = 1

	downloadFieldData = 1

	replicationIDsFieldID = 1
)

// UnmarshalBinary decodes a QueryResponse. Parsing stops at the first
// unrecognized field tag; a known field cut short by the end of the buffer is
// an error.
func (resp *QueryResponse) UnmarshalBinary(buf []byte) (err error) {
	r := newReader(buf)
	for r.remaining() {
		field, wireType := r.readTag()
		switch {
		case field == responseFieldResultSet && wireType == typeBytes:
			var b []byte
			if b, err = r.readBytes(); err != nil {
				return
			}
			if err = resp.ResultSet.unmarshal(b); err != nil {
				return
			}
		case field == responseFieldRowsAffected && wireType == typeVarint:
			if resp.RowsAffected, err = r.readVarint(); err != nil {
				return
			}
		case field == responseFieldTxSeq && wireType == typeVarint:
			if resp.TxSeq, err = r.readVarint(); err != nil {
				return
			}
		case field == responseFieldError && wireType == typeBytes:
			var b []byte
			if b, err = r.readBytes(); err != nil {
				return
			}
			resp.Error = string(b)
		default:
			return
		}
	}
	return
}

func (rs *ResultSet) unmarshal(buf []byte) (err error) {
	r := newReader(buf)
	for r.remaining() {
		field, wireType := r.readTag()
		switch {
		case field == resultSetFieldColumn && wireType == typeBytes:
			var b []byte
			if b, err = r.readBytes(); err != nil {
				return
			}
			rs.Columns = append(rs.Columns, string(b))
		case field == resultSetFieldRow && wireType == typeBytes:
			var b []byte
			if b, err = r.readBytes(); err != nil {
				return
			}
			var row Row
			if err = row.unmarshal(b); err != nil {
				return
			}
			rs.Rows = append(rs.Rows, row)
		default:
			return
		}
	}
	return
}

func (row *Row) unmarshal(buf []byte) (err error) {
	r := newReader(buf)
	for r.remaining() {
		field, wireType := r.readTag()
		if field != rowFieldValue || wireType != typeBytes {
			return
		}
		var b []byte
		if b, err = r.readBytes(); err != nil {
			return
		}
		var a Any
		if a, err = decodeAny(b); err != nil {
			return
		}
		row.Values = append(row.Values, a)
	}
	return
}

// UnmarshalBinary decodes a DownloadResponse chunk.
func (resp *DownloadResponse) UnmarshalBinary(buf []byte) (err error) {
	r := newReader(buf)
	for r.remaining() {
		field, wireType := r.readTag()
		if field != downloadFieldData || wireType != typeBytes {
			return
		}
		if resp.Data, err = r.readBytes(); err != nil {
			return
		}
	}
	return
}

// UnmarshalBinary decodes a ReplicationIDsResponse.
func (resp *ReplicationIDsResponse) UnmarshalBinary(buf []byte) (err error) {
	r := newReader(buf)
	for r.remaining() {
		field, wireType := r.readTag()
		if field != replicationIDsFieldID || wireType != typeBytes {
			return
		}
		var b []byte
		if b, err = r.readBytes(); err != nil {
			return
		}
		resp.ReplicationIDs = append(resp.ReplicationIDs, string(b))
	}
	return
}
