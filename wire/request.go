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

// QueryType classifies a request for the server-side executor.
type QueryType int

// Query types understood by the server.
const (
	QueryTypeUnspecified QueryType = iota
	QueryTypeQuery
	QueryTypeUpdate
)

// NamedValue is one query parameter: either named or positional (1-based
// ordinal), carrying its value in an Any envelope. Name and Ordinal are
// mutually exclusive; the constructors below enforce which one is set.
type NamedValue struct {
	Name    string
	Ordinal int
	Value   Any
}

// Named builds a named parameter.
func Named(name string, value Any) NamedValue {
	return NamedValue{Name: name, Value: value}
}

// Positional builds an ordinal parameter.
func Positional(ordinal int, value Any) NamedValue {
	return NamedValue{Ordinal: ordinal, Value: value}
}

// QueryRequest is the single request shape this client encodes.
type QueryRequest struct {
	ReplicationID string
	SQL           string
	Type          QueryType
	Params        []NamedValue
}

// Field numbers of QueryRequest.
const (
	requestFieldReplicationID = 1
	requestFieldSQL           = 2
	requestFieldType          = 3
	requestFieldParams        = 4
)

// Field numbers of NamedValue.
const (
	namedValueFieldName    = 1
	namedValueFieldOrdinal = 2
	namedValueFieldValue   = 3
)

// MarshalBinary encodes the request as message bytes. Default-valued fields
// are omitted; the server does not distinguish an omitted field from an
// explicit default.
func (req *QueryRequest) MarshalBinary() (buf []byte, err error) {
	var w writer

	if req.ReplicationID != "" {
		w.string(requestFieldReplicationID, req.ReplicationID)
	}
	if req.SQL != "" {
		w.string(requestFieldSQL, req.SQL)
	}
	if req.Type != QueryTypeUnspecified {
		w.varint(requestFieldType, uint64(req.Type))
	}
	for i := range req.Params {
		w.bytes(requestFieldParams, encodeNamedValue(&req.Params[i]))
	}

	return w.buf, nil
}

func encodeNamedValue(nv *NamedValue) []byte {
	var w writer
	if nv.Name != "" {
		w.string(namedValueFieldName, nv.Name)
	}
	if nv.Ordinal != 0 {
		w.varint(namedValueFieldOrdinal, uint64(nv.Ordinal))
	}
	w.bytes(namedValueFieldValue, encodeAny(nv.Value))
	return w.buf
}

// DownloadRequest keys a snapshot download by replication id.
type DownloadRequest struct {
	ReplicationID string
}

const downloadFieldReplicationID = 1

// MarshalBinary encodes the download request as message bytes.
func (req *DownloadRequest) MarshalBinary() (buf []byte, err error) {
	var w writer
	if req.ReplicationID != "" {
		w.string(downloadFieldReplicationID, req.ReplicationID)
	}
	return w.buf, nil
}
