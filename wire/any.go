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

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// typeURLPrefix is the namespace of the well-known wrapper types carried in
// the Any envelope.
const typeURLPrefix = "type.googleapis.com/google.protobuf."

// Type markers of the closed set of value kinds an Any may carry.
const (
	TypeEmpty     = typeURLPrefix + "Empty"
	TypeString    = typeURLPrefix + "StringValue"
	TypeBool      = typeURLPrefix + "BoolValue"
	TypeInt32     = typeURLPrefix + "Int32Value"
	TypeInt64     = typeURLPrefix + "Int64Value"
	TypeUInt32    = typeURLPrefix + "UInt32Value"
	TypeUInt64    = typeURLPrefix + "UInt64Value"
	TypeDouble    = typeURLPrefix + "DoubleValue"
	TypeFloat     = typeURLPrefix + "FloatValue"
	TypeBytes     = typeURLPrefix + "BytesValue"
	TypeTimestamp = typeURLPrefix + "Timestamp"
)

// Any is the type-tagged value envelope used for query parameters and result
// cells. TypeURL names one of the eleven supported kinds; Value holds the
// wire-encoded wrapper message for that kind.
//
// On the wire an Any is itself a message: 1: type_url (length-delimited),
// 2: value (length-delimited).
type Any struct {
	TypeURL string
	Value   []byte
}

// anyField* are the field numbers of the Any envelope itself.
const (
	anyFieldTypeURL = 1
	anyFieldValue   = 2
)

// Each wrapper message carries its payload in field 1. Timestamp additionally
// carries nanos in field 2.
const (
	wrapperFieldValue     = 1
	timestampFieldSeconds = 1
	timestampFieldNanos   = 2
)

// ToAny packs a Go scalar into an Any envelope. Signed integers narrow to
// Int32 when the value is representable in 32 bits, unsigned integers narrow
// to UInt32 the same way. A nil value packs as the Empty marker. Value kinds
// outside the closed set fail with ErrUnsupportedType; this is a programmer
// error, not a protocol condition.
func ToAny(value interface{}) (a Any, err error) {
	var w writer

	switch v := value.(type) {
	case nil:
		a.TypeURL = TypeEmpty
		return
	case string:
		a.TypeURL = TypeString
		w.string(wrapperFieldValue, v)
	case bool:
		// checked via the type switch, so integer-like source
		// representations of booleans cannot be misclassified
		a.TypeURL = TypeBool
		if v {
			w.varint(wrapperFieldValue, 1)
		}
	case int:
		return toAnyInt64(int64(v))
	case int8:
		return toAnyInt64(int64(v))
	case int16:
		return toAnyInt64(int64(v))
	case int32:
		return toAnyInt64(int64(v))
	case int64:
		return toAnyInt64(v)
	case uint:
		return toAnyUint64(uint64(v))
	case uint8:
		return toAnyUint64(uint64(v))
	case uint16:
		return toAnyUint64(uint64(v))
	case uint32:
		return toAnyUint64(uint64(v))
	case uint64:
		return toAnyUint64(v)
	case float64:
		a.TypeURL = TypeDouble
		if v != 0 {
			w.double(wrapperFieldValue, v)
		}
	case float32:
		a.TypeURL = TypeFloat
		if v != 0 {
			w.float(wrapperFieldValue, v)
		}
	case time.Time:
		a.TypeURL = TypeTimestamp
		if secs := v.Unix(); secs != 0 {
			w.varint(timestampFieldSeconds, uint64(secs))
		}
		if nanos := v.Nanosecond(); nanos != 0 {
			w.varint(timestampFieldNanos, uint64(nanos))
		}
	case []byte:
		a.TypeURL = TypeBytes
		if len(v) > 0 {
			w.bytes(wrapperFieldValue, v)
		}
	default:
		err = errors.WithMessagef(ErrUnsupportedType, "cannot encode %T", value)
		return
	}

	a.Value = w.buf
	return
}

func toAnyInt64(v int64) (a Any, err error) {
	var w writer
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		a.TypeURL = TypeInt32
	} else {
		a.TypeURL = TypeInt64
	}
	if v != 0 {
		w.varint(wrapperFieldValue, uint64(v))
	}
	a.Value = w.buf
	return
}

func toAnyUint64(v uint64) (a Any, err error) {
	var w writer
	if v <= math.MaxUint32 {
		a.TypeURL = TypeUInt32
	} else {
		a.TypeURL = TypeUInt64
	}
	if v != 0 {
		w.varint(wrapperFieldValue, v)
	}
	a.Value = w.buf
	return
}

// FromAny unpacks an Any envelope into a Go scalar. An empty marker or the
// Empty type yields nil. A marker outside the known set fails with
// ErrUnsupportedType, which is distinct from a malformed-payload parse
// failure.
func FromAny(a Any) (value interface{}, err error) {
	switch a.TypeURL {
	case "", TypeEmpty:
		return nil, nil
	case TypeString:
		var b []byte
		if b, err = unwrapBytes(a.Value); err != nil {
			return
		}
		return string(b), nil
	case TypeBool:
		var v uint64
		if v, err = unwrapVarint(a.Value); err != nil {
			return
		}
		return v != 0, nil
	case TypeInt32:
		var v uint64
		if v, err = unwrapVarint(a.Value); err != nil {
			return
		}
		return int32(v), nil
	case TypeInt64:
		var v uint64
		if v, err = unwrapVarint(a.Value); err != nil {
			return
		}
		return int64(v), nil
	case TypeUInt32:
		var v uint64
		if v, err = unwrapVarint(a.Value); err != nil {
			return
		}
		return uint32(v), nil
	case TypeUInt64:
		return unwrapVarint(a.Value)
	case TypeDouble:
		r := newReader(a.Value)
		if !r.remaining() {
			return float64(0), nil
		}
		if field, wireType := r.readTag(); field != wrapperFieldValue || wireType != typeFixed64 {
			return float64(0), nil
		}
		var bits uint64
		if bits, err = r.readFixed64(); err != nil {
			return
		}
		return math.Float64frombits(bits), nil
	case TypeFloat:
		r := newReader(a.Value)
		if !r.remaining() {
			return float32(0), nil
		}
		if field, wireType := r.readTag(); field != wrapperFieldValue || wireType != typeFixed32 {
			return float32(0), nil
		}
		var bits uint32
		if bits, err = r.readFixed32(); err != nil {
			return
		}
		return math.Float32frombits(bits), nil
	case TypeBytes:
		return unwrapBytes(a.Value)
	case TypeTimestamp:
		return unwrapTimestamp(a.Value)
	default:
		err = errors.WithMessagef(ErrUnsupportedType, "cannot decode %s", a.TypeURL)
		return
	}
}

// unwrapVarint reads the single varint payload of a wrapper message. An
// omitted field decodes as zero.
func unwrapVarint(buf []byte) (v uint64, err error) {
	r := newReader(buf)
	if !r.remaining() {
		return
	}
	if field, wireType := r.readTag(); field != wrapperFieldValue || wireType != typeVarint {
		return
	}
	return r.readVarint()
}

// unwrapBytes reads the single length-delimited payload of a wrapper message.
func unwrapBytes(buf []byte) (b []byte, err error) {
	r := newReader(buf)
	b = []byte{}
	if !r.remaining() {
		return
	}
	if field, wireType := r.readTag(); field != wrapperFieldValue || wireType != typeBytes {
		return
	}
	return r.readBytes()
}

func unwrapTimestamp(buf []byte) (t time.Time, err error) {
	var secs, nanos uint64
	r := newReader(buf)
	for r.remaining() {
		field, wireType := r.readTag()
		switch {
		case field == timestampFieldSeconds && wireType == typeVarint:
			if secs, err = r.readVarint(); err != nil {
				return
			}
		case field == timestampFieldNanos && wireType == typeVarint:
			if nanos, err = r.readVarint(); err != nil {
				return
			}
		default:
			return time.Unix(int64(secs), int64(nanos)).UTC(), nil
		}
	}
	return time.Unix(int64(secs), int64(nanos)).UTC(), nil
}

// encodeAny emits the Any envelope itself as message bytes.
func encodeAny(a Any) []byte {
	var w writer
	if a.TypeURL != "" {
		w.string(anyFieldTypeURL, a.TypeURL)
	}
	if len(a.Value) > 0 {
		w.bytes(anyFieldValue, a.Value)
	}
	return w.buf
}

// decodeAny parses an Any envelope from message bytes.
func decodeAny(buf []byte) (a Any, err error) {
	r := newReader(buf)
	for r.remaining() {
		field, wireType := r.readTag()
		switch {
		case field == anyFieldTypeURL && wireType == typeBytes:
			var b []byte
			if b, err = r.readBytes(); err != nil {
				return
			}
			a.TypeURL = string(b)
		case field == anyFieldValue && wireType == typeBytes:
			if a.Value, err = r.readBytes(); err != nil {
				return
			}
		default:
			return
		}
	}
	return
}
