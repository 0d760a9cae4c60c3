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
	"encoding/binary"
	"math"
)

// Wire types of the subset of the protobuf encoding this codec speaks.
const (
	typeVarint  = 0
	typeFixed64 = 1
	typeBytes   = 2
	typeFixed32 = 5
)

// writer builds a message by appending tagged fields. All field numbers used
// by the protocol are below 16, so a tag always fits in one byte.
type writer struct {
	buf []byte
}

func (w *writer) tag(field, wireType int) {
	w.buf = append(w.buf, byte(field<<3|wireType))
}

// varint emits a wire type 0 field.
func (w *writer) varint(field int, v uint64) {
	w.tag(field, typeVarint)
	w.buf = AppendUvarint(w.buf, v)
}

// bytes emits a wire type 2 field: a varint length prefix followed by raw bytes.
func (w *writer) bytes(field int, b []byte) {
	w.tag(field, typeBytes)
	w.buf = AppendUvarint(w.buf, uint64(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *writer) string(field int, s string) {
	w.tag(field, typeBytes)
	w.buf = AppendUvarint(w.buf, uint64(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *writer) fixed64(field int, v uint64) {
	w.tag(field, typeFixed64)
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *writer) fixed32(field int, v uint32) {
	w.tag(field, typeFixed32)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *writer) double(field int, v float64) {
	w.fixed64(field, math.Float64bits(v))
}

func (w *writer) float(field int, v float32) {
	w.fixed32(field, math.Float32bits(v))
}
