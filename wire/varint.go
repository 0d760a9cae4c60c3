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

// Package wire implements the binary message codec used between the LiteSQL
// client and server. The encoding is a minimal protobuf-compatible format:
// little-endian base-128 varints, one-byte field tags (all field numbers are
// below 16), and length-delimited payloads for strings, bytes and nested
// messages. Only the message shapes this client sends and receives are
// handled; it is not a general protobuf implementation.
//
// Parsing stops at the first unrecognized field tag instead of skipping it.
// The server relies on this exact behavior, so decoders here must not be
// generalized into skip-and-continue.
package wire

// AppendUvarint appends v to buf as a little-endian base-128 varint and
// returns the extended buffer.
func AppendUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// maxVarintLen is the longest encoding of a 64-bit value.
const maxVarintLen = 10

// Uvarint decodes a varint from the head of buf, returning the value and the
// number of bytes consumed. A buffer that ends while the continuation bit is
// still set yields ErrTruncated; an encoding that runs past 64 bits yields
// ErrOverflow instead of wrapping.
func Uvarint(buf []byte) (v uint64, n int, err error) {
	var shift uint
	for n < len(buf) {
		if n == maxVarintLen {
			return 0, 0, ErrOverflow
		}
		b := buf[n]
		n++
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			if n == maxVarintLen && b > 1 {
				return 0, 0, ErrOverflow
			}
			return
		}
		shift += 7
	}
	err = ErrTruncated
	return
}
