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

	"github.com/pkg/errors"
)

// reader walks tagged fields in a message buffer.
type reader struct {
	buf []byte
	off int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) remaining() bool {
	return r.off < len(r.buf)
}

// readTag decodes the next field tag without consuming it on failure. A tag
// never spans bytes since all field numbers are below 16.
func (r *reader) readTag() (field, wireType int) {
	b := r.buf[r.off]
	r.off++
	return int(b >> 3), int(b & 0x07)
}

func (r *reader) readVarint() (v uint64, err error) {
	var n int
	if v, n, err = Uvarint(r.buf[r.off:]); err != nil {
		return
	}
	r.off += n
	return
}

// readBytes decodes a length prefix and returns the delimited payload as a
// subslice of the underlying buffer.
func (r *reader) readBytes() (b []byte, err error) {
	var length uint64
	if length, err = r.readVarint(); err != nil {
		return
	}
	if uint64(len(r.buf)-r.off) < length {
		err = errors.WithMessage(ErrTruncated, "length-delimited field overruns buffer")
		return
	}
	b = r.buf[r.off : r.off+int(length)]
	r.off += int(length)
	return
}

func (r *reader) readFixed64() (v uint64, err error) {
	if len(r.buf)-r.off < 8 {
		err = ErrTruncated
		return
	}
	v = binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return
}

func (r *reader) readFixed32() (v uint32, err error) {
	if len(r.buf)-r.off < 4 {
		err = ErrTruncated
		return
	}
	v = binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return
}
