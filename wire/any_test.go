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
	"testing"
	"time"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAnyRoundTrip(t *testing.T) {
	Convey("scalar round-trips", t, func() {
		cases := []struct {
			in      interface{}
			typeURL string
			out     interface{}
		}{
			{nil, TypeEmpty, nil},
			{"hello", TypeString, "hello"},
			{"", TypeString, ""},
			{true, TypeBool, true},
			{false, TypeBool, false},
			{int(42), TypeInt32, int32(42)},
			{int32(-7), TypeInt32, int32(-7)},
			{int64(1) << 40, TypeInt64, int64(1) << 40},
			{uint32(7), TypeUInt32, uint32(7)},
			{uint64(1) << 40, TypeUInt64, uint64(1) << 40},
			{3.25, TypeDouble, 3.25},
			{float32(1.5), TypeFloat, float32(1.5)},
			{[]byte{0x01, 0x02}, TypeBytes, []byte{0x01, 0x02}},
		}
		for _, c := range cases {
			a, err := ToAny(c.in)
			So(err, ShouldBeNil)
			So(a.TypeURL, ShouldEqual, c.typeURL)
			v, err := FromAny(a)
			So(err, ShouldBeNil)
			So(v, ShouldResemble, c.out)
		}
	})
	Convey("integer narrowing boundaries", t, func() {
		for _, c := range []struct {
			in      int64
			typeURL string
		}{
			{2147483647, TypeInt32},
			{2147483648, TypeInt64},
			{-2147483648, TypeInt32},
			{-2147483649, TypeInt64},
		} {
			a, err := ToAny(c.in)
			So(err, ShouldBeNil)
			So(a.TypeURL, ShouldEqual, c.typeURL)
		}
	})
	Convey("timestamp round-trips at nanosecond granularity", t, func() {
		ts := time.Date(2025, 6, 1, 12, 30, 45, 123456789, time.UTC)
		a, err := ToAny(ts)
		So(err, ShouldBeNil)
		So(a.TypeURL, ShouldEqual, TypeTimestamp)
		v, err := FromAny(a)
		So(err, ShouldBeNil)
		So(v, ShouldResemble, ts)
	})
	Convey("negative integers use the ten-byte varint form", t, func() {
		a, err := ToAny(int32(-1))
		So(err, ShouldBeNil)
		v, err := FromAny(a)
		So(err, ShouldBeNil)
		So(v, ShouldEqual, int32(-1))
	})
}

func TestAnyUnsupported(t *testing.T) {
	Convey("encoding an unsupported kind fails", t, func() {
		_, err := ToAny(struct{ X int }{1})
		So(errors.Cause(err), ShouldEqual, ErrUnsupportedType)
		_, err = ToAny(map[string]string{})
		So(errors.Cause(err), ShouldEqual, ErrUnsupportedType)
	})
	Convey("decoding an unknown marker fails", t, func() {
		_, err := FromAny(Any{TypeURL: typeURLPrefix + "Struct"})
		So(errors.Cause(err), ShouldEqual, ErrUnsupportedType)
	})
	Convey("an absent marker decodes to nil", t, func() {
		v, err := FromAny(Any{})
		So(err, ShouldBeNil)
		So(v, ShouldBeNil)
	})
}

func TestAnyEnvelope(t *testing.T) {
	Convey("envelope bytes round-trip", t, func() {
		in, err := ToAny("abc")
		So(err, ShouldBeNil)
		out, err := decodeAny(encodeAny(in))
		So(err, ShouldBeNil)
		So(out, ShouldResemble, in)
	})
	Convey("truncated envelope fails cleanly", t, func() {
		buf := encodeAny(Any{TypeURL: TypeString, Value: []byte{0x0a, 0x03, 'a', 'b', 'c'}})
		_, err := decodeAny(buf[:len(buf)-2])
		So(errors.Cause(err), ShouldEqual, ErrTruncated)
	})
}
