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

package rpc

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseURL(t *testing.T) {
	Convey("server address parsing", t, func() {
		Convey("full address", func() {
			addr, id, err := ParseURL("litesql://db.example.com:9000/orders")
			So(err, ShouldBeNil)
			So(addr, ShouldEqual, "db.example.com:9000")
			So(id, ShouldEqual, "orders")
		})

		Convey("port defaults to 8080", func() {
			addr, id, err := ParseURL("litesql://db.example.com/orders")
			So(err, ShouldBeNil)
			So(addr, ShouldEqual, "db.example.com:8080")
			So(id, ShouldEqual, "orders")
		})

		Convey("host defaults to localhost", func() {
			addr, _, err := ParseURL("litesql:///orders")
			So(err, ShouldBeNil)
			So(addr, ShouldEqual, "localhost:8080")
		})

		Convey("missing path means no replication id", func() {
			addr, id, err := ParseURL("litesql://localhost:8080")
			So(err, ShouldBeNil)
			So(addr, ShouldEqual, "localhost:8080")
			So(id, ShouldEqual, "")
		})
	})
}

func TestRawCodec(t *testing.T) {
	Convey("raw codec passes bytes through", t, func() {
		c := rawCodec{}

		buf, err := c.Marshal([]byte{0x01, 0x02})
		So(err, ShouldBeNil)
		So(buf, ShouldResemble, []byte{0x01, 0x02})

		var out []byte
		So(c.Unmarshal([]byte{0x03}, &out), ShouldBeNil)
		So(out, ShouldResemble, []byte{0x03})
	})
	Convey("raw codec rejects structured messages", t, func() {
		c := rawCodec{}
		_, err := c.Marshal(struct{}{})
		So(err, ShouldNotBeNil)
		So(c.Unmarshal(nil, struct{}{}), ShouldNotBeNil)
	})
}
