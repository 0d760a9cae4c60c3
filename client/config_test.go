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

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseDSN(t *testing.T) {
	Convey("parse dsn", t, func() {
		Convey("full dsn", func() {
			cfg, err := ParseDSN("litesql://db.example.com:9000/app.db" +
				"?token=secret&tls=true&timeout=5s" +
				"&replica_dir=/var/lib/replicas&nats_url=nats://127.0.0.1:4222" +
				"&stream=events&durable=client-1")
			So(err, ShouldBeNil)
			So(cfg.Host, ShouldEqual, "db.example.com:9000")
			So(cfg.ReplicationID, ShouldEqual, "app.db")
			So(cfg.Token, ShouldEqual, "secret")
			So(cfg.EnableTLS, ShouldBeTrue)
			So(cfg.Timeout, ShouldEqual, 5*time.Second)
			So(cfg.ReplicaDir, ShouldEqual, "/var/lib/replicas")
			So(cfg.NatsURL, ShouldEqual, "nats://127.0.0.1:4222")
			So(cfg.Stream, ShouldEqual, "events")
			So(cfg.Durable, ShouldEqual, "client-1")
		})

		Convey("defaults apply", func() {
			cfg, err := ParseDSN("litesql://localhost:8080/app.db")
			So(err, ShouldBeNil)
			So(cfg.Timeout, ShouldEqual, DefaultTimeout)
			So(cfg.Stream, ShouldEqual, DefaultStream)
			So(cfg.EnableTLS, ShouldBeFalse)
		})

		Convey("unknown scheme is rejected", func() {
			_, err := ParseDSN("mysql://localhost:3306/app")
			So(errors.Cause(err), ShouldEqual, ErrInvalidDSN)
		})

		Convey("bad timeout is rejected", func() {
			_, err := ParseDSN("litesql://localhost:8080/app.db?timeout=soon")
			So(errors.Cause(err), ShouldEqual, ErrInvalidDSN)
		})
	})
}

func TestFormatDSN(t *testing.T) {
	Convey("format dsn round-trips", t, func() {
		cfg := NewConfig()
		cfg.Host = "db.example.com:9000"
		cfg.ReplicationID = "app.db"
		cfg.Token = "secret"
		cfg.Timeout = 5 * time.Second
		cfg.ReplicaDir = "/var/lib/replicas"
		cfg.NatsURL = "nats://127.0.0.1:4222"
		cfg.Durable = "client-1"

		parsed, err := ParseDSN(cfg.FormatDSN())
		So(err, ShouldBeNil)
		So(parsed, ShouldResemble, cfg)
	})
	Convey("server url strips driver parameters", t, func() {
		cfg := NewConfig()
		cfg.Host = "localhost:8080"
		cfg.ReplicationID = "app.db"
		cfg.Token = "secret"
		So(cfg.ServerURL(), ShouldEqual, "litesql://localhost:8080/app.db")
	})
}
