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

package conf

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const testConfig = `
URL: litesql://db.example.com:9000/app.db
Token: secret
EnableTLS: true
Timeout: 10s
Replica:
  Directory: /var/lib/replicas
  NatsURL: nats://127.0.0.1:4222
  Stream: events
  Durable: client-1
`

func TestLoadConfig(t *testing.T) {
	Convey("load config", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		So(os.WriteFile(path, []byte(testConfig), 0644), ShouldBeNil)

		Convey("file values load", func() {
			cfg, err := LoadConfig(path)
			So(err, ShouldBeNil)
			So(cfg.URL, ShouldEqual, "litesql://db.example.com:9000/app.db")
			So(cfg.Token, ShouldEqual, "secret")
			So(cfg.EnableTLS, ShouldBeTrue)
			So(cfg.Timeout.String(), ShouldEqual, "10s")
			So(cfg.Replica, ShouldNotBeNil)
			So(cfg.Replica.Stream, ShouldEqual, "events")
		})

		Convey("environment overrides win", func() {
			t.Setenv("LITESQL_URL", "litesql://other:8080/other.db")
			t.Setenv("LITESQL_TOKEN", "override")

			cfg, err := LoadConfig(path)
			So(err, ShouldBeNil)
			So(cfg.URL, ShouldEqual, "litesql://other:8080/other.db")
			So(cfg.Token, ShouldEqual, "override")
		})

		Convey("missing file is an error", func() {
			_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}
