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
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Scheme is the URL scheme of LiteSQL server addresses.
const Scheme = "litesql"

const (
	defaultHost = "localhost"
	defaultPort = "8080"
)

// ParseURL splits a litesql://host:port/replication_id address into the
// dial target and the replication id. Host and port default to
// localhost:8080 when omitted.
func ParseURL(rawURL string) (addr, replicationID string, err error) {
	// rewrite to an HTTP-compatible scheme so net/url accepts the address
	rewritten := strings.Replace(rawURL, Scheme+"://", "http://", 1)

	var u *url.URL
	if u, err = url.Parse(rewritten); err != nil {
		err = errors.WithMessagef(err, "parse server url %s", rawURL)
		return
	}

	host := u.Hostname()
	if host == "" {
		host = defaultHost
	}
	port := u.Port()
	if port == "" {
		port = defaultPort
	}

	addr = host + ":" + port
	replicationID = strings.TrimPrefix(u.Path, "/")

	return
}
