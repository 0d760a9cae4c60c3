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
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/litesql/litesql-go/rpc"
)

const (
	paramKeyToken      = "token"
	paramKeyTLS        = "tls"
	paramKeyTimeout    = "timeout"
	paramKeyReplicaDir = "replica_dir"
	paramKeyNatsURL    = "nats_url"
	paramKeyStream     = "stream"
	paramKeyDurable    = "durable"
)

var (
	// DefaultTimeout bounds each remote call unless the DSN overrides it.
	DefaultTimeout = 30 * time.Second
	// DefaultStream is the replication stream name used when the DSN
	// enables embedded replicas without naming one.
	DefaultStream = "ha"
)

// Config is a configuration parsed from a DSN string of the form
// litesql://host:port/replication_id?token=...&replica_dir=...
type Config struct {
	// Host is the server address, host defaulting to localhost and port
	// to 8080 when omitted.
	Host string
	// ReplicationID selects the logical database.
	ReplicationID string

	Token     string
	EnableTLS bool
	Timeout   time.Duration

	// Embedded replica settings. Local read routing turns on when both
	// ReplicaDir and NatsURL are set.
	ReplicaDir string
	NatsURL    string
	Stream     string
	Durable    string
}

// NewConfig creates a new config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout: DefaultTimeout,
		Stream:  DefaultStream,
	}
}

// ServerURL returns the bare litesql:// address this config points at,
// without driver parameters.
func (cfg *Config) ServerURL() string {
	u := &url.URL{
		Scheme: rpc.Scheme,
		Host:   cfg.Host,
		Path:   "/" + cfg.ReplicationID,
	}
	return u.String()
}

// FormatDSN formats the config into a DSN string which can be passed to
// sql.Open.
func (cfg *Config) FormatDSN() string {
	u := &url.URL{
		Scheme: rpc.Scheme,
		Host:   cfg.Host,
		Path:   "/" + cfg.ReplicationID,
	}

	newQuery := u.Query()

	if cfg.Token != "" {
		newQuery.Set(paramKeyToken, cfg.Token)
	}
	if cfg.EnableTLS {
		newQuery.Set(paramKeyTLS, "true")
	}
	if cfg.Timeout != DefaultTimeout {
		newQuery.Set(paramKeyTimeout, cfg.Timeout.String())
	}
	if cfg.ReplicaDir != "" {
		newQuery.Set(paramKeyReplicaDir, cfg.ReplicaDir)
	}
	if cfg.NatsURL != "" {
		newQuery.Set(paramKeyNatsURL, cfg.NatsURL)
	}
	if cfg.Stream != DefaultStream {
		newQuery.Set(paramKeyStream, cfg.Stream)
	}
	if cfg.Durable != "" {
		newQuery.Set(paramKeyDurable, cfg.Durable)
	}

	u.RawQuery = newQuery.Encode()

	return u.String()
}

// ParseDSN parses the DSN string to a Config.
func ParseDSN(dsn string) (cfg *Config, err error) {
	var u *url.URL
	if u, err = url.Parse(dsn); err != nil {
		return nil, errors.WithMessagef(ErrInvalidDSN, "%v", err)
	}
	if u.Scheme != rpc.Scheme {
		return nil, errors.WithMessagef(ErrInvalidDSN, "unknown scheme %q", u.Scheme)
	}

	cfg = NewConfig()
	cfg.Host = u.Host
	cfg.ReplicationID = strings.TrimPrefix(u.Path, "/")

	urlQuery := u.Query()

	cfg.Token = urlQuery.Get(paramKeyToken)
	if urlQuery.Get(paramKeyTLS) == "true" {
		cfg.EnableTLS = true
	}
	if timeout := urlQuery.Get(paramKeyTimeout); timeout != "" {
		if cfg.Timeout, err = time.ParseDuration(timeout); err != nil {
			return nil, errors.WithMessagef(ErrInvalidDSN, "bad timeout: %v", err)
		}
	}
	cfg.ReplicaDir = urlQuery.Get(paramKeyReplicaDir)
	cfg.NatsURL = urlQuery.Get(paramKeyNatsURL)
	if stream := urlQuery.Get(paramKeyStream); stream != "" {
		cfg.Stream = stream
	}
	cfg.Durable = urlQuery.Get(paramKeyDurable)

	return
}
