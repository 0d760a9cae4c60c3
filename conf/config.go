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

// Package conf loads client configuration from a YAML file, with optional
// overrides from the environment and a .env file.
package conf

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/litesql/litesql-go/utils/log"
)

// Environment variable overrides.
const (
	envURL   = "LITESQL_URL"
	envToken = "LITESQL_TOKEN"
)

// Duration wraps time.Duration so YAML values like "10s" parse.
type Duration time.Duration

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) (err error) {
	var s string
	if err = unmarshal(&s); err != nil {
		return
	}

	var parsed time.Duration
	if parsed, err = time.ParseDuration(s); err != nil {
		return errors.WithMessagef(err, "parse duration %q", s)
	}

	*d = Duration(parsed)
	return
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// ReplicaConfig configures embedded replicas.
type ReplicaConfig struct {
	// Directory holds the local database copies.
	Directory string `yaml:"Directory"`
	// NatsURL is the replication stream server.
	NatsURL string `yaml:"NatsURL"`
	// Stream is the JetStream stream name.
	Stream string `yaml:"Stream"`
	// Durable is the durable consumer name.
	Durable string `yaml:"Durable"`
}

// Config holds all the config read from the YAML config file.
type Config struct {
	// URL is the litesql:// server address.
	URL string `yaml:"URL"`
	// Token authenticates against the server, sent as a bearer token.
	Token string `yaml:"Token"`
	// EnableTLS switches the channel to TLS.
	EnableTLS bool `yaml:"EnableTLS"`
	// Timeout bounds each remote call.
	Timeout Duration `yaml:"Timeout"`
	// Replica enables local read routing when set.
	Replica *ReplicaConfig `yaml:"Replica"`
}

// GConf is the global config holder.
var GConf *Config

// LoadConfig loads the config file at path and applies environment
// overrides. A .env file in the working directory is honored when present.
func LoadConfig(path string) (config *Config, err error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Debug("no .env file loaded")
	}

	var content []byte
	if content, err = os.ReadFile(path); err != nil {
		return nil, errors.WithMessagef(err, "read config file %s", path)
	}

	config = new(Config)
	if err = yaml.Unmarshal(content, config); err != nil {
		return nil, errors.WithMessagef(err, "parse config file %s", path)
	}

	if url := os.Getenv(envURL); url != "" {
		config.URL = url
	}
	if token := os.Getenv(envToken); token != "" {
		config.Token = token
	}

	return
}
