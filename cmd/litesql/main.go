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

// Command litesql is a small client for a LiteSQL server: it runs a single
// statement, lists replication ids, or downloads replica databases.
//
// Usage:
//
//	litesql [-config config.yaml] [-dsn litesql://host:port/db] query "SELECT ..."
//	litesql [-config config.yaml] ids
//	litesql [-config config.yaml] download [-override] <directory>
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/litesql/litesql-go/client"
	"github.com/litesql/litesql-go/conf"
	"github.com/litesql/litesql-go/rpc"
	"github.com/litesql/litesql-go/utils/log"
)

var (
	configFile = flag.String("config", "", "path of the YAML config file")
	dsnFlag    = flag.String("dsn", "", "litesql:// DSN, overriding the config file")
	verbose    = flag.Bool("verbose", false, "enable debug logging")
	override   = flag.Bool("override", false, "overwrite existing replica files on download")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: litesql [flags] query <sql> | ids | download <directory>\n")
	flag.PrintDefaults()
	os.Exit(2)
}

// buildConfig merges the config file and the -dsn flag into driver config.
func buildConfig() (cfg *client.Config, err error) {
	if *dsnFlag != "" {
		return client.ParseDSN(*dsnFlag)
	}
	if *configFile == "" {
		return nil, fmt.Errorf("either -config or -dsn is required")
	}

	if conf.GConf, err = conf.LoadConfig(*configFile); err != nil {
		return
	}

	var addr, replicationID string
	if addr, replicationID, err = rpc.ParseURL(conf.GConf.URL); err != nil {
		return
	}

	cfg = client.NewConfig()
	cfg.Host = addr
	cfg.ReplicationID = replicationID
	cfg.Token = conf.GConf.Token
	cfg.EnableTLS = conf.GConf.EnableTLS
	if conf.GConf.Timeout > 0 {
		cfg.Timeout = conf.GConf.Timeout.Std()
	}
	if r := conf.GConf.Replica; r != nil {
		cfg.ReplicaDir = r.Directory
		cfg.NatsURL = r.NatsURL
		if r.Stream != "" {
			cfg.Stream = r.Stream
		}
		cfg.Durable = r.Durable
	}

	return
}

func runQuery(cfg *client.Config, query string) (err error) {
	var db *sql.DB
	if db, err = sql.Open("litesql", cfg.FormatDSN()); err != nil {
		return
	}
	defer db.Close()

	trimmed := strings.ToUpper(strings.TrimSpace(query))
	if !strings.HasPrefix(trimmed, "SELECT") &&
		!strings.HasPrefix(trimmed, "PRAGMA") &&
		!strings.HasPrefix(trimmed, "EXPLAIN") &&
		!strings.HasPrefix(trimmed, "WITH") {
		var result sql.Result
		if result, err = db.Exec(query); err != nil {
			return
		}
		affected, _ := result.RowsAffected()
		fmt.Printf("rows affected: %d\n", affected)
		return
	}

	var rows *sql.Rows
	if rows, err = db.Query(query); err != nil {
		return
	}
	defer rows.Close()

	var columns []string
	if columns, err = rows.Columns(); err != nil {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(columns, "\t"))

	values := make([]interface{}, len(columns))
	targets := make([]interface{}, len(columns))
	for i := range values {
		targets[i] = &values[i]
	}

	for rows.Next() {
		if err = rows.Scan(targets...); err != nil {
			return
		}
		cells := make([]string, len(values))
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			cells[i] = fmt.Sprint(v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err = rows.Err(); err != nil {
		return
	}

	return w.Flush()
}

func newRPCClient(cfg *client.Config) (*rpc.Client, error) {
	return rpc.NewClient(rpc.Options{
		URL:       cfg.ServerURL(),
		Token:     cfg.Token,
		EnableTLS: cfg.EnableTLS,
		Timeout:   cfg.Timeout,
	})
}

func runIDs(cfg *client.Config) (err error) {
	var cli *rpc.Client
	if cli, err = newRPCClient(cfg); err != nil {
		return
	}
	defer cli.Close()

	var ids []string
	if ids, err = cli.ReplicationIDs(context.Background()); err != nil {
		return
	}

	for _, id := range ids {
		fmt.Println(id)
	}

	return
}

func runDownload(cfg *client.Config, directory string) (err error) {
	var cli *rpc.Client
	if cli, err = newRPCClient(cfg); err != nil {
		return
	}
	defer cli.Close()

	return cli.DownloadAllReplicas(context.Background(), directory, *override)
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	args := flag.Args()
	if len(args) < 1 {
		usage()
	}

	cfg, err := buildConfig()
	if err != nil {
		log.WithError(err).Fatal("load configuration failed")
	}

	switch args[0] {
	case "query":
		if len(args) != 2 {
			usage()
		}
		err = runQuery(cfg, args[1])
	case "ids":
		err = runIDs(cfg)
	case "download":
		if len(args) != 2 {
			usage()
		}
		err = runDownload(cfg, args[1])
	default:
		usage()
	}

	if err != nil {
		log.WithError(err).Fatal("command failed")
	}
}
