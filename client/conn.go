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
	"context"
	"database/sql"
	"database/sql/driver"
	"strings"
	"sync/atomic"

	"github.com/litesql/litesql-go/replica"
	"github.com/litesql/litesql-go/rpc"
	"github.com/litesql/litesql-go/utils/log"
	"github.com/litesql/litesql-go/wire"
)

// Conn is one routing connection. Reads go to the embedded replica when it
// has caught up with the last transaction sequence number the server
// reported to this connection; everything else goes remote. Conn is
// exported so callers can reach Catalog/SetCatalog through sql.Conn.Raw.
type Conn struct {
	client   *rpc.Client
	replicas *replica.Manager
	local    *sql.DB

	inTransaction bool
	closed        int32
}

func newConn(cfg *Config) (c *Conn, err error) {
	var cli *rpc.Client
	if cli, err = rpc.NewClient(rpc.Options{
		URL:       cfg.ServerURL(),
		Token:     cfg.Token,
		EnableTLS: cfg.EnableTLS,
		Timeout:   cfg.Timeout,
	}); err != nil {
		return
	}

	c = &Conn{client: cli}

	if cfg.ReplicaDir != "" && cfg.NatsURL != "" {
		mgr := replica.Default()
		if err := mgr.Load(replica.Options{
			Directory: cfg.ReplicaDir,
			NatsURL:   cfg.NatsURL,
			Stream:    cfg.Stream,
			Durable:   cfg.Durable,
		}); err != nil {
			// remote execution still works without local replicas
			log.WithError(err).Warn("load embedded replicas failed")
		} else {
			c.replicas = mgr
			if c.local, err = mgr.CreateConnection(cli.ReplicationID()); err != nil {
				log.WithError(err).Warn("open embedded replica handle failed")
			}
		}
	}

	return c, nil
}

// isReadQuery reports whether the statement is lexically read-only.
func isReadQuery(query string) bool {
	trimmed := strings.ToUpper(strings.TrimSpace(query))
	return strings.HasPrefix(trimmed, "SELECT") ||
		strings.HasPrefix(trimmed, "PRAGMA") ||
		strings.HasPrefix(trimmed, "EXPLAIN") ||
		strings.HasPrefix(trimmed, "WITH")
}

// useLocal decides whether the statement may be answered by the embedded
// replica. Local routing is off inside an explicit transaction: the replica
// cannot see the transaction's uncommitted remote state.
func (c *Conn) useLocal(query string) bool {
	return !c.inTransaction &&
		c.local != nil &&
		c.replicas != nil &&
		isReadQuery(query) &&
		c.replicas.IsReplicaUpdated(c.client.ReplicationID(), c.client.TxSeq())
}

// Prepare implements the driver.Conn.Prepare method.
func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

// PrepareContext implements the driver.ConnPrepareContext method.
func (c *Conn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if atomic.LoadInt32(&c.closed) != 0 {
		return nil, driver.ErrBadConn
	}

	return newStmt(c, query), nil
}

// QueryContext implements the driver.QueryerContext method.
func (c *Conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (rows driver.Rows, err error) {
	if atomic.LoadInt32(&c.closed) != 0 {
		err = driver.ErrBadConn
		return
	}

	if c.useLocal(query) {
		return c.queryLocal(ctx, query, args)
	}

	var result *rpc.Result
	if result, err = c.client.ExecuteQuery(ctx, query, convertParams(args)); err != nil {
		return
	}

	return newRows(result), nil
}

// ExecContext implements the driver.ExecerContext method. Writes always run
// remotely.
func (c *Conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (result driver.Result, err error) {
	if atomic.LoadInt32(&c.closed) != 0 {
		err = driver.ErrBadConn
		return
	}

	var rowsAffected uint64
	if rowsAffected, err = c.client.ExecuteUpdate(ctx, query, convertParams(args)); err != nil {
		return
	}

	return &execResult{affectedRows: int64(rowsAffected)}, nil
}

// queryLocal answers the statement from the embedded replica handle.
func (c *Conn) queryLocal(ctx context.Context, query string, args []driver.NamedValue) (rows driver.Rows, err error) {
	localArgs := make([]interface{}, len(args))
	for i, arg := range args {
		if arg.Name != "" {
			localArgs[i] = sql.Named(arg.Name, arg.Value)
		} else {
			localArgs[i] = arg.Value
		}
	}

	var res *sql.Rows
	if res, err = c.local.QueryContext(ctx, query, localArgs...); err != nil {
		return
	}
	defer res.Close()

	return newRowsFromSQL(res)
}

// Begin implements the driver.Conn.Begin method.
func (c *Conn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx implements the driver.ConnBeginTx method. The transaction lives
// server-side; this connection only forwards the statements.
func (c *Conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if atomic.LoadInt32(&c.closed) != 0 {
		return nil, driver.ErrBadConn
	}
	if c.inTransaction {
		return nil, sql.ErrTxDone
	}

	if _, err := c.client.ExecuteUpdate(ctx, "BEGIN", nil); err != nil {
		return nil, err
	}
	c.inTransaction = true

	return c, nil
}

// Commit implements the driver.Tx.Commit method.
func (c *Conn) Commit() (err error) {
	if atomic.LoadInt32(&c.closed) != 0 {
		return driver.ErrBadConn
	}
	if !c.inTransaction {
		return sql.ErrTxDone
	}

	_, err = c.client.ExecuteUpdate(context.Background(), "COMMIT", nil)
	c.inTransaction = false
	return
}

// Rollback implements the driver.Tx.Rollback method.
func (c *Conn) Rollback() (err error) {
	if atomic.LoadInt32(&c.closed) != 0 {
		return driver.ErrBadConn
	}
	if !c.inTransaction {
		return sql.ErrTxDone
	}

	_, err = c.client.ExecuteUpdate(context.Background(), "ROLLBACK", nil)
	c.inTransaction = false
	return
}

// Ping implements the driver.Pinger method.
func (c *Conn) Ping(ctx context.Context) (err error) {
	if atomic.LoadInt32(&c.closed) != 0 {
		return driver.ErrBadConn
	}

	_, err = c.client.ExecuteQuery(ctx, "SELECT 1", nil)
	return
}

// Catalog returns the replication id this connection targets.
func (c *Conn) Catalog() string {
	return c.client.ReplicationID()
}

// SetCatalog retargets the connection to another replication id and
// re-opens the embedded replica handle accordingly.
func (c *Conn) SetCatalog(catalog string) (err error) {
	if catalog == "" {
		return ErrEmptyCatalog
	}

	c.client.SetReplicationID(catalog)

	if c.replicas != nil {
		if c.local != nil {
			c.local.Close()
			c.local = nil
		}
		if c.local, err = c.replicas.CreateConnection(catalog); err != nil {
			log.WithError(err).Warn("open embedded replica handle failed")
			err = nil
		}
	}

	return
}

// Close implements the driver.Conn.Close method. The shared replica manager
// stays alive; only this connection's handles close.
func (c *Conn) Close() (err error) {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return
	}

	if c.local != nil {
		c.local.Close()
		c.local = nil
	}

	return c.client.Close()
}

func convertParams(args []driver.NamedValue) (params []wire.NamedValue) {
	for _, arg := range args {
		a, err := wire.ToAny(arg.Value)
		if err != nil {
			// driver.Value kinds are all encodable; anything else is
			// filtered out by database/sql before it reaches here
			log.WithError(err).Error("drop unencodable parameter")
			continue
		}

		if arg.Name != "" {
			params = append(params, wire.Named(arg.Name, a))
		} else {
			params = append(params, wire.Positional(arg.Ordinal, a))
		}
	}

	return
}
