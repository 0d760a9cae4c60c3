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

// Package rpc implements the streaming client for the LiteSQL database
// service. Messages are encoded and decoded by the wire package; grpc only
// carries the raw bytes.
package rpc

import (
	"context"
	"crypto/tls"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/litesql/litesql-go/utils/log"
	"github.com/litesql/litesql-go/wire"
)

// Full method names of the database service.
const (
	methodQuery          = "/sql.v1.DatabaseService/Query"
	methodDownload       = "/sql.v1.DatabaseService/Download"
	methodLatestSnapshot = "/sql.v1.DatabaseService/LatestSnapshot"
	methodReplicationIDs = "/sql.v1.DatabaseService/ReplicationIDs"
)

var (
	queryStreamDesc = &grpc.StreamDesc{
		StreamName:    "Query",
		ClientStreams: true,
		ServerStreams: true,
	}
	downloadStreamDesc = &grpc.StreamDesc{
		StreamName:    "Download",
		ServerStreams: true,
	}
)

// DefaultTimeout bounds a single remote call when the options leave it unset.
var DefaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	// URL is a litesql://host:port/replication_id address.
	URL string
	// Token, when set, is sent as a bearer authorization on every call.
	Token string
	// EnableTLS switches the channel to TLS transport credentials.
	EnableTLS bool
	// Timeout bounds each remote call; DefaultTimeout when zero.
	Timeout time.Duration
}

// Result carries the decoded outcome of a statement execution.
type Result struct {
	Columns      []string
	Rows         [][]interface{}
	RowsAffected uint64
}

// Client talks to one LiteSQL server. It tracks the latest transaction
// sequence number the server has reported, which callers use as the
// staleness watermark for local replica reads. Safe for concurrent use.
type Client struct {
	cc      *grpc.ClientConn
	token   string
	timeout time.Duration

	mu            sync.RWMutex
	replicationID string

	txseq uint64
}

// NewClient dials the server named by opts and binds the client to the
// replication id carried in the URL path.
func NewClient(opts Options) (c *Client, err error) {
	var addr, replicationID string
	if addr, replicationID, err = ParseURL(opts.URL); err != nil {
		return
	}

	creds := insecure.NewCredentials()
	if opts.EnableTLS {
		creds = credentials.NewTLS(&tls.Config{})
	}

	var cc *grpc.ClientConn
	if cc, err = grpc.NewClient(addr, grpc.WithTransportCredentials(creds)); err != nil {
		err = errors.WithMessagef(err, "dial %s", addr)
		return
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c = &Client{
		cc:            cc,
		token:         opts.Token,
		timeout:       timeout,
		replicationID: replicationID,
	}

	return
}

// ReplicationID returns the replication id requests are bound to.
func (c *Client) ReplicationID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.replicationID
}

// SetReplicationID rebinds the client to another replication id; subsequent
// requests target that database.
func (c *Client) SetReplicationID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replicationID = id
}

// TxSeq returns the latest transaction sequence number any response has
// reported, or 0 when none has.
func (c *Client) TxSeq() uint64 {
	return atomic.LoadUint64(&c.txseq)
}

// callContext applies the call timeout and the bearer authorization.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// sendQuery performs one exchange on the query stream: exactly one request
// out, exactly one response back.
func (c *Client) sendQuery(ctx context.Context, query string, params []wire.NamedValue, queryType wire.QueryType) (resp *wire.QueryResponse, err error) {
	req := &wire.QueryRequest{
		ReplicationID: c.ReplicationID(),
		SQL:           query,
		Type:          queryType,
		Params:        params,
	}

	var reqBuf []byte
	if reqBuf, err = req.MarshalBinary(); err != nil {
		return
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()

	var stream grpc.ClientStream
	if stream, err = c.cc.NewStream(ctx, queryStreamDesc, methodQuery, grpc.ForceCodec(rawCodec{})); err != nil {
		return
	}

	if err = stream.SendMsg(reqBuf); err != nil {
		return
	}
	if err = stream.CloseSend(); err != nil {
		return
	}

	var respBuf []byte
	if err = stream.RecvMsg(&respBuf); err != nil {
		if err == io.EOF {
			err = ErrNoResponse
		}
		return
	}

	resp = new(wire.QueryResponse)
	if err = resp.UnmarshalBinary(respBuf); err != nil {
		resp = nil
		return
	}

	if resp.TxSeq > 0 {
		atomic.StoreUint64(&c.txseq, resp.TxSeq)
	}
	if resp.Error != "" {
		err = errors.WithMessage(ErrQueryFailed, resp.Error)
		resp = nil
	}

	return
}

func buildResult(resp *wire.QueryResponse) (result *Result, err error) {
	result = &Result{
		Columns:      resp.ResultSet.Columns,
		RowsAffected: resp.RowsAffected,
	}

	for _, row := range resp.ResultSet.Rows {
		values := make([]interface{}, len(row.Values))
		for i, a := range row.Values {
			if values[i], err = wire.FromAny(a); err != nil {
				return nil, err
			}
		}
		result.Rows = append(result.Rows, values)
	}

	return
}

// ExecuteQuery runs a read statement and returns its result set.
func (c *Client) ExecuteQuery(ctx context.Context, query string, params []wire.NamedValue) (result *Result, err error) {
	var resp *wire.QueryResponse
	if resp, err = c.sendQuery(ctx, query, params, wire.QueryTypeQuery); err != nil {
		return
	}
	return buildResult(resp)
}

// ExecuteUpdate runs a write statement and returns the affected row count.
func (c *Client) ExecuteUpdate(ctx context.Context, query string, params []wire.NamedValue) (rowsAffected uint64, err error) {
	var resp *wire.QueryResponse
	if resp, err = c.sendQuery(ctx, query, params, wire.QueryTypeUpdate); err != nil {
		return
	}
	return resp.RowsAffected, nil
}

// Execute runs any statement, letting the server classify it.
func (c *Client) Execute(ctx context.Context, query string, params []wire.NamedValue) (result *Result, err error) {
	var resp *wire.QueryResponse
	if resp, err = c.sendQuery(ctx, query, params, wire.QueryTypeUnspecified); err != nil {
		return
	}
	return buildResult(resp)
}

// DownloadReplica streams the named database into directory, writing chunks
// in arrival order to a file named after the replication id. An existing
// file is left untouched unless override is set.
func (c *Client) DownloadReplica(ctx context.Context, directory, replicationID string, override bool) (err error) {
	return c.download(ctx, methodDownload, directory, replicationID, override)
}

// LatestSnapshot is DownloadReplica against the server's most recent
// snapshot endpoint.
func (c *Client) LatestSnapshot(ctx context.Context, directory, replicationID string, override bool) (err error) {
	return c.download(ctx, methodLatestSnapshot, directory, replicationID, override)
}

func (c *Client) download(ctx context.Context, method, directory, replicationID string, override bool) (err error) {
	path := filepath.Join(directory, replicationID)
	if !override {
		if _, err = os.Stat(path); err == nil {
			log.WithField("replica", replicationID).Debug("replica file exists, skipping download")
			return nil
		}
	}

	if err = os.MkdirAll(directory, 0755); err != nil {
		return errors.WithMessagef(err, "create directory %s", directory)
	}

	req := &wire.DownloadRequest{ReplicationID: replicationID}
	var reqBuf []byte
	if reqBuf, err = req.MarshalBinary(); err != nil {
		return
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()

	var stream grpc.ClientStream
	if stream, err = c.cc.NewStream(ctx, downloadStreamDesc, method, grpc.ForceCodec(rawCodec{})); err != nil {
		return
	}
	if err = stream.SendMsg(reqBuf); err != nil {
		return
	}
	if err = stream.CloseSend(); err != nil {
		return
	}

	// chunks land in a temporary file first so a failed stream never
	// leaves a truncated replica behind for the exists check to keep
	var f *os.File
	if f, err = os.CreateTemp(directory, replicationID+".partial-*"); err != nil {
		return errors.WithMessagef(err, "create replica file %s", path)
	}
	tmpPath := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmpPath)
		}
	}()

	for {
		var chunkBuf []byte
		if err = stream.RecvMsg(&chunkBuf); err != nil {
			if err != io.EOF {
				return
			}
			err = nil
			break
		}

		var chunk wire.DownloadResponse
		if err = chunk.UnmarshalBinary(chunkBuf); err != nil {
			return
		}
		if _, err = f.Write(chunk.Data); err != nil {
			return errors.WithMessagef(err, "write replica file %s", path)
		}
	}

	if err = f.Close(); err != nil {
		return errors.WithMessagef(err, "write replica file %s", path)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		err = errors.WithMessagef(err, "finalize replica file %s", path)
	}
	return
}

// DownloadAllReplicas downloads every database the server knows about.
func (c *Client) DownloadAllReplicas(ctx context.Context, directory string, override bool) (err error) {
	var ids []string
	if ids, err = c.ReplicationIDs(ctx); err != nil {
		return
	}

	for _, id := range ids {
		if err = c.DownloadReplica(ctx, directory, id, override); err != nil {
			return
		}
	}

	return
}

// ReplicationIDs lists the replication ids the server serves.
func (c *Client) ReplicationIDs(ctx context.Context) (ids []string, err error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	var respBuf []byte
	if err = c.cc.Invoke(ctx, methodReplicationIDs, []byte{}, &respBuf, grpc.ForceCodec(rawCodec{})); err != nil {
		return
	}

	var resp wire.ReplicationIDsResponse
	if err = resp.UnmarshalBinary(respBuf); err != nil {
		return
	}

	return resp.ReplicationIDs, nil
}

// Close tears down the underlying channel.
func (c *Client) Close() error {
	return c.cc.Close()
}
