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
	"context"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/litesql/litesql-go/wire"
)

// testService answers the database service methods with canned payloads so
// the client exchange can be exercised end to end over a real channel.
type testService struct {
	mu            sync.Mutex
	auth          []string
	queryResp     []byte
	chunks        [][]byte
	abortDownload bool
	downloads     int
	ids           []string
}

func (s *testService) authHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.auth...)
}

func (s *testService) downloadCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.downloads
}

func (s *testService) handle(_ interface{}, stream grpc.ServerStream) error {
	s.mu.Lock()
	if md, ok := metadata.FromIncomingContext(stream.Context()); ok {
		s.auth = append(s.auth, md.Get("authorization")...)
	}
	queryResp := s.queryResp
	chunks := s.chunks
	abort := s.abortDownload
	ids := s.ids
	s.mu.Unlock()

	var req []byte
	if err := stream.RecvMsg(&req); err != nil {
		return err
	}

	method, _ := grpc.MethodFromServerStream(stream)
	switch method {
	case methodQuery:
		return stream.SendMsg(queryResp)
	case methodDownload, methodLatestSnapshot:
		s.mu.Lock()
		s.downloads++
		s.mu.Unlock()
		for _, chunk := range chunks {
			if err := stream.SendMsg(bytesField(1, chunk)); err != nil {
				return err
			}
		}
		if abort {
			return status.Error(codes.Internal, "replication stream lost")
		}
		return nil
	case methodReplicationIDs:
		var resp []byte
		for _, id := range ids {
			resp = append(resp, bytesField(1, []byte(id))...)
		}
		return stream.SendMsg(resp)
	}

	return status.Errorf(codes.Unimplemented, "unknown method %s", method)
}

func startTestServer(t *testing.T, svc *testService) (addr string, stop func()) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	server := grpc.NewServer(
		grpc.ForceServerCodec(rawCodec{}),
		grpc.UnknownServiceHandler(svc.handle),
	)
	go server.Serve(lis)

	return lis.Addr().String(), server.Stop
}

func newTestClient(t *testing.T, addr string) *Client {
	c, err := NewClient(Options{
		URL:     "litesql://" + addr + "/app.db",
		Token:   "secret",
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

// bytesField and varintField hand-encode single fields so the fixture does
// not depend on an encoder for shapes the client only ever decodes.
func bytesField(field int, b []byte) []byte {
	out := wire.AppendUvarint([]byte{byte(field<<3 | 2)}, uint64(len(b)))
	return append(out, b...)
}

func varintField(field int, v uint64) []byte {
	return wire.AppendUvarint([]byte{byte(field << 3)}, v)
}

func queryResultPayload() []byte {
	// one column "n", one row holding Int32Value(42), txseq 7
	anyVal := append(bytesField(1, []byte(wire.TypeInt32)), bytesField(2, []byte{0x08, 42})...)
	row := bytesField(1, anyVal)
	resultSet := append(bytesField(1, []byte("n")), bytesField(2, row)...)
	return append(bytesField(1, resultSet), varintField(3, 7)...)
}

func TestQueryExchange(t *testing.T) {
	Convey("one request out, one response back", t, func() {
		svc := &testService{queryResp: queryResultPayload()}
		addr, stop := startTestServer(t, svc)
		defer stop()
		c := newTestClient(t, addr)
		defer c.Close()

		result, err := c.ExecuteQuery(context.Background(), "SELECT n FROM t", nil)
		So(err, ShouldBeNil)
		So(result.Columns, ShouldResemble, []string{"n"})
		So(result.Rows, ShouldHaveLength, 1)
		So(result.Rows[0][0], ShouldEqual, int32(42))

		Convey("the reported txseq is captured", func() {
			So(c.TxSeq(), ShouldEqual, 7)
		})

		Convey("the bearer token rides the call metadata", func() {
			So(svc.authHeaders(), ShouldContain, "Bearer secret")
		})
	})

	Convey("update returns the affected row count", t, func() {
		svc := &testService{queryResp: varintField(2, 3)}
		addr, stop := startTestServer(t, svc)
		defer stop()
		c := newTestClient(t, addr)
		defer c.Close()

		affected, err := c.ExecuteUpdate(context.Background(), "DELETE FROM t", nil)
		So(err, ShouldBeNil)
		So(affected, ShouldEqual, 3)
	})

	Convey("a response-level error surfaces as a query failure", t, func() {
		svc := &testService{queryResp: bytesField(4, []byte("no such table: t"))}
		addr, stop := startTestServer(t, svc)
		defer stop()
		c := newTestClient(t, addr)
		defer c.Close()

		result, err := c.ExecuteQuery(context.Background(), "SELECT * FROM t", nil)
		So(result, ShouldBeNil)
		So(errors.Cause(err), ShouldEqual, ErrQueryFailed)
		So(err.Error(), ShouldContainSubstring, "no such table")
	})

	Convey("replication ids round-trip", t, func() {
		svc := &testService{ids: []string{"a.db", "b.db"}}
		addr, stop := startTestServer(t, svc)
		defer stop()
		c := newTestClient(t, addr)
		defer c.Close()

		ids, err := c.ReplicationIDs(context.Background())
		So(err, ShouldBeNil)
		So(ids, ShouldResemble, []string{"a.db", "b.db"})
	})
}

func TestDownloadReplica(t *testing.T) {
	Convey("chunks concatenate into the replica file", t, func() {
		svc := &testService{chunks: [][]byte{[]byte("hello "), []byte("world")}}
		addr, stop := startTestServer(t, svc)
		defer stop()
		c := newTestClient(t, addr)
		defer c.Close()

		directory := t.TempDir()
		So(c.DownloadReplica(context.Background(), directory, "app.db", false), ShouldBeNil)

		data, err := os.ReadFile(filepath.Join(directory, "app.db"))
		So(err, ShouldBeNil)
		So(string(data), ShouldEqual, "hello world")

		Convey("no temporary files linger", func() {
			entries, err := os.ReadDir(directory)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 1)
		})
	})

	Convey("an existing file short-circuits unless override is set", t, func() {
		svc := &testService{chunks: [][]byte{[]byte("fresh")}}
		addr, stop := startTestServer(t, svc)
		defer stop()
		c := newTestClient(t, addr)
		defer c.Close()

		directory := t.TempDir()
		path := filepath.Join(directory, "app.db")
		So(os.WriteFile(path, []byte("stale"), 0644), ShouldBeNil)

		So(c.DownloadReplica(context.Background(), directory, "app.db", false), ShouldBeNil)
		data, _ := os.ReadFile(path)
		So(string(data), ShouldEqual, "stale")
		So(svc.downloadCalls(), ShouldEqual, 0)

		So(c.DownloadReplica(context.Background(), directory, "app.db", true), ShouldBeNil)
		data, _ = os.ReadFile(path)
		So(string(data), ShouldEqual, "fresh")
		So(svc.downloadCalls(), ShouldEqual, 1)
	})

	Convey("a failed stream leaves nothing behind", t, func() {
		svc := &testService{chunks: [][]byte{[]byte("part")}, abortDownload: true}
		addr, stop := startTestServer(t, svc)
		defer stop()
		c := newTestClient(t, addr)
		defer c.Close()

		directory := t.TempDir()
		err := c.DownloadReplica(context.Background(), directory, "app.db", false)
		So(err, ShouldNotBeNil)

		entries, err := os.ReadDir(directory)
		So(err, ShouldBeNil)
		So(entries, ShouldBeEmpty)

		Convey("so a retry is not skipped as already downloaded", func() {
			svc.mu.Lock()
			svc.abortDownload = false
			svc.chunks = [][]byte{[]byte("complete")}
			svc.mu.Unlock()

			So(c.DownloadReplica(context.Background(), directory, "app.db", false), ShouldBeNil)
			data, err := os.ReadFile(filepath.Join(directory, "app.db"))
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "complete")
		})
	})
}
