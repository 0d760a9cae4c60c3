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

// Package replica manages local SQLite copies of remote databases and keeps
// them current by consuming an ordered replication stream over NATS
// JetStream. A replica is considered safe for local reads only when its
// recorded transaction sequence number has caught up with the sequence the
// caller requires; everything else falls back to remote execution.
//
// Background failures here are soft by design: a replica that fails to
// load, subscribe or apply is left in its last good state and simply looks
// stale to the freshness check. The manager itself never aborts because of
// one replica.
package replica

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	// Register go-sqlite3 engine.
	_ "github.com/mattn/go-sqlite3"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"github.com/litesql/litesql-go/utils/log"
)

const (
	// txSeqQuery reads the persisted replication high-water mark. The
	// ha_stats table is owned by the replication writer; it may not exist
	// yet on a freshly downloaded replica.
	txSeqQuery = "SELECT received_seq FROM ha_stats ORDER BY updated_at DESC LIMIT 1"

	fetchBatchSize  = 10
	fetchMaxWait    = 5 * time.Second
	applyRetryDelay = time.Second
	refreshInterval = 5 * time.Second
)

// Options configures a manager load.
type Options struct {
	// Directory is scanned for SQLite database files to load as replicas.
	Directory string
	// NatsURL is the replication stream server address.
	NatsURL string
	// Stream is the JetStream stream name; per-replica subjects are derived
	// from it.
	Stream string
	// Durable is the durable consumer name, so stream positions survive
	// restarts.
	Durable string
}

// Replica is one local database copy and its last-known transaction
// sequence number.
type Replica struct {
	name  string
	dsn   string
	db    *sql.DB
	txseq uint64
}

// Name returns the replica's file name, which doubles as its replication id.
func (r *Replica) Name() string {
	return r.name
}

// TxSeq returns the last-known transaction sequence number.
func (r *Replica) TxSeq() uint64 {
	return atomic.LoadUint64(&r.txseq)
}

func (r *Replica) setTxSeq(seq uint64) {
	atomic.StoreUint64(&r.txseq, seq)
}

// updateMessage is the replication stream payload. Unknown fields are
// ignored; both known fields are optional.
type updateMessage struct {
	SQL   string  `json:"sql"`
	TxSeq *uint64 `json:"txseq"`
}

// Manager owns the replica registry and the background tasks that keep it
// fresh. The registry is mutated only under mu during load and close;
// steady-state lookups take the read lock.
type Manager struct {
	mu       sync.RWMutex
	replicas map[string]*Replica
	subs     map[string]*nats.Subscription

	nc *nats.Conn
	js nats.JetStreamContext

	closeCh   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	refreshOn bool
}

// NewManager creates an empty manager. Most callers want Default instead;
// tests use this to get a fresh instance.
func NewManager() *Manager {
	return &Manager{
		replicas: make(map[string]*Replica),
		subs:     make(map[string]*nats.Subscription),
		closeCh:  make(chan struct{}),
	}
}

var (
	defaultMu      sync.Mutex
	defaultManager *Manager
)

// Default returns the process-wide manager, creating it on first call. It
// persists until CloseDefault.
func Default() *Manager {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultManager == nil {
		defaultManager = NewManager()
	}

	return defaultManager
}

// CloseDefault closes the process-wide manager, if any, and resets it so a
// later Default starts fresh.
func CloseDefault() (err error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultManager != nil {
		err = defaultManager.Close()
		defaultManager = nil
	}

	return
}

// Load scans the directory for SQLite database files, opens a handle per
// replica, subscribes each one to the replication stream and starts the
// background refresh task. A replica that fails to load or subscribe is
// logged and skipped; Load only fails on an unusable directory or an
// unreachable stream server.
func (m *Manager) Load(opts Options) (err error) {
	select {
	case <-m.closeCh:
		return ErrManagerClosed
	default:
	}

	var fi os.FileInfo
	if fi, err = os.Stat(opts.Directory); err != nil || !fi.IsDir() {
		return errors.WithMessagef(ErrInvalidDirectory, "%s", opts.Directory)
	}

	if opts.NatsURL != "" && m.nc == nil {
		if m.nc, err = nats.Connect(opts.NatsURL); err != nil {
			return errors.WithMessage(err, "connect replication stream")
		}
		if m.js, err = m.nc.JetStream(); err != nil {
			return errors.WithMessage(err, "open jetstream context")
		}
	}

	var entries []os.DirEntry
	if entries, err = os.ReadDir(opts.Directory); err != nil {
		return errors.WithMessage(err, "scan replica directory")
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		path := filepath.Join(opts.Directory, name)

		m.mu.RLock()
		_, loaded := m.replicas[name]
		m.mu.RUnlock()
		if loaded || !IsSQLiteFile(path) {
			continue
		}

		if err := m.loadFile(name, path); err != nil {
			log.WithField("replica", name).WithError(err).Error("load replica failed")
			continue
		}

		m.subscribe(name, opts.Stream, opts.Durable)
	}

	m.startRefresh()

	return nil
}

// loadFile opens a local handle, applies the durability pragmas and seeds
// the sequence number from the bookkeeping table.
func (m *Manager) loadFile(name, path string) (err error) {
	var db *sql.DB
	if db, err = sql.Open("sqlite3", path); err != nil {
		return errors.WithMessage(err, "open local handle")
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err = db.Exec(pragma); err != nil {
			db.Close()
			return errors.WithMessagef(err, "apply %s", pragma)
		}
	}

	r := &Replica{name: name, dsn: path, db: db}

	// absence of the bookkeeping table leaves the seed at 0
	var seq uint64
	if err := db.QueryRow(txSeqQuery).Scan(&seq); err == nil {
		r.setTxSeq(seq)
	}

	m.mu.Lock()
	m.replicas[name] = r
	m.mu.Unlock()

	log.WithFields(log.Fields{"replica": name, "txseq": r.TxSeq()}).Info("loaded replica")

	return nil
}

// subscribe creates the durable pull subscription for one replica and
// starts its consumption loop. A failure is logged and leaves the replica
// loaded but unsubscribed.
func (m *Manager) subscribe(name, stream, durable string) {
	if m.js == nil {
		return
	}

	// dots are not valid inside a subject segment
	subject := stream + "." + strings.ReplaceAll(name, ".", "_")

	sub, err := m.js.PullSubscribe(subject, durable, nats.BindStream(stream))
	if err != nil {
		log.WithFields(log.Fields{"replica": name, "subject": subject}).
			WithError(err).Error("subscribe replication failed")
		return
	}

	m.mu.Lock()
	m.subs[name] = sub
	m.mu.Unlock()

	m.wg.Add(1)
	go m.consume(name, sub)
}

// consume pulls bounded batches from the subscription and applies them in
// order. A timed-out pull is not an error; any other failure backs off
// briefly and retries. The loop only terminates on manager shutdown.
func (m *Manager) consume(name string, sub *nats.Subscription) {
	defer m.wg.Done()

	for {
		select {
		case <-m.closeCh:
			return
		default:
		}

		msgs, err := sub.Fetch(fetchBatchSize, nats.MaxWait(fetchMaxWait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				continue
			}
			log.WithField("replica", name).WithError(err).Error("fetch replication messages failed")
			select {
			case <-m.closeCh:
				return
			case <-time.After(applyRetryDelay):
			}
			continue
		}

		for _, msg := range msgs {
			if err = m.apply(name, msg.Data); err != nil {
				// unacked messages are redelivered on the next pull
				log.WithField("replica", name).WithError(err).Error("apply replication message failed")
				select {
				case <-m.closeCh:
					return
				case <-time.After(applyRetryDelay):
				}
				break
			}
			if err = msg.Ack(); err != nil {
				log.WithField("replica", name).WithError(err).Error("ack replication message failed")
			}
		}
	}
}

// apply executes the statement carried by one replication message against
// the local handle and records the sequence number it reports. The stream
// is ordered per replica, so no monotonicity re-check happens here.
func (m *Manager) apply(name string, data []byte) (err error) {
	m.mu.RLock()
	r := m.replicas[name]
	m.mu.RUnlock()
	if r == nil {
		return
	}

	var msg updateMessage
	if err = json.Unmarshal(data, &msg); err != nil {
		return errors.WithMessage(err, "parse replication message")
	}

	if msg.SQL != "" {
		if _, err = r.db.Exec(msg.SQL); err != nil {
			return errors.WithMessage(err, "execute replication statement")
		}
	}

	if msg.TxSeq != nil {
		r.setTxSeq(*msg.TxSeq)
	}

	return
}

// startRefresh launches the shared periodic task that re-reads each
// replica's persisted high-water mark. Idempotent.
func (m *Manager) startRefresh() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.refreshOn {
		return
	}
	m.refreshOn = true

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-m.closeCh:
				return
			case <-ticker.C:
			}

			m.refreshTxSeq()
		}
	}()
}

// refreshTxSeq reloads every replica's sequence number from its
// bookkeeping table. A read failure leaves the previous value.
func (m *Manager) refreshTxSeq() {
	m.mu.RLock()
	replicas := make([]*Replica, 0, len(m.replicas))
	for _, r := range m.replicas {
		replicas = append(replicas, r)
	}
	m.mu.RUnlock()

	for _, r := range replicas {
		var seq uint64
		if err := r.db.QueryRow(txSeqQuery).Scan(&seq); err != nil {
			continue
		}
		r.setTxSeq(seq)
	}
}

// GetReplica returns the replica registered under name. As a convenience
// for single-database deployments, an empty name returns the only loaded
// replica when exactly one is loaded.
func (m *Manager) GetReplica(name string) (r *Replica, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if name == "" && len(m.replicas) == 1 {
		for _, r = range m.replicas {
			return r, true
		}
	}

	r, ok = m.replicas[name]
	return
}

// IsReplicaUpdated reports whether the named replica has caught up with
// txseq. False always means "cannot safely read locally", including when
// no such replica is loaded.
func (m *Manager) IsReplicaUpdated(name string, txseq uint64) bool {
	r, ok := m.GetReplica(name)
	if !ok {
		return false
	}
	return r.TxSeq() >= txseq
}

// CreateConnection opens a new read-only handle against the named
// replica's database file, or nil when no such replica is loaded.
func (m *Manager) CreateConnection(name string) (db *sql.DB, err error) {
	r, ok := m.GetReplica(name)
	if !ok {
		return nil, nil
	}

	if db, err = sql.Open("sqlite3", "file:"+r.dsn+"?mode=ro"); err != nil {
		err = errors.WithMessage(err, "open read-only replica handle")
	}
	return
}

// Close stops the background tasks, waits for them to observe cancellation,
// then tears down subscriptions, local handles and the stream connection.
// Idempotent.
func (m *Manager) Close() (err error) {
	m.closeOnce.Do(func() {
		close(m.closeCh)

		// tasks must be gone before handles close under them
		m.wg.Wait()

		m.mu.Lock()
		defer m.mu.Unlock()

		for name, sub := range m.subs {
			if err := sub.Unsubscribe(); err != nil {
				log.WithField("replica", name).WithError(err).Warn("unsubscribe failed")
			}
		}
		m.subs = make(map[string]*nats.Subscription)

		for name, r := range m.replicas {
			if err := r.db.Close(); err != nil {
				log.WithField("replica", name).WithError(err).Warn("close replica handle failed")
			}
		}
		m.replicas = make(map[string]*Replica)

		if m.nc != nil {
			m.nc.Close()
			m.nc = nil
			m.js = nil
		}
	})

	return
}
