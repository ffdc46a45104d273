// Package registry tracks every active session and provides broadcast
// fan-out across them.
package registry

import (
	"sync"

	"github.com/wsforge/wsforge/connection"
	"github.com/wsforge/wsforge/message"
)

// Registry is a thread-safe collection of active connections, keyed by
// connection id. A mutex-guarded map is sufficient here: the invariant the
// framework requires is that broadcasts observe a consistent snapshot of
// membership, not that the map itself is lock-free.
type Registry struct {
	mu      sync.RWMutex
	conns   map[string]connection.Connection
	counter uint64
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{conns: make(map[string]connection.Connection)}
}

// NextID mints the next connection id in the "conn_{n}" sequence. IDs are
// monotonic for the lifetime of the Registry and never reused.
func (r *Registry) NextID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.counter
	r.counter++
	return idFromCounter(id)
}

func idFromCounter(n uint64) string {
	// Matches the reference's "conn_{n}" format without reaching for
	// strconv.FormatUint indirection at call sites.
	return "conn_" + uitoa(n)
}

func uitoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// Add inserts conn into the registry, returning the new connection count.
func (r *Registry) Add(conn connection.Connection) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.ID()] = conn
	return len(r.conns)
}

// Remove deletes the connection identified by id, closing its outbound
// channel and returning it if present.
func (r *Registry) Remove(id string) (connection.Connection, bool) {
	r.mu.Lock()
	conn, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
	}
	r.mu.Unlock()

	if ok {
		conn.Close()
	}
	return conn, ok
}

// Get retrieves the connection identified by id.
func (r *Registry) Get(id string) (connection.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[id]
	return conn, ok
}

// Count returns the number of active connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// AllIDs returns a snapshot of every active connection id.
func (r *Registry) AllIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	return ids
}

// AllConnections returns a snapshot of every active connection.
func (r *Registry) AllConnections() []connection.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := make([]connection.Connection, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	return conns
}

// Broadcast enqueues msg on every active connection's outbound channel. The
// registry lock is released before any send is attempted, so a slow or full
// connection cannot stall delivery to the rest.
func (r *Registry) Broadcast(msg message.Message) {
	for _, c := range r.AllConnections() {
		c.Send(msg)
	}
}

// BroadcastExcept is Broadcast but skips the connection identified by
// exceptID, typically the sender.
func (r *Registry) BroadcastExcept(exceptID string, msg message.Message) {
	for _, c := range r.AllConnections() {
		if c.ID() == exceptID {
			continue
		}
		c.Send(msg)
	}
}

// BroadcastTo enqueues msg only on the connections named in ids. Unknown
// ids are silently skipped.
func (r *Registry) BroadcastTo(ids []string, msg message.Message) {
	for _, id := range ids {
		if c, ok := r.Get(id); ok {
			c.Send(msg)
		}
	}
}

// Broadcast, BroadcastExcept, and BroadcastTo together satisfy
// bridge.BroadcastTarget: a message relayed from another instance is
// replayed through whichever of the three the publishing instance used,
// without re-publishing it back to the bridge.
