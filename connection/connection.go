// Package connection models a single client session: its identity, the
// metadata captured at upgrade time, and a non-blocking outbound handle
// shared by every clone of the Connection.
package connection

import (
	"time"

	"github.com/wsforge/wsforge/message"
)

// Info is an immutable record captured at upgrade time.
type Info struct {
	Addr        string
	ConnectedAt time.Time
	Protocol    string
	UserAgent   string
}

// inner holds the state shared across every clone of a Connection. The
// write task owns the receiving end of outbound; Connection clones only
// ever hold the sending side.
type inner struct {
	id       string
	info     Info
	outbound chan message.Message
}

// Connection is a cheap, clonable handle to one client session. All clones
// share the same outbound channel and refer to the same session.
type Connection struct {
	shared *inner
}

// outboundBuffer is the capacity of the outbound channel. The channel is
// logically unbounded per the framework's contract (producers never
// block); a generously sized buffer approximates that without an actual
// unbounded queue, favoring producer non-blocking over strict memory
// bounds.
const outboundBuffer = 4096

// New constructs a Connection for a freshly registered session. The
// returned outbound channel's receiving end belongs to the caller (the
// write task).
func New(id string, info Info) (Connection, <-chan message.Message) {
	ch := make(chan message.Message, outboundBuffer)
	c := Connection{shared: &inner{id: id, info: info, outbound: ch}}
	return c, ch
}

// ID returns the session id.
func (c Connection) ID() string { return c.shared.id }

// Info returns the captured ConnectionInfo.
func (c Connection) Info() Info { return c.shared.info }

// Send enqueues msg on the outbound channel without blocking. It returns
// false if the channel is full or already closed (the session is shutting
// down), matching the "enqueue failures are silently droppable" contract
// used by broadcast fan-out.
func (c Connection) Send(msg message.Message) bool {
	defer func() {
		// Sending on a closed channel panics; a session concurrently
		// tearing down its write task is exactly the droppable case.
		recover()
	}()
	select {
	case c.shared.outbound <- msg:
		return true
	default:
		return false
	}
}

// SendText is a convenience wrapper around Send for a Text message.
func (c Connection) SendText(s string) bool {
	return c.Send(message.NewTextString(s))
}

// SendBinary is a convenience wrapper around Send for a Binary message.
func (c Connection) SendBinary(b []byte) bool {
	return c.Send(message.NewBinary(b))
}

// close releases the outbound channel. Called exactly once, by the registry,
// when the session is removed - this is what causes subsequent Send calls
// from any remaining Connection clone to report failure.
func (c Connection) close() {
	defer func() { recover() }()
	close(c.shared.outbound)
}

// Close releases the outbound channel. Registry.Remove calls it when the
// session is removed; a second call does nothing.
func (c Connection) Close() { c.close() }
