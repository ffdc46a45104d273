// Package bridge extends fan-out beyond a single process: a Bridge
// publishes a locally addressed Broadcast/BroadcastExcept/BroadcastTo call
// to other server instances and replays the same call, with the same
// addressing, on whichever instance receives it.
package bridge

import "github.com/wsforge/wsforge/message"

// Bridge defines the interface for cross-instance fan-out. Implementations
// relay Broadcast/BroadcastExcept/BroadcastTo calls between server
// instances, preserving which of the three the caller made.
type Bridge interface {
	// Publish relays a Broadcast(msg) call to other instances.
	Publish(msg message.Message) error

	// PublishExcept relays a BroadcastExcept(exceptID, msg) call.
	PublishExcept(exceptID string, msg message.Message) error

	// PublishTo relays a BroadcastTo(ids, msg) call.
	PublishTo(ids []string, msg message.Message) error

	// Start begins listening for messages from other instances.
	Start() error

	// Stop shuts down the bridge connection.
	Stop() error

	// Available reports whether the bridge is connected and operational.
	Available() bool
}

// BroadcastTarget is implemented by the session registry to replay
// messages relayed from other instances through the same fan-out
// primitive the publishing instance used.
type BroadcastTarget interface {
	Broadcast(msg message.Message)
	BroadcastExcept(exceptID string, msg message.Message)
	BroadcastTo(ids []string, msg message.Message)
}
