// Package router composes routes, application state, and session
// lifecycle callbacks into the dispatcher that the acceptor's read loop
// drives for every inbound frame.
package router

import (
	"github.com/rs/zerolog"

	"github.com/wsforge/wsforge/appstate"
	"github.com/wsforge/wsforge/connection"
	"github.com/wsforge/wsforge/handler"
	"github.com/wsforge/wsforge/message"
	"github.com/wsforge/wsforge/middleware"
	"github.com/wsforge/wsforge/registry"
)

// route pairs a literal prefix with the handler that owns it. Routes are
// matched in registration order by strings.HasPrefix against the message's
// text payload; the first match wins.
type route struct {
	prefix  string
	handler handler.Handler
}

// Bridge publishes messages to other server instances, addressed the same
// way the registry's own fan-out primitives are. Defined here, not
// imported from the bridge package, so that adopting a cross-instance
// bridge never requires the core router to depend on a specific transport.
// bridge.Bridge satisfies this interface.
type Bridge interface {
	Publish(msg message.Message) error
	PublishExcept(exceptID string, msg message.Message) error
	PublishTo(ids []string, msg message.Message) error
	Available() bool
}

// Router is the central dispatch object: it owns the route table, the
// shared application state, the session registry, and the lifecycle
// callbacks fired on connect and disconnect.
type Router struct {
	routes         []route
	defaultHandler handler.Handler
	layers         []middleware.Middleware
	state          *appstate.State
	registry       *registry.Registry
	onConnect      []func(connection.Connection)
	onDisconnect   []func(string)
	bridge         Bridge
	staticRoot     string
	indexFile      string
	logger         zerolog.Logger
}

// New creates an empty Router with its own session registry and app state.
// The registry is inserted into the state under its own type so handlers
// can extract it with extractor.StateOf[*registry.Registry].
func New(logger zerolog.Logger) *Router {
	r := &Router{
		state:    appstate.New(),
		registry: registry.New(),
		logger:   logger,
	}
	appstate.Insert(r.state, r.registry)
	return r
}

// Route registers h to handle any inbound Text message whose payload has
// prefix. Routes are tried in registration order.
func (r *Router) Route(prefix string, h handler.Handler) *Router {
	r.routes = append(r.routes, route{prefix: prefix, handler: h})
	return r
}

// DefaultHandler sets the handler invoked when no route prefix matches.
func (r *Router) DefaultHandler(h handler.Handler) *Router {
	r.defaultHandler = h
	return r
}

// Use registers a global middleware layer. Layers wrap every dispatched
// message in registration order, with the matched or default handler as
// the innermost link.
func (r *Router) Use(m middleware.Middleware) *Router {
	r.layers = append(r.layers, m)
	return r
}

// WithState inserts a value into the router's shared application state.
func WithState[T any](r *Router, value T) *Router {
	appstate.Insert(r.state, value)
	return r
}

// OnConnect registers a callback fired after a session is added to the
// registry.
func (r *Router) OnConnect(f func(connection.Connection)) *Router {
	r.onConnect = append(r.onConnect, f)
	return r
}

// OnDisconnect registers a callback fired after a session is removed from
// the registry.
func (r *Router) OnDisconnect(f func(string)) *Router {
	r.onDisconnect = append(r.onDisconnect, f)
	return r
}

// ServeStatic configures the router to serve files out of root for
// non-upgrade GET requests, falling back to indexFile for directory paths.
func (r *Router) ServeStatic(root, indexFile string) *Router {
	r.staticRoot = root
	r.indexFile = indexFile
	return r
}

// StaticRoot reports the configured static file root, and whether one was
// configured at all.
func (r *Router) StaticRoot() (string, string, bool) {
	return r.staticRoot, r.indexFile, r.staticRoot != ""
}

// SetBridge attaches a cross-instance message bridge. When set, Broadcast
// additionally publishes to other instances.
func (r *Router) SetBridge(b Bridge) *Router {
	r.bridge = b
	return r
}

// Broadcast fans msg out to every locally registered connection and, if a
// bridge is attached and available, publishes it for other instances too.
func (r *Router) Broadcast(msg message.Message) {
	r.registry.Broadcast(msg)
	r.publish(func() error { return r.bridge.Publish(msg) })
}

// BroadcastExcept is Broadcast but skips exceptID, typically the sender.
// A bridge-relayed copy carries the same exclusion so peer instances skip
// the same connection id if they happen to hold it too.
func (r *Router) BroadcastExcept(exceptID string, msg message.Message) {
	r.registry.BroadcastExcept(exceptID, msg)
	r.publish(func() error { return r.bridge.PublishExcept(exceptID, msg) })
}

// BroadcastTo is Broadcast but targets only the connections named in ids.
func (r *Router) BroadcastTo(ids []string, msg message.Message) {
	r.registry.BroadcastTo(ids, msg)
	r.publish(func() error { return r.bridge.PublishTo(ids, msg) })
}

func (r *Router) publish(do func() error) {
	if r.bridge == nil || !r.bridge.Available() {
		return
	}
	if err := do(); err != nil {
		r.logger.Error().Err(err).Msg("bridge publish failed")
	}
}

// State returns the router's shared application state, for extractors and
// direct access outside the dispatch path.
func (r *Router) State() *appstate.State { return r.state }

// Registry returns the router's session registry.
func (r *Router) Registry() *registry.Registry { return r.registry }

// Connect registers a freshly upgraded connection and fires on_connect
// callbacks after insertion, matching the contract that lifecycle hooks
// observe the registry in its post-mutation state.
func (r *Router) Connect(conn connection.Connection) {
	r.registry.Add(conn)
	for _, cb := range r.onConnect {
		cb(conn)
	}
}

// Disconnect removes a connection and fires on_disconnect callbacks after
// removal.
func (r *Router) Disconnect(id string) {
	if _, ok := r.registry.Remove(id); ok {
		for _, cb := range r.onDisconnect {
			cb(id)
		}
	}
}
