// Package extractor provides the built-in capabilities for producing a
// typed value from an inbound frame plus its ambient context.
package extractor

import (
	"encoding/json"

	"github.com/wsforge/wsforge/appstate"
	"github.com/wsforge/wsforge/connection"
	"github.com/wsforge/wsforge/extension"
	"github.com/wsforge/wsforge/message"
	"github.com/wsforge/wsforge/wserr"
)

// Context bundles everything an extractor may read from: the inbound
// message, the originating connection, the shared app state, and the
// per-invocation extensions bag. Extractors never mutate these; position
// and order among a handler's arguments do not affect what each extractor
// observes.
type Context struct {
	Message    message.Message
	Conn       connection.Connection
	State      *appstate.State
	Extensions *extension.Extensions
}

// Func is the capability to produce a T from Context, or fail with an
// Extractor error.
type Func[T any] func(ctx *Context) (T, error)

// MessageOf extracts the raw inbound message unchanged.
func MessageOf(ctx *Context) (message.Message, error) {
	return ctx.Message, nil
}

// ConnectionOf extracts the originating connection.
func ConnectionOf(ctx *Context) (connection.Connection, error) {
	return ctx.Conn, nil
}

// ConnectionInfoOf extracts the originating connection's metadata.
func ConnectionInfoOf(ctx *Context) (connection.Info, error) {
	return ctx.Conn.Info(), nil
}

// DataOf extracts the raw bytes of the inbound message regardless of frame
// kind.
func DataOf(ctx *Context) ([]byte, error) {
	return ctx.Message.AsBytes(), nil
}

// JSON decodes the Text payload of the inbound message as T. It fails with
// an Extractor error if the message is not Text or if decoding fails.
func JSON[T any](ctx *Context) (T, error) {
	var zero T
	text, ok := ctx.Message.AsText()
	if !ok {
		return zero, wserr.Extractor("JSON extraction requires a Text message")
	}
	var v T
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return zero, wserr.Wrap(wserr.KindExtractor, err, "failed to decode JSON payload")
	}
	return v, nil
}

// StateOf extracts the shared application state value of type T. It fails
// with an Extractor error if no value of that type has been inserted.
func StateOf[T any](ctx *Context) (T, error) {
	var zero T
	v, ok := appstate.Get[T](ctx.State)
	if !ok {
		return zero, wserr.Extractor("no application state of the requested type")
	}
	return v, nil
}

// ExtensionOf extracts the value stored under key in the per-invocation
// Extensions bag as type T. It fails with an Extractor error if the key is
// absent or the stored value is not of type T.
func ExtensionOf[T any](key string) Func[T] {
	return func(ctx *Context) (T, error) {
		var zero T
		v, ok := extension.Get[T](ctx.Extensions, key)
		if !ok {
			return zero, wserr.Extractor("no extension %q of the requested type", key)
		}
		return v, nil
	}
}
