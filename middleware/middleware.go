// Package middleware lets a Handler be wrapped by layers that observe or
// short-circuit dispatch, an onion-style chain of Middleware/Next pairs
// around a terminal Handler.
package middleware

import (
	"github.com/wsforge/wsforge/extractor"
	"github.com/wsforge/wsforge/handler"
	"github.com/wsforge/wsforge/message"
)

// Next invokes the remainder of the chain (the next middleware, or the
// terminal handler once all layers have run).
type Next func(ctx *extractor.Context) (*message.Message, error)

// Middleware wraps a Handler invocation, with the option to inspect or
// replace the request/response or short-circuit by not calling next.
type Middleware interface {
	Handle(ctx *extractor.Context, next Next) (*message.Message, error)
}

// Chain composes an ordered list of middleware layers around a terminal
// handler. Layers run in registration order on the way in; the terminal
// handler is invoked only if every layer calls its next.
type Chain struct {
	layers  []Middleware
	handler handler.Handler
}

// NewChain creates an empty Chain terminating in h.
func NewChain(h handler.Handler) *Chain {
	return &Chain{handler: h}
}

// Layer appends a middleware to the chain, outermost call first.
func (c *Chain) Layer(m Middleware) *Chain {
	c.layers = append(c.layers, m)
	return c
}

// Call runs the chain: each layer's next is bound to the following layer,
// with the last layer's next bound to the terminal handler.
func (c *Chain) Call(ctx *extractor.Context) (*message.Message, error) {
	return c.nextFrom(0)(ctx)
}

func (c *Chain) nextFrom(i int) Next {
	if i >= len(c.layers) {
		return c.handler.Call
	}
	layer := c.layers[i]
	rest := c.nextFrom(i + 1)
	return func(ctx *extractor.Context) (*message.Message, error) {
		return layer.Handle(ctx, rest)
	}
}

// fnMiddleware adapts a plain function to the Middleware interface.
type fnMiddleware struct {
	fn func(ctx *extractor.Context, next Next) (*message.Message, error)
}

func (f fnMiddleware) Handle(ctx *extractor.Context, next Next) (*message.Message, error) {
	return f.fn(ctx, next)
}

// FromFunc adapts a plain function into a Middleware.
func FromFunc(fn func(ctx *extractor.Context, next Next) (*message.Message, error)) Middleware {
	return fnMiddleware{fn: fn}
}
