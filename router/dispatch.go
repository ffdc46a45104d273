package router

import (
	"strings"

	"github.com/wsforge/wsforge/connection"
	"github.com/wsforge/wsforge/extension"
	"github.com/wsforge/wsforge/extractor"
	"github.com/wsforge/wsforge/handler"
	"github.com/wsforge/wsforge/message"
	"github.com/wsforge/wsforge/middleware"
	"github.com/wsforge/wsforge/wserr"
)

// Dispatch routes an inbound message through the matching handler and
// enqueues its response, if any, on the originating connection. A handler
// or extractor failure is converted into a single "Error: ..." Text frame
// on the same connection rather than only being logged - the connection
// stays open for the next frame.
func (r *Router) Dispatch(conn connection.Connection, msg message.Message) {
	h := r.selectHandler(msg)
	if h == nil {
		r.logger.Warn().Str("conn_id", conn.ID()).Msg("no handler found for message")
		return
	}

	ctx := &extractor.Context{
		Message:    msg,
		Conn:       conn,
		State:      r.state,
		Extensions: extension.New(),
	}

	chain := middleware.NewChain(h)
	for _, layer := range r.layers {
		chain.Layer(layer)
	}

	resp, err := chain.Call(ctx)
	if err != nil {
		r.logger.Error().Str("conn_id", conn.ID()).Err(err).Msg("handler error")
		conn.Send(message.NewTextString("Error: " + errorText(err)))
		return
	}
	if resp != nil {
		conn.Send(*resp)
	}
}

// selectHandler finds the route whose prefix matches the message's text
// payload, trying routes in registration order and falling back to the
// default handler. Literal prefix matching, not the reference
// implementation's split-on-first-space exact match: "/chat hello" matches
// a registered "/chat" route, and so does "/chathello" - callers choosing
// ambiguous prefixes are responsible for disambiguating them.
func (r *Router) selectHandler(msg message.Message) handler.Handler {
	text, ok := msg.AsText()
	if !ok {
		return r.defaultHandler
	}
	for _, rt := range r.routes {
		if strings.HasPrefix(text, rt.prefix) {
			return rt.handler
		}
	}
	return r.defaultHandler
}

func errorText(err error) string {
	if werr, ok := err.(*wserr.Error); ok {
		return werr.Message
	}
	return err.Error()
}
