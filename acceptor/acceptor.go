// Package acceptor binds the hybrid listener: a single fasthttp server
// that multiplexes WebSocket upgrades and static-file GETs on one socket,
// delegating request classification to fasthttp's own parsing instead of
// hand-rolled byte peeking.
package acceptor

import (
	"strings"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/wsforge/wsforge/connection"
	"github.com/wsforge/wsforge/message"
	"github.com/wsforge/wsforge/router"
	"github.com/wsforge/wsforge/staticfiles"
	"github.com/wsforge/wsforge/wserr"
)

// Acceptor owns the upgrader and binds the router and optional static
// file handler to a single fasthttp.RequestHandler.
type Acceptor struct {
	router      *router.Router
	upgrader    websocket.FastHTTPUpgrader
	static      *staticfiles.Handler
	readBufSize int
	logger      zerolog.Logger
}

// New creates an Acceptor serving r. readBufSize/writeBufSize size the
// websocket upgrader's buffers; pass 0 for either to use the library's
// default.
func New(r *router.Router, readBufSize, writeBufSize int, logger zerolog.Logger) *Acceptor {
	a := &Acceptor{
		router: r,
		upgrader: websocket.FastHTTPUpgrader{
			ReadBufferSize:  readBufSize,
			WriteBufferSize: writeBufSize,
			CheckOrigin:     func(ctx *fasthttp.RequestCtx) bool { return true },
		},
		logger: logger,
	}
	if root, index, ok := r.StaticRoot(); ok {
		a.static = staticfiles.New(root).WithIndex(index)
	}
	return a
}

// Handler returns the fasthttp.RequestHandler to bind to a fasthttp.Server.
// Classification follows the upgrade-detection rule: treat as upgrade iff
// the request carries "Upgrade: websocket" (case-insensitive) and a
// "Connection" header whose comma-separated tokens include "upgrade"
// (case-insensitive). Anything else falls through to static-file handling.
func (a *Acceptor) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if isWebSocketUpgrade(ctx) {
			a.handleUpgrade(ctx)
			return
		}
		a.handleStatic(ctx)
	}
}

func isWebSocketUpgrade(ctx *fasthttp.RequestCtx) bool {
	upgrade := string(ctx.Request.Header.Peek("Upgrade"))
	if !strings.EqualFold(upgrade, "websocket") {
		return false
	}
	conn := string(ctx.Request.Header.Peek("Connection"))
	for _, tok := range strings.Split(conn, ",") {
		if strings.EqualFold(strings.TrimSpace(tok), "upgrade") {
			return true
		}
	}
	return false
}

func (a *Acceptor) handleUpgrade(ctx *fasthttp.RequestCtx) {
	id := a.router.Registry().NextID()
	info := connection.Info{
		Addr:        ctx.RemoteAddr().String(),
		ConnectedAt: time.Now(),
		Protocol:    string(ctx.Request.Header.Peek("Sec-WebSocket-Protocol")),
		UserAgent:   string(ctx.Request.Header.Peek("User-Agent")),
	}

	err := a.upgrader.Upgrade(ctx, func(wsConn *websocket.Conn) {
		a.serveConnection(id, info, wsConn)
	})
	if err != nil {
		a.logger.Error().Err(err).Msg("websocket upgrade failed")
	}
}

func (a *Acceptor) serveConnection(id string, info connection.Info, wsConn *websocket.Conn) {
	conn, outbound := connection.New(id, info)

	a.router.Connect(conn)
	defer a.router.Disconnect(id)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.writeLoop(id, wsConn, outbound, done)
	}()

	a.readLoop(wsConn, conn)
	close(done)
	wsConn.Close()

	// Block until the write task has actually exited, not just been
	// signaled to stop, so on_disconnect never observes a write loop still
	// mid-WriteMessage.
	wg.Wait()
}

func (a *Acceptor) readLoop(wsConn *websocket.Conn, conn connection.Connection) {
	for {
		kind, data, err := wsConn.ReadMessage()
		if err != nil {
			a.logger.Debug().Str("conn_id", conn.ID()).Err(wserr.Transport(err, "websocket read failed")).Msg("read loop exiting")
			return
		}

		msg, err := toMessage(kind, data)
		if err != nil {
			a.logger.Warn().Str("conn_id", conn.ID()).Err(err).Msg("dropping invalid frame")
			continue
		}
		// fasthttp/websocket's default close handler already turns a close
		// frame into a non-nil error from ReadMessage above, so this rarely
		// fires; kept as a backstop in case a custom CloseHandler is set.
		if msg.IsClose() {
			return
		}
		a.router.Dispatch(conn, msg)
	}
}

func (a *Acceptor) writeLoop(id string, wsConn *websocket.Conn, outbound <-chan message.Message, done <-chan struct{}) {
	for {
		select {
		case msg, ok := <-outbound:
			if !ok {
				return
			}
			if err := fromMessage(wsConn, msg); err != nil {
				a.logger.Debug().Str("conn_id", id).Err(wserr.Transport(err, "websocket write failed")).Msg("write loop exiting")
				return
			}
		case <-done:
			return
		}
	}
}

func toMessage(kind int, data []byte) (message.Message, error) {
	switch kind {
	case websocket.TextMessage:
		return message.NewText(data)
	case websocket.BinaryMessage:
		return message.NewBinary(data), nil
	case websocket.PingMessage:
		return message.NewPing(data), nil
	case websocket.PongMessage:
		return message.NewPong(data), nil
	case websocket.CloseMessage:
		code, reason := parseCloseFrame(data)
		return message.NewClose(code, reason, len(data) >= 2), nil
	default:
		return message.Message{}, wserr.InvalidMessage("unrecognized frame kind %d", kind)
	}
}

func fromMessage(wsConn *websocket.Conn, msg message.Message) error {
	switch msg.Kind() {
	case message.Text:
		text, _ := msg.AsText()
		return wsConn.WriteMessage(websocket.TextMessage, []byte(text))
	case message.Binary:
		return wsConn.WriteMessage(websocket.BinaryMessage, msg.AsBytes())
	case message.Ping:
		return wsConn.WriteMessage(websocket.PingMessage, msg.AsBytes())
	case message.Pong:
		return wsConn.WriteMessage(websocket.PongMessage, msg.AsBytes())
	case message.Close:
		code, hasCode := msg.CloseCode()
		if !hasCode {
			code = websocket.CloseNormalClosure
		}
		return wsConn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(int(code), msg.CloseReason()))
	default:
		return wserr.InvalidMessage("unrecognized frame kind %v", msg.Kind())
	}
}

func parseCloseFrame(data []byte) (uint16, string) {
	if len(data) < 2 {
		return 0, ""
	}
	code := uint16(data[0])<<8 | uint16(data[1])
	return code, string(data[2:])
}
