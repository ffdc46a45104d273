// Command wsforge-echo is a minimal example server: it echoes every Text
// message it receives back to the sender, broadcasts a join/leave
// announcement to everyone else, and exposes a small Fiber-backed admin
// surface alongside the WebSocket endpoint.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/wsforge/wsforge/acceptor"
	"github.com/wsforge/wsforge/bridge"
	"github.com/wsforge/wsforge/config"
	"github.com/wsforge/wsforge/connection"
	"github.com/wsforge/wsforge/extractor"
	"github.com/wsforge/wsforge/handler"
	"github.com/wsforge/wsforge/message"
	"github.com/wsforge/wsforge/middleware"
	"github.com/wsforge/wsforge/router"
)

func main() {
	logger := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
	cfg := config.FromEnv()

	r := router.New(logger)
	r.Use(middleware.NewLogger(logger))
	r.Route("/chat", echoHandler())
	r.DefaultHandler(echoHandler())
	r.OnConnect(func(c connection.Connection) {
		r.BroadcastExcept(c.ID(), message.NewTextString(fmt.Sprintf("%s joined", c.ID())))
	})
	r.OnDisconnect(func(id string) {
		r.Broadcast(message.NewTextString(fmt.Sprintf("%s left", id)))
	})

	if cfg.StaticRoot != "" {
		r.ServeStatic(cfg.StaticRoot, cfg.IndexFile)
	}

	attachBridge(r, logger)

	acc := acceptor.New(r, cfg.ReadBufferSize, cfg.WriteBufferSize, logger)
	admin := newAdminApp(r)

	mux := func(ctx *fasthttp.RequestCtx) {
		if strings.HasPrefix(string(ctx.Path()), "/ws/info") {
			admin.Handler()(ctx)
			return
		}
		acc.Handler()(ctx)
	}

	server := &fasthttp.Server{Handler: mux}

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("wsforge-echo listening")
		if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
			logger.Error().Err(err).Msg("server error")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}

// echoHandler replies to every message with its own text payload.
func echoHandler() handler.Handler {
	return handler.H1(extractor.DataOf, func(data []byte) (string, error) {
		return string(data), nil
	})
}

// newAdminApp builds the Fiber admin surface reporting live session count.
// Mounted alongside, not instead of, the raw fasthttp WebSocket handler:
// Fiber owns ordinary JSON routes, the acceptor owns the upgrade path.
func newAdminApp(r *router.Router) *fiber.App {
	app := fiber.New()
	app.Get("/ws/info", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"websocket": true,
			"endpoint":  "/ws",
			"clients":   r.Registry().Count(),
		})
	})
	return app
}

// attachBridge wires an optional Redis bridge for cross-instance fan-out.
// Unavailable Redis is non-fatal: the server runs standalone.
func attachBridge(r *router.Router, logger zerolog.Logger) {
	cfg := bridge.RedisConfigFromEnv()
	rb := bridge.NewRedisBridge(cfg, r.Registry(), logger)

	if err := rb.Start(); err != nil {
		logger.Warn().Err(err).Msg("redis bridge unavailable, running standalone")
		return
	}
	r.SetBridge(rb)
	logger.Info().Str("redis_addr", cfg.Addr).Msg("redis bridge connected")
}
