package middleware

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/wsforge/wsforge/appstate"
	"github.com/wsforge/wsforge/connection"
	"github.com/wsforge/wsforge/extension"
	"github.com/wsforge/wsforge/extractor"
	"github.com/wsforge/wsforge/handler"
	"github.com/wsforge/wsforge/message"
)

func newCtx() *extractor.Context {
	conn, _ := connection.New("conn_0", connection.Info{})
	return &extractor.Context{
		Message:    message.NewTextString("hi"),
		Conn:       conn,
		State:      appstate.New(),
		Extensions: extension.New(),
	}
}

func echoHandler() handler.Handler {
	return handler.H0(func() (string, error) { return "reply", nil })
}

func TestChainCallsTerminalHandlerWithNoLayers(t *testing.T) {
	c := NewChain(echoHandler())
	msg, err := c.Call(newCtx())
	if err != nil {
		t.Fatal(err)
	}
	text, _ := msg.AsText()
	if text != "reply" {
		t.Errorf("expected reply, got %q", text)
	}
}

func TestChainLayerRunsBeforeHandler(t *testing.T) {
	var order []string
	l1 := FromFunc(func(ctx *extractor.Context, next Next) (*message.Message, error) {
		order = append(order, "l1-before")
		resp, err := next(ctx)
		order = append(order, "l1-after")
		return resp, err
	})
	l2 := FromFunc(func(ctx *extractor.Context, next Next) (*message.Message, error) {
		order = append(order, "l2-before")
		resp, err := next(ctx)
		order = append(order, "l2-after")
		return resp, err
	})

	c := NewChain(echoHandler()).Layer(l1).Layer(l2)
	if _, err := c.Call(newCtx()); err != nil {
		t.Fatal(err)
	}

	expected := []string{"l1-before", "l2-before", "l2-after", "l1-after"}
	if len(order) != len(expected) {
		t.Fatalf("expected order %v, got %v", expected, order)
	}
	for i := range expected {
		if order[i] != expected[i] {
			t.Fatalf("expected order %v, got %v", expected, order)
		}
	}
}

func TestChainLayerCanShortCircuit(t *testing.T) {
	blocker := FromFunc(func(ctx *extractor.Context, next Next) (*message.Message, error) {
		m := message.NewTextString("blocked")
		return &m, nil
	})

	c := NewChain(echoHandler()).Layer(blocker)
	msg, err := c.Call(newCtx())
	if err != nil {
		t.Fatal(err)
	}
	text, _ := msg.AsText()
	if text != "blocked" {
		t.Errorf("expected short-circuited response, got %q", text)
	}
}

func TestLoggerMiddlewarePassesThroughResponse(t *testing.T) {
	logger := NewLogger(zerolog.Nop())
	c := NewChain(echoHandler()).Layer(logger)

	msg, err := c.Call(newCtx())
	if err != nil {
		t.Fatal(err)
	}
	text, _ := msg.AsText()
	if text != "reply" {
		t.Errorf("expected reply to pass through logger, got %q", text)
	}
}

func TestLoggerMiddlewarePassesThroughError(t *testing.T) {
	logger := NewLogger(zerolog.Nop())
	failing := handler.H0(func() (string, error) {
		return "", assertErr{}
	})
	c := NewChain(failing).Layer(logger)

	if _, err := c.Call(newCtx()); err == nil {
		t.Error("expected error to pass through logger middleware")
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
