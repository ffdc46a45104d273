package acceptor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/wsforge/wsforge/router"
)

func newStaticAcceptor(t *testing.T) *Acceptor {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>hi</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := router.New(zerolog.Nop())
	r.ServeStatic(dir, "index.html")
	return New(r, 0, 0, zerolog.Nop())
}

func TestHandleStaticServesIndex(t *testing.T) {
	a := newStaticAcceptor(t)
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI("/")

	a.handleStatic(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("expected 200, got %d", ctx.Response.StatusCode())
	}
	if string(ctx.Response.Body()) != "<html>hi</html>" {
		t.Errorf("unexpected body: %s", ctx.Response.Body())
	}
}

func TestHandleStaticRejectsNonGet(t *testing.T) {
	a := newStaticAcceptor(t)
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.SetRequestURI("/")

	a.handleStatic(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", ctx.Response.StatusCode())
	}
}

func TestHandleStaticRejectsHead(t *testing.T) {
	a := newStaticAcceptor(t)
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodHead)
	ctx.Request.SetRequestURI("/")

	a.handleStatic(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for HEAD, got %d", ctx.Response.StatusCode())
	}
}

func TestHandleStaticMissingFileReturns404(t *testing.T) {
	a := newStaticAcceptor(t)
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI("/missing.html")

	a.handleStatic(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("expected 404, got %d", ctx.Response.StatusCode())
	}
}

func TestHandleStaticWithoutRootReturns404(t *testing.T) {
	r := router.New(zerolog.Nop())
	a := New(r, 0, 0, zerolog.Nop())

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI("/")

	a.handleStatic(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("expected 404 when no static root configured, got %d", ctx.Response.StatusCode())
	}
}
