package acceptor

import (
	"github.com/valyala/fasthttp"

	"github.com/wsforge/wsforge/wserr"
)

// handleStatic serves a non-upgrade request: GET is resolved against the
// configured static root, any other method gets 405, and a missing static
// root (no ServeStatic call on the router) gets 404.
func (a *Acceptor) handleStatic(ctx *fasthttp.RequestCtx) {
	if a.static == nil {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return
	}

	if string(ctx.Method()) != fasthttp.MethodGet {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		return
	}

	path := string(ctx.Path())
	content, mimeType, err := a.static.Serve(path)
	if err != nil {
		a.writeStaticError(ctx, path, err)
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType(mimeType)
	ctx.SetBody(content)
}

func (a *Acceptor) writeStaticError(ctx *fasthttp.RequestCtx, path string, err error) {
	status := fasthttp.StatusInternalServerError
	if werr, ok := err.(*wserr.Error); ok {
		switch werr.Kind {
		case wserr.KindForbidden:
			status = fasthttp.StatusForbidden
		case wserr.KindNotFound:
			status = fasthttp.StatusNotFound
		case wserr.KindCustom:
			status = fasthttp.StatusBadRequest
		case wserr.KindIO:
			status = fasthttp.StatusInternalServerError
		}
	}
	a.logger.Warn().Str("path", path).Err(err).Int("status", status).Msg("static file request failed")
	ctx.SetStatusCode(status)
}
