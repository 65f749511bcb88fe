package proxy

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"

	"github.com/JieningYu/yfass/internal/logger"
	"github.com/JieningYu/yfass/internal/router"
)

// serveWS implements the WebSocket data-plane path: accept the client
// upgrade, dial the target, then run two independent forwarding directions
// that cancel each other on close or error.
//
// Known deviation: coder/websocket answers ping/pong control frames
// transparently inside Read/Write and never surfaces them to the
// application, so this proxy cannot forward raw ping/pong bytes
// end-to-end as a literal byte-for-byte relay would. Each leg instead
// answers its own peer's pings locally; this preserves liveness but not
// byte-identical control-frame echo. Documented here rather than worked
// around with a lower-level frame reader, since the library's automatic
// handling is exactly the kind of plumbing this project otherwise leans on.
func (p *Proxy) serveWS(w http.ResponseWriter, r *http.Request, target router.Target) {
	client, err := websocket.Accept(w, r, nil)
	if err != nil {
		logger.Named("proxy").Warn("websocket accept failed", "error", err)
		return
	}

	ctx := r.Context()
	upstreamURL := "ws://" + target.Addr + r.URL.RequestURI()
	upstream, _, err := websocket.Dial(ctx, upstreamURL, nil)
	if err != nil {
		logger.Named("proxy").Warn("websocket dial upstream failed", "target", target.Addr, "error", err)
		client.Close(websocket.StatusInternalError, "upstream unavailable")
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 2)
	go forward(runCtx, client, upstream, errc)
	go forward(runCtx, upstream, client, errc)

	err = <-errc
	cancel()
	<-errc // wait for the sibling direction to unwind before returning

	code := websocket.StatusNormalClosure
	reason := ""
	var closeErr websocket.CloseError
	if errors.As(err, &closeErr) {
		code = closeErr.Code
		reason = closeErr.Reason
	} else if err != nil {
		code = websocket.StatusProtocolError
	}
	client.Close(code, reason)
	upstream.Close(code, reason)
}

// forward copies frames from src to dst until either side closes or errors,
// awaiting each write before reading the next frame for backpressure.
func forward(ctx context.Context, dst, src *websocket.Conn, errc chan<- error) {
	for {
		typ, data, err := src.Read(ctx)
		if err != nil {
			errc <- err
			return
		}
		if err := dst.Write(ctx, typ, data); err != nil {
			errc <- err
			return
		}
	}
}
