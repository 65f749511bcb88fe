// Package proxy implements the data-plane reverse proxy: HTTP requests go
// through httputil.ReverseProxy, WebSocket upgrades get a hand-rolled
// duplex forwarder built on coder/websocket.
package proxy

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/JieningYu/yfass/internal/logger"
	"github.com/JieningYu/yfass/internal/router"
)

// hopByHop are stripped from forwarded requests and responses.
var hopByHop = []string{
	"Connection", "Keep-Alive", "Proxy-Authenticate", "Proxy-Authorization",
	"TE", "Trailers", "Transfer-Encoding", "Upgrade",
}

// Proxy dispatches inbound virtual-host traffic to the target named by the
// router, per the prefix extracted from the Host header.
type Proxy struct {
	router *router.Router
}

func New(rt *router.Router) *Proxy {
	return &Proxy{router: rt}
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	prefix, ok := router.Prefix(r.Host)
	if !ok {
		http.NotFound(w, r)
		return
	}
	target, ok := p.router.Lookup(prefix)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if isWebSocketUpgrade(r) {
		p.serveWS(w, r, target)
		return
	}
	p.serveHTTP(w, r, target)
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket") &&
		containsToken(r.Header.Get("Connection"), "upgrade")
}

func containsToken(header, token string) bool {
	for _, part := range strings.Split(header, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}

func stripHopByHop(h http.Header) {
	conn := h.Get("Connection")
	for _, h2 := range strings.Split(conn, ",") {
		h.Del(strings.TrimSpace(h2))
	}
	for _, name := range hopByHop {
		h.Del(name)
	}
}

func (p *Proxy) serveHTTP(w http.ResponseWriter, r *http.Request, target router.Target) {
	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(&url.URL{Scheme: "http", Host: target.Addr})
			pr.Out.Host = pr.In.Host
			stripHopByHop(pr.Out.Header)
		},
		ModifyResponse: func(resp *http.Response) error {
			stripHopByHop(resp.Header)
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Named("proxy").Warn("upstream request failed", "target", target.Addr, "error", err)
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
		},
	}
	rp.ServeHTTP(w, r)
}
