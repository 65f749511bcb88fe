// Package router is the single source of truth for subdomain-prefix
// routing. The proxy never consults the registry directly; it reads only
// the router's published map.
package router

import (
	"net"
	"strings"
	"sync/atomic"
)

// Target is a cached, already-resolved routing destination. Resolution
// happens once at publish time so the hot read path never re-parses a
// host:port string per request.
type Target struct {
	Addr    string // original "host:port" as configured
	TCPAddr *net.TCPAddr
}

// Router holds an immutable snapshot behind an atomic pointer. Publish
// installs a new snapshot built from a full copy of the old one so readers
// always observe either the old or the new map, never a partial insertion.
// Updates are atomic with respect to readers.
type Router struct {
	snapshot atomic.Pointer[map[string]Target]
}

func New() *Router {
	r := &Router{}
	empty := make(map[string]Target)
	r.snapshot.Store(&empty)
	return r
}

// Lookup returns the target for prefix, O(1) expected.
func (r *Router) Lookup(prefix string) (Target, bool) {
	m := *r.snapshot.Load()
	t, ok := m[prefix]
	return t, ok
}

// Publish installs prefix → target, replacing any prior entry for prefix.
func (r *Router) Publish(prefix string, target Target) {
	for {
		old := r.snapshot.Load()
		next := make(map[string]Target, len(*old)+1)
		for k, v := range *old {
			next[k] = v
		}
		next[prefix] = target
		if r.snapshot.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Unpublish removes prefix from the routing table, if present.
func (r *Router) Unpublish(prefix string) {
	for {
		old := r.snapshot.Load()
		if _, ok := (*old)[prefix]; !ok {
			return
		}
		next := make(map[string]Target, len(*old))
		for k, v := range *old {
			if k != prefix {
				next[k] = v
			}
		}
		if r.snapshot.CompareAndSwap(old, &next) {
			return
		}
	}
}

// ResolveTarget parses addr ("host:port") into a cacheable Target.
func ResolveTarget(addr string) (Target, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return Target{}, err
	}
	return Target{Addr: addr, TCPAddr: tcpAddr}, nil
}

// Prefix extracts the "<v>.<n>" routing prefix from an inbound Host header:
// at least 3 dot-separated labels required, the prefix is the first two,
// lower-cased.
func Prefix(host string) (string, bool) {
	h, _, ok := strings.Cut(host, ":") // strip an explicit port, if any
	if !ok {
		h = host
	}
	labels := strings.Split(h, ".")
	if len(labels) < 3 {
		return "", false
	}
	return strings.ToLower(labels[0] + "." + labels[1]), true
}
