// Package transport implements the outgoing request pipeline: credential
// attachment, 401-triggered refresh, and the bounded retry that ties them
// together.
package transport

import (
	"net/http"
	"strings"

	"github.com/spec-kit/care-client/internal/credential"
)

var unauthenticatedPaths = []string{
	"/api/auth/login",
	"/api/auth/register",
	"/api/auth/refresh",
}

// IsUnauthenticated reports whether the path targets an endpoint that must
// be reachable without a credential.
func IsUnauthenticated(path string) bool {
	for _, p := range unauthenticatedPaths {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// Pipeline decorates outgoing requests with the current credential. It reads
// the store but never mutates it and never triggers a refresh. An absent or
// expired credential sends the request bare; the resulting 401 is what
// drives recovery, rather than guessing client-side.
type Pipeline struct {
	base      http.RoundTripper
	store     *credential.Store
	inspector *credential.Inspector
}

// NewPipeline wraps base with credential attachment.
func NewPipeline(base http.RoundTripper, store *credential.Store, inspector *credential.Inspector) *Pipeline {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Pipeline{base: base, store: store, inspector: inspector}
}

// RoundTrip implements http.RoundTripper.
func (p *Pipeline) RoundTrip(req *http.Request) (*http.Response, error) {
	if IsUnauthenticated(req.URL.Path) {
		return p.base.RoundTrip(req)
	}

	out := req.Clone(req.Context())
	if cred, ok := p.store.Current(); ok && !p.inspector.IsExpired(cred) {
		out.Header.Set("Authorization", "Bearer "+cred)
	}
	return p.base.RoundTrip(out)
}
