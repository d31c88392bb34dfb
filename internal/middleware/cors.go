package middleware

import (
	"net/http"
	"strings"
)

type corsPolicy struct {
	wildcard bool
	origins  map[string]struct{}
}

func newCORSPolicy(allowed []string) corsPolicy {
	p := corsPolicy{origins: make(map[string]struct{}, len(allowed))}
	for _, origin := range allowed {
		if origin == "*" {
			p.wildcard = true
			continue
		}
		p.origins[strings.ToLower(origin)] = struct{}{}
	}
	return p
}

// apply sets the CORS response headers for origin, if it is allowed. A
// wildcard match never advertises credentials.
func (p corsPolicy) apply(h http.Header, origin string) {
	if _, listed := p.origins[strings.ToLower(origin)]; listed {
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")
	} else if p.wildcard {
		h.Set("Access-Control-Allow-Origin", "*")
	} else {
		return
	}
	h.Set("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)
	h.Set("Access-Control-Expose-Headers", requestIDHeader)
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
}

// CORS answers preflight requests and decorates responses for the allowed
// origins. Matching ignores case; "*" admits any origin without credentials.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	policy := newCORSPolicy(allowedOrigins)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			policy.apply(w.Header(), origin)
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
