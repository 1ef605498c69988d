package routing

import "strings"

// =============================================================================
// Request Simulation
// =============================================================================

// SimulatedRequest models the parts of a request the generated middleware
// chain can observe or rewrite. Used to verify routing behavior without a
// running proxy.
type SimulatedRequest struct {
	Host            string
	Path            string
	RequestHeaders  map[string]string
	ResponseHeaders map[string]string
}

// Matches reports whether the request satisfies a router rule of the forms
// this generator emits: Host(`h`), optionally AND-ed with PathPrefix(`/p`).
func (r SimulatedRequest) Matches(rule string) bool {
	for _, clause := range strings.Split(rule, "&&") {
		clause = strings.TrimSpace(clause)
		switch {
		case strings.HasPrefix(clause, "Host(`"):
			host := strings.TrimSuffix(strings.TrimPrefix(clause, "Host(`"), "`)")
			if !strings.EqualFold(r.Host, host) {
				return false
			}
		case strings.HasPrefix(clause, "PathPrefix(`"):
			prefix := strings.TrimSuffix(strings.TrimPrefix(clause, "PathPrefix(`"), "`)")
			if !strings.HasPrefix(r.Path, prefix) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// ApplyChain runs the named middleware chain over the request, in order,
// and returns the request as the backend would see it. Strip-prefix
// rewriting therefore happens before the request "reaches the backend"
// regardless of where header middlewares sit in the chain.
func ApplyChain(mws map[string]Middleware, chain []string, req SimulatedRequest) SimulatedRequest {
	if req.RequestHeaders == nil {
		req.RequestHeaders = make(map[string]string)
	}
	if req.ResponseHeaders == nil {
		req.ResponseHeaders = make(map[string]string)
	}
	for _, name := range chain {
		mw, ok := mws[name]
		if !ok {
			continue
		}
		switch {
		case mw.StripPrefix != nil:
			for _, prefix := range mw.StripPrefix.Prefixes {
				if strings.HasPrefix(req.Path, prefix) {
					req.Path = strings.TrimPrefix(req.Path, prefix)
					if req.Path == "" || req.Path[0] != '/' {
						req.Path = "/" + req.Path
					}
					break
				}
			}
		case mw.Headers != nil:
			for k, v := range mw.Headers.CustomRequestHeaders {
				req.RequestHeaders[k] = v
			}
			for k, v := range mw.Headers.CustomResponseHeaders {
				req.ResponseHeaders[k] = v
			}
		}
	}
	return req
}
