package hlsproxy

import (
	"net/http"
	"strings"
)

// hopByHopHeaders apply to a single connection and are not forwarded (RFC 9110 7.6.1).
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// forwardedRequestHeaders are the client headers passed on to the origin.
var forwardedRequestHeaders = []string{
	"Range",
	"If-Range",
	"If-None-Match",
	"If-Modified-Since",
}

func copyRequestHeaders(dst, src http.Header) {
	for _, k := range forwardedRequestHeaders {
		if v := src.Values(k); len(v) > 0 {
			dst[k] = append([]string(nil), v...)
		}
	}
}

// copyResponseHeaders copies src into dst, leaving out hop-by-hop headers and
// any header named in src's Connection field.
func copyResponseHeaders(dst, src http.Header) {
	skip := make(map[string]struct{}, len(hopByHopHeaders))
	for _, k := range hopByHopHeaders {
		skip[k] = struct{}{}
	}
	for _, v := range src.Values("Connection") {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				skip[http.CanonicalHeaderKey(name)] = struct{}{}
			}
		}
	}

	for k, vv := range src {
		if _, ok := skip[k]; ok {
			continue
		}
		dst[k] = append([]string(nil), vv...)
	}
}
