package hlsproxy

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// schemePrefix matches an RFC 3986 scheme followed by ':'.
var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)

// BasePath returns playlistURL truncated after its last path slash, with any
// query or fragment dropped: "https://cdn/live/a/index.m3u8?x=1" becomes
// "https://cdn/live/a/".
func BasePath(playlistURL string) (string, error) {
	u, err := url.Parse(playlistURL)
	if err != nil {
		return "", fmt.Errorf("parse playlist url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("playlist url %q is not absolute", playlistURL)
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	escaped := u.EscapedPath()
	if i := strings.LastIndex(escaped, "/"); i >= 0 {
		escaped = escaped[:i+1]
	} else {
		escaped = "/"
	}
	// EscapedPath came from a parsed URL, so it always unescapes.
	u.Path, _ = url.PathUnescape(escaped)
	u.RawPath = escaped
	return u.String(), nil
}

// ResolveURL returns the absolute URL that line refers to when read from a
// playlist under basePath. Lines that already carry a scheme are returned
// unchanged without being parsed; everything else follows RFC 3986 reference
// resolution, the same rules a player applies ("./", "../", "/root" and
// "//host" forms). A '%' that does not start a valid escape is encoded as
// "%25" before resolving.
func ResolveURL(basePath, line string) (string, error) {
	if schemePrefix.MatchString(line) {
		return line, nil
	}
	ref, err := url.Parse(line)
	if err != nil {
		ref, err = url.Parse(escapeStrayPercent(line))
		if err != nil {
			return "", fmt.Errorf("parse playlist line: %w", err)
		}
	}
	base, err := url.Parse(basePath)
	if err != nil {
		return "", fmt.Errorf("parse base path: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

// escapeStrayPercent encodes every '%' not followed by two hex digits.
func escapeStrayPercent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && (i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
