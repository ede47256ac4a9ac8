package hlsproxy

import (
	"net/url"
	"strings"
)

// SegmentPath is the proxy route that rewritten playlist lines point at.
const SegmentPath = "/segment.ts"

// Issuer hands out tokens for resolved upstream URLs.
type Issuer interface {
	Issue(resolvedURL string) Token
}

// Rewriter replaces URI lines of a playlist with token-bearing proxy paths.
type Rewriter struct {
	tokens Issuer
	prefix string
}

// NewRewriter returns a Rewriter issuing tokens from tokens. publicBaseURL is
// prepended to SegmentPath; leave it empty for proxy-relative paths.
func NewRewriter(tokens Issuer, publicBaseURL string) *Rewriter {
	return &Rewriter{
		tokens: tokens,
		prefix: strings.TrimSuffix(publicBaseURL, "/") + SegmentPath + "?token=",
	}
}

// Rewrite processes body line by line. Blank lines and lines starting with '#'
// are copied verbatim, as are their line endings. Every other line is resolved
// against basePath, given a token, and replaced with the proxy path for that
// token. Variant playlist references in a master playlist are treated the same
// as segments. A line that cannot be parsed as a URL reference is joined to
// basePath as a string and tokenized all the same.
// It returns the new body and the number of lines replaced.
func (rw *Rewriter) Rewrite(basePath, body string) (string, int) {
	var b strings.Builder
	b.Grow(len(body) + len(body)/2)

	n := 0
	rest := body
	for len(rest) > 0 {
		var line, eol string
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			line, rest = rest[:i], rest[i+1:]
			eol = "\n"
		} else {
			line, rest = rest, ""
		}
		if strings.HasSuffix(line, "\r") {
			line = line[:len(line)-1]
			eol = "\r" + eol
		}

		if out, ok := rw.rewriteLine(basePath, line); ok {
			b.WriteString(out)
			n++
		} else {
			b.WriteString(line)
		}
		b.WriteString(eol)
	}
	return b.String(), n
}

// rewriteLine returns the replacement for a URI line, or false if line
// must be passed through.
func (rw *Rewriter) rewriteLine(basePath, line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !IsURILine(trimmed) {
		return "", false
	}
	abs, err := ResolveURL(basePath, trimmed)
	if err != nil {
		// Still tokenized: the raw reference must not reach the client.
		abs = basePath + strings.TrimPrefix(trimmed, "/")
	}
	token := rw.tokens.Issue(abs)
	return rw.prefix + url.QueryEscape(string(token)), true
}

// IsURILine reports whether a trimmed playlist line is a URI reference
// rather than a blank line, directive or comment.
func IsURILine(trimmed string) bool {
	return trimmed != "" && !strings.HasPrefix(trimmed, "#")
}
