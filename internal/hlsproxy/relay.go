package hlsproxy

import (
	"context"
	"io"
	"net/http"
)

// SegmentOpener starts an upstream segment transfer.
type SegmentOpener interface {
	OpenSegment(ctx context.Context, segmentURL string, clientHeader http.Header) (*http.Response, error)
}

// Relay resolves segment tokens and streams the upstream resource to the client.
// It never retries; each failure is final for its request.
type Relay struct {
	tokens   TokenRepository
	upstream SegmentOpener
}

// NewRelay returns a Relay resolving tokens from tokens and fetching from upstream.
func NewRelay(tokens TokenRepository, upstream SegmentOpener) *Relay {
	return &Relay{tokens: tokens, upstream: upstream}
}

// Open resolves token and starts the upstream fetch. It returns
// ErrInvalidOrExpiredToken for a token miss and an error wrapping
// ErrUpstreamFetch if the origin cannot be reached or answers with an error.
func (r *Relay) Open(ctx context.Context, token Token, clientHeader http.Header) (*http.Response, error) {
	target, err := r.tokens.Resolve(token)
	if err != nil {
		return nil, err
	}
	return r.upstream.OpenSegment(ctx, target, clientHeader)
}

// Forward writes resp's status, end-to-end headers, and body to w without
// buffering the body; each chunk is flushed as it arrives. It returns the
// bytes copied and the first copy error. Once it returns an error the status
// line has already been sent.
func (r *Relay) Forward(w http.ResponseWriter, resp *http.Response) (int64, error) {
	copyResponseHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)

	fw := &flushWriter{w: w, rc: http.NewResponseController(w)}
	fw.flush()
	return io.Copy(fw, resp.Body)
}

// flushWriter flushes after every write. Writers that cannot flush are
// written to as is.
type flushWriter struct {
	w  io.Writer
	rc *http.ResponseController
}

func (f *flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if err == nil {
		f.flush()
	}
	return n, err
}

func (f *flushWriter) flush() {
	_ = f.rc.Flush()
}
