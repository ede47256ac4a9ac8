package hlsproxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultUpstreamTimeout bounds a playlist fetch and the wait for segment response headers.
	DefaultUpstreamTimeout = 15 * time.Second

	// DefaultUserAgent is sent to the origin when none is configured.
	DefaultUserAgent = "Mozilla/5.0 (compatible; hls-token-proxy)"

	maxPlaylistBytes = 4 << 20
)

// Upstream performs origin requests for playlists and segments.
type Upstream struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	group     singleflight.Group
}

// NewUpstream returns an Upstream. If timeout <= 0, DefaultUpstreamTimeout is
// used; if userAgent is empty, DefaultUserAgent is used.
func NewUpstream(timeout time.Duration, userAgent string) *Upstream {
	if timeout <= 0 {
		timeout = DefaultUpstreamTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	// Segment bodies are streamed for as long as the client reads, so only
	// the time to first response byte is bounded here.
	transport.ResponseHeaderTimeout = timeout
	return &Upstream{
		client:    &http.Client{Transport: transport},
		timeout:   timeout,
		userAgent: userAgent,
	}
}

// FetchPlaylist downloads the playlist at playlistURL. Concurrent calls for the
// same URL share one origin request. Any status other than 200 is an error
// wrapping ErrUpstreamFetch.
func (u *Upstream) FetchPlaylist(ctx context.Context, playlistURL string) ([]byte, error) {
	ch := u.group.DoChan(playlistURL, func() (interface{}, error) {
		// Detached so one caller going away does not fail the others.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.timeout)
		defer cancel()
		return u.fetchPlaylist(fctx, playlistURL)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrUpstreamFetch, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (u *Upstream) fetchPlaylist(ctx context.Context, playlistURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, playlistURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamFetch, err)
	}
	req.Header.Set("User-Agent", u.userAgent)

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: playlist status %d", ErrUpstreamFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPlaylistBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read playlist: %w", ErrUpstreamFetch, err)
	}
	if len(body) > maxPlaylistBytes {
		return nil, fmt.Errorf("%w: playlist larger than %d bytes", ErrUpstreamFetch, maxPlaylistBytes)
	}
	return body, nil
}

// OpenSegment starts a GET for segmentURL and returns the response with its
// body unread; the caller must close it. Range and conditional headers from
// clientHeader are forwarded. ctx cancels the transfer, including while the
// body is being read. Status codes >= 400 are returned as errors wrapping
// ErrUpstreamFetch.
func (u *Upstream) OpenSegment(ctx context.Context, segmentURL string, clientHeader http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, segmentURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamFetch, err)
	}
	copyRequestHeaders(req.Header, clientHeader)
	req.Header.Set("User-Agent", u.userAgent)

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamFetch, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: segment status %d", ErrUpstreamFetch, resp.StatusCode)
	}
	return resp, nil
}
