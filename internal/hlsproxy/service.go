package hlsproxy

import (
	"context"
	"fmt"
)

// PlaylistFetcher downloads an upstream playlist body.
type PlaylistFetcher interface {
	FetchPlaylist(ctx context.Context, playlistURL string) ([]byte, error)
}

// Service looks up channels, fetches their playlists, and rewrites them.
type Service struct {
	streams  StreamRegistry
	upstream PlaylistFetcher
	rewriter *Rewriter
}

// NewService returns a Service over the given registry, fetcher and rewriter.
func NewService(streams StreamRegistry, upstream PlaylistFetcher, rewriter *Rewriter) *Service {
	return &Service{streams: streams, upstream: upstream, rewriter: rewriter}
}

// FetchPlaylist returns the rewritten playlist for key. Unknown keys fail with
// ErrUnknownStreamKey before any upstream request is made; origin failures
// wrap ErrUpstreamFetch.
func (s *Service) FetchPlaylist(ctx context.Context, key StreamKey) (Playlist, error) {
	upstreamURL, ok := s.streams.Lookup(key)
	if !ok {
		return Playlist{}, ErrUnknownStreamKey
	}

	basePath, err := BasePath(upstreamURL)
	if err != nil {
		return Playlist{}, fmt.Errorf("%w: %w", ErrUpstreamFetch, err)
	}

	body, err := s.upstream.FetchPlaylist(ctx, upstreamURL)
	if err != nil {
		return Playlist{}, err
	}

	out, n := s.rewriter.Rewrite(basePath, string(body))
	return Playlist{Body: out, Rewritten: n}, nil
}
