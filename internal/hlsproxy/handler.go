package hlsproxy

import (
	"errors"
	"log/slog"
	"net/http"

	"hls-token-proxy/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

const playlistContentType = "application/vnd.apple.mpegurl"

// Handler exposes the proxy HTTP endpoints using go-chi.
type Handler struct {
	svc     *Service
	relay   *Relay
	welcome string
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler returns a Handler that uses the given Service, Relay, Logger, and optional Metrics.
// Metrics may be nil to disable metric recording (e.g. in tests).
func NewHandler(svc *Service, relay *Relay, welcome string, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, relay: relay, welcome: welcome, log: log, metrics: m}
}

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.welcome))
}

// GetManifest handles GET /{stream_key}/manifest.m3u8.
func (h *Handler) GetManifest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	key := StreamKey(chi.URLParam(r, "stream_key"))

	pl, err := h.svc.FetchPlaylist(r.Context(), key)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownStreamKey):
			h.log.Debug("unknown stream key", slog.String("stream_key", string(key)))
			http.Error(w, "invalid stream key", http.StatusNotFound)
		case errors.Is(err, ErrUpstreamFetch):
			h.log.Warn("playlist fetch failed",
				slog.String("stream_key", string(key)),
				slog.String("error", err.Error()))
			if h.metrics != nil {
				h.metrics.IncUpstreamErrors()
			}
			http.Error(w, "failed to fetch playlist", http.StatusBadGateway)
		default:
			h.log.Error("playlist rewrite failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	h.log.Debug("playlist rewritten",
		slog.String("stream_key", string(key)),
		slog.Int("tokens", pl.Rewritten))
	if h.metrics != nil {
		h.metrics.IncPlaylistsRewritten()
		h.metrics.AddTokensIssued(pl.Rewritten)
	}

	w.Header().Set("Content-Type", playlistContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(pl.Body))
}

// GetSegment handles GET /segment.ts?token=<token>.
func (h *Handler) GetSegment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	token := Token(r.URL.Query().Get("token"))

	resp, err := h.relay.Open(r.Context(), token, r.Header)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidOrExpiredToken):
			h.log.Debug("segment token rejected", slog.String("token", string(token)))
			http.Error(w, "invalid or expired token", http.StatusBadRequest)
		case r.Context().Err() != nil:
			h.log.Debug("client went away before segment fetch", slog.String("token", string(token)))
		default:
			h.log.Warn("segment fetch failed",
				slog.String("token", string(token)),
				slog.String("error", err.Error()))
			if h.metrics != nil {
				h.metrics.IncUpstreamErrors()
			}
			http.Error(w, "segment failed", http.StatusBadGateway)
		}
		return
	}
	defer resp.Body.Close()

	n, err := h.relay.Forward(w, resp)
	if err != nil {
		if r.Context().Err() != nil {
			h.log.Debug("client disconnected during segment",
				slog.String("token", string(token)),
				slog.Int64("bytes", n))
			return
		}
		h.log.Warn("segment stream interrupted",
			slog.String("token", string(token)),
			slog.Int64("bytes", n),
			slog.String("error", err.Error()))
		if h.metrics != nil {
			h.metrics.IncUpstreamErrors()
		}
		// Headers are out; abort the connection so the client cannot
		// mistake a truncated body for a complete one.
		panic(http.ErrAbortHandler)
	}

	if h.metrics != nil {
		h.metrics.IncSegmentsRelayed()
	}
}
