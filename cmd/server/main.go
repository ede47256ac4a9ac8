package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hls-token-proxy/internal/hlsproxy"
	"hls-token-proxy/internal/platform/config"
	"hls-token-proxy/internal/platform/logger"
	"hls-token-proxy/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const shutdownTimeout = 10 * time.Second

// routedMethods are the methods the router serves; CORS advertises exactly these.
var routedMethods = []string{http.MethodGet, http.MethodOptions}

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "3000")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	allowedOrigins := config.GetEnvList("ALLOWED_ORIGIN", []string{"*"})
	welcome := config.GetEnv("WELCOME_MESSAGE", "WELCOME TO HONOR TV")
	tokenTTL := config.GetEnvSeconds("TOKEN_TTL_SECONDS", hlsproxy.DefaultTokenTTL)
	storeCapacity := config.GetEnvInt("TOKEN_STORE_CAPACITY", hlsproxy.DefaultStoreCapacity)
	sweepInterval := config.GetEnvSeconds("TOKEN_SWEEP_INTERVAL_SECONDS", 5*time.Second)
	upstreamTimeout := config.GetEnvSeconds("UPSTREAM_TIMEOUT_SECONDS", hlsproxy.DefaultUpstreamTimeout)
	userAgent := config.GetEnv("UPSTREAM_USER_AGENT", hlsproxy.DefaultUserAgent)
	publicBaseURL := config.GetEnv("PUBLIC_BASE_URL", "")

	log := logger.New(logLevel, logFormat)

	streams := hlsproxy.NewStaticRegistry(config.LoadStreams())
	if len(streams) == 0 {
		log.Warn("no streams configured; every manifest request will return 404")
	} else {
		log.Info("streams configured", slog.Any("stream_keys", streams.Keys()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	met := metrics.New()
	tokens := hlsproxy.NewInMemoryTokenRepository(storeCapacity, tokenTTL)
	go tokens.RunSweeper(ctx, sweepInterval, func(n int) {
		met.AddTokensExpired(n)
		if n > 0 {
			log.Debug("expired tokens swept", slog.Int("removed", n), slog.Int("remaining", tokens.Len()))
		}
	})

	upstream := hlsproxy.NewUpstream(upstreamTimeout, userAgent)
	svc := hlsproxy.NewService(streams, upstream, hlsproxy.NewRewriter(tokens, publicBaseURL))
	relay := hlsproxy.NewRelay(tokens, upstream)
	h := hlsproxy.NewHandler(svc, relay, welcome, log, met)

	r := newRouter(h, met, tokens.Len, log, allowedOrigins)

	addr := ":" + port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"streams", len(streams),
		"token_ttl", tokenTTL.String(),
		"token_store_capacity", storeCapacity,
		"log_level", logLevel,
	)

	<-ctx.Done()

	log.Info("shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// newRouter mounts the proxy endpoints and /metrics behind request id,
// logging, metrics and CORS middleware. activeTokens feeds the token gauge
// on each scrape.
func newRouter(h *hlsproxy.Handler, met *metrics.Metrics, activeTokens func() int, log *slog.Logger, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: routedMethods,
		AllowedHeaders: []string{"Range", "If-Range", "If-None-Match", "If-Modified-Since"},
		ExposedHeaders: []string{"Content-Length", "Content-Range", "Accept-Ranges"},
		MaxAge:         300,
	}))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() { met.SetActiveTokens(activeTokens()) }).ServeHTTP(w, r)
	})
	r.Get("/", h.Root)
	r.Get(hlsproxy.SegmentPath, h.GetSegment)
	r.Get("/{stream_key}/manifest.m3u8", h.GetManifest)
	return r
}
