package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kulaginds/aniplay/internal/config"
	"github.com/kulaginds/aniplay/internal/handler"
	"github.com/kulaginds/aniplay/internal/logging"
	"github.com/kulaginds/aniplay/internal/timing"
	"github.com/kulaginds/aniplay/web"
)

func serveAction(c *cli.Context) error {
	cfg, err := loadConfig(c, config.LoadOptions{
		Host:     strings.TrimSpace(c.String("host")),
		Port:     strings.TrimSpace(c.String("port")),
		MediaDir: strings.TrimSpace(c.String("media")),
	})
	if err != nil {
		return err
	}

	table, err := cfg.Playback.Timing()
	if err != nil {
		return cli.NewExitError(err, 2)
	}

	server, err := createServer(cfg, table)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logging.Info("starting server on %s, media in %s, %d timing entries", server.Addr, cfg.Playback.MediaDir, table.Len())
	if err := startServer(ctx, server); err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}

func createServer(cfg *config.Config, table *timing.Table) (*http.Server, error) {
	dist, err := web.DistFS()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.FS(dist)))
	mux.HandleFunc("/play", handler.Player(cfg, table))

	h := securityHeadersMiddleware(mux)
	h = requestLoggingMiddleware(h)

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, nil
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; connect-src 'self' ws: wss:")

		next.ServeHTTP(w, r)
	})
}

func requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Debug("%s %s %s %s", r.RemoteAddr, r.Method, r.URL.Path, time.Since(start))
	})
}

// startServer serves until ctx is cancelled, then shuts down gracefully.
func startServer(ctx context.Context, server *http.Server) error {
	if server == nil {
		return fmt.Errorf("server is nil")
	}

	errc := make(chan error, 1)
	go func() {
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
