// Program daylog runs a small HTTP server whose requests are traced by the
// daylog middleware, with Prometheus metrics on a separate listener.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"daylog"
	"daylog/internal/config"
	obs "daylog/internal/observability"
	"daylog/internal/rotation"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second

	msgConfig  = "config"
	msgLogger  = "logger"
	msgListen  = "http_listen"
	msgMetric  = "metrics_listen"
	msgWatch   = "watch"
	msgStopped = "stopped"
)

func newMux(l *daylog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "hello from daylog\n")
	})
	mux.HandleFunc("GET /status/{code}", func(w http.ResponseWriter, r *http.Request) {
		code, err := strconv.Atoi(r.PathValue("code"))
		if err != nil || code < 200 || code > 599 {
			http.Error(w, "bad status code", http.StatusBadRequest)
			return
		}
		w.WriteHeader(code)
		fmt.Fprintf(w, "%d %s\n", code, http.StatusText(code))
	})
	return l.Middleware(mux)
}

func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return err
		}
		return nil
	}
}

func main() {
	cfgPath := flag.String("config", "", "config file path")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		obs.Logger.Fatal().Err(err).Str(obs.FieldConfig, *cfgPath).Msg(msgConfig)
	}
	logger, err := daylog.New(daylog.FromConfig(cfg))
	if err != nil {
		obs.Logger.Fatal().Err(err).Msg(msgLogger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs.Register()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		srv := &http.Server{Addr: cfg.Addr, Handler: newMux(logger), ReadHeaderTimeout: readHeaderTimeout}
		obs.Logger.Info().Str(obs.FieldAddress, cfg.Addr).Msg(msgListen)
		return serve(gctx, srv)
	})
	g.Go(func() error {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: readHeaderTimeout}
		obs.Logger.Info().Str(obs.FieldAddress, cfg.MetricsAddr).Msg(msgMetric)
		return serve(gctx, srv)
	})
	if cfg.Watch && cfg.FileLogging {
		g.Go(func() error {
			err := rotation.Watch(gctx, logger.Rotation())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				obs.Logger.Error().Err(err).Msg(msgWatch)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		obs.Logger.Fatal().Err(err).Msg(msgStopped)
	}
	obs.Logger.Info().Msg(msgStopped)
}
