package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/milk9111/nightshade/fsm"
	"github.com/milk9111/nightshade/internal/log"
	"github.com/milk9111/nightshade/scene"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type serveOptions struct {
	scene           string
	addr            string
	loop            bool
	shutdownTimeout time.Duration
}

func (a *App) newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Tick a scene in real time behind an HTTP inspector",
		Long: `Serve ticks a scene at its tick rate and exposes it over HTTP:

  GET  /healthz                 liveness
  GET  /snapshot                the scene after the last tick
  GET  /machines                every machine's current and previous state
  GET  /machines/{name}         one machine
  POST /session/{action}        pause, resume or restart the session
  GET  /metrics                 Prometheus metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.scene, "scene", "s", defaultScene, "Scene asset to load")
	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "HTTP listen address")
	cmd.Flags().BoolVar(&opts.loop, "loop", false, "Restart the session after game over")
	cmd.Flags().DurationVar(&opts.shutdownTimeout, "shutdown-timeout", 5*time.Second, "Graceful HTTP shutdown timeout")

	return cmd
}

func (a *App) serve(ctx context.Context, opts *serveOptions) error {
	logger := log.WithComponent("hsim")

	sc, err := scene.Load(opts.scene, sceneOptions(false)...)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	defer sc.Close()

	requests := make(chan controlRequest)
	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           newRouter(sc.Snapshot, requests, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runLoop(ctx, sc, opts.loop, requests, logger)
	})
	g.Go(func() error {
		logger.Info().Str("addr", opts.addr).Str("scene", sc.Spec().Name).Msg("inspector listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("inspector: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("inspector shutdown")
		}
		return nil
	})

	err = g.Wait()
	a.report(sc.Snapshot(), int(sc.Ticks()))
	return err
}

// controlRequest asks the tick loop to change the session. The loop owns
// the scene, so handlers never call into it directly.
type controlRequest struct {
	action string
	reply  chan bool
}

var sessionActions = map[string]func(*scene.Scene) bool{
	"pause":   (*scene.Scene).Pause,
	"resume":  (*scene.Scene).Resume,
	"restart": (*scene.Scene).Restart,
}

// runLoop ticks sc at its tick rate until ctx is done, serving control
// requests between ticks.
func runLoop(ctx context.Context, sc *scene.Scene, loop bool, requests <-chan controlRequest, logger zerolog.Logger) error {
	pace := time.NewTicker(sc.Interval())
	defer pace.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-requests:
			apply, ok := sessionActions[req.action]
			req.reply <- ok && apply(sc)
		case <-pace.C:
			sc.Tick()
			if loop && sc.Session().Is(scene.StateGameOver) {
				sc.Restart()
				logger.Info().Uint64("tick", sc.Ticks()).Msg("session restarted after game over")
			}
		}
	}
}

func newRouter(snapshot func() scene.Snapshot, requests chan<- controlRequest, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(accessLog(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/snapshot", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, snapshot())
	})
	r.Get("/machines", func(w http.ResponseWriter, _ *http.Request) {
		snap := snapshot()
		out := make([]fsm.Snapshot, 0, len(snap.Entities))
		for _, e := range snap.Entities {
			out = append(out, e.Machine)
		}
		writeJSON(w, http.StatusOK, out)
	})
	r.Get("/machines/{name}", func(w http.ResponseWriter, r *http.Request) {
		e, ok := snapshot().Find(chi.URLParam(r, "name"))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusOK, e)
	})
	r.Post("/session/{action}", func(w http.ResponseWriter, r *http.Request) {
		action := chi.URLParam(r, "action")
		if _, ok := sessionActions[action]; !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown action"})
			return
		}
		req := controlRequest{action: action, reply: make(chan bool, 1)}
		select {
		case requests <- req:
		case <-r.Context().Done():
			return
		}
		var ok bool
		select {
		case ok = <-req.reply:
		case <-r.Context().Done():
			return
		}
		code := http.StatusOK
		if !ok {
			code = http.StatusConflict
		}
		writeJSON(w, code, map[string]any{"applied": ok, "session": snapshot().Session})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func accessLog(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
