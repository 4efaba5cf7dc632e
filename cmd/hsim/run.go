package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/milk9111/nightshade/internal/log"
	"github.com/milk9111/nightshade/prefabs"
	"github.com/milk9111/nightshade/scene"
	"github.com/spf13/cobra"
)

const defaultScene = "scene.yaml"

type runOptions struct {
	scene    string
	ticks    int
	realtime bool
	watch    bool
}

func (a *App) newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Tick a scene until game over",
		Long: `Run loads a scene and ticks it until the session reaches game over,
the tick limit is hit, or the process is interrupted.

With --watch the asset directory is watched and the scene is rebuilt
between ticks whenever a YAML asset changes. Watching implies --realtime.

Examples:
  hsim run
  hsim run --ticks 600 --log-level debug
  hsim run --assets ./prefabs --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.watch {
				return a.runWatched(cmd.Context(), opts)
			}
			return a.run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.scene, "scene", "s", defaultScene, "Scene asset to load")
	cmd.Flags().IntVarP(&opts.ticks, "ticks", "n", 0, "Stop after this many ticks (0 runs until game over)")
	cmd.Flags().BoolVar(&opts.realtime, "realtime", false, "Pace ticks at the scene's tick rate")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Rebuild the scene when assets change")

	return cmd
}

func sceneOptions(realtime bool) []scene.Option {
	opts := []scene.Option{scene.WithLogger(log.WithComponent("scene"))}
	if realtime {
		opts = append(opts, scene.WithRealtime())
	}
	return opts
}

func (a *App) run(ctx context.Context, opts *runOptions) error {
	sc, err := scene.Load(opts.scene, sceneOptions(opts.realtime)...)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	defer sc.Close()

	n, err := sc.Run(ctx, opts.ticks)
	a.report(sc.Snapshot(), n)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) runWatched(ctx context.Context, opts *runOptions) error {
	logger := log.WithComponent("hsim")

	sc, err := scene.Load(opts.scene, sceneOptions(true)...)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	defer func() { _ = sc.Close() }()

	w, err := prefabs.NewWatcher(prefabs.Dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", prefabs.Dir, err)
	}
	defer w.Close()

	pace := time.NewTicker(sc.Interval())
	defer pace.Stop()

	ticks := 0
	for {
		var tick <-chan time.Time
		if !sc.Finished() && (opts.ticks <= 0 || ticks < opts.ticks) {
			tick = pace.C
		}

		select {
		case <-ctx.Done():
			a.report(sc.Snapshot(), ticks)
			return nil
		case name, ok := <-w.Events:
			if !ok {
				return nil
			}
			next, err := scene.Load(opts.scene, sceneOptions(true)...)
			if err != nil {
				logger.Error().Err(err).Str("asset", name).Msg("reload failed, keeping current scene")
				continue
			}
			_ = sc.Close()
			sc, ticks = next, 0
			pace.Reset(sc.Interval())
			logger.Info().Str("asset", name).Msg("scene reloaded")
		case err, ok := <-w.Errors:
			if ok {
				logger.Warn().Err(err).Msg("asset watcher error")
			}
		case <-tick:
			if sc.Tick() {
				ticks++
			}
			if sc.Finished() {
				a.report(sc.Snapshot(), ticks)
			}
		}
	}
}

// report prints the final state of every machine.
func (a *App) report(snap scene.Snapshot, ticks int) {
	a.printf("scene %s: %d ticks, session %s\n", snap.Scene, ticks, snap.Session)
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tSTATE\tPREVIOUS\tPOSITION\tHEALTH")
	for _, e := range snap.Entities {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t(%.2f, %.2f)\t%.0f\n",
			e.Name, e.Kind, e.Machine.Current, e.Machine.Previous, e.X, e.Y, e.Health)
	}
	_ = tw.Flush()
}
