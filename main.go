package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/nightshade/internal/log"
	"github.com/milk9111/nightshade/prefabs"
)

func main() {
	sceneName := flag.String("scene", "scene.yaml", "scene asset to load")
	assets := flag.String("assets", prefabs.Dir, "directory whose assets override the embedded ones")
	watch := flag.Bool("watch", true, "reload the scene when assets change")
	debug := flag.Bool("debug", false, "draw the nav grid and sight lines, log at debug level")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	level := ""
	if *debug {
		level = "debug"
	}
	log.Configure(log.Config{Level: level, Console: true})
	prefabs.Dir = *assets

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("nightshade")

	game, err := NewGame(*sceneName, *watch, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Base().Fatal().Err(err).Msg("viewer stopped")
	}
}
