package main

import (
	"fmt"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/nightshade/input"
	"github.com/milk9111/nightshade/internal/log"
	"github.com/milk9111/nightshade/prefabs"
	"github.com/milk9111/nightshade/scene"
	"github.com/rs/zerolog"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

type Game struct {
	frames int

	sceneName string
	scene     *scene.Scene
	live      *input.Scripted
	keys      *keyboardReader
	watcher   *prefabs.Watcher
	log       zerolog.Logger

	pauseUI   *ebitenui.UI
	menuTitle *widget.Text
	debug     bool
}

func NewGame(sceneName string, watch, debug bool) (*Game, error) {
	live := input.NewScripted(input.Tape{})
	g := &Game{
		sceneName: sceneName,
		live:      live,
		keys:      newKeyboardReader(live),
		log:       log.WithComponent("viewer"),
		debug:     debug,
	}

	sc, err := g.load()
	if err != nil {
		return nil, err
	}
	g.scene = sc
	ebiten.SetTPS(sc.Spec().TickRate)

	if watch {
		w, err := prefabs.NewWatcher(prefabs.Dir)
		if err != nil {
			g.log.Warn().Err(err).Str("dir", prefabs.Dir).Msg("hot reload disabled")
		} else {
			g.watcher = w
		}
	}

	g.pauseUI = NewPauseUI(g)
	return g, nil
}

func (g *Game) load() (*scene.Scene, error) {
	return scene.Load(g.sceneName,
		scene.WithLogger(log.WithComponent("scene")),
		scene.WithLiveInput(g.live),
	)
}

// reload rebuilds the scene from disk, keeping the current one on failure.
func (g *Game) reload(reason string) {
	sc, err := g.load()
	if err != nil {
		g.log.Error().Err(err).Str("reason", reason).Msg("reload failed, keeping current scene")
		return
	}
	_ = g.scene.Close()
	g.scene = sc
	ebiten.SetTPS(sc.Spec().TickRate)
	g.log.Info().Str("reason", reason).Msg("scene reloaded")
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(name)
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.log.Warn().Err(err).Msg("asset watcher error")
			}
		default:
			return
		}
	}
}

func (g *Game) Update() error {
	g.frames++
	g.pollWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.debug = !g.debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.reload("F5")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if !g.scene.Pause() {
			g.scene.Resume()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.scene.Restart()
	}

	if g.menuVisible() {
		g.menuTitle.Label = "Paused"
		if g.scene.Finished() {
			g.menuTitle.Label = "Game over"
		}
		g.pauseUI.Update()
		return nil
	}

	g.keys.Update()
	g.scene.Tick()
	return nil
}

func (g *Game) menuVisible() bool {
	s := g.scene.Session()
	return s.Is(scene.StatePaused) || s.Is(scene.StateGameOver)
}

func (g *Game) Draw(screen *ebiten.Image) {
	snap := g.scene.Snapshot()
	newRenderer(g.scene, screen.Bounds().Dx(), screen.Bounds().Dy()).draw(screen, snap, g.debug)

	status := fmt.Sprintf("FPS: %.2f  tick %d  %s", ebiten.ActualFPS(), snap.Tick, snap.Session)
	if snap.Countdown > 0 {
		status += fmt.Sprintf("  game over in %d", snap.Countdown)
	}
	ebitenutil.DebugPrint(screen, status)

	if g.menuVisible() {
		g.pauseUI.Draw(screen)
	}
}

// Close releases the watcher and the scene.
func (g *Game) Close() error {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	return g.scene.Close()
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
