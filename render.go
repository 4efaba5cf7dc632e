package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/nightshade/component"
	"github.com/milk9111/nightshade/physics"
	"github.com/milk9111/nightshade/scene"
	"golang.org/x/image/colornames"
)

const (
	viewMargin  = 0.95
	actorRadius = 0.35
)

// renderer draws the scene top-down, world +Y pointing up the screen.
type renderer struct {
	sc     *scene.Scene
	grid   *component.Grid
	scale  float64
	offX   float64
	offY   float64
	worldH float64
}

func newRenderer(sc *scene.Scene, width, height int) renderer {
	grid := sc.Grid()
	worldW := float64(grid.Width) * grid.CellSize
	worldH := float64(grid.Height) * grid.CellSize
	scale := min(float64(width)/worldW, float64(height)/worldH) * viewMargin
	return renderer{
		sc:     sc,
		grid:   grid,
		scale:  scale,
		offX:   (float64(width) - worldW*scale) / 2,
		offY:   (float64(height) - worldH*scale) / 2,
		worldH: worldH,
	}
}

func (r renderer) toScreen(p cp.Vector) (float32, float32) {
	local := p.Sub(r.grid.Origin)
	return float32(r.offX + local.X*r.scale), float32(r.offY + (r.worldH-local.Y)*r.scale)
}

func (r renderer) length(d float64) float32 {
	return float32(d * r.scale)
}

func (r renderer) draw(screen *ebiten.Image, snap scene.Snapshot, debug bool) {
	screen.Fill(colornames.Darkslategray)

	if debug {
		r.drawBlocked(screen)
	}
	r.drawWalls(screen)
	r.drawWaypoints(screen)
	r.drawActors(screen, snap, debug)
}

func (r renderer) drawBlocked(screen *ebiten.Image) {
	size := r.length(r.grid.CellSize)
	tint := color.RGBA{R: 255, A: 40}
	for y := range r.grid.Height {
		for x := range r.grid.Width {
			c := component.Cell{X: x, Y: y}
			if !r.grid.Blocked(c) {
				continue
			}
			center := r.grid.Center(c)
			sx, sy := r.toScreen(center)
			vector.FillRect(screen, sx-size/2, sy-size/2, size, size, tint, false)
		}
	}
}

func layerColor(layer physics.Layer) color.Color {
	switch layer {
	case physics.LayerDoor:
		return colornames.Sienna
	case physics.LayerProp:
		return colornames.Darkolivegreen
	}
	return colornames.Slategray
}

func (r renderer) drawWalls(screen *ebiten.Image) {
	for _, box := range r.sc.Physics().Bounds() {
		// Min is bottom-left in world space, so its screen y is the lower edge.
		x0, y1 := r.toScreen(box.Min)
		x1, y0 := r.toScreen(box.Max)
		vector.FillRect(screen, x0, y0, x1-x0, y1-y0, layerColor(box.Layer), false)
		vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 1, colornames.Black, false)
	}
}

func (r renderer) drawWaypoints(screen *ebiten.Image) {
	for _, g := range r.sc.Waypoints().Groups() {
		for _, wp := range g.Points {
			x, y := r.toScreen(wp.Position)
			clr := color.Color(colornames.Gold)
			if !wp.Free() {
				clr = colornames.Orangered
			}
			vector.StrokeCircle(screen, x, y, r.length(0.2), 2, clr, true)
		}
	}
}

func (r renderer) drawActors(screen *ebiten.Image, snap scene.Snapshot, debug bool) {
	player, hasPlayer := snap.Find("player")
	playerPos := cp.Vector{X: player.X, Y: player.Y}

	for _, e := range snap.Entities {
		pos := cp.Vector{X: e.X, Y: e.Y}
		x, y := r.toScreen(pos)

		clr := color.Color(colornames.Crimson)
		if e.Kind == "player" {
			clr = colornames.Deepskyblue
		}
		if e.Dead {
			clr = colornames.Dimgray
		}

		if debug && e.Kind == "npc" && hasPlayer && !e.Dead {
			px, py := r.toScreen(playerPos)
			sight := color.Color(colornames.Limegreen)
			if !r.sc.Physics().LineOfSight(pos, playerPos, physics.LayerSight) {
				sight = color.RGBA{R: 90, G: 90, B: 90, A: 120}
			}
			vector.StrokeLine(screen, x, y, px, py, 1, sight, true)
		}

		vector.FillCircle(screen, x, y, r.length(actorRadius), clr, true)
		if e.Kind == "player" {
			fwd := pos.Add(r.sc.Controller().Body.Forward().Mult(actorRadius * 2))
			fx, fy := r.toScreen(fwd)
			vector.StrokeLine(screen, x, y, fx, fy, 2, colornames.White, true)
		}

		label := fmt.Sprintf("%s [%s] %.0f", e.Name, e.Machine.Current, e.Health)
		ebitenutil.DebugPrintAt(screen, label, int(x)+int(r.length(actorRadius))+2, int(y)-8)
	}
}
