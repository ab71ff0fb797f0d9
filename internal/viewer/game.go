// Package viewer shows a running flock in an ebiten window.
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flock3d/internal/world"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/render"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/ui"
)

// stepTimeout is how long the viewer waits for a snapshot before asking again.
const stepTimeout = time.Second

type Game struct {
	ctx        context.Context
	logger     golog.Logger
	worldPID   *actor.PID
	snapshotCh chan *world.Snapshot
	lastState  *world.Snapshot

	// a Step is in flight until its snapshot arrives
	pending  bool
	lastSent time.Time

	cfg       *simulation.Config
	projector *render.Projector
	canvas    *ebiten.Image

	panel          *ui.Panel
	widgetTopView  *ui.Checkbox
	widgetPaused   *ui.Checkbox
	widgetStepsPer *ui.Slider

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64
}

// NewGame spawns the world actor in system and builds the window state around it.
func NewGame(ctx context.Context, cfg *simulation.Config, system actor.ActorSystem, logger golog.Logger) (*Game, error) {
	snapshotCh := make(chan *world.Snapshot, 4)

	worldPID, err := system.Spawn(ctx, "world", world.NewActor(snapshotCh, cfg, nil))
	if err != nil {
		return nil, fmt.Errorf("spawning world: %w", err)
	}

	g := &Game{
		ctx:        ctx,
		logger:     logger,
		worldPID:   worldPID,
		snapshotCh: snapshotCh,
		lastState:  &world.Snapshot{},
		cfg:        cfg,
		projector:  render.NewProjector(cfg.Size, render.ViewSide),
		canvas:     ebiten.NewImage(cfg.Size, cfg.Size),
	}

	panel := ui.NewPanel("Flock", 10, 10, 200, 230)
	panel.AddSection("View")
	g.widgetTopView = panel.AddCheckbox("Top view", false)
	g.widgetTopView.OnChange = func(top bool) {
		g.projector.View = render.ViewFor(top)
	}
	g.widgetPaused = panel.AddCheckbox("Paused", false)
	panel.EndSection()

	panel.AddSection("Simulation")
	g.widgetStepsPer = panel.AddSlider("Steps per frame", 1, 10, 1, 1)
	panel.AddButton("Reset flock", g.reset)
	panel.EndSection()
	g.panel = panel

	return g, nil
}

func (g *Game) reset() {
	if err := actor.Tell(g.ctx, g.worldPID, world.Reset()); err != nil {
		g.logger.Errorf("reset: %v", err)
	}
}

func (g *Game) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.widgetPaused.Toggle()
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		g.widgetTopView.Toggle()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		g.panel.Hidden = !g.panel.Hidden
	}
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	g.panel.Update()
	g.handleKeys()

	// keep only the newest snapshot
	for drained := false; !drained; {
		select {
		case snap := <-g.snapshotCh:
			g.lastState = snap
			g.pending = false
		default:
			drained = true
		}
	}

	if g.widgetPaused.Value {
		return nil
	}
	if g.pending && time.Since(g.lastSent) < stepTimeout {
		return nil
	}
	if err := actor.Tell(g.ctx, g.worldPID, world.Step(uint32(g.widgetStepsPer.Int()))); err != nil {
		return fmt.Errorf("stepping world: %w", err)
	}
	g.pending = true
	g.lastSent = time.Now()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	g.projector.Project(g.lastState.Boids)
	g.canvas.WritePixels(g.projector.Pixels())
	screen.DrawImage(g.canvas, nil)

	g.panel.Draw(screen)

	s := g.lastState.Stats
	msg := fmt.Sprintf("Tick: %d\nBoids: %d\nView: %s\nSpeed: %.2f\nPolarization: %.2f\nWind: %.2f\n\nFPS: %.1f\nUpdate: %.2fms\nDraw:   %.2fms",
		g.lastState.Tick,
		len(g.lastState.Boids),
		g.projector.View,
		s.MeanSpeed,
		s.Polarization,
		s.WindSpeed,
		ebiten.ActualFPS(),
		g.updateAvg,
		g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, g.cfg.Size-160, 10)
}

func (g *Game) Layout(w, h int) (int, int) { return g.cfg.Size, g.cfg.Size }
