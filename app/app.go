// Package app is the graphical host: it owns the window-side state and maps
// user input onto the experiment.
package app

import (
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slits/camera"
	"github.com/pthm-cable/slits/config"
	"github.com/pthm-cable/slits/histogram"
	"github.com/pthm-cable/slits/optics"
	"github.com/pthm-cable/slits/renderer"
	"github.com/pthm-cable/slits/runner"
	"github.com/pthm-cable/slits/scene"
	"github.com/pthm-cable/slits/telemetry"
	"github.com/pthm-cable/slits/ui"
)

// Control legend shown along the bottom edge.
const controlsLegend = "[Space] fast fire  [F] fire  [C] clear  [1/2] view  [B] bars  [V] curve  [P] impacts  [S] scale  [I] inspect  [Tab] panel"

// Panel geometry.
const (
	panelX     = 10
	panelY     = 10
	panelWidth = 260
)

// App holds the graphical session state.
type App struct {
	cfg *config.Config
	run *runner.Runner

	typeIndex int

	rig       *camera.Rig
	scene     *renderer.SceneRenderer
	controls  *ui.ControlPanel
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	inspector *ui.Inspector
	overlays  *ui.OverlayRegistry

	// Bin under the mouse, valid when hoverOK
	hoverKey histogram.Key
	hoverOK  bool

	screenW, screenH int32
	lastFrame        time.Time
}

// New creates the app around a runner. The raylib window must exist.
func New(cfg *config.Config, run *runner.Runner) *App {
	a := &App{
		cfg:       cfg,
		run:       run,
		rig:       camera.New(camera.Overview()),
		scene:     renderer.NewSceneRenderer(),
		controls:  ui.NewControlPanel(panelX, panelY, panelWidth),
		hud:       ui.NewHUD(),
		inspector: ui.NewInspector(0, 0, 220),
		overlays:  ui.NewOverlayRegistry(),
		screenW:   int32(rl.GetScreenWidth()),
		screenH:   int32(rl.GetScreenHeight()),
	}
	a.perfPanel = ui.NewPerfPanel(a.screenW-260, a.screenH-110)
	a.inspector.SetPosition(a.screenW-230, 130)

	if pt, ok := optics.FindParticleType(cfg.ParticleTypes, cfg.Experiment.ParticleType); ok {
		for i, t := range cfg.ParticleTypes {
			if t.Name == pt.Name {
				a.typeIndex = i
			}
		}
	}
	return a
}

// Update handles input and advances the experiment by the real frame time.
func (a *App) Update() {
	now := time.Now()
	dt := a.cfg.Derived.FrameDT
	if !a.lastFrame.IsZero() {
		dt = now.Sub(a.lastFrame)
	}
	a.lastFrame = now

	perf := a.run.Perf()
	perf.StartFrame()

	a.handleInput()
	a.rig.Update(float32(dt.Seconds()))
	a.run.Step(dt)
}

// Draw renders one frame and applies the control panel's actions.
func (a *App) Draw() {
	a.run.Perf().StartPhase(telemetry.PhaseRender)
	exp := a.run.Experiment()
	p := exp.Params()
	m := exp.Map()
	cam := renderer.Camera3D(a.rig)

	a.updateHover(cam, p, m)

	rl.BeginDrawing()
	rl.ClearBackground(renderer.ColBackground)

	rl.BeginMode3D(cam)
	a.scene.DrawApparatus(p, a.rig.Goal.ShowSlits)
	if a.overlays.IsEnabled(ui.OverlayParticles) {
		a.scene.DrawParticles(exp.Particles())
	}
	if a.overlays.IsEnabled(ui.OverlayBars) {
		a.scene.DrawBars(m)
	}
	if a.overlays.IsEnabled(ui.OverlayCurve) {
		a.scene.DrawCurve(p)
	}
	if a.overlays.IsEnabled(ui.OverlayScale) {
		a.scene.DrawScaleTicks(p)
	}
	rl.EndMode3D()

	if a.overlays.IsEnabled(ui.OverlayScale) {
		a.scene.DrawScaleLabels(p, cam)
	}

	state := exp.State()
	a.hud.Draw(ui.HUDData{
		ParticleType: a.particleTypeName(),
		Params:       p,
		Total:        state.TotalFired,
		Max:          exp.MaxParticles(),
		Epoch:        state.Epoch,
		Firing:       state.Firing,
		View:         a.rig.View().String(),
		FPS:          rl.GetFPS(),
		Stats:        a.run.LastStats(),
		ScreenWidth:  a.screenW,
		ScreenHeight: a.screenH,
	})
	a.hud.DrawControls(a.screenH, controlsLegend)

	if a.overlays.IsEnabled(ui.OverlayInspector) && a.hoverOK {
		if info, ok := ui.NewBinInfo(m, a.hoverKey, a.cfg.Sampler.AcceptFloor); ok {
			a.inspector.Draw(info)
		}
	}
	if a.overlays.IsEnabled(ui.OverlayPerf) {
		a.perfPanel.Draw(a.run.Perf().Stats())
	}

	act := a.controls.Draw(ui.ControlState{
		Types:     a.cfg.ParticleTypes,
		TypeIndex: a.typeIndex,
		Scales:    a.cfg.DisplayScales,
		Params:    p,
		Firing:    state.Firing,
		Total:     state.TotalFired,
		Max:       exp.MaxParticles(),
		View:      a.rig.View(),
		Overlays:  a.overlays,
	})

	rl.EndDrawing()
	a.run.Perf().EndFrame()

	a.apply(act)
}

// apply carries out the control panel's requests after the frame.
func (a *App) apply(act ui.Actions) {
	exp := a.run.Experiment()
	if act.ParamsChanged {
		if err := exp.SetParameters(act.Params); err != nil {
			slog.Warn("rejected parameters", "error", err)
		} else {
			a.typeIndex = act.TypeIndex
		}
	}
	if act.Fire {
		exp.FireOnce()
	}
	if act.ToggleFast {
		exp.ToggleFastFire()
	}
	if act.Clear {
		exp.ClearParticles()
	}
	if act.ViewChanged {
		a.setView(act.View)
	}
}

func (a *App) setView(v camera.View) {
	switch v {
	case camera.ViewScreen:
		a.rig.SetPreset(camera.ScreenView(float32(a.run.Experiment().Params().ScreenDistance)))
	default:
		a.rig.SetPreset(camera.Overview())
	}
}

func (a *App) particleTypeName() string {
	if a.typeIndex < len(a.cfg.ParticleTypes) {
		return a.cfg.ParticleTypes[a.typeIndex].Name
	}
	return "custom"
}

// updateHover finds the histogram bin under the mouse cursor.
func (a *App) updateHover(cam rl.Camera3D, p optics.Params, m *histogram.Map) {
	a.hoverOK = false
	if !a.overlays.IsEnabled(ui.OverlayInspector) {
		return
	}
	x, ok := renderer.PickScreenX(rl.GetMousePosition(), cam, p.ScreenDistance)
	if !ok {
		return
	}
	a.hoverKey, a.hoverOK = scene.BinAt(m, x)
}

// Unload releases the session.
func (a *App) Unload() {
	if err := a.run.Close(); err != nil {
		slog.Error("failed to close session", "error", err)
	}
}
