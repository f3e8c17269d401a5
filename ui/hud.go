package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slits/optics"
	"github.com/pthm-cable/slits/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	ParticleType string
	Params       optics.Params
	Total        int
	Max          int
	Epoch        uint64
	Firing       bool
	View         string
	FPS          int32
	Stats        telemetry.WindowStats // Most recent stats window
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD in the top-right corner.
func (h *HUD) Draw(data HUDData) {
	p := data.Params
	lines := []string{
		fmt.Sprintf("%s  λ=%s", data.ParticleType, optics.FormatLength(p.Wavelength)),
		fmt.Sprintf("w=%s  d=%s  L=%s",
			optics.FormatLength(p.SlitWidth),
			optics.FormatLength(p.SlitSeparation),
			optics.FormatLength(p.ScreenDistance)),
		fmt.Sprintf("Particles: %d / %d | Epoch: %d", data.Total, data.Max, data.Epoch),
		fmt.Sprintf("Accept: %.1f%% | χ²/dof: %.2f | FPS: %d",
			data.Stats.AcceptRate*100, data.Stats.Chi2DOF, data.FPS),
	}

	x := data.ScreenWidth - 340
	y := int32(10)
	for _, line := range lines {
		rl.DrawText(line, x, y, 16, rl.LightGray)
		y += 20
	}

	status := "Idle"
	color := rl.Gray
	if data.Firing {
		status = "FIRING"
		color = rl.Red
	} else if data.Total >= data.Max {
		status = "FULL"
		color = rl.Yellow
	}
	rl.DrawText(fmt.Sprintf("%s | %s view", status, data.View), x, y, 16, color)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders frame timing by phase.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s  Max: %s", stats.AvgFrame.Round(time.Microsecond), stats.MaxFrame.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, phase := range []string{telemetry.PhaseFire, telemetry.PhaseTelemetry, telemetry.PhaseRender} {
		avg := stats.PhaseAvg[phase]
		pct := stats.PhasePct[phase]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", phase, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
