package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slits/camera"
	"github.com/pthm-cable/slits/optics"
)

// ControlState is what the control panel displays.
type ControlState struct {
	Types     []optics.ParticleType
	TypeIndex int
	Scales    []float64
	Params    optics.Params
	Firing    bool
	Total     int
	Max       int
	View      camera.View
	Overlays  *OverlayRegistry
}

// Actions are the user requests gathered from one frame of the panel.
type Actions struct {
	Params        optics.Params
	ParamsChanged bool
	TypeIndex     int
	Fire          bool
	ToggleFast    bool
	Clear         bool
	View          camera.View
	ViewChanged   bool
}

// ControlPanel renders the experiment controls on the left of the screen.
type ControlPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlPanel creates a new control panel.
func NewControlPanel(x, y, width int32) *ControlPanel {
	return &ControlPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// Toggle switches panel visibility.
func (c *ControlPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlPanel) IsVisible() bool {
	return c.visible
}

// Contains reports whether the screen point lies over the panel, so
// camera drags starting there can be ignored.
func (c *ControlPanel) Contains(px, py int32) bool {
	return c.visible && px >= c.x && px < c.x+c.width && py >= c.y && py < c.y+c.height()
}

func (c *ControlPanel) height() int32 {
	return 560
}

// Draw renders the panel and returns the actions taken this frame.
func (c *ControlPanel) Draw(s ControlState) Actions {
	act := Actions{Params: s.Params, TypeIndex: s.TypeIndex, View: s.View}
	if !c.visible {
		return act
	}

	r := c.renderer
	pad := r.Theme.Padding
	inner := c.width - pad*2
	x := c.x + pad

	r.DrawPanel(c.x, c.y, c.width, c.height())
	y := c.y + pad
	rl.DrawText("Double Slit", x, y, 18, rl.White)
	y += 28

	// Particle type
	y = r.DrawSectionHeader(x, y, "Particle")
	if len(s.Types) > 0 {
		idx := s.TypeIndex
		if r.DrawButton(x, y, 26, "<") {
			idx = (idx - 1 + len(s.Types)) % len(s.Types)
		}
		if r.DrawButton(x+inner-26, y, 26, ">") {
			idx = (idx + 1) % len(s.Types)
		}
		name := s.Types[s.TypeIndex].Name
		tw := rl.MeasureText(name, 14)
		rl.DrawText(name, x+(inner-tw)/2, y+6, 14, r.Theme.ValueColor)
		y += 36

		if idx != s.TypeIndex {
			act.TypeIndex = idx
			act.Params = s.Types[idx].Apply(s.Params)
			act.ParamsChanged = true
		}
	}

	// Geometry sliders within the type's ranges
	if len(s.Types) > 0 && !act.ParamsChanged {
		pt := s.Types[s.TypeIndex]
		p := act.Params
		p.Wavelength = c.logSlider(&y, x, inner, "Wavelength", pt.Wavelength, p.Wavelength)
		p.SlitWidth = c.logSlider(&y, x, inner, "Slit width", pt.SlitWidth, p.SlitWidth)
		p.SlitSeparation = c.logSlider(&y, x, inner, "Slit separation", pt.SlitSeparation, p.SlitSeparation)
		if p != act.Params {
			act.Params = p
			act.ParamsChanged = true
		}
	} else {
		y += 3 * (r.Theme.LineHeight + 24)
	}
	y = r.DrawLabelValue(x, y, "Distance", optics.FormatLength(act.Params.ScreenDistance))

	// Display scale
	if len(s.Scales) > 0 {
		y = r.DrawSectionHeader(x, y+4, "Display scale")
		i := ScaleIndex(s.Scales, act.Params.DisplayScale)
		next := i
		if r.DrawButton(x, y, 26, "<") && i > 0 {
			next = i - 1
		}
		if r.DrawButton(x+inner-26, y, 26, ">") && i < len(s.Scales)-1 {
			next = i + 1
		}
		label := fmt.Sprintf("x%g", s.Scales[i])
		tw := rl.MeasureText(label, 14)
		rl.DrawText(label, x+(inner-tw)/2, y+6, 14, r.Theme.ValueColor)
		y += 36
		if next != i && !act.ParamsChanged {
			act.Params = act.Params.WithDisplayScale(s.Scales[next])
			act.ParamsChanged = true
		}
	}

	// Firing
	y = r.DrawSectionHeader(x, y+4, "Firing")
	half := (inner - pad) / 2
	if r.DrawButton(x, y, half, "Fire") {
		act.Fire = true
	}
	fastLabel := "Fast fire"
	if s.Firing {
		fastLabel = "Stop"
	}
	if r.DrawButton(x+half+pad, y, half, fastLabel) {
		act.ToggleFast = true
	}
	y += 32
	if r.DrawButton(x, y, inner, "Clear") {
		act.Clear = true
	}
	y += 34

	var fill float32
	if s.Max > 0 {
		fill = float32(s.Total) / float32(s.Max)
	}
	y = r.DrawBar(x, y, "Capacity", fill, inner)
	y = r.DrawLabelValue(x, y, "Particles", fmt.Sprintf("%d / %d", s.Total, s.Max))

	// View
	y = r.DrawSectionHeader(x, y+4, "View")
	if r.DrawButton(x, y, half, "Overview") && s.View != camera.ViewOverview {
		act.View = camera.ViewOverview
		act.ViewChanged = true
	}
	if r.DrawButton(x+half+pad, y, half, "Screen") && s.View != camera.ViewScreen {
		act.View = camera.ViewScreen
		act.ViewChanged = true
	}
	y += 34

	if s.Overlays != nil {
		c.drawOverlayToggles(x, y, inner, s.Overlays)
	}
	return act
}

// logSlider draws a slider mapped logarithmically onto rng and returns the
// resulting value. Untouched sliders return v unchanged.
func (c *ControlPanel) logSlider(y *int32, x, width int32, label string, rng optics.Range, v float64) float64 {
	f := float32(rng.Fraction(v))
	var nf float32
	*y, nf = c.renderer.DrawSlider(x, *y, width, label, optics.FormatLength(v), f)
	if nf == f {
		return v
	}
	return rng.At(float64(nf))
}

// drawOverlayToggles lists scene overlays with their key bindings.
func (c *ControlPanel) drawOverlayToggles(x, y, width int32, overlays *OverlayRegistry) int32 {
	r := c.renderer
	for _, desc := range overlays.All() {
		if desc.Category != "scene" {
			continue
		}
		enabled := overlays.IsEnabled(desc.ID)

		statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
		nameColor := r.Theme.LabelColor
		if enabled {
			statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
			nameColor = rl.White
		}
		rl.DrawRectangle(x, y+2, 8, 8, statusColor)
		rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

		if desc.KeyLabel != "" {
			keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
			keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
			rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
		}
		y += r.Theme.LineHeight
	}
	return y
}

// ScaleIndex returns the index of the scale closest to v.
func ScaleIndex(scales []float64, v float64) int {
	best := 0
	for i, s := range scales {
		if absDiff(s, v) < absDiff(scales[best], v) {
			best = i
		}
	}
	return best
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
