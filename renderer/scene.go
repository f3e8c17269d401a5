// Package renderer draws the experiment scene with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slits/camera"
	"github.com/pthm-cable/slits/histogram"
	"github.com/pthm-cable/slits/optics"
	"github.com/pthm-cable/slits/scene"
	"github.com/pthm-cable/slits/systems"
)

// Scene colours.
var (
	ColBackground = rl.NewColor(12, 14, 18, 255)
	ColSource     = rl.NewColor(230, 200, 80, 255)
	ColPlate      = rl.NewColor(90, 95, 110, 255)
	ColPlateFaded = rl.NewColor(90, 95, 110, 60)
	ColRail       = rl.NewColor(50, 55, 65, 255)
	ColScreen     = rl.NewColor(235, 235, 240, 255)
	ColImpact     = rl.NewColor(220, 40, 40, 255)
	ColCurve      = rl.NewColor(40, 90, 230, 255)
	ColTick       = rl.NewColor(160, 160, 170, 255)
)

// CurveResolution is the number of segments in the intensity curve.
const CurveResolution = 1000

// Camera3D converts the rig's current state for raylib.
func Camera3D(r *camera.Rig) rl.Camera3D {
	return rl.NewCamera3D(
		rl.NewVector3(r.Position.X, r.Position.Y, r.Position.Z),
		rl.NewVector3(r.Target.X, r.Target.Y, r.Target.Z),
		rl.NewVector3(0, 1, 0),
		r.FOV,
		rl.CameraPerspective,
	)
}

// SceneRenderer draws the apparatus and overlays. Layout buffers are reused
// between frames.
type SceneRenderer struct {
	bars  []scene.Bar
	curve []scene.Point

	curveParams optics.Params
	curveValid  bool
}

// NewSceneRenderer creates a scene renderer.
func NewSceneRenderer() *SceneRenderer {
	return &SceneRenderer{}
}

// DrawApparatus draws the source, rail, slit plate and screen. Must be
// called between BeginMode3D and EndMode3D.
func (s *SceneRenderer) DrawApparatus(p optics.Params, showSlits bool) {
	l := scene.Apparatus(p)
	length := l.SourceZ - l.ScreenZ

	// Rail under the beam line
	rl.DrawCube(rl.NewVector3(0, -scene.ScreenSize/2-0.05, (l.SourceZ+l.ScreenZ)/2), 0.2, 0.05, length, ColRail)

	// Source
	rl.DrawSphere(rl.NewVector3(0, 0, l.SourceZ), 0.12, ColSource)

	// Slit plate: three solid pieces around the two openings
	plate := ColPlate
	if !showSlits {
		plate = ColPlateFaded
	}
	half := l.PlateWidth / 2
	pieces := []scene.Span{
		{Min: -half, Max: l.Slits[0].Min},
		{Min: l.Slits[0].Max, Max: l.Slits[1].Min},
		{Min: l.Slits[1].Max, Max: half},
	}
	for _, sp := range pieces {
		if sp.Width() <= 0 {
			continue
		}
		rl.DrawCube(rl.NewVector3(sp.Center(), 0, 0), sp.Width(), scene.ScreenSize/2, 0.03, plate)
	}

	// Screen
	rl.DrawCube(rl.NewVector3(0, 0, l.ScreenZ-0.02), scene.ScreenSize, scene.ScreenSize, 0.02, ColScreen)
	rl.DrawCubeWires(rl.NewVector3(0, 0, l.ScreenZ-0.02), scene.ScreenSize, scene.ScreenSize, 0.02, ColRail)
}

// DrawParticles draws one point per impact, just in front of the screen.
func (s *SceneRenderer) DrawParticles(particles []systems.Particle) {
	for i := range particles {
		p := &particles[i]
		rl.DrawPoint3D(rl.NewVector3(float32(p.X), float32(p.Y), float32(p.Z)+scene.OverlayGap/2), ColImpact)
	}
}

// DrawBars draws the histogram standing on the bottom edge of the screen.
func (s *SceneRenderer) DrawBars(m *histogram.Map) {
	s.bars = scene.Bars(m, s.bars)
	z := float32(-m.Params().ScreenDistance + scene.OverlayGap)
	base := float32(-scene.PatternHalf)
	for _, b := range s.bars {
		c := scene.BarShade(b.Height)
		rl.DrawCube(rl.NewVector3(b.X, base+b.Height/2, z), b.Width, b.Height, 0.01, rl.NewColor(c.R, c.G, c.B, c.A))
	}
}

// DrawCurve draws the theoretical intensity curve. The polyline is rebuilt
// only when p changes.
func (s *SceneRenderer) DrawCurve(p optics.Params) {
	if !s.curveValid || p != s.curveParams {
		s.curve = scene.Curve(p, CurveResolution, s.curve)
		s.curveParams = p
		s.curveValid = true
	}
	for i := 1; i < len(s.curve); i++ {
		a, b := s.curve[i-1], s.curve[i]
		rl.DrawLine3D(rl.NewVector3(a.X, a.Y, a.Z), rl.NewVector3(b.X, b.Y, b.Z), ColCurve)
	}
}

// DrawScaleTicks draws the ruler under the screen in 3-D.
func (s *SceneRenderer) DrawScaleTicks(p optics.Params) {
	y := float32(-scene.ScreenSize/2 - 0.02)
	z := float32(-p.ScreenDistance + scene.OverlayGap)
	for _, t := range scene.Ticks(p) {
		h := float32(0.05)
		if t.Major {
			h = 0.12
		}
		rl.DrawLine3D(rl.NewVector3(t.X, y, z), rl.NewVector3(t.X, y-h, z), ColTick)
	}
}

// DrawScaleLabels writes the major tick labels in screen space. Must be
// called outside BeginMode3D.
func (s *SceneRenderer) DrawScaleLabels(p optics.Params, cam rl.Camera3D) {
	y := float32(-scene.ScreenSize/2 - 0.2)
	z := float32(-p.ScreenDistance + scene.OverlayGap)
	for _, t := range scene.Ticks(p) {
		if !t.Major {
			continue
		}
		pos := rl.GetWorldToScreen(rl.NewVector3(t.X, y, z), cam)
		w := rl.MeasureText(t.Label, 12)
		rl.DrawText(t.Label, int32(pos.X)-w/2, int32(pos.Y), 12, ColTick)
	}
}

// PickScreenX returns the scene x where the mouse ray hits the screen plane.
func PickScreenX(mouse rl.Vector2, cam rl.Camera3D, screenDistance float64) (float64, bool) {
	ray := rl.GetScreenToWorldRay(mouse, cam)
	if ray.Direction.Z == 0 {
		return 0, false
	}
	t := (float32(-screenDistance) - ray.Position.Z) / ray.Direction.Z
	if t <= 0 {
		return 0, false
	}
	x := ray.Position.X + t*ray.Direction.X
	y := ray.Position.Y + t*ray.Direction.Y
	if y < -scene.ScreenSize/2 || y > scene.ScreenSize/2 {
		return 0, false
	}
	return float64(x), true
}
