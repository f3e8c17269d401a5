package app

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slits/camera"
)

// Orbit sensitivity in radians per pixel of mouse drag.
const orbitSpeed = 0.005

// handleInput processes keyboard and mouse input.
func (a *App) handleInput() {
	a.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	exp := a.run.Experiment()
	if rl.IsKeyPressed(rl.KeySpace) {
		exp.ToggleFastFire()
	}
	if rl.IsKeyPressed(rl.KeyF) {
		exp.FireOnce()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		exp.ClearParticles()
	}
	if rl.IsKeyPressed(rl.KeyOne) {
		a.setView(camera.ViewOverview)
	}
	if rl.IsKeyPressed(rl.KeyTwo) {
		a.setView(camera.ViewScreen)
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		a.controls.Toggle()
	}

	if key := rl.GetKeyPressed(); key != 0 {
		a.overlays.HandleKeyPress(key)
	}

	a.handleCameraInput()
}

// handleCameraInput orbits on left drag outside the panel and zooms on wheel.
func (a *App) handleCameraInput() {
	if !a.rig.CanOrbit() {
		return
	}
	mouse := rl.GetMousePosition()
	if a.controls.Contains(int32(mouse.X), int32(mouse.Y)) {
		return
	}

	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		d := rl.GetMouseDelta()
		a.rig.Orbit(-d.X*orbitSpeed, d.Y*orbitSpeed)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		a.rig.Zoom(1 - wheel*0.1)
	}
}

// handleResize checks for window resize and moves anchored panels.
func (a *App) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	if w == a.screenW && h == a.screenH {
		return
	}
	a.screenW = w
	a.screenH = h
	a.perfPanel.SetPosition(w-260, h-110)
	a.inspector.SetPosition(w-230, 130)
}
