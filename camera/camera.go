// Package camera provides the 3-D orbit camera rig for the experiment scene.
package camera

import "math"

// Vec3 is a point or direction in scene space.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Len returns the Euclidean length of v.
func (v Vec3) Len() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// View identifies a camera preset.
type View int

const (
	ViewOverview View = iota
	ViewScreen
)

func (v View) String() string {
	switch v {
	case ViewOverview:
		return "overview"
	case ViewScreen:
		return "screen"
	default:
		return "unknown"
	}
}

// Preset is a named camera placement.
type Preset struct {
	View      View
	Position  Vec3
	Target    Vec3
	FOV       float32 // Vertical field of view in degrees
	Orbit     bool    // User may orbit and zoom
	ShowSlits bool    // Slit plate drawn opaque
}

// Overview looks at the whole apparatus from above and to the side.
func Overview() Preset {
	return Preset{
		View:      ViewOverview,
		Position:  Vec3{5, 2.5, 5},
		Target:    Vec3{0, 0, -0.5},
		FOV:       45,
		Orbit:     true,
		ShowSlits: true,
	}
}

// ScreenView looks straight at a screen placed screenZ units behind the slits.
func ScreenView(screenZ float32) Preset {
	return Preset{
		View:     ViewScreen,
		Position: Vec3{0, 0, 0.1},
		Target:   Vec3{0, 0, -screenZ},
		FOV:      75,
	}
}

// Orbit limits.
const (
	MinRadius = 2
	MaxRadius = 20
	maxPitch  = 85 * math.Pi / 180
)

// DefaultStiffness is the spring angular frequency in 1/s.
const DefaultStiffness = 6

// Rig moves a camera toward its goal preset with a critically damped spring.
type Rig struct {
	// Current state
	Position Vec3
	Target   Vec3
	FOV      float32

	// Goal state
	Goal Preset

	// Spring angular frequency
	Stiffness float32

	posVel    Vec3
	targetVel Vec3
	fovVel    float32
}

// New creates a rig resting at p.
func New(p Preset) *Rig {
	return &Rig{
		Position:  p.Position,
		Target:    p.Target,
		FOV:       p.FOV,
		Goal:      p,
		Stiffness: DefaultStiffness,
	}
}

// SetPreset starts a transition to p.
func (r *Rig) SetPreset(p Preset) {
	r.Goal = p
}

// Snap jumps to p with no transition.
func (r *Rig) Snap(p Preset) {
	*r = Rig{
		Position:  p.Position,
		Target:    p.Target,
		FOV:       p.FOV,
		Goal:      p,
		Stiffness: r.Stiffness,
	}
}

// View returns the view of the goal preset.
func (r *Rig) View() View { return r.Goal.View }

// CanOrbit reports whether user orbit input applies.
func (r *Rig) CanOrbit() bool { return r.Goal.Orbit }

// Update advances the spring by dt seconds.
func (r *Rig) Update(dt float32) {
	if dt <= 0 {
		return
	}
	w := r.Stiffness
	if w <= 0 {
		w = DefaultStiffness
	}
	r.Position, r.posVel = springVec(r.Position, r.posVel, r.Goal.Position, w, dt)
	r.Target, r.targetVel = springVec(r.Target, r.targetVel, r.Goal.Target, w, dt)
	r.FOV, r.fovVel = spring(r.FOV, r.fovVel, r.Goal.FOV, w, dt)
}

// Settled reports whether the rig is within eps of its goal and nearly at rest.
func (r *Rig) Settled(eps float32) bool {
	return r.Position.Sub(r.Goal.Position).Len() <= eps &&
		r.Target.Sub(r.Goal.Target).Len() <= eps &&
		absf(r.FOV-r.Goal.FOV) <= eps &&
		r.posVel.Len() <= eps && r.targetVel.Len() <= eps
}

// Orbit rotates the goal position around the goal target by yaw and pitch
// radians. Ignored for presets without orbit.
func (r *Rig) Orbit(yaw, pitch float32) {
	if !r.Goal.Orbit {
		return
	}
	radius, az, el := spherical(r.Goal.Position.Sub(r.Goal.Target))
	az += float64(yaw)
	el = clamp64(el+float64(pitch), -maxPitch, maxPitch)
	r.Goal.Position = r.Goal.Target.Add(cartesian(radius, az, el))
}

// Zoom scales the orbit radius by factor, clamped to [MinRadius, MaxRadius].
// Ignored for presets without orbit.
func (r *Rig) Zoom(factor float32) {
	if !r.Goal.Orbit || factor <= 0 {
		return
	}
	radius, az, el := spherical(r.Goal.Position.Sub(r.Goal.Target))
	radius = clamp64(radius*float64(factor), MinRadius, MaxRadius)
	r.Goal.Position = r.Goal.Target.Add(cartesian(radius, az, el))
}

// spring is one step of a critically damped spring toward goal.
func spring(x, v, goal, w, dt float32) (float32, float32) {
	d := float64(x - goal)
	vel := float64(v)
	decay := math.Exp(-float64(w * dt))
	tmp := (vel + float64(w)*d) * float64(dt)
	vel = (vel - float64(w)*tmp) * decay
	d = (d + tmp) * decay
	return goal + float32(d), float32(vel)
}

func springVec(x, v, goal Vec3, w, dt float32) (Vec3, Vec3) {
	var out, vel Vec3
	out.X, vel.X = spring(x.X, v.X, goal.X, w, dt)
	out.Y, vel.Y = spring(x.Y, v.Y, goal.Y, w, dt)
	out.Z, vel.Z = spring(x.Z, v.Z, goal.Z, w, dt)
	return out, vel
}

// spherical converts an offset to radius, azimuth around Y and elevation.
func spherical(v Vec3) (radius, az, el float64) {
	x, y, z := float64(v.X), float64(v.Y), float64(v.Z)
	radius = math.Sqrt(x*x + y*y + z*z)
	if radius == 0 {
		return 0, 0, 0
	}
	az = math.Atan2(x, z)
	el = math.Asin(y / radius)
	return radius, az, el
}

func cartesian(radius, az, el float64) Vec3 {
	h := radius * math.Cos(el)
	return Vec3{
		X: float32(h * math.Sin(az)),
		Y: float32(radius * math.Sin(el)),
		Z: float32(h * math.Cos(az)),
	}
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func clamp64(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
