// Package config loads World tuning and demo scenario data from YAML,
// following the fallback chain vovakirdan-tui-arcade's internal/config uses
// for its per-game configs: an explicit path, then a user config directory,
// then a local configs/ directory, then an embedded default.
package config

import "github.com/vela-phys/vela2d"

// TuningConfig is the YAML-friendly mirror of vela2d.WorldConfig plus the
// gravity vector, which WorldConfig itself doesn't carry (gravity lives on
// World, not on its config struct).
type TuningConfig struct {
	GravityX float64 `yaml:"gravity_x"`
	GravityY float64 `yaml:"gravity_y"`

	VelocityIterations int  `yaml:"velocity_iterations"`
	PositionIterations int  `yaml:"position_iterations"`
	WarmStarting       bool `yaml:"warm_starting"`
	ContinuousPhysics  bool `yaml:"continuous_physics"`
	SubStepping        bool `yaml:"sub_stepping"`
	AllowSleep         bool `yaml:"allow_sleep"`
}

// DefaultTuningConfig mirrors vela2d.DefaultWorldConfig with Earth-ish
// downward gravity, the common starting point for the demo binary.
func DefaultTuningConfig() TuningConfig {
	wc := vela2d.DefaultWorldConfig()
	return TuningConfig{
		GravityX:           0,
		GravityY:           -10,
		VelocityIterations: wc.VelocityIterations,
		PositionIterations: wc.PositionIterations,
		WarmStarting:       wc.WarmStarting,
		ContinuousPhysics:  wc.ContinuousPhysics,
		SubStepping:        wc.SubStepping,
		AllowSleep:         wc.AllowSleep,
	}
}

// Gravity returns the configured gravity vector.
func (t TuningConfig) Gravity() vela2d.Vec2 {
	return vela2d.Vec2{X: t.GravityX, Y: t.GravityY}
}

// WorldConfig returns the vela2d.WorldConfig portion of t.
func (t TuningConfig) WorldConfig() vela2d.WorldConfig {
	return vela2d.WorldConfig{
		VelocityIterations: t.VelocityIterations,
		PositionIterations: t.PositionIterations,
		WarmStarting:       t.WarmStarting,
		ContinuousPhysics:  t.ContinuousPhysics,
		SubStepping:        t.SubStepping,
		AllowSleep:         t.AllowSleep,
	}
}

// NewWorld builds a *vela2d.World configured from t.
func (t TuningConfig) NewWorld() *vela2d.World {
	return vela2d.NewWorldWithConfig(t.Gravity(), t.WorldConfig())
}
