package config

import (
	"fmt"

	"github.com/vela-phys/vela2d"
)

// ShapeConfig describes one fixture's shape. Exactly one of Radius or
// Vertices should be set: Radius alone builds a Circle, Vertices builds a
// Polygon (a box is just four vertices, so there is no separate "box" kind).
type ShapeConfig struct {
	Radius   float64      `yaml:"radius,omitempty"`
	Vertices [][2]float64 `yaml:"vertices,omitempty"`
}

func (s ShapeConfig) build() (vela2d.Shape, error) {
	switch {
	case s.Radius > 0:
		return vela2d.NewCircle(vela2d.Vec2{}, s.Radius), nil
	case len(s.Vertices) >= 3:
		pts := make([]vela2d.Vec2, len(s.Vertices))
		for i, v := range s.Vertices {
			pts[i] = vela2d.Vec2{X: v[0], Y: v[1]}
		}
		poly := vela2d.NewPolygon()
		if err := poly.Set(pts); err != nil {
			return nil, err
		}
		return poly, nil
	default:
		return nil, fmt.Errorf("shape needs a radius or at least 3 vertices")
	}
}

// BodyConfig describes one body and its single fixture — enough for the
// demo binary's seed scenarios without needing a full scene-graph format.
type BodyConfig struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"` // "static", "kinematic", "dynamic"
	X           float64     `yaml:"x"`
	Y           float64     `yaml:"y"`
	Angle       float64     `yaml:"angle"`
	Shape       ShapeConfig `yaml:"shape"`
	Density     float64     `yaml:"density"`
	Friction    float64     `yaml:"friction"`
	Restitution float64     `yaml:"restitution"`
	Bullet      bool        `yaml:"bullet"`
}

func bodyType(s string) vela2d.BodyType {
	switch s {
	case "dynamic":
		return vela2d.DynamicBody
	case "kinematic":
		return vela2d.KinematicBody
	default:
		return vela2d.StaticBody
	}
}

// JointConfig describes a distance joint between two named bodies — the one
// joint kind simple enough to express as flat YAML without a per-type
// schema; richer joints are built programmatically in code that needs them.
type JointConfig struct {
	BodyA        string  `yaml:"body_a"`
	BodyB        string  `yaml:"body_b"`
	Length       float64 `yaml:"length"`
	FrequencyHz  float64 `yaml:"frequency_hz"`
	DampingRatio float64 `yaml:"damping_ratio"`
}

// ScenarioConfig is a full demo scene: tuning plus the bodies and joints to
// populate a fresh World with.
type ScenarioConfig struct {
	Tuning TuningConfig  `yaml:"tuning"`
	Bodies []BodyConfig  `yaml:"bodies"`
	Joints []JointConfig `yaml:"joints"`
}

// Build constructs a *vela2d.World from the scenario, returning the created
// bodies indexed by their BodyConfig.Name for joint wiring or inspection.
func (s ScenarioConfig) Build() (*vela2d.World, map[string]*vela2d.Body, error) {
	world := s.Tuning.NewWorld()
	bodies := make(map[string]*vela2d.Body, len(s.Bodies))

	for _, bc := range s.Bodies {
		def := vela2d.DefaultBodyDef()
		def.Type = bodyType(bc.Type)
		def.Position = vela2d.Vec2{X: bc.X, Y: bc.Y}
		def.Angle = bc.Angle
		def.Bullet = bc.Bullet

		body, err := world.CreateBody(def)
		if err != nil {
			return nil, nil, fmt.Errorf("body %q: %w", bc.Name, err)
		}

		shape, err := bc.Shape.build()
		if err != nil {
			return nil, nil, fmt.Errorf("body %q: %w", bc.Name, err)
		}

		fixtureDef := vela2d.DefaultFixtureDef()
		fixtureDef.Shape = shape
		fixtureDef.Density = bc.Density
		if bc.Friction > 0 {
			fixtureDef.Friction = bc.Friction
		}
		fixtureDef.Restitution = bc.Restitution

		if _, err := body.CreateFixture(fixtureDef); err != nil {
			return nil, nil, fmt.Errorf("body %q: %w", bc.Name, err)
		}

		if bc.Name != "" {
			bodies[bc.Name] = body
		}
	}

	for _, jc := range s.Joints {
		bodyA, okA := bodies[jc.BodyA]
		bodyB, okB := bodies[jc.BodyB]
		if !okA || !okB {
			return nil, nil, fmt.Errorf("joint references unknown body %q/%q", jc.BodyA, jc.BodyB)
		}
		def := vela2d.MakeDistanceJointDef(bodyA, bodyB, bodyA.GetPosition(), bodyB.GetPosition())
		if jc.Length > 0 {
			def.Length = jc.Length
		}
		def.FrequencyHz = jc.FrequencyHz
		def.DampingRatio = jc.DampingRatio
		if _, err := world.CreateJoint(def); err != nil {
			return nil, nil, fmt.Errorf("joint %q/%q: %w", jc.BodyA, jc.BodyB, err)
		}
	}

	return world, bodies, nil
}
