package vela2d

// JointType identifies a joint's concrete kind, mirroring the enum the
// teacher stores on every joint so a caller can type-switch without an
// interface type assertion.
type JointType int

const (
	UnknownJoint JointType = iota
	RevoluteJointType
	PrismaticJointType
	DistanceJointType
	PulleyJointType
	MouseJointType
	GearJointType
	WheelJointType
	WeldJointType
	FrictionJointType
	RopeJointType
	MotorJointType
	AngleJointType
)

// solverData is the per-step working set every joint's velocity/position
// solve methods read and write: the shared Position/Velocity arrays an
// island assembles for all of its bodies, indexed by indexOf rather than by
// body pointer so a joint never has to walk a map on every solve iteration.
type solverData struct {
	step       TimeStep
	positions  []Position
	velocities []Velocity
	indexOf    map[*Body]int
}

func (d *solverData) indexA(j *jointBase) int { return d.indexOf[j.bodyA] }
func (d *solverData) indexB(j *jointBase) int { return d.indexOf[j.bodyB] }

// Joint is the common interface every joint variant satisfies. Island solve
// only ever talks to joints through this interface; the concrete variants
// hold whatever extra state (reference angle, spring frequency, ratio...)
// their constraint needs.
type Joint interface {
	Type() JointType
	BodyA() *Body
	BodyB() *Body
	UserData() interface{}
	SetUserData(interface{})
	CollideConnected() bool
	IsActive() bool

	GetAnchorA() Vec2
	GetAnchorB() Vec2
	GetReactionForce(invDt float64) Vec2
	GetReactionTorque(invDt float64) float64

	base() *jointBase
	initVelocityConstraints(data *solverData)
	solveVelocityConstraints(data *solverData)
	solvePositionConstraints(data *solverData) bool
}

// jointBase holds the state common to every joint variant and is embedded
// by each concrete joint type, the same layout the teacher's b2Joint base
// class uses.
type jointBase struct {
	jointType        JointType
	bodyA, bodyB     *Body
	collideConnected bool
	userData         interface{}

	islandFlag bool
}

func (j *jointBase) base() *jointBase           { return j }
func (j *jointBase) Type() JointType            { return j.jointType }
func (j *jointBase) BodyA() *Body                { return j.bodyA }
func (j *jointBase) BodyB() *Body                { return j.bodyB }
func (j *jointBase) UserData() interface{}       { return j.userData }
func (j *jointBase) SetUserData(v interface{})   { j.userData = v }
func (j *jointBase) CollideConnected() bool      { return j.collideConnected }
func (j *jointBase) IsActive() bool              { return j.bodyA.IsActive() && j.bodyB.IsActive() }

// JointDef is the common configuration every joint constructor accepts,
// embedded by each concrete *Def type the way the teacher embeds b2JointDef.
type JointDef struct {
	BodyA, BodyB     *Body
	CollideConnected bool
	UserData         interface{}
}

func newJointBase(t JointType, def JointDef) jointBase {
	return jointBase{
		jointType:        t,
		bodyA:            def.BodyA,
		bodyB:            def.BodyB,
		collideConnected: def.CollideConnected,
		userData:         def.UserData,
	}
}

// newJointFromDef dispatches a concrete *XxxJointDef value to its
// constructor. World.CreateJoint accepts any of these def types through
// this single entry point rather than exposing twelve CreateXxxJoint
// methods.
func newJointFromDef(def interface{}) (Joint, error) {
	switch d := def.(type) {
	case DistanceJointDef:
		return newDistanceJoint(d), nil
	case RevoluteJointDef:
		return newRevoluteJoint(d), nil
	case PrismaticJointDef:
		return newPrismaticJoint(d), nil
	case PulleyJointDef:
		if d.Ratio == 0 {
			return nil, newPrecondition("PulleyJointDef: Ratio must be non-zero")
		}
		return newPulleyJoint(d), nil
	case GearJointDef:
		if d.Ratio == 0 {
			return nil, newPrecondition("GearJointDef: Ratio must be non-zero")
		}
		return newGearJoint(d), nil
	case WheelJointDef:
		return newWheelJoint(d), nil
	case WeldJointDef:
		return newWeldJoint(d), nil
	case FrictionJointDef:
		return newFrictionJoint(d), nil
	case MotorJointDef:
		return newMotorJoint(d), nil
	case MouseJointDef:
		return newMouseJoint(d), nil
	case RopeJointDef:
		return newRopeJoint(d), nil
	case AngleJointDef:
		return newAngleJoint(d), nil
	default:
		return nil, nil
	}
}
