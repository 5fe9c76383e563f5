package vela2d

import "fmt"

// PreconditionError reports a violated programming precondition: an invalid
// BodyType, a degenerate shape or chain definition, a zero ratio in a
// pulley/gear joint, or a mutation (CreateBody, DestroyBody, CreateJoint,
// DestroyJoint, CreateFixture, DestroyFixture, SetType, SetTransform,
// SetMassData, SetActive) attempted while the world is locked mid-Step.
// These are returned rather than panicking so a caller in a hot loop can
// decide whether to treat them as fatal; the recovered-in-place numeric
// cases (GJK cycling, TOI stalls, degenerate welds) are not represented as
// errors at all, since the algorithms already define an in-place fallback
// for them and only log a warning. Broad-phase proxy ids are not
// user-supplied — every id in the tree/broad-phase API comes from a prior
// CreateProxy/CreateFixture call, so an out-of-range id there is a bug in
// this package, not a caller mistake, and is left to panic like any other
// slice index out of range rather than wrapped in an error type.
type PreconditionError struct {
	msg string
}

func (e *PreconditionError) Error() string { return e.msg }

func newPrecondition(format string, args ...interface{}) error {
	return &PreconditionError{msg: fmt.Sprintf(format, args...)}
}

// IsPrecondition reports whether err is a PreconditionError.
func IsPrecondition(err error) bool {
	_, ok := err.(*PreconditionError)
	return ok
}
