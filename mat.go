package vela2d

import "math"

// Mat22 is a 2x2 matrix stored by column, matching the Box2D convention
// (ex is the first column, ey the second).
type Mat22 struct {
	Ex, Ey Vec2
}

func NewMat22(a11, a12, a21, a22 float64) Mat22 {
	return Mat22{Ex: Vec2{a11, a21}, Ey: Vec2{a12, a22}}
}

func (m Mat22) SetIdentity() Mat22 { return Mat22{Vec2{1, 0}, Vec2{0, 1}} }

func (m Mat22) MulVec2(v Vec2) Vec2 {
	return Vec2{m.Ex.X*v.X + m.Ey.X*v.Y, m.Ex.Y*v.X + m.Ey.Y*v.Y}
}

func (m Mat22) Mul(o Mat22) Mat22 {
	return Mat22{Ex: m.MulVec2(o.Ex), Ey: m.MulVec2(o.Ey)}
}

func (m Mat22) Inverse() Mat22 {
	a, b, c, d := m.Ex.X, m.Ey.X, m.Ex.Y, m.Ey.Y
	det := a*d - b*c
	if det != 0 {
		det = 1.0 / det
	}
	return Mat22{Ex: Vec2{det * d, -det * c}, Ey: Vec2{-det * b, det * a}}
}

// Solve solves A*x = b for x, where A is this matrix.
func (m Mat22) Solve(b Vec2) Vec2 {
	a11, a12, a21, a22 := m.Ex.X, m.Ey.X, m.Ex.Y, m.Ey.Y
	det := a11*a22 - a12*a21
	if det != 0 {
		det = 1.0 / det
	}
	return Vec2{det * (a22*b.X - a12*b.Y), det * (a11*b.Y - a21*b.X)}
}

// Mat33 is a 3x3 matrix used by the block solver's 3x3 fallback (weld joint).
type Mat33 struct {
	Ex, Ey, Ez Vec3
}

func (m Mat33) MulVec3(v Vec3) Vec3 {
	return m.Ex.Scale(v.X).Add(m.Ey.Scale(v.Y)).Add(m.Ez.Scale(v.Z))
}

// Solve22 treats the matrix as though only its upper-left 2x2 block exists.
func (m Mat33) Solve22(b Vec2) Vec2 {
	a11, a12, a21, a22 := m.Ex.X, m.Ey.X, m.Ex.Y, m.Ey.Y
	det := a11*a22 - a12*a21
	if det != 0 {
		det = 1.0 / det
	}
	return Vec2{det * (a22*b.X - a12*b.Y), det * (a11*b.Y - a21*b.X)}
}

func (m Mat33) Solve33(b Vec3) Vec3 {
	det := m.Ex.Dot(m.Ey.Cross(m.Ez))
	if det != 0 {
		det = 1.0 / det
	}
	x := det * b.Dot(m.Ey.Cross(m.Ez))
	y := det * m.Ex.Dot(b.Cross(m.Ez))
	z := det * m.Ex.Dot(m.Ey.Cross(b))
	return Vec3{x, y, z}
}

// GetInverse22 writes the inverse of the upper-left 2x2 block into out and
// sets the third row and column of out to zero. Used by the weld joint's
// mass matrix.
func (m Mat33) GetInverse22(out *Mat33) {
	a, b, c, d := m.Ex.X, m.Ey.X, m.Ex.Y, m.Ey.Y
	det := a*d - b*c
	if det != 0 {
		det = 1.0 / det
	}
	out.Ex.X, out.Ey.X, out.Ex.Z = det*d, -det*b, 0
	out.Ex.Y, out.Ey.Y, out.Ey.Z = -det*c, det*a, 0
	out.Ez.X, out.Ez.Y, out.Ez.Z = 0, 0, 0
}

// Rot represents a rotation as sine/cosine directly, avoiding repeated
// trig calls in the hot path.
type Rot struct {
	Sin, Cos float64
}

func NewRot(angle float64) Rot {
	return Rot{Sin: math.Sin(angle), Cos: math.Cos(angle)}
}

func (r Rot) SetIdentity() Rot { return Rot{0, 1} }

func (r Rot) Angle() float64 { return math.Atan2(r.Sin, r.Cos) }

func (r Rot) XAxis() Vec2 { return Vec2{r.Cos, r.Sin} }

func (r Rot) YAxis() Vec2 { return Vec2{-r.Sin, r.Cos} }

// Mul composes two rotations: q * r.
func (q Rot) Mul(r Rot) Rot {
	return Rot{Sin: q.Sin*r.Cos + q.Cos*r.Sin, Cos: q.Cos*r.Cos - q.Sin*r.Sin}
}

// MulT computes qT * r.
func (q Rot) MulT(r Rot) Rot {
	return Rot{Sin: q.Cos*r.Sin - q.Sin*r.Cos, Cos: q.Cos*r.Cos + q.Sin*r.Sin}
}

func (q Rot) MulVec2(v Vec2) Vec2 {
	return Vec2{q.Cos*v.X - q.Sin*v.Y, q.Sin*v.X + q.Cos*v.Y}
}

func (q Rot) MulTVec2(v Vec2) Vec2 {
	return Vec2{q.Cos*v.X + q.Sin*v.Y, -q.Sin*v.X + q.Cos*v.Y}
}

// Transform is a rigid transform: rotate then translate.
type Transform struct {
	P Vec2
	Q Rot
}

func (t Transform) SetIdentity() Transform { return Transform{Vec2{0, 0}, Rot{0, 1}} }

func (t Transform) MulVec2(v Vec2) Vec2 { return t.Q.MulVec2(v).Add(t.P) }

func (t Transform) MulTVec2(v Vec2) Vec2 { return t.Q.MulTVec2(v.Sub(t.P)) }

// Mul composes two transforms: A * B.
func (a Transform) Mul(b Transform) Transform {
	return Transform{Q: a.Q.Mul(b.Q), P: a.Q.MulVec2(b.P).Add(a.P)}
}

// MulT computes A^-1 * B.
func (a Transform) MulT(b Transform) Transform {
	return Transform{Q: a.Q.MulT(b.Q), P: a.Q.MulTVec2(b.P.Sub(a.P))}
}

// Sweep describes the motion of a body's center of mass over a step, used
// by continuous collision to interpolate between the last-good position and
// the current one.
type Sweep struct {
	LocalCenter Vec2
	C0, C       Vec2
	A0, A       float64
	Alpha0      float64
}

// GetTransform interpolates the sweep at beta in [0,1] and returns the
// resulting world transform (shifted from center-of-mass frame back to the
// body's local origin).
func (s Sweep) GetTransform(beta float64) Transform {
	var xf Transform
	xf.P = s.C0.Scale(1 - beta).Add(s.C.Scale(beta))
	angle := (1-beta)*s.A0 + beta*s.A
	xf.Q = NewRot(angle)
	xf.P = xf.P.Sub(xf.Q.MulVec2(s.LocalCenter))
	return xf
}

// Advance moves the starting point of the sweep forward to alpha, keeping
// the same ending point. Used after a TOI event to shrink the swept range
// for the next sub-step.
func (s *Sweep) Advance(alpha float64) {
	if s.Alpha0 >= alpha {
		return
	}
	beta := (alpha - s.Alpha0) / (1 - s.Alpha0)
	s.C0 = s.C0.Scale(1 - beta).Add(s.C.Scale(beta))
	s.A0 = (1-beta)*s.A0 + beta*s.A
	s.Alpha0 = alpha
}

// Normalize shifts A0 and A by the same multiple of 2*pi so that A0 lies in
// [0, 2*pi), preserving the delta between them.
func (s *Sweep) Normalize() {
	twoPi := 2.0 * math.Pi
	d := twoPi * math.Floor(s.A0/twoPi)
	s.A0 -= d
	s.A -= d
}
