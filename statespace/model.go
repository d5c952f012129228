package statespace

import "slices"

// Model is a continuous-time LTI system advanced by explicit forward Euler.
// NU, NX and NY are the input, state and output dimensions.
//
// Build one with New; the zero value is not usable. Setters store copies and
// getters return copies, so no caller can alias the model's internals.
type Model[T Scalar, NU, NX, NY Dim] struct {
	a Matrix[T, NX, NX]
	b Matrix[T, NX, NU]
	c Matrix[T, NY, NX]
	d Matrix[T, NY, NU]

	u *BoundedVector[T, NU]
	x *BoundedVector[T, NX]
	y *BoundedVector[T, NY]

	dt T
}

// New returns a model with zero matrices, zero unbounded vectors and dt = 1.
func New[T Scalar, NU, NX, NY Dim]() *Model[T, NU, NX, NY] {
	return &Model[T, NU, NX, NY]{
		a:  ZeroMatrix[T, NX, NX](),
		b:  ZeroMatrix[T, NX, NU](),
		c:  ZeroMatrix[T, NY, NX](),
		d:  ZeroMatrix[T, NY, NU](),
		u:  NewBoundedVector[T, NU](),
		x:  NewBoundedVector[T, NX](),
		y:  NewBoundedVector[T, NY](),
		dt: 1,
	}
}

func (m *Model[T, NU, NX, NY]) SetA(a Matrix[T, NX, NX]) *Model[T, NU, NX, NY] {
	m.a = a.clone()
	return m
}

func (m *Model[T, NU, NX, NY]) SetB(b Matrix[T, NX, NU]) *Model[T, NU, NX, NY] {
	m.b = b.clone()
	return m
}

func (m *Model[T, NU, NX, NY]) SetC(c Matrix[T, NY, NX]) *Model[T, NU, NX, NY] {
	m.c = c.clone()
	return m
}

func (m *Model[T, NU, NX, NY]) SetD(d Matrix[T, NY, NU]) *Model[T, NU, NX, NY] {
	m.d = d.clone()
	return m
}

// SetU replaces the input vector and its bounds. The value is clamped on
// the next Advance, not here.
func (m *Model[T, NU, NX, NY]) SetU(u *BoundedVector[T, NU]) *Model[T, NU, NX, NY] {
	m.u = u.Clone()
	return m
}

// SetX replaces the state vector and its bounds. The value is clamped on
// the next Advance, not here.
func (m *Model[T, NU, NX, NY]) SetX(x *BoundedVector[T, NX]) *Model[T, NU, NX, NY] {
	m.x = x.Clone()
	return m
}

func (m *Model[T, NU, NX, NY]) SetY(y *BoundedVector[T, NY]) *Model[T, NU, NX, NY] {
	m.y = y.Clone()
	return m
}

// SetDt sets the integration step. No stability check is made; dt must be
// small relative to the fastest dynamics of A.
func (m *Model[T, NU, NX, NY]) SetDt(dt T) *Model[T, NU, NX, NY] {
	m.dt = dt
	return m
}

func (m *Model[T, NU, NX, NY]) A() Matrix[T, NX, NX] { return m.a.clone() }
func (m *Model[T, NU, NX, NY]) B() Matrix[T, NX, NU] { return m.b.clone() }
func (m *Model[T, NU, NX, NY]) C() Matrix[T, NY, NX] { return m.c.clone() }
func (m *Model[T, NU, NX, NY]) D() Matrix[T, NY, NU] { return m.d.clone() }

func (m *Model[T, NU, NX, NY]) U() Vector[T, NU] { return m.u.Value() }
func (m *Model[T, NU, NX, NY]) X() Vector[T, NX] { return m.x.Value() }
func (m *Model[T, NU, NX, NY]) Y() Vector[T, NY] { return m.y.Value() }

func (m *Model[T, NU, NX, NY]) Dt() T { return m.dt }

func (m *Model[T, NU, NX, NY]) InputBounds() *BoundedVector[T, NU]  { return m.u.Clone() }
func (m *Model[T, NU, NX, NY]) StateBounds() *BoundedVector[T, NX]  { return m.x.Clone() }
func (m *Model[T, NU, NX, NY]) OutputBounds() *BoundedVector[T, NY] { return m.y.Clone() }

// Advance moves the system forward by dt:
//
//	x(n+1) = x(n) + dt·(A·x(n) + B·u(n))
//	y(n)   = C·x(n) + D·u(n)
//
// u and x are clamped before they are read; the new x and y are clamped
// after they are written. Both equations use the values captured at the
// start of the step. u is left as it was.
func (m *Model[T, NU, NX, NY]) Advance() *Model[T, NU, NX, NY] {
	m.u.Clamp()
	m.x.Clamp()

	u0 := m.u.value.Slice()
	x0 := m.x.value.Slice()

	xdot := make([]T, dimLen[NX]())
	mulVecInto(m.a, x0, 0, xdot)
	mulVecInto(m.b, u0, 1, xdot)

	x1 := slices.Clone(x0)
	axpy(m.dt, xdot, x1)
	m.x.Update(Vector[T, NX]{data: x1})

	yn := make([]T, dimLen[NY]())
	mulVecInto(m.c, x0, 0, yn)
	mulVecInto(m.d, u0, 1, yn)
	m.y.Update(Vector[T, NY]{data: yn})

	return m
}

// Clone returns an independent copy; advancing one does not affect the other.
func (m *Model[T, NU, NX, NY]) Clone() *Model[T, NU, NX, NY] {
	return &Model[T, NU, NX, NY]{
		a:  m.a.clone(),
		b:  m.b.clone(),
		c:  m.c.clone(),
		d:  m.d.clone(),
		u:  m.u.Clone(),
		x:  m.x.Clone(),
		y:  m.y.Clone(),
		dt: m.dt,
	}
}
