package statespace

// BoundedVector pairs a vector value with per-component lower and upper
// limits. The limits are enforced only by Clamp (and Update, which calls
// it); SetValue, SetLower and SetUpper may leave the value outside its
// bounds until the next clamp.
//
// Inverted limits (lower[i] > upper[i]) are a configuration error that is
// neither rejected nor repaired. Clamp applies the lower limit first and the
// upper limit second, so such a component always ends up at upper[i].
type BoundedVector[T Scalar, N Dim] struct {
	value Vector[T, N]
	lower Vector[T, N]
	upper Vector[T, N]
}

// NewBoundedVector returns a zero vector bounded by DefaultLower and
// DefaultUpper. With float32 elements the sentinels lie outside the type's
// range and become -Inf and +Inf.
func NewBoundedVector[T Scalar, N Dim]() *BoundedVector[T, N] {
	return &BoundedVector[T, N]{
		value: ZeroVector[T, N](),
		lower: FilledVector[T, N](saturate[T](DefaultLower)),
		upper: FilledVector[T, N](saturate[T](DefaultUpper)),
	}
}

// BoundedFromScalar sets every component to v, with default bounds.
func BoundedFromScalar[T Scalar, N Dim](v T) *BoundedVector[T, N] {
	return NewBoundedVector[T, N]().SetValue(FilledVector[T, N](v))
}

// BoundedFromScalars broadcasts v, lo and hi to the value, lower and upper
// vectors respectively.
func BoundedFromScalars[T Scalar, N Dim](v, lo, hi T) *BoundedVector[T, N] {
	return NewBoundedVector[T, N]().
		SetValue(FilledVector[T, N](v)).
		SetLower(FilledVector[T, N](lo)).
		SetUpper(FilledVector[T, N](hi))
}

func (b *BoundedVector[T, N]) SetValue(v Vector[T, N]) *BoundedVector[T, N] {
	b.value = v.clone()
	return b
}

func (b *BoundedVector[T, N]) SetLower(v Vector[T, N]) *BoundedVector[T, N] {
	b.lower = v.clone()
	return b
}

func (b *BoundedVector[T, N]) SetUpper(v Vector[T, N]) *BoundedVector[T, N] {
	b.upper = v.clone()
	return b
}

func (b *BoundedVector[T, N]) Value() Vector[T, N] { return b.value.clone() }
func (b *BoundedVector[T, N]) Lower() Vector[T, N] { return b.lower.clone() }
func (b *BoundedVector[T, N]) Upper() Vector[T, N] { return b.upper.clone() }

// Clamp sets value[i] = min(max(value[i], lower[i]), upper[i]) for every i.
// A NaN component stays NaN; it is not pulled onto either limit.
func (b *BoundedVector[T, N]) Clamp() *BoundedVector[T, N] {
	for i := range b.value.data {
		b.value.data[i] = min(max(b.value.data[i], b.lower.data[i]), b.upper.data[i])
	}
	return b
}

// Update replaces the value and clamps it.
func (b *BoundedVector[T, N]) Update(v Vector[T, N]) *BoundedVector[T, N] {
	return b.SetValue(v).Clamp()
}

func (b *BoundedVector[T, N]) Clone() *BoundedVector[T, N] {
	return &BoundedVector[T, N]{
		value: b.value.clone(),
		lower: b.lower.clone(),
		upper: b.upper.clone(),
	}
}
