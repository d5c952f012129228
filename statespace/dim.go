package statespace

// Dim is a dimension carried in the type system. Implementations are
// zero-size types whose Len method returns a constant.
type Dim interface {
	Len() int
}

type (
	D0 struct{}
	D1 struct{}
	D2 struct{}
	D3 struct{}
	D4 struct{}
	D5 struct{}
	D6 struct{}
	D7 struct{}
	D8 struct{}
	D9 struct{}
)

func (D0) Len() int { return 0 }
func (D1) Len() int { return 1 }
func (D2) Len() int { return 2 }
func (D3) Len() int { return 3 }
func (D4) Len() int { return 4 }
func (D5) Len() int { return 5 }
func (D6) Len() int { return 6 }
func (D7) Len() int { return 7 }
func (D8) Len() int { return 8 }
func (D9) Len() int { return 9 }

func dimLen[N Dim]() int {
	var n N
	return n.Len()
}
