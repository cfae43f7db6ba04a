package expr

import "go/token"

type node interface {
	eval(p []float64) float64
}

type num float64

func (n num) eval([]float64) float64 { return float64(n) }

// param indexes the parameter vector; t_1 is param(0).
type param int

func (n param) eval(p []float64) float64 { return p[n] }

type neg struct{ x node }

func (n neg) eval(p []float64) float64 { return -n.x.eval(p) }

type binary struct {
	op   token.Token
	x, y node
}

func (n binary) eval(p []float64) float64 {
	x, y := n.x.eval(p), n.y.eval(p)
	switch n.op {
	case token.ADD:
		return x + y
	case token.SUB:
		return x - y
	case token.MUL:
		return x * y
	default: // token.QUO
		return x / y
	}
}

type call1 struct {
	f func(float64) float64
	x node
}

func (n call1) eval(p []float64) float64 { return n.f(n.x.eval(p)) }

type call2 struct {
	f    func(float64, float64) float64
	x, y node
}

func (n call2) eval(p []float64) float64 { return n.f(n.x.eval(p), n.y.eval(p)) }
