package interp

import "sort"

// pieces is a piecewise cubic in t = x - x[i] on each interval [x[i], x[i+1]],
// together with the gradient of every coefficient with respect to the fitted
// knot values.
type pieces struct {
	x    []float64
	coef [][4]float64
	grad [][4][]float64
}

// interval returns the index of the polynomial piece used at x. Knots that
// start an interval belong to it; the last knot belongs to the last piece.
func (p *pieces) interval(x float64) int {
	i := sort.Search(len(p.x), func(j int) bool { return p.x[j] > x }) - 1
	if i < 0 {
		return 0
	}
	if i > len(p.x)-2 {
		return len(p.x) - 2
	}
	return i
}

func (p *pieces) eval(i int, t float64) (value, deriv float64) {
	c := p.coef[i]
	value = ((c[3]*t+c[2])*t+c[1])*t + c[0]
	deriv = (3*c[3]*t+2*c[2])*t + c[1]
	return value, deriv
}

func (p *pieces) evalSensitivity(i int, t float64) (value, deriv []float64) {
	g := p.grad[i]
	n := len(p.x)
	value = make([]float64, n)
	deriv = make([]float64, n)
	for j := 0; j < n; j++ {
		value[j] = ((g[3][j]*t+g[2][j])*t+g[1][j])*t + g[0][j]
		deriv[j] = (3*g[3][j]*t+2*g[2][j])*t + g[1][j]
	}
	return value, deriv
}

// dual is a value with its gradient with respect to the fitted knot values.
type dual struct {
	v float64
	g []float64
}

func unitDual(v float64, j, n int) dual {
	g := make([]float64, n)
	g[j] = 1
	return dual{v: v, g: g}
}

func (a dual) add(b dual) dual {
	g := make([]float64, len(a.g))
	for j := range g {
		g[j] = a.g[j] + b.g[j]
	}
	return dual{v: a.v + b.v, g: g}
}

func (a dual) sub(b dual) dual { return a.add(b.scale(-1)) }

func (a dual) scale(k float64) dual {
	g := make([]float64, len(a.g))
	for j := range g {
		g[j] = k * a.g[j]
	}
	return dual{v: k * a.v, g: g}
}

func (a dual) abs() dual {
	if a.v < 0 {
		return a.scale(-1)
	}
	return a
}

func minDual(a dual, rest ...dual) dual {
	m := a
	for _, b := range rest {
		if b.v < m.v {
			m = b
		}
	}
	return m
}

func maxDual(a, b dual) dual {
	if b.v > a.v {
		return b
	}
	return a
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func slopes(x, f []float64) (h []float64, s []dual) {
	n := len(x)
	h = make([]float64, n-1)
	s = make([]dual, n-1)
	for i := 0; i < n-1; i++ {
		h[i] = x[i+1] - x[i]
		s[i] = unitDual(f[i+1], i+1, n).sub(unitDual(f[i], i, n)).scale(1 / h[i])
	}
	return h, s
}

// hermite builds the cubic pieces from knot values and knot first derivatives.
func hermite(x, f []float64, d []dual) *pieces {
	n := len(x)
	h, s := slopes(x, f)
	p := &pieces{x: x, coef: make([][4]float64, n-1), grad: make([][4][]float64, n-1)}
	for i := 0; i < n-1; i++ {
		c0 := unitDual(f[i], i, n)
		c1 := d[i]
		c2 := s[i].scale(3).sub(d[i].scale(2)).sub(d[i+1]).scale(1 / h[i])
		c3 := d[i].add(d[i+1]).sub(s[i].scale(2)).scale(1 / (h[i] * h[i]))
		p.coef[i] = [4]float64{c0.v, c1.v, c2.v, c3.v}
		p.grad[i] = [4][]float64{c0.g, c1.g, c2.g, c3.g}
	}
	return p
}

func fitLinear(x, f []float64) *pieces {
	n := len(x)
	_, s := slopes(x, f)
	p := &pieces{x: x, coef: make([][4]float64, n-1), grad: make([][4][]float64, n-1)}
	for i := 0; i < n-1; i++ {
		c0 := unitDual(f[i], i, n)
		zero := make([]float64, n)
		p.coef[i] = [4]float64{c0.v, s[i].v, 0, 0}
		p.grad[i] = [4][]float64{c0.g, s[i].g, zero, zero}
	}
	return p
}
