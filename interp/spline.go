package interp

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// secondDerivatives solves the natural spline system for the knot second
// derivatives M (M_0 = M_{n-1} = 0) and their gradients.
func secondDerivatives(x, f []float64) ([]dual, error) {
	n := len(x)
	h, s := slopes(x, f)
	m := make([]dual, n)
	m[0] = dual{g: make([]float64, n)}
	m[n-1] = dual{g: make([]float64, n)}
	k := n - 2
	if k == 0 {
		return m, nil
	}

	diag := make([]float64, k)
	sub := make([]float64, k-1)
	sup := make([]float64, k-1)
	rhs := mat.NewDense(k, n+1, nil)
	for r := 0; r < k; r++ {
		i := r + 1
		diag[r] = 2 * (h[i-1] + h[i])
		if r > 0 {
			sub[r-1] = h[i-1]
		}
		if r < k-1 {
			sup[r] = h[i]
		}
		jump := s[i].sub(s[i-1]).scale(6)
		rhs.Set(r, 0, jump.v)
		for j, g := range jump.g {
			rhs.Set(r, j+1, g)
		}
	}

	var sol mat.Dense
	if err := mat.NewTridiag(k, sub, diag, sup).SolveTo(&sol, false, rhs); err != nil {
		return nil, fmt.Errorf("secondDerivatives: tridiagonal solve: %w", err)
	}
	for r := 0; r < k; r++ {
		g := make([]float64, n)
		for j := range g {
			g[j] = sol.At(r, j+1)
		}
		m[r+1] = dual{v: sol.At(r, 0), g: g}
	}
	return m, nil
}

// splineSlopes returns the natural spline first derivative at every knot.
func splineSlopes(x, f []float64) ([]dual, error) {
	n := len(x)
	h, s := slopes(x, f)
	m, err := secondDerivatives(x, f)
	if err != nil {
		return nil, err
	}
	d := make([]dual, n)
	for i := 0; i < n-1; i++ {
		d[i] = s[i].sub(m[i].scale(2).add(m[i+1]).scale(h[i] / 6))
	}
	d[n-1] = s[n-2].add(m[n-2].add(m[n-1].scale(2)).scale(h[n-2] / 6))
	return d, nil
}

func fitNaturalCubic(x, f []float64) (*pieces, error) {
	n := len(x)
	h, s := slopes(x, f)
	m, err := secondDerivatives(x, f)
	if err != nil {
		return nil, err
	}
	p := &pieces{x: x, coef: make([][4]float64, n-1), grad: make([][4][]float64, n-1)}
	for i := 0; i < n-1; i++ {
		c0 := unitDual(f[i], i, n)
		c1 := s[i].sub(m[i].scale(2).add(m[i+1]).scale(h[i] / 6))
		c2 := m[i].scale(0.5)
		c3 := m[i+1].sub(m[i]).scale(1 / (6 * h[i]))
		p.coef[i] = [4]float64{c0.v, c1.v, c2.v, c3.v}
		p.grad[i] = [4][]float64{c0.g, c1.g, c2.g, c3.g}
	}
	return p, nil
}

// fitMonotoneCubic starts from the natural spline knot slopes and limits them
// so that every piece is monotone in the direction of its data, relaxing the
// bound where neighbouring parabolas agree on the local trend.
func fitMonotoneCubic(x, f []float64) (*pieces, error) {
	n := len(x)
	h, s := slopes(x, f)
	init, err := splineSlopes(x, f)
	if err != nil {
		return nil, err
	}

	// Slope at knot i+1 of the parabola through knots i, i+1, i+2.
	mid := func(i int) dual {
		w := 1 / (h[i] + h[i+1])
		return s[i].scale(h[i+1] * w).add(s[i+1].scale(h[i] * w))
	}
	// Slope at knot i+1 of the parabola through knots i+1, i+2, i+3.
	ahead := func(i int) dual {
		w := 1 / (h[i+1] + h[i+2])
		return s[i+1].scale((2*h[i+1] + h[i+2]) * w).sub(s[i+2].scale(h[i+1] * w))
	}
	// Slope at knot i+1 of the parabola through knots i-1, i, i+1.
	behind := func(i int) dual {
		w := 1 / (h[i-1] + h[i])
		return s[i].scale((2*h[i] + h[i-1]) * w).sub(s[i-1].scale(h[i] * w))
	}

	d := make([]dual, n)
	for i := 1; i < n-1; i++ {
		p1 := mid(i - 1)
		ref := minDual(s[i-1].abs(), s[i].abs(), p1.abs()).scale(3)
		trend := sign(s[i].v - s[i-1].v)
		if i > 1 {
			p0 := behind(i - 1)
			if sign(p1.v) == sign(p0.v) && sign(p0.v) == sign(s[i-1].v-s[i-2].v) && sign(s[i-1].v-s[i-2].v) == trend {
				ref = maxDual(ref, minDual(p0.abs(), p1.abs()).scale(1.5))
			}
		}
		if i < n-2 {
			p2 := ahead(i - 1)
			if sign(-p1.v) == sign(-p2.v) && sign(-p2.v) == sign(s[i+1].v-s[i].v) && sign(s[i+1].v-s[i].v) == trend {
				ref = maxDual(ref, minDual(p2.abs(), p1.abs()).scale(1.5))
			}
		}
		d[i] = limitSlope(init[i], ref, sign(p1.v))
	}
	d[0] = limitSlope(init[0], s[0].abs().scale(3), sign(s[0].v))
	d[n-1] = limitSlope(init[n-1], s[n-2].abs().scale(3), sign(s[n-2].v))
	return hermite(x, f, d), nil
}

// limitSlope keeps the sign of slope, capping its size at ref, and zeroes it
// when it disagrees with the expected direction.
func limitSlope(slope, ref dual, want int) dual {
	sg := sign(slope.v)
	if sg != want {
		return dual{g: make([]float64, len(slope.g))}
	}
	return minDual(slope.abs(), ref).scale(float64(sg))
}
