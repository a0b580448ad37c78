package interp_test

import (
	"errors"
	"math"
	"testing"

	"github.com/meenmo/ratekit/interp"
)

var (
	knotsX = []float64{0.0, 0.4, 1.0, 1.8, 2.8, 5.0}
	knotsY = []float64{3.0, 4.0, 3.1, 2.0, 7.0, 2.0}
)

var schemes = []interp.Interpolator{
	interp.Linear,
	interp.LogLinear,
	interp.NaturalCubic,
	interp.LogNaturalCubicMonotone,
}

func bind(t *testing.T, s interp.Interpolator, left, right interp.Extrapolator) *interp.Bound {
	t.Helper()
	b, err := s.Bind(knotsX, knotsY, left, right)
	if err != nil {
		t.Fatalf("Bind(%s) error: %v", s, err)
	}
	return b
}

func TestLogNaturalCubicMonotone_ReferenceValues(t *testing.T) {
	t.Parallel()

	b := bind(t, interp.LogNaturalCubicMonotone, interp.ExtrapolateFlat, interp.ExtrapolateFlat)

	cases := []struct {
		x    float64
		want float64
	}{
		{1.0, 3.1},
		{1.3, 2.371263052860037},
		{1.6, 1.9868207082165292},
	}
	for _, tc := range cases {
		if got := b.Value(tc.x); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("Value(%.1f) mismatch: got %.16f want %.16f", tc.x, got, tc.want)
		}
	}
	if got := b.Value(0.0); got != 3.0 {
		t.Fatalf("Value(0) mismatch: got %.16f want 3", got)
	}
	if got := b.Value(5.0); got != 2.0 {
		t.Fatalf("Value(5) mismatch: got %.16f want 2", got)
	}
}

func TestBound_KnotsReturnStoredValues(t *testing.T) {
	t.Parallel()

	for _, s := range schemes {
		b := bind(t, s, interp.ExtrapolateFlat, interp.ExtrapolateLinear)
		for i, x := range knotsX {
			if got := b.Value(x); math.Abs(got-knotsY[i]) > 1e-12 {
				t.Fatalf("%s: Value(x[%d]) mismatch: got %.14f want %.14f", s, i, got, knotsY[i])
			}
		}
	}
}

func TestBound_FirstDerivativeMatchesFiniteDifference(t *testing.T) {
	t.Parallel()

	const eps = 1e-6
	for _, s := range schemes {
		b := bind(t, s, interp.ExtrapolateLinear, interp.ExtrapolateLinear)
		for _, x := range []float64{0.2, 0.7, 1.3, 1.6, 2.1, 3.5, 4.9} {
			fd := (b.Value(x+eps) - b.Value(x-eps)) / (2 * eps)
			if got := b.FirstDerivative(x); math.Abs(got-fd) > 1e-6 {
				t.Fatalf("%s: FirstDerivative(%.2f) mismatch: got %.10f fd %.10f", s, x, got, fd)
			}
		}
	}
}

func TestBound_BoundaryDerivativeContinuous(t *testing.T) {
	t.Parallel()

	for _, s := range schemes {
		for _, ex := range []interp.Extrapolator{interp.ExtrapolateFlat, interp.ExtrapolateLinear} {
			b := bind(t, s, ex, ex)
			first, last := knotsX[0], knotsX[len(knotsX)-1]
			if d0, d1 := b.FirstDerivative(first), b.FirstDerivative(first+1e-8); math.Abs(d0-d1) > 1e-6 {
				t.Fatalf("%s/%s: left boundary derivative jump: %.10f vs %.10f", s, ex, d0, d1)
			}
			if d0, d1 := b.FirstDerivative(last), b.FirstDerivative(last-1e-8); math.Abs(d0-d1) > 1e-6 {
				t.Fatalf("%s/%s: right boundary derivative jump: %.10f vs %.10f", s, ex, d0, d1)
			}
		}
	}
}

func TestBound_NodeSensitivitiesMatchBumpedCurves(t *testing.T) {
	t.Parallel()

	const bump = 1e-6
	points := []float64{-0.5, 0.2, 1.3, 1.8, 2.5, 4.0, 6.0}
	for _, s := range schemes {
		for _, ex := range []interp.Extrapolator{interp.ExtrapolateFlat, interp.ExtrapolateLinear} {
			base := bind(t, s, ex, ex)
			for j := range knotsY {
				up := append([]float64(nil), knotsY...)
				dn := append([]float64(nil), knotsY...)
				up[j] += bump
				dn[j] -= bump
				bu, err := s.Bind(knotsX, up, ex, ex)
				if err != nil {
					t.Fatalf("Bind up error: %v", err)
				}
				bd, err := s.Bind(knotsX, dn, ex, ex)
				if err != nil {
					t.Fatalf("Bind down error: %v", err)
				}
				for _, x := range points {
					fd := (bu.Value(x) - bd.Value(x)) / (2 * bump)
					got := base.NodeSensitivities(x)[j]
					if math.Abs(got-fd) > 1e-6 {
						t.Fatalf("%s/%s: NodeSensitivities(%.2f)[%d] mismatch: got %.10f fd %.10f", s, ex, x, j, got, fd)
					}
				}
			}
		}
	}
}

func TestLinear_NodeSensitivitiesAreBarycentric(t *testing.T) {
	t.Parallel()

	b := bind(t, interp.Linear, interp.ExtrapolateFlat, interp.ExtrapolateFlat)
	sens := b.NodeSensitivities(0.7)
	want := []float64{0, 0.5, 0.5, 0, 0, 0}
	for j := range want {
		if math.Abs(sens[j]-want[j]) > 1e-12 {
			t.Fatalf("sens[%d] mismatch: got %.12f want %.12f", j, sens[j], want[j])
		}
	}
}

// checkMonotone samples interval i and fails if the curve turns back.
func checkMonotone(t *testing.T, b *interp.Bound, x, y []float64, i int) {
	t.Helper()
	dir := math.Copysign(1, y[i+1]-y[i])
	prev := b.Value(x[i])
	for k := 1; k <= 100; k++ {
		xs := x[i] + (x[i+1]-x[i])*float64(k)/100
		v := b.Value(xs)
		if (v-prev)*dir < -1e-12 {
			t.Fatalf("interval %d not monotone at x=%.4f: %.12f after %.12f", i, xs, v, prev)
		}
		prev = v
	}
}

func TestLogNaturalCubicMonotone_NoOvershoot(t *testing.T) {
	t.Parallel()

	// Knots at a local extremum keep a nonzero slope, so only intervals inside
	// a monotone run of four knots are checked.
	b := bind(t, interp.LogNaturalCubicMonotone, interp.ExtrapolateFlat, interp.ExtrapolateFlat)
	for i := 1; i+2 < len(knotsX); i++ {
		d0 := knotsY[i] - knotsY[i-1]
		d1 := knotsY[i+1] - knotsY[i]
		d2 := knotsY[i+2] - knotsY[i+1]
		if d0*d1 <= 0 || d1*d2 <= 0 {
			continue
		}
		checkMonotone(t, b, knotsX, knotsY, i)
	}

	x := []float64{0.1, 0.5, 1, 2, 5, 10, 30}
	y := []float64{0.999, 0.99, 0.975, 0.95, 0.86, 0.70, 0.35}
	dfs, err := interp.LogNaturalCubicMonotone.Bind(x, y, interp.ExtrapolateFlat, interp.ExtrapolateFlat)
	if err != nil {
		t.Fatalf("Bind error: %v", err)
	}
	for i := 0; i < len(x)-1; i++ {
		checkMonotone(t, dfs, x, y, i)
	}
}

func TestNaturalCubic_ReproducesStraightLine(t *testing.T) {
	t.Parallel()

	x := []float64{0, 1, 2.5, 4}
	y := []float64{1, 3, 6, 9}
	b, err := interp.NaturalCubic.Bind(x, y, interp.ExtrapolateFlat, interp.ExtrapolateFlat)
	if err != nil {
		t.Fatalf("Bind error: %v", err)
	}
	for _, v := range []float64{0.5, 1.7, 3.3} {
		if got := b.Value(v); math.Abs(got-(1+2*v)) > 1e-12 {
			t.Fatalf("Value(%.1f) mismatch: got %.12f want %.12f", v, got, 1+2*v)
		}
	}
}

func TestExtrapolators(t *testing.T) {
	t.Parallel()

	flat := bind(t, interp.NaturalCubic, interp.ExtrapolateFlat, interp.ExtrapolateFlat)
	if got := flat.Value(-1); got != knotsY[0] {
		t.Fatalf("flat left mismatch: got %.12f", got)
	}
	if got := flat.Value(9); got != knotsY[len(knotsY)-1] {
		t.Fatalf("flat right mismatch: got %.12f", got)
	}
	if got := flat.FirstDerivative(9); got != 0 {
		t.Fatalf("flat derivative mismatch: got %.12f", got)
	}

	lin := bind(t, interp.NaturalCubic, interp.ExtrapolateLinear, interp.ExtrapolateLinear)
	slope := lin.FirstDerivative(knotsX[len(knotsX)-1])
	want := knotsY[len(knotsY)-1] + slope*2
	if got := lin.Value(7); math.Abs(got-want) > 1e-12 {
		t.Fatalf("linear right mismatch: got %.12f want %.12f", got, want)
	}
}

func TestBind_RejectsInvalidKnots(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		s    interp.Interpolator
		x, y []float64
	}{
		{"single knot", interp.Linear, []float64{1}, []float64{1}},
		{"unsorted", interp.Linear, []float64{0, 2, 1}, []float64{1, 2, 3}},
		{"length mismatch", interp.NaturalCubic, []float64{0, 1}, []float64{1}},
		{"non-positive log", interp.LogNaturalCubicMonotone, []float64{0, 1, 2}, []float64{1, 0, 2}},
	}
	for _, tc := range cases {
		_, err := tc.s.Bind(tc.x, tc.y, interp.ExtrapolateFlat, interp.ExtrapolateFlat)
		if !errors.Is(err, interp.ErrInvalidData) {
			t.Fatalf("%s: expected ErrInvalidData, got %v", tc.name, err)
		}
	}
}
