package numeric

import (
	"math"
	"testing"
)

const tol = 1e-6

// TestFitLinearExact verifies the OLS fit recovers an exact line.
func TestFitLinearExact(t *testing.T) {
	points := []Point{{1, 3}, {2, 5}, {3, 7}, {4, 9}}
	m := FitLinear(points)
	if math.Abs(m.Slope-2) > tol {
		t.Errorf("slope = %v, want 2", m.Slope)
	}
	if math.Abs(m.Intercept-1) > tol {
		t.Errorf("intercept = %v, want 1", m.Intercept)
	}
}

// TestFitLinearDegenerate verifies that one point, no points, or all-equal x
// produce a flat model through the mean y instead of an error.
func TestFitLinearDegenerate(t *testing.T) {
	cases := []struct {
		name   string
		points []Point
		wantY  float64
	}{
		{"empty", nil, 0},
		{"single point", []Point{{5, 12}}, 12},
		{"all x equal", []Point{{2, 4}, {2, 8}, {2, 6}}, 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := FitLinear(tc.points)
			if m.Slope != 0 {
				t.Errorf("slope = %v, want 0", m.Slope)
			}
			if math.Abs(m.Eval(100)-tc.wantY) > tol {
				t.Errorf("Eval(100) = %v, want %v", m.Eval(100), tc.wantY)
			}
		})
	}
}

// TestFitPolynomialRoundTrip fits y = x²+1 through three exact points and
// verifies extrapolation to x=4 recovers 17 within 1e-6.
func TestFitPolynomialRoundTrip(t *testing.T) {
	points := []Point{{1, 2}, {2, 5}, {3, 10}}
	m := FitPolynomial(points)
	if !m.Quadratic {
		t.Fatal("expected a quadratic fit for 3 well-conditioned points")
	}
	got := m.Eval(4)
	if math.Abs(got-17) > tol {
		t.Errorf("Eval(4) = %v, want 17", got)
	}
}

// TestFitPolynomialLinearFallback verifies the documented fallbacks: fewer
// than 3 points, and a numerically degenerate system (duplicate x values),
// both collapse to the linear fit.
func TestFitPolynomialLinearFallback(t *testing.T) {
	cases := []struct {
		name   string
		points []Point
	}{
		{"two points", []Point{{1, 2}, {2, 4}}},
		{"collinear x", []Point{{3, 1}, {3, 2}, {3, 3}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := FitPolynomial(tc.points)
			if m.Quadratic {
				t.Error("expected linear fallback, got quadratic")
			}
			if m.A != 0 {
				t.Errorf("A = %v, want 0 after fallback", m.A)
			}
			line := FitLinear(tc.points)
			if math.Abs(m.Eval(5)-line.Eval(5)) > tol {
				t.Errorf("fallback Eval(5) = %v, want %v (linear fit)", m.Eval(5), line.Eval(5))
			}
		})
	}
}

// TestFitPolynomialMatchesLineOnLinearData verifies that fitting a quadratic
// to perfectly linear data yields a negligible quadratic term.
func TestFitPolynomialMatchesLineOnLinearData(t *testing.T) {
	points := []Point{{1, 2}, {2, 4}, {3, 6}, {4, 8}}
	m := FitPolynomial(points)
	if math.Abs(m.A) > 1e-8 {
		t.Errorf("quadratic coefficient = %v, want ~0 on linear data", m.A)
	}
	if math.Abs(m.Eval(5)-10) > 1e-6 {
		t.Errorf("Eval(5) = %v, want 10", m.Eval(5))
	}
}
