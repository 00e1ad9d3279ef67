package numeric

import "math"

// degenerateDet is the determinant threshold below which the quadratic
// normal-equations system is treated as singular and the fit falls back to a
// line. This fallback governs model stability for near-collinear data.
const degenerateDet = 1e-10

// Point is one (x, y) observation.
type Point struct {
	X float64
	Y float64
}

// LineModel is y = Slope·x + Intercept.
type LineModel struct {
	Slope     float64
	Intercept float64
}

// Eval evaluates the line at x.
func (m LineModel) Eval(x float64) float64 {
	return m.Slope*x + m.Intercept
}

// FitLinear computes the closed-form ordinary-least-squares line through the
// points. With one point or fewer, or when every x is identical, it returns a
// degenerate flat model through the mean y. It never errors.
func FitLinear(points []Point) LineModel {
	n := float64(len(points))
	if len(points) == 0 {
		return LineModel{}
	}

	var sumX, sumY, sumXX, sumXY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
		sumXX += p.X * p.X
		sumXY += p.X * p.Y
	}

	denom := n*sumXX - sumX*sumX
	if len(points) < 2 || math.Abs(denom) < degenerateDet {
		return LineModel{Slope: 0, Intercept: sumY / n}
	}

	slope := (n*sumXY - sumX*sumY) / denom
	return LineModel{Slope: slope, Intercept: (sumY - slope*sumX) / n}
}

// PolyModel is y = A·x² + B·x + C. Quadratic is false when the fit fell back
// to a line (A is then 0).
type PolyModel struct {
	A, B, C   float64
	Quadratic bool
}

// Eval evaluates the polynomial at x.
func (m PolyModel) Eval(x float64) float64 {
	return m.A*x*x + m.B*x + m.C
}

// FitPolynomial fits a quadratic by solving the 3×3 normal-equations system
// with Cramer's rule. With fewer than 3 points, or when the system is
// numerically degenerate (|det| < 1e-10), it falls back to FitLinear and
// reports Quadratic=false.
func FitPolynomial(points []Point) PolyModel {
	if len(points) < 3 {
		line := FitLinear(points)
		return PolyModel{B: line.Slope, C: line.Intercept}
	}

	n := float64(len(points))
	var sx, sx2, sx3, sx4, sy, sxy, sx2y float64
	for _, p := range points {
		x2 := p.X * p.X
		sx += p.X
		sx2 += x2
		sx3 += x2 * p.X
		sx4 += x2 * x2
		sy += p.Y
		sxy += p.X * p.Y
		sx2y += x2 * p.Y
	}

	// Normal equations, unknowns ordered (A, B, C):
	//   sx4·A + sx3·B + sx2·C = sx2y
	//   sx3·A + sx2·B + sx ·C = sxy
	//   sx2·A + sx ·B + n  ·C = sy
	det := det3(
		sx4, sx3, sx2,
		sx3, sx2, sx,
		sx2, sx, n,
	)
	if math.Abs(det) < degenerateDet {
		line := FitLinear(points)
		return PolyModel{B: line.Slope, C: line.Intercept}
	}

	detA := det3(
		sx2y, sx3, sx2,
		sxy, sx2, sx,
		sy, sx, n,
	)
	detB := det3(
		sx4, sx2y, sx2,
		sx3, sxy, sx,
		sx2, sy, n,
	)
	detC := det3(
		sx4, sx3, sx2y,
		sx3, sx2, sxy,
		sx2, sx, sy,
	)

	return PolyModel{A: detA / det, B: detB / det, C: detC / det, Quadratic: true}
}

// det3 computes the determinant of a 3×3 matrix given row-major.
func det3(a, b, c, d, e, f, g, h, i float64) float64 {
	return a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
}
