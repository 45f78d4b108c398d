package pow

import "math"

// dipperPoints is a Big-Dipper-shaped template in arbitrary units. The
// detector aligns on the edge from point 0 to point 1 (alkaid and mizar, the
// first two handle stars, about 0.63 apart) and searches for seven projected
// stars whose positions match this shape up to scale, rotation and
// translation, within tolerance.
var dipperPoints = [7]struct{ U, V float64 }{
	{0.00, 0.00}, // alkaid
	{0.30, 0.55}, // mizar
	{0.62, 0.55}, // alioth
	{0.95, 0.42}, // megrez
	{1.28, 0.60}, // phecda
	{1.05, 0.95}, // merak
	{0.70, 1.05}, // dubhe
}

const defaultTolerance = 0.08

// dipperDetector searches a projected star list for the seven-point
// pattern above, relative distances and angles within tolerance.
type dipperDetector struct {
	tolerance float64
}

func newDipperDetector(tolerance float64) *dipperDetector {
	return &dipperDetector{tolerance: tolerance}
}

// search consumes stars and looks for a match of the dipper template,
// returning the matching seven stars (in template order) and true on
// success.
func (d *dipperDetector) search(stars []ProjectedStar) ([]ProjectedStar, bool) {
	if len(stars) < 7 {
		return nil, false
	}
	for i := range stars {
		for j := range stars {
			if i == j {
				continue
			}
			if match, ok := d.tryAlign(stars, i, j); ok {
				return match, true
			}
		}
	}
	return nil, false
}

// tryAlign hypothesizes that stars[i] and stars[j] are the template's
// points 0 and 1, derives the similarity transform (scale + rotation) that
// maps template point 0/1 onto them, and checks whether every remaining
// template point has a close, not-yet-used star under that transform.
func (d *dipperDetector) tryAlign(stars []ProjectedStar, i, j int) ([]ProjectedStar, bool) {
	p0 := dipperPoints[0]
	p1 := dipperPoints[1]
	templateDist := math.Hypot(p1.U-p0.U, p1.V-p0.V)

	s0, s1 := stars[i], stars[j]
	du, dv := s1.U-s0.U, s1.V-s0.V
	obsDist := math.Hypot(du, dv)
	if obsDist < 1e-9 {
		return nil, false
	}
	scale := obsDist / templateDist
	// The rotation is the angle of the observed edge minus the angle of
	// the template edge 0->1.
	tcos, tsin := (p1.U-p0.U)/templateDist, (p1.V-p0.V)/templateDist
	ocos, osin := du/obsDist, dv/obsDist
	cos := ocos*tcos + osin*tsin
	sin := osin*tcos - ocos*tsin

	// Rotate+scale+translate a template point into observed space, using
	// point 0 as the pivot that maps onto s0.
	transform := func(p struct{ U, V float64 }) (float64, float64) {
		ru, rv := p.U-p0.U, p.V-p0.V
		tu := (ru*cos - rv*sin) * scale
		tv := (ru*sin + rv*cos) * scale
		return s0.U + tu, s0.V + tv
	}

	used := map[int]bool{i: true, j: true}
	match := make([]ProjectedStar, 7)
	match[0], match[1] = s0, s1

	tol := d.tolerance * scale
	for k := 2; k < 7; k++ {
		wantU, wantV := transform(dipperPoints[k])
		best, bestDist := -1, math.Inf(1)
		for idx, s := range stars {
			if used[idx] {
				continue
			}
			dist := math.Hypot(s.U-wantU, s.V-wantV)
			if dist < bestDist {
				best, bestDist = idx, dist
			}
		}
		if best < 0 || bestDist > tol {
			return nil, false
		}
		used[best] = true
		match[k] = stars[best]
	}
	return match, true
}
