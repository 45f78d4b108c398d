package pow

import "testing"

// syntheticDipper builds a projected star list containing an exact,
// unscaled, unrotated copy of the template plus some unrelated noise
// stars, so the detector has something guaranteed to find.
func syntheticDipper() []ProjectedStar {
	var out []ProjectedStar
	for i, p := range dipperPoints {
		out = append(out, ProjectedStar{ID: uint32(i), U: p.U, V: p.V})
	}
	// Noise stars, far from the template's bounding box.
	out = append(out,
		ProjectedStar{ID: 100, U: 5, V: 5},
		ProjectedStar{ID: 101, U: -5, V: -5},
		ProjectedStar{ID: 102, U: 5, V: -5},
	)
	return out
}

func TestDipperDetectorFindsExactMatch(t *testing.T) {
	det := newDipperDetector(defaultTolerance)
	match, ok := det.search(syntheticDipper())
	if !ok {
		t.Fatal("search on an exact template copy did not find a match")
	}
	if len(match) != 7 {
		t.Fatalf("match has %d stars, want 7", len(match))
	}
}

func TestDipperDetectorRejectsTooFewStars(t *testing.T) {
	det := newDipperDetector(defaultTolerance)
	stars := syntheticDipper()[:6]
	if _, ok := det.search(stars); ok {
		t.Fatal("search succeeded with fewer than 7 stars")
	}
}

func TestDipperDetectorScaleAndRotationInvariant(t *testing.T) {
	det := newDipperDetector(defaultTolerance)
	var rotated []ProjectedStar
	const scale = 2.5
	const cos, sin = 0.6, 0.8 // a valid rotation (cos^2+sin^2=1)
	for i, p := range dipperPoints {
		u := (p.U*cos - p.V*sin) * scale
		v := (p.U*sin + p.V*cos) * scale
		rotated = append(rotated, ProjectedStar{ID: uint32(i), U: u, V: v})
	}
	match, ok := det.search(rotated)
	if !ok {
		t.Fatal("search failed on a scaled+rotated copy of the template")
	}
	if len(match) != 7 {
		t.Fatalf("match has %d stars, want 7", len(match))
	}
}

func TestDipperDetectorRejectsRandomNoise(t *testing.T) {
	det := newDipperDetector(defaultTolerance)
	stars := []ProjectedStar{
		{ID: 1, U: 0, V: 0},
		{ID: 2, U: 0.1, V: 0.9},
		{ID: 3, U: 0.9, V: 0.1},
		{ID: 4, U: -0.5, V: 0.3},
		{ID: 5, U: 0.3, V: -0.7},
		{ID: 6, U: -0.8, V: -0.2},
		{ID: 7, U: 0.6, V: 0.6},
	}
	if _, ok := det.search(stars); ok {
		t.Fatal("search matched an unstructured set of seven points")
	}
}
