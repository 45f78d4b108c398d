package pow

// ProjectedStar is one star as seen through a camera: its stable galaxy id
// plus its 2D coordinates on the camera's view plane, per spec.md §4.8's
// `projected_star{id, u, v}`.
type ProjectedStar struct {
	ID   uint32
	U, V float64
}

// defaultWindow is the camera's focal half-width in view-plane units; a
// projected star outside [-window, window] on either axis is cropped.
const defaultWindow = 0.35

// camera holds a target direction and focal window and projects the
// galaxy's stars near that direction onto the plane orthogonal to it.
// Multiple cameras share one galaxy and carry distinct ids; each is owned
// by exactly one worker, so it needs no internal locking.
type camera struct {
	galaxy *Galaxy
	id     int
	target vec3
	window float64

	// e1, e2 span the plane orthogonal to target, recomputed whenever
	// target changes.
	e1, e2 vec3
}

func newCamera(g *Galaxy, id int) *camera {
	c := &camera{galaxy: g, id: id, window: defaultWindow}
	c.setTarget(vec3{1, 0, 0})
	return c
}

// setTarget points the camera directly at a unit-ish vector, recomputing
// its view-plane basis.
func (c *camera) setTarget(t vec3) {
	c.target = t.normalize()
	c.e1, c.e2 = orthonormalBasis(c.target)
}

// setTargetFromIndex derives the camera's target the same keyed-PRF way
// stars are generated, applied to the pair (proofNum, index) instead of a
// star id — spec.md §4.8's "derived from (proof_num, index) via the same
// keyed PRF".
func (c *camera) setTargetFromIndex(proofNum, index uint64) {
	g := c.galaxy
	x := counterToCoord(hashPair(g.k0, g.k1, proofNum, index, 0))
	y := counterToCoord(hashPair(g.k0, g.k1, proofNum, index, 1))
	z := counterToCoord(hashPair(g.k0, g.k1, proofNum, index, 2))
	c.setTarget(vec3{x, y, z})
}

// hashPair siphashes the concatenation of proofNum, index and a small
// per-coordinate salt, giving three independent outputs per (proofNum,
// index) pair.
func hashPair(k0, k1, proofNum, index, coord uint64) uint64 {
	return hashWords(k0, k1, proofNum, index, coord)
}

// orthonormalBasis returns two unit vectors spanning the plane orthogonal
// to t, picking an arbitrary "up" that isn't parallel to t.
func orthonormalBasis(t vec3) (e1, e2 vec3) {
	up := vec3{0, 1, 0}
	if absf(t.dot(up)) > 0.99 {
		up = vec3{1, 0, 0}
	}
	e1 = t.cross(up).normalize()
	e2 = t.cross(e1).normalize()
	return e1, e2
}

// takePicture appends to out every star near the camera's target whose
// projection onto the view plane falls inside the focal window, skipping
// stars behind the camera.
func (c *camera) takePicture(out *[]ProjectedStar) {
	for _, s := range c.galaxy.starsNear(c.target) {
		if s.Dir.dot(c.target) <= 0 {
			continue
		}
		u, v := s.Dir.dot(c.e1), s.Dir.dot(c.e2)
		if absf(u) > c.window || absf(v) > c.window {
			continue
		}
		*out = append(*out, ProjectedStar{ID: s.ID, U: u, V: v})
	}
}
