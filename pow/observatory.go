package pow

import "context"

// Observatory is the PoW interface of spec.md §6: a galaxy seeded from a
// message, ready to be scanned for nonces whose derived camera target
// frames a dipper.
type Observatory struct {
	galaxy *Galaxy
}

// NewObservatory seeds a galaxy from msg with numStars stars. Two
// observatories built from the same msg produce identical stars for every
// id (testable property 9).
func NewObservatory(msg []byte, numStars int) *Observatory {
	return &Observatory{galaxy: NewGalaxy(msg, numStars)}
}

// Scan runs one proof-of-work search: it dispatches index ranges to
// workers workers, each deriving a camera target from (proofNum, index),
// taking a picture, and running the dipper detector, until one finds a
// match or the context is cancelled. On success it returns the seven
// matching stars and the index (nonce) that produced them.
func (o *Observatory) Scan(ctx context.Context, proofNum uint64, workers int) (found []ProjectedStar, nonce uint64, ok bool) {
	wp := NewWorkerPool(o.galaxy, workers)
	result, err := wp.Scan(ctx, proofNum)
	if err != nil || result == nil {
		return nil, 0, false
	}
	return result.found, result.nonce, true
}

// Verify re-derives the camera target for (proofNum, nonce) from the same
// galaxy and checks that the detector still finds a dipper there,
// reproducing found — the verification step spec.md §6 describes as out
// of scope for scan itself but necessary for any caller that wants to
// check a claimed proof without re-running the whole search.
func (o *Observatory) Verify(proofNum, nonce uint64) ([]ProjectedStar, bool) {
	cam := newCamera(o.galaxy, 0)
	cam.setTargetFromIndex(proofNum, nonce)
	var picture []ProjectedStar
	cam.takePicture(&picture)
	det := newDipperDetector(defaultTolerance)
	return det.search(picture)
}
