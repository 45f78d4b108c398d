package pow

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// scanDelta is Δ=100, the fixed-size index range dispatched to a worker at
// a time, per spec.md §4.8's worker-pool scheduling paragraph.
const scanDelta = 100

// rangeRequest is one unit of dispatched work: try proofNum's camera
// target for every index in [start, end).
type rangeRequest struct {
	proofNum   uint64
	start, end uint64
}

// scanResult is what a worker reports back on a match.
type scanResult struct {
	found []ProjectedStar
	nonce uint64
}

// WorkerPool is a bounded pool of W workers, each owning its own camera
// and detector (spec.md §4.8: "no inter-worker sharing"), coordinated over
// channels rather than a shared mutex-protected ready queue — the
// channel-based design spec.md §9 asks for.
type WorkerPool struct {
	galaxy     *Galaxy
	numWorkers int
}

// NewWorkerPool returns a pool of numWorkers workers sharing galaxy
// read-only.
func NewWorkerPool(galaxy *Galaxy, numWorkers int) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool{galaxy: galaxy, numWorkers: numWorkers}
}

// Scan dispatches fixed-size index ranges to the pool's workers until one
// reports a dipper match, then cancels and drains every worker before
// returning. It is the Go analogue of observatory::scan: a dispatcher
// loop feeding ranges in over a channel instead of a polled ready queue.
func (wp *WorkerPool) Scan(ctx context.Context, proofNum uint64) (*scanResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	work := make(chan rangeRequest)
	results := make(chan scanResult, wp.numWorkers)

	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < wp.numWorkers; i++ {
		id := i
		g.Go(func() error {
			return wp.runWorker(ctx, id, work, results)
		})
	}

	g.Go(func() error {
		idx := uint64(0)
		for {
			select {
			case <-ctx.Done():
				return nil
			case work <- rangeRequest{proofNum: proofNum, start: idx, end: idx + scanDelta}:
				idx += scanDelta
			}
		}
	})

	var result *scanResult
	select {
	case r := <-results:
		result = &r
	case <-ctx.Done():
	}
	cancel()

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// runWorker is one worker's main loop: take a range request, scan it index
// by index (set target, take picture, run the detector), and report the
// first match. It owns its camera and detector exclusively — no other
// worker ever touches them.
func (wp *WorkerPool) runWorker(ctx context.Context, id int, work <-chan rangeRequest, results chan<- scanResult) error {
	cam := newCamera(wp.galaxy, id)
	det := newDipperDetector(defaultTolerance)

	for {
		select {
		case <-ctx.Done():
			return nil
		case req, ok := <-work:
			if !ok {
				return nil
			}
			for idx := req.start; idx < req.end; idx++ {
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				cam.setTargetFromIndex(req.proofNum, idx)
				var picture []ProjectedStar
				cam.takePicture(&picture)
				if found, ok := det.search(picture); ok {
					select {
					case results <- scanResult{found: found, nonce: idx}:
					case <-ctx.Done():
					}
					return nil
				}
			}
		}
	}
}
