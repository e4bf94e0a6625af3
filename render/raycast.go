package render

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/borealis-gfx/borealis/log"
	"github.com/borealis-gfx/borealis/types"
	"github.com/chewxy/math32"
)

// Intersections closer than this are treated as self-hits and skipped.
const intersectEpsilon float32 = 1e-7

var errNilScene = errors.New("render: raycast backend invoked with nil scene")

func init() {
	RegisterBackend("raycast", func() Backend {
		return NewRaycaster(runtime.NumCPU())
	})
}

// A unit of work processed by a raycast worker.
type blockRequest struct {
	// Block start row and height.
	blockY uint32
	blockH uint32

	// The scene and target tile for this frame.
	scene *Scene
	tile  *Tile

	// A channel to signal on block completion with the worker index.
	doneChan chan<- int

	// A channel to signal if an error occurs.
	errChan chan<- error
}

// A raycast worker goroutine and its scheduling feedback.
type raycastWorker struct {
	id       string
	reqChan  chan blockRequest
	feedback WorkerFeedback
}

// A CPU ray-casting backend. Each frame is split into horizontal blocks that
// are assigned to a pool of persistent worker goroutines; block heights are
// rebalanced between frames using per-worker render times.
type raycaster struct {
	sync.Mutex

	logger    log.Logger
	workers   []*raycastWorker
	scheduler BlockScheduler
	closeChan chan struct{}

	// Progress tracking for the in-flight frame.
	rowsDone  uint32
	rowsTotal uint32
}

// Create a new raycast backend with the given number of workers.
func NewRaycaster(numWorkers int) Backend {
	if numWorkers < 1 {
		numWorkers = 1
	}

	rc := &raycaster{
		logger:    log.New("raycast"),
		scheduler: PerfectScheduler(),
		closeChan: make(chan struct{}),
	}

	for idx := 0; idx < numWorkers; idx++ {
		worker := &raycastWorker{
			id:       fmt.Sprintf("worker-%d", idx),
			reqChan:  make(chan blockRequest),
			feedback: WorkerFeedback{Speed: 1},
		}
		rc.workers = append(rc.workers, worker)
		go rc.workerLoop(idx, worker)
	}

	return rc
}

// Get backend id.
func (rc *raycaster) Id() string {
	return "raycast"
}

// Render the scene into a fresh tile at the given resolution.
func (rc *raycaster) Render(scene *Scene, frameW, frameH int) (*Tile, error) {
	if scene == nil {
		return nil, errNilScene
	}

	rc.Lock()
	defer rc.Unlock()

	atomic.StoreUint32(&rc.rowsDone, 0)
	atomic.StoreUint32(&rc.rowsTotal, uint32(frameH))

	feedback := make([]WorkerFeedback, len(rc.workers))
	for idx, worker := range rc.workers {
		feedback[idx] = worker.feedback
	}
	assignment := rc.scheduler.Schedule(feedback, uint32(frameH))

	tile := NewTile(frameW, frameH)
	for i := 0; i < frameW*frameH; i++ {
		copy(tile.Color[i*4:i*4+4], scene.BgColor[:])
	}

	doneChan := make(chan int, len(rc.workers))
	errChan := make(chan error, len(rc.workers))

	pending := 0
	var blockY uint32
	frameStart := time.Now()
	for idx, worker := range rc.workers {
		blockH := assignment[idx]
		if blockY+blockH > uint32(frameH) {
			blockH = uint32(frameH) - blockY
		}
		if blockH == 0 {
			worker.feedback.BlockH = 0
			worker.feedback.RenderTime = 0
			continue
		}

		worker.reqChan <- blockRequest{
			blockY:   blockY,
			blockH:   blockH,
			scene:    scene,
			tile:     tile,
			doneChan: doneChan,
			errChan:  errChan,
		}
		worker.feedback.BlockH = blockH
		worker.feedback.RenderTime = 0
		blockY += blockH
		pending++
	}

	var firstErr error
	for ; pending > 0; pending-- {
		select {
		case idx := <-doneChan:
			rc.workers[idx].feedback.RenderTime = time.Since(frameStart)
		case err := <-errChan:
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return tile, nil
}

// Fraction of the in-flight frame that has been rendered so far.
func (rc *raycaster) Progress() float32 {
	total := atomic.LoadUint32(&rc.rowsTotal)
	if total == 0 {
		return 0
	}
	return float32(atomic.LoadUint32(&rc.rowsDone)) / float32(total)
}

// Per-worker statistics for the last rendered frame.
func (rc *raycaster) WorkerStats() []WorkerStat {
	rc.Lock()
	defer rc.Unlock()

	frameH := atomic.LoadUint32(&rc.rowsTotal)
	stats := make([]WorkerStat, len(rc.workers))
	for idx, worker := range rc.workers {
		stats[idx] = WorkerStat{
			Id:         worker.id,
			BlockH:     worker.feedback.BlockH,
			RenderTime: worker.feedback.RenderTime,
		}
		if frameH > 0 {
			stats[idx].FramePercent = 100.0 * float32(worker.feedback.BlockH) / float32(frameH)
		}
	}
	return stats
}

// Shutdown and cleanup backend.
func (rc *raycaster) Close() {
	close(rc.closeChan)
}

// The worker loop blocks on the request channel and renders one row block
// per request until the backend shuts down.
func (rc *raycaster) workerLoop(workerIdx int, worker *raycastWorker) {
	for {
		select {
		case <-rc.closeChan:
			return
		case req := <-worker.reqChan:
			if err := rc.renderBlock(req); err != nil {
				req.errChan <- err
				continue
			}
			req.doneChan <- workerIdx
		}
	}
}

// Render one row block: generate a frustrum-interpolated ray per pixel, find
// the nearest triangle hit and shade it with the scene lights.
func (rc *raycaster) renderBlock(req blockRequest) error {
	scene := req.scene
	tile := req.tile
	frustrum := scene.Camera.Frustrum()

	for y := req.blockY; y < req.blockY+req.blockH; y++ {
		v := (float32(y) + 0.5) / float32(tile.H)
		for x := 0; x < tile.W; x++ {
			u := (float32(x) + 0.5) / float32(tile.W)
			rayDir := frustrum.Ray(u, v)

			hit, found := intersectScene(scene, scene.Camera.Position, rayDir)
			if !found {
				continue
			}

			pixel := int(y)*tile.W + x
			shaded := shade(scene, hit)
			tile.Color[pixel*4] = shaded[0]
			tile.Color[pixel*4+1] = shaded[1]
			tile.Color[pixel*4+2] = shaded[2]
			tile.Color[pixel*4+3] = shaded[3]
			tile.Depth[pixel] = hit.distance
		}
		atomic.AddUint32(&rc.rowsDone, 1)
	}

	return nil
}

type hitRecord struct {
	distance float32
	normal   types.Vec3
	color    types.Vec4
}

// Find the nearest triangle intersection along the ray.
func intersectScene(scene *Scene, origin, dir types.Vec3) (hitRecord, bool) {
	best := hitRecord{distance: math32.Inf(1)}
	found := false

	for _, mesh := range scene.Meshes {
		for _, tri := range mesh.Indices {
			v0 := mesh.Vertices[tri[0]]
			v1 := mesh.Vertices[tri[1]]
			v2 := mesh.Vertices[tri[2]]

			// Moeller-Trumbore intersection.
			edge1 := v1.Sub(v0)
			edge2 := v2.Sub(v0)
			pvec := dir.Cross(edge2)
			det := edge1.Dot(pvec)
			if det > -intersectEpsilon && det < intersectEpsilon {
				continue
			}
			invDet := 1.0 / det

			tvec := origin.Sub(v0)
			bu := tvec.Dot(pvec) * invDet
			if bu < 0 || bu > 1 {
				continue
			}

			qvec := tvec.Cross(edge1)
			bv := dir.Dot(qvec) * invDet
			if bv < 0 || bu+bv > 1 {
				continue
			}

			dist := edge2.Dot(qvec) * invDet
			if dist < intersectEpsilon || dist >= best.distance {
				continue
			}

			best.distance = dist
			best.normal = edge1.Cross(edge2).Normalize()
			best.color = interpolateColor(mesh, tri, bu, bv)
			found = true
		}
	}

	return best, found
}

// Interpolate the vertex colors at the hit's barycentric coordinates.
func interpolateColor(mesh *Mesh, tri [3]uint32, bu, bv float32) types.Vec4 {
	if len(mesh.Colors) == 0 {
		return types.XYZW(1, 1, 1, 1)
	}
	c0 := mesh.Colors[tri[0]].Mul(1 - bu - bv)
	c1 := mesh.Colors[tri[1]].Mul(bu)
	c2 := mesh.Colors[tri[2]].Mul(bv)
	return c0.Add(c1).Add(c2)
}

// Shade a hit with the scene lights: ambient terms scale the surface color
// uniformly, distant lights by the incidence angle.
func shade(scene *Scene, hit hitRecord) types.Vec4 {
	if len(scene.Lights) == 0 {
		return hit.color
	}

	var tint types.Vec3
	for _, light := range scene.Lights {
		switch light.Kind {
		case LightAmbient:
			tint = tint.Add(light.Color.Mul(light.Intensity))
		case LightDistant:
			cos := hit.normal.Dot(light.Direction.Normalize().Mul(-1))
			if cos < 0 {
				cos = -cos
			}
			tint = tint.Add(light.Color.Mul(light.Intensity * cos))
		}
	}
	tint = types.MinVec3(types.MaxVec3(tint, types.Vec3{}), types.XYZ(1, 1, 1))

	var out types.Vec4
	for c := 0; c < 3; c++ {
		out[c] = hit.color[c] * tint[c]
	}
	out[3] = hit.color[3]
	return out
}
