package render

import (
	"sync"
	"time"

	"github.com/borealis-gfx/borealis/comm"
	"github.com/borealis-gfx/borealis/log"
)

// The per-rank frame pipeline states.
type State uint8

const (
	Idle State = iota
	Rendering
	Compositing
	Ready
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Rendering:
		return "rendering"
	case Compositing:
		return "compositing"
	default:
		return "ready"
	}
}

// Downscale factor applied to the first frame after a scene change.
const DefaultNavScale = 4

// Statistics for the last completed frame on this rank.
type FrameStats struct {
	// The rank that produced the frame.
	Rank int

	// The resolution the frame was rendered at and whether it was a
	// reduced navigation frame.
	FrameW, FrameH int
	Navigation     bool

	// Individual backend worker stats.
	Workers []WorkerStat

	// Local render and cross-rank composite times.
	RenderTime    time.Duration
	CompositeTime time.Duration
}

// Coordinator drives one rank's share of a distributed frame: it hands the
// compiled scene to the backend, folds the resulting tile into the
// cross-rank reduction and publishes the composited image through a
// double-buffered target. The front buffer always holds the last frame that
// reached Ready, so readers never observe a partially written image.
type Coordinator struct {
	sync.Mutex

	logger  log.Logger
	comm    comm.Communicator
	backend Backend

	state    State
	inFlight bool
	failure  error
	doneChan chan struct{}

	front *Tile
	back  *Tile

	// Sticky resolution policy: the first frame after a scene change is
	// rendered at 1/navScale resolution, every later one full size.
	navScale int
	navNext  bool

	stats FrameStats
}

// Create a frame coordinator for one rank.
func NewCoordinator(c comm.Communicator, backend Backend, navScale int) *Coordinator {
	if navScale < 1 {
		navScale = DefaultNavScale
	}
	return &Coordinator{
		logger:   log.NewForRank("coordinator", c.Rank()),
		comm:     c,
		backend:  backend,
		navScale: navScale,
		navNext:  true,
	}
}

// Rank of this coordinator in the communicator group.
func (co *Coordinator) Rank() int {
	return co.comm.Rank()
}

// InvalidateScene flags that the scene topology changed; the next frame will
// render at navigation resolution.
func (co *Coordinator) InvalidateScene() {
	co.Lock()
	co.navNext = true
	co.Unlock()
}

// StartNewFrame kicks off an asynchronous render of the scene and returns
// immediately; WaitOnFrame blocks until the frame reaches Ready. Starting a
// frame while one is in flight is an error. The scene must not be mutated
// until the frame completes.
func (co *Coordinator) StartNewFrame(scene *Scene, frameW, frameH int) error {
	co.Lock()
	if co.inFlight {
		co.Unlock()
		return ErrFrameInFlight
	}

	navigation := co.navNext
	co.navNext = false
	if navigation {
		frameW /= co.navScale
		frameH /= co.navScale
		if frameW < 1 {
			frameW = 1
		}
		if frameH < 1 {
			frameH = 1
		}
	}

	co.inFlight = true
	co.failure = nil
	co.state = Rendering
	co.doneChan = make(chan struct{})
	doneChan := co.doneChan
	co.Unlock()

	go co.renderFrame(scene, frameW, frameH, navigation, doneChan)
	return nil
}

// WaitOnFrame blocks the calling rank until the in-flight frame reaches
// Ready locally, returning the frame's failure if one occurred. It does not
// imply that other ranks are Ready. Calling it with no frame in flight
// returns the last frame's outcome.
func (co *Coordinator) WaitOnFrame() error {
	co.Lock()
	doneChan := co.doneChan
	co.Unlock()

	if doneChan == nil {
		return ErrFrameNotReady
	}
	<-doneChan

	co.Lock()
	defer co.Unlock()
	return co.failure
}

// FrameIsReady reports whether the last started frame has reached Ready.
func (co *Coordinator) FrameIsReady() bool {
	co.Lock()
	defer co.Unlock()
	return co.state == Ready
}

// FrameProgress reports the fraction of the in-flight frame rendered so far.
func (co *Coordinator) FrameProgress() float32 {
	co.Lock()
	state := co.state
	co.Unlock()

	switch state {
	case Ready:
		return 1.0
	case Idle:
		return 0.0
	default:
		return co.backend.Progress()
	}
}

// MapFrame returns the front buffer holding the last composited frame. The
// returned tile must be treated as read-only; it stays valid while the next
// frame renders into the back buffer.
func (co *Coordinator) MapFrame() (*Tile, error) {
	co.Lock()
	defer co.Unlock()

	if co.front == nil {
		return nil, ErrFrameNotReady
	}
	return co.front, nil
}

// Stats returns statistics for the last frame that reached Ready.
func (co *Coordinator) Stats() FrameStats {
	co.Lock()
	defer co.Unlock()
	return co.stats
}

// Shutdown the coordinator and its backend.
func (co *Coordinator) Close() {
	co.backend.Close()
}

// The body of one asynchronous frame: local render, cross-rank composite,
// buffer swap. A failure parks the state machine at the failing stage; the
// front buffer keeps the previous Ready frame either way.
func (co *Coordinator) renderFrame(scene *Scene, frameW, frameH int, navigation bool, doneChan chan struct{}) {
	renderStart := time.Now()
	tile, err := co.backend.Render(scene, frameW, frameH)
	if err != nil {
		co.failFrame(StageRendering, err, doneChan)
		return
	}
	renderTime := time.Since(renderStart)

	co.Lock()
	co.state = Compositing
	co.Unlock()

	compositeStart := time.Now()
	merged, err := co.comm.AllReduce(tile)
	if err != nil {
		co.failFrame(StageCompositing, err, doneChan)
		return
	}
	compositeTime := time.Since(compositeStart)

	co.Lock()
	if co.back == nil || co.back.W != frameW || co.back.H != frameH {
		co.back = NewTile(frameW, frameH)
	}
	co.back.CopyFrom(merged.(*Tile))
	co.front, co.back = co.back, co.front

	co.state = Ready
	co.inFlight = false
	co.stats = FrameStats{
		Rank:          co.comm.Rank(),
		FrameW:        frameW,
		FrameH:        frameH,
		Navigation:    navigation,
		Workers:       co.backend.WorkerStats(),
		RenderTime:    renderTime,
		CompositeTime: compositeTime,
	}
	co.Unlock()

	co.logger.Infof("frame ready (%dx%d, render %d ms, composite %d ms)",
		frameW, frameH, renderTime.Nanoseconds()/1e6, compositeTime.Nanoseconds()/1e6)
	close(doneChan)
}

func (co *Coordinator) failFrame(stage Stage, err error, doneChan chan struct{}) {
	co.Lock()
	co.failure = &RenderFailure{Rank: co.comm.Rank(), Stage: stage, Err: err}
	co.inFlight = false
	co.Unlock()

	co.logger.Errorf("frame failed while %s: %v", stage, err)
	close(doneChan)
}
