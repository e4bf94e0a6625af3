package sg

import (
	"errors"
	"sync"
	"testing"

	"github.com/borealis-gfx/borealis/comm"
	"github.com/borealis-gfx/borealis/render"
	"github.com/borealis-gfx/borealis/types"
)

func TestFrameDefaultChildren(t *testing.T) {
	f := makeTestFrame(t)
	defer f.Release()

	if f.World() == nil || f.World().Type() != NodeWorld {
		t.Fatal("expected a default-populated world child")
	}
	if f.Camera() == nil || f.Camera().Type() != NodeCamera {
		t.Fatal("expected a default-populated camera child")
	}
}

func TestSessionSingleActiveFrame(t *testing.T) {
	comms, err := comm.NewLocalGroup(1)
	if err != nil {
		t.Fatal(err)
	}
	sess := NewSession(comms[0])

	f, err := NewFrame(sess)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = NewFrame(sess); !errors.Is(err, ErrFrameActive) {
		t.Fatalf("expected ErrFrameActive; got %v", err)
	}

	f.Release()
	f2, err := NewFrame(sess)
	if err != nil {
		t.Fatalf("expected the frame slot to be free after Release; got %v", err)
	}
	f2.Release()
}

func TestFrameBeforeRender(t *testing.T) {
	f := makeTestFrame(t)
	defer f.Release()

	if err := f.SaveFrame("/tmp/never-written.png", render.ChannelColor); !errors.Is(err, render.ErrFrameNotReady) {
		t.Fatalf("expected ErrFrameNotReady; got %v", err)
	}
	if _, err := f.MapFrame(); !errors.Is(err, render.ErrFrameNotReady) {
		t.Fatalf("expected ErrFrameNotReady; got %v", err)
	}
	if f.FrameIsReady() {
		t.Fatal("expected frame not to be ready before a render")
	}
	if f.FrameProgress() != 0 {
		t.Fatal("expected zero progress before a render")
	}

	// Rendering without a renderer child cannot start.
	if err := f.StartNewFrame(); !errors.Is(err, ErrIncompleteScene) {
		t.Fatalf("expected ErrIncompleteScene; got %v", err)
	}
}

func TestFrameNavigationThenFull(t *testing.T) {
	f := makeTestFrame(t)
	defer f.Release()
	f.ImmediatelyWait = true
	buildQuadGraph(t, f, 0, types.XYZW(1, 0, 0, 1))

	// The first frame after building the scene renders at navigation
	// resolution.
	if err := f.StartNewFrame(); err != nil {
		t.Fatal(err)
	}
	stats := f.Stats()
	if !stats.Navigation {
		t.Fatal("expected the first frame to be a navigation frame")
	}
	expW, expH := 32/render.DefaultNavScale, 32/render.DefaultNavScale
	if stats.FrameW != expW || stats.FrameH != expH {
		t.Fatalf("expected %dx%d navigation frame; got %dx%d", expW, expH, stats.FrameW, stats.FrameH)
	}

	// Rendering again with an unchanged graph yields the full frame.
	if err := f.StartNewFrame(); err != nil {
		t.Fatal(err)
	}
	stats = f.Stats()
	if stats.Navigation || stats.FrameW != 32 || stats.FrameH != 32 {
		t.Fatalf("expected a full 32x32 frame; got %dx%d (navigation=%t)",
			stats.FrameW, stats.FrameH, stats.Navigation)
	}
	if !f.FrameIsReady() || f.FrameProgress() != 1 {
		t.Fatal("expected the frame to report ready with full progress")
	}

	// Any graph mutation drops the next frame back to navigation
	// resolution.
	posNode, err := f.Camera().Child("position")
	if err != nil {
		t.Fatal(err)
	}
	if err = posNode.SetValue(types.XYZ(0, 0.01, 0)); err != nil {
		t.Fatal(err)
	}
	if err = f.StartNewFrame(); err != nil {
		t.Fatal(err)
	}
	if stats = f.Stats(); !stats.Navigation {
		t.Fatal("expected a navigation frame after mutating the graph")
	}
}

func TestDistributedComposite(t *testing.T) {
	tiles := renderDistributed(t, 2)

	// Every rank ends up holding the same composited image.
	for rank := 1; rank < len(tiles); rank++ {
		if !tilesEqual(tiles[0], tiles[rank]) {
			t.Fatalf("expected rank %d to hold the same composited frame as rank 0", rank)
		}
	}

	// The composited image contains contributions from both ranks: the red
	// quad rendered by rank 0 and the green one rendered by rank 1.
	var redSeen, greenSeen bool
	tile := tiles[0]
	for pix := 0; pix < tile.W*tile.H; pix++ {
		r, g := tile.Color[pix*4], tile.Color[pix*4+1]
		if r > 0.9 && g < 0.1 {
			redSeen = true
		}
		if g > 0.9 && r < 0.1 {
			greenSeen = true
		}
	}
	if !redSeen || !greenSeen {
		t.Fatalf("expected quads from both ranks in the composite (red=%t, green=%t)", redSeen, greenSeen)
	}
}

func TestDistributedCompositeDeterminism(t *testing.T) {
	// Rank arrival order varies between runs but the composited image may
	// not.
	first := renderDistributed(t, 3)
	second := renderDistributed(t, 3)
	if !tilesEqual(first[0], second[0]) {
		t.Fatal("expected identical composites across runs")
	}
}

// renderDistributed spins up an in-process rank group, renders the per-rank
// quad scene through the full navigation-then-full-frame cycle and returns
// each rank's composited full-size tile.
func renderDistributed(t *testing.T, ranks int) []*render.Tile {
	t.Helper()

	comms, err := comm.NewLocalGroup(ranks)
	if err != nil {
		t.Fatal(err)
	}

	var (
		wg    sync.WaitGroup
		tiles = make([]*render.Tile, ranks)
		errs  = make([]error, ranks)
	)
	rankColors := []types.Vec4{
		{1, 0, 0, 1},
		{0, 1, 0, 1},
		{0, 0, 1, 1},
	}

	for rank := 0; rank < ranks; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()

			f, err := NewFrame(NewSession(comms[rank]))
			if err != nil {
				errs[rank] = err
				return
			}
			defer f.Release()
			f.ImmediatelyWait = true
			buildQuadGraph(t, f, rank, rankColors[rank%len(rankColors)])

			for pass := 0; pass < 2; pass++ {
				if err = f.StartNewFrame(); err != nil {
					errs[rank] = err
					return
				}
			}

			tile, err := f.MapFrame()
			if err != nil {
				errs[rank] = err
				return
			}
			tiles[rank] = tile
		}(rank)
	}
	wg.Wait()

	for rank, err := range errs {
		if err != nil {
			t.Fatalf("rank %d: %v", rank, err)
		}
	}
	return tiles
}

// buildQuadGraph declares a 32x32 frame with a flat-colored quad owned by the
// given rank. Each rank's quad occupies its own horizontal slice of the view
// so composited frames show every rank's contribution.
func buildQuadGraph(t *testing.T, f *Frame, rank int, color types.Vec4) {
	t.Helper()

	if _, err := f.CreateChild("windowSize", "vec2i", types.Vec2i{32, 32}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.CreateChildAs("renderer", "renderer_mpiRaycast"); err != nil {
		t.Fatal(err)
	}

	camera := f.Camera()
	camera.CreateChild("position", "vec3f", types.XYZ(0, 0, 0))
	camera.CreateChild("direction", "vec3f", types.XYZ(0, 0, 1))
	camera.CreateChild("up", "vec3f", types.XYZ(0, 1, 0))
	camera.CreateChild("aspect", "float", float32(1))

	// One horizontal band per rank, all at z=1 in front of the camera.
	y0 := -0.45 + float32(rank)*0.3
	y1 := y0 + 0.2
	mesh, err := f.World().CreateChild("mesh", "geometry_triangles")
	if err != nil {
		t.Fatal(err)
	}
	mesh.CreateChildData("vertex.position", []types.Vec3{
		{-0.5, y0, 1},
		{0.5, y0, 1},
		{0.5, y1, 1},
		{-0.5, y1, 1},
	})
	mesh.CreateChildData("vertex.color", []types.Vec4{color, color, color, color})
	mesh.CreateChildData("index", [][3]uint32{{0, 1, 2}, {0, 2, 3}})

	lm := NewLightsManager()
	if _, err = lm.AddLight("ambientlight", "ambient"); err != nil {
		t.Fatal(err)
	}
	if err = lm.UpdateWorld(f.World()); err != nil {
		t.Fatal(err)
	}
}

func tilesEqual(a, b *render.Tile) bool {
	if a.W != b.W || a.H != b.H {
		return false
	}
	for idx := range a.Color {
		if a.Color[idx] != b.Color[idx] {
			return false
		}
	}
	for idx := range a.Depth {
		if a.Depth[idx] != b.Depth[idx] {
			return false
		}
	}
	return true
}
