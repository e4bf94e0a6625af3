package render

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/borealis-gfx/borealis/comm"
)

func TestCoordinatorNavigationPolicy(t *testing.T) {
	co, backend := makeCoordinator(t, 2)
	defer co.Close()
	scene := &Scene{}

	// First frame after construction renders at navigation resolution.
	if err := co.StartNewFrame(scene, 8, 8); err != nil {
		t.Fatal(err)
	}
	if err := co.WaitOnFrame(); err != nil {
		t.Fatal(err)
	}
	if backend.lastW != 4 || backend.lastH != 4 {
		t.Fatalf("expected first frame at navigation resolution 4x4; got %dx%d", backend.lastW, backend.lastH)
	}
	if stats := co.Stats(); !stats.Navigation {
		t.Fatal("expected first frame stats to be flagged as navigation")
	}

	// Second frame renders full size.
	if err := co.StartNewFrame(scene, 8, 8); err != nil {
		t.Fatal(err)
	}
	if err := co.WaitOnFrame(); err != nil {
		t.Fatal(err)
	}
	if backend.lastW != 8 || backend.lastH != 8 {
		t.Fatalf("expected second frame at full resolution 8x8; got %dx%d", backend.lastW, backend.lastH)
	}
	if !co.FrameIsReady() {
		t.Fatal("expected coordinator to be ready after waiting")
	}

	// A scene change makes the next frame a navigation frame again.
	co.InvalidateScene()
	if err := co.StartNewFrame(scene, 8, 8); err != nil {
		t.Fatal(err)
	}
	if err := co.WaitOnFrame(); err != nil {
		t.Fatal(err)
	}
	if backend.lastW != 4 || backend.lastH != 4 {
		t.Fatalf("expected post-invalidation frame at navigation resolution; got %dx%d", backend.lastW, backend.lastH)
	}
}

func TestCoordinatorSaveBeforeReady(t *testing.T) {
	co, _ := makeCoordinator(t, 1)
	defer co.Close()

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := co.SaveFrame(path, ChannelColor); !errors.Is(err, ErrFrameNotReady) {
		t.Fatalf("expected ErrFrameNotReady; got %v", err)
	}
	if err := co.WaitOnFrame(); !errors.Is(err, ErrFrameNotReady) {
		t.Fatalf("expected ErrFrameNotReady from wait with no frame started; got %v", err)
	}
}

func TestCoordinatorSaveFrame(t *testing.T) {
	co, _ := makeCoordinator(t, 1)
	defer co.Close()

	if err := co.StartNewFrame(&Scene{}, 4, 4); err != nil {
		t.Fatal(err)
	}
	if err := co.WaitOnFrame(); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if err := co.SaveFrame(filepath.Join(dir, "color.png"), ChannelColor); err != nil {
		t.Fatal(err)
	}
	if err := co.SaveFrame(filepath.Join(dir, "depth.png"), ChannelDepth); err != nil {
		t.Fatal(err)
	}
	if err := co.SaveFrame(filepath.Join(dir, "bogus.png"), Channel(7)); !errors.Is(err, ErrUnknownChannel) {
		t.Fatalf("expected ErrUnknownChannel; got %v", err)
	}
}

func TestCoordinatorRenderFailure(t *testing.T) {
	co, backend := makeCoordinator(t, 1)
	defer co.Close()

	backend.failWith = errors.New("device lost")
	if err := co.StartNewFrame(&Scene{}, 4, 4); err != nil {
		t.Fatal(err)
	}

	err := co.WaitOnFrame()
	var failure *RenderFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected a RenderFailure; got %v", err)
	}
	if failure.Stage != StageRendering || failure.Rank != 0 {
		t.Fatalf("expected rendering failure on rank 0; got stage %s rank %d", failure.Stage, failure.Rank)
	}

	// The frame never reached Ready and the buffer stays unmapped.
	if co.FrameIsReady() {
		t.Fatal("expected coordinator not to be ready after a failure")
	}
	if _, err = co.MapFrame(); !errors.Is(err, ErrFrameNotReady) {
		t.Fatalf("expected ErrFrameNotReady; got %v", err)
	}

	// The caller recovers by starting a new frame.
	backend.failWith = nil
	if err = co.StartNewFrame(&Scene{}, 4, 4); err != nil {
		t.Fatal(err)
	}
	if err = co.WaitOnFrame(); err != nil {
		t.Fatal(err)
	}
	if !co.FrameIsReady() {
		t.Fatal("expected coordinator to recover after a fresh frame")
	}
}

func TestCoordinatorFrameInFlight(t *testing.T) {
	co, backend := makeCoordinator(t, 1)
	defer co.Close()

	backend.blockChan = make(chan struct{})
	if err := co.StartNewFrame(&Scene{}, 4, 4); err != nil {
		t.Fatal(err)
	}
	if err := co.StartNewFrame(&Scene{}, 4, 4); !errors.Is(err, ErrFrameInFlight) {
		t.Fatalf("expected ErrFrameInFlight; got %v", err)
	}

	close(backend.blockChan)
	if err := co.WaitOnFrame(); err != nil {
		t.Fatal(err)
	}
}

func makeCoordinator(t *testing.T, navScale int) (*Coordinator, *mockBackend) {
	t.Helper()
	comms, err := comm.NewLocalGroup(1)
	if err != nil {
		t.Fatal(err)
	}
	backend := &mockBackend{}
	return NewCoordinator(comms[0], backend, navScale), backend
}

type mockBackend struct {
	lastW, lastH int
	failWith     error
	blockChan    chan struct{}
}

func (mb *mockBackend) Id() string {
	return "mock"
}

func (mb *mockBackend) Render(scene *Scene, frameW, frameH int) (*Tile, error) {
	if mb.blockChan != nil {
		<-mb.blockChan
	}
	if mb.failWith != nil {
		return nil, mb.failWith
	}
	mb.lastW, mb.lastH = frameW, frameH
	return NewTile(frameW, frameH), nil
}

func (mb *mockBackend) Progress() float32 {
	return 0
}

func (mb *mockBackend) WorkerStats() []WorkerStat {
	return nil
}

func (mb *mockBackend) Close() {
}
