package sg

import (
	"fmt"

	"github.com/borealis-gfx/borealis/log"
	"github.com/borealis-gfx/borealis/render"
	"github.com/borealis-gfx/borealis/types"
)

// Default frame resolution when no windowSize child is declared.
const (
	DefaultFrameW = 1024
	DefaultFrameH = 768
)

// Frame is the root of a scene graph and the front-end of the distributed
// frame pipeline. Construction eagerly populates the well-known "world" and
// "camera" children so callers can fetch them without creating them first.
//
// Rendering is asynchronous: StartNewFrame kicks off the local render and
// cross-rank composite and WaitOnFrame blocks until the frame is ready.
// Setting ImmediatelyWait makes StartNewFrame itself block.
type Frame struct {
	*Node

	// When set, StartNewFrame blocks until the frame reaches Ready.
	ImmediatelyWait bool

	sess   *Session
	logger log.Logger

	coord       *render.Coordinator
	backendName string

	// Compiled scene cache, invalidated whenever the graph version moves.
	compiled    *render.Scene
	lastVersion uint64
}

// Create the scene graph root for a session. A session allows a single
// active frame; Release frees the slot.
func NewFrame(sess *Session) (*Frame, error) {
	if err := sess.acquireFrame(); err != nil {
		return nil, err
	}

	root := newNode("frame", "frame", NodeFrame)
	root.CreateChild("world", "world")
	root.CreateChild("camera", "camera")

	return &Frame{
		Node:   root,
		sess:   sess,
		logger: log.NewForRank("frame", sess.Rank()),
	}, nil
}

// World returns the default-populated world child.
func (f *Frame) World() *Node {
	world, _ := f.Child("world")
	return world
}

// Camera returns the default-populated camera child.
func (f *Frame) Camera() *Node {
	camera, _ := f.Child("camera")
	return camera
}

// Session returns the session this frame renders under.
func (f *Frame) Session() *Session {
	return f.sess
}

// StartNewFrame compiles the current scene if it changed since the last
// frame and kicks off a render across all ranks. The first frame after any
// scene change renders at navigation resolution; rendering again yields the
// full sized frame.
func (f *Frame) StartNewFrame() error {
	if err := f.ensureCoordinator(); err != nil {
		return err
	}

	version := f.Version()
	if f.compiled == nil || version != f.lastVersion {
		scene, err := compileScene(f)
		if err != nil {
			return err
		}
		f.compiled = scene
		f.lastVersion = version
		f.coord.InvalidateScene()
	}

	frameW, frameH := f.resolution()
	if err := f.coord.StartNewFrame(f.compiled, frameW, frameH); err != nil {
		return err
	}

	if f.ImmediatelyWait {
		return f.coord.WaitOnFrame()
	}
	return nil
}

// WaitOnFrame blocks this rank until the in-flight frame reaches Ready
// locally and returns its outcome. Other ranks may still be rendering.
func (f *Frame) WaitOnFrame() error {
	if f.coord == nil {
		return render.ErrFrameNotReady
	}
	return f.coord.WaitOnFrame()
}

// FrameIsReady reports whether the last started frame has reached Ready.
func (f *Frame) FrameIsReady() bool {
	return f.coord != nil && f.coord.FrameIsReady()
}

// FrameProgress reports the fraction of the in-flight frame rendered so far.
func (f *Frame) FrameProgress() float32 {
	if f.coord == nil {
		return 0
	}
	return f.coord.FrameProgress()
}

// MapFrame returns the read-only front buffer of the last composited frame.
func (f *Frame) MapFrame() (*render.Tile, error) {
	if f.coord == nil {
		return nil, render.ErrFrameNotReady
	}
	return f.coord.MapFrame()
}

// SaveFrame writes the selected channel of the last composited frame to a
// PNG file. Only meaningful on a rank holding the full composited result,
// commonly rank 0.
func (f *Frame) SaveFrame(path string, channel render.Channel) error {
	if f.coord == nil {
		return render.ErrFrameNotReady
	}
	return f.coord.SaveFrame(path, channel)
}

// Stats returns statistics for the last frame that reached Ready.
func (f *Frame) Stats() render.FrameStats {
	if f.coord == nil {
		return render.FrameStats{}
	}
	return f.coord.Stats()
}

// Release shuts down the frame pipeline and frees the session's frame slot.
func (f *Frame) Release() {
	if f.coord != nil {
		f.coord.Close()
		f.coord = nil
	}
	f.sess.releaseFrame()
}

// The frame resolution: the windowSize child when declared, defaults
// otherwise.
func (f *Frame) resolution() (int, int) {
	param, exists := nodeValue(f.Node, "windowSize")
	if !exists || param.Kind() != KindVec2i {
		return DefaultFrameW, DefaultFrameH
	}
	size := param.Vec2i()
	if size[0] < 1 || size[1] < 1 {
		return DefaultFrameW, DefaultFrameH
	}
	return int(size[0]), int(size[1])
}

// Build (or rebuild, when the renderer variant changed) the coordinator for
// the declared renderer child.
func (f *Frame) ensureCoordinator() error {
	renderer, err := f.Child("renderer")
	if err != nil || renderer.Type() != NodeRenderer {
		return fmt.Errorf("%w: no renderer declared under the frame", ErrIncompleteScene)
	}

	def, exists := subtypeDefs[renderer.TypeTag()]
	if !exists || def.backend == "" {
		return fmt.Errorf("%w: renderer %q names no backend", ErrUnknownSubtype, renderer.TypeTag())
	}

	if f.coord != nil && f.backendName == def.backend {
		return nil
	}
	if f.coord != nil {
		f.coord.Close()
	}

	backend, err := render.NewBackend(def.backend)
	if err != nil {
		return err
	}
	f.coord = render.NewCoordinator(f.sess.Communicator(), backend, render.DefaultNavScale)
	f.backendName = def.backend
	f.logger.Infof("using %q backend for renderer %q", def.backend, renderer.Subtype())
	return nil
}

// The value attached to a node under the given name: a value-typed child
// takes precedence, a declared parameter is checked next.
func nodeValue(n *Node, name string) (*Param, bool) {
	if child, err := n.Child(name); err == nil && child.Value() != nil {
		return child.Value(), true
	}
	return n.Param(name)
}

// Convenience for reading a vec3f value with a fallback.
func vec3Value(n *Node, name string, fallback types.Vec3) types.Vec3 {
	if param, exists := nodeValue(n, name); exists && param.Kind() == KindVec3f {
		return param.Vec3f()
	}
	return fallback
}

// Convenience for reading a float value with a fallback.
func floatValue(n *Node, name string, fallback float32) float32 {
	if param, exists := nodeValue(n, name); exists && param.Kind() == KindFloat {
		return param.Float()
	}
	return fallback
}
