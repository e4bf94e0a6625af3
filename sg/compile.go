package sg

import (
	"fmt"
	"time"

	"github.com/borealis-gfx/borealis/log"
	"github.com/borealis-gfx/borealis/render"
	"github.com/borealis-gfx/borealis/types"
)

type sceneCompiler struct {
	frame *Frame
	scene *render.Scene

	logger log.Logger
}

// Compile the frame's world, camera, renderer and light subtrees into a
// flattened renderable scene. Compilation observes the parameter values at
// call time; the result is a snapshot that later graph mutations do not
// affect. Given identical parameter values the output is identical: the
// walk follows child insertion order and touches no unordered state.
func compileScene(f *Frame) (*render.Scene, error) {
	sc := &sceneCompiler{
		frame:  f,
		scene:  &render.Scene{},
		logger: log.NewForRank("scene compiler", f.sess.Rank()),
	}

	start := time.Now()

	var err error
	if err = sc.checkRenderer(); err != nil {
		return nil, err
	}
	if err = sc.setupCamera(); err != nil {
		return nil, err
	}
	if err = sc.flattenWorld(); err != nil {
		return nil, err
	}
	if err = sc.collectLights(); err != nil {
		return nil, err
	}

	sc.logger.Infof("compiled scene in %d ms (%d meshes, %d lights)",
		time.Since(start).Nanoseconds()/1e6, len(sc.scene.Meshes), len(sc.scene.Lights))
	return sc.scene, nil
}

// The renderer child must be present; its background color ends up on the
// scene.
func (sc *sceneCompiler) checkRenderer() error {
	renderer, err := sc.frame.Child("renderer")
	if err != nil || renderer.Type() != NodeRenderer {
		return fmt.Errorf("%w: no renderer declared under the frame", ErrIncompleteScene)
	}

	bg := vec3Value(renderer, "backgroundColor", types.Vec3{})
	sc.scene.BgColor = bg.Vec4(0)
	return nil
}

// Resolve the camera node's parameter values, falling back to the stock
// forward-looking camera for anything undeclared.
func (sc *sceneCompiler) setupCamera() error {
	camera, err := sc.frame.Child("camera")
	if err != nil || camera.Type() != NodeCamera {
		return fmt.Errorf("%w: no camera declared under the frame", ErrIncompleteScene)
	}

	sc.scene.Camera = render.Camera{
		Position:  vec3Value(camera, "position", types.Vec3{}),
		Direction: vec3Value(camera, "direction", types.XYZ(0, 0, 1)),
		Up:        vec3Value(camera, "up", types.XYZ(0, 1, 0)),
		Aspect:    floatValue(camera, "aspect", 1.0),
		FOV:       floatValue(camera, "fovy", render.DefaultFOV),
	}
	return nil
}

// Walk the world subtree resolving transforms and geometries into world
// space meshes.
func (sc *sceneCompiler) flattenWorld() error {
	world, err := sc.frame.Child("world")
	if err != nil || world.Type() != NodeWorld {
		return fmt.Errorf("%w: no world declared under the frame", ErrIncompleteScene)
	}
	return sc.walkWorld(world, types.Ident4())
}

func (sc *sceneCompiler) walkWorld(node *Node, xfm types.Mat4) error {
	for _, child := range node.Children() {
		switch child.Type() {
		case NodeTransform:
			if err := sc.walkWorld(child, xfm.Mul4(transformMatrix(child))); err != nil {
				return err
			}
		case NodeGeometry:
			mesh, err := sc.compileGeometry(child, xfm)
			if err != nil {
				return err
			}
			sc.scene.Meshes = append(sc.scene.Meshes, mesh)
		case NodeLight:
			// Pushed light sets are collected separately.
		default:
			if child.Value() == nil && child.Name() != worldLightsChild {
				if err := sc.walkWorld(child, xfm); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// The local matrix for a transform node: translation, XYZ euler rotation
// and scale values applied in that order.
func transformMatrix(node *Node) types.Mat4 {
	xfm := types.Ident4()
	if t := vec3Value(node, "translation", types.Vec3{}); t != (types.Vec3{}) {
		xfm = xfm.Mul4(types.Translate4(t))
	}
	if r := vec3Value(node, "rotation", types.Vec3{}); r != (types.Vec3{}) {
		xfm = xfm.Mul4(types.Rotate4(r))
	}
	if s := vec3Value(node, "scale", types.XYZ(1, 1, 1)); s != types.XYZ(1, 1, 1) {
		xfm = xfm.Mul4(types.Scale4(s))
	}
	return xfm
}

// Flatten a triangle geometry node: bake the accumulated transform into the
// vertex buffer and validate the index buffer against it.
func (sc *sceneCompiler) compileGeometry(geom *Node, xfm types.Mat4) (*render.Mesh, error) {
	if geom.Subtype() != "triangles" {
		return nil, fmt.Errorf("%w: geometry variant %q", ErrUnknownSubtype, geom.Subtype())
	}

	posParam, exists := nodeValue(geom, "vertex.position")
	if !exists || posParam.Kind() != KindVertexArray {
		return nil, fmt.Errorf("%w: geometry %q has no vertex.position buffer", ErrIncompleteScene, geom.Name())
	}
	idxParam, exists := nodeValue(geom, "index")
	if !exists || idxParam.Kind() != KindIndexArray {
		return nil, fmt.Errorf("%w: geometry %q has no index buffer", ErrIncompleteScene, geom.Name())
	}

	vertices := posParam.Vertices()
	indices := idxParam.Indices()
	for _, tri := range indices {
		for _, idx := range tri {
			if int(idx) >= len(vertices) {
				return nil, fmt.Errorf("%w: geometry %q index %d out of range (%d vertices)",
					ErrShapeMismatch, geom.Name(), idx, len(vertices))
			}
		}
	}

	mesh := &render.Mesh{
		Name:     geom.Name(),
		Vertices: make([]types.Vec3, len(vertices)),
		Indices:  indices,
	}
	for idx, v := range vertices {
		mesh.Vertices[idx] = xfm.TransformPoint(v)
	}

	if colorParam, exists := nodeValue(geom, "vertex.color"); exists {
		colors := colorParam.Colors()
		if len(colors) != len(vertices) {
			return nil, fmt.Errorf("%w: geometry %q has %d colors for %d vertices",
				ErrShapeMismatch, geom.Name(), len(colors), len(vertices))
		}
		mesh.Colors = colors
	}
	if matParam, exists := nodeValue(geom, "material"); exists {
		mesh.MaterialIDs = matParam.Scalars()
	}

	return mesh, nil
}

// Collect the light set previously pushed into the world by a lights
// manager.
func (sc *sceneCompiler) collectLights() error {
	world, _ := sc.frame.Child("world")
	lights, err := world.Child(worldLightsChild)
	if err != nil {
		return nil
	}

	for _, light := range lights.Children() {
		if light.Type() != NodeLight {
			continue
		}
		sc.scene.Lights = append(sc.scene.Lights, render.Light{
			Name:      light.Name(),
			Kind:      light.Subtype(),
			Color:     vec3Value(light, "color", types.XYZ(1, 1, 1)),
			Intensity: floatValue(light, "intensity", 1.0),
			Direction: vec3Value(light, "direction", types.XYZ(0, 0, -1)),
		})
	}
	return nil
}
