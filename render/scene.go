package render

import "github.com/borealis-gfx/borealis/types"

// Light kinds understood by the backends.
const (
	LightAmbient = "ambient"
	LightDistant = "distant"
)

// A triangle mesh flattened out of a geometry node. Vertices are already in
// world space; transforms get baked in during scene compilation.
type Mesh struct {
	Name string

	Vertices    []types.Vec3
	Colors      []types.Vec4
	Indices     [][3]uint32
	MaterialIDs []uint32
}

// A compiled light source.
type Light struct {
	Name string
	Kind string

	Color     types.Vec3
	Intensity float32

	// Direction is only meaningful for distant lights.
	Direction types.Vec3
}

// Scene is the flattened, renderable view of a scene graph produced by the
// compiler. It is a transient snapshot: any further graph mutation requires
// recompilation.
type Scene struct {
	Camera Camera
	Meshes []*Mesh
	Lights []Light

	BgColor types.Vec4
}
