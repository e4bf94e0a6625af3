package sg

import (
	"fmt"
	"sort"
)

// The structural role of a scene node.
type NodeType uint8

const (
	NodeGeneric NodeType = iota
	NodeFrame
	NodeRenderer
	NodeWorld
	NodeCamera
	NodeTransform
	NodeGeometry
	NodeLightsManager
	NodeLight
)

func (t NodeType) String() string {
	switch t {
	case NodeFrame:
		return "frame"
	case NodeRenderer:
		return "renderer"
	case NodeWorld:
		return "world"
	case NodeCamera:
		return "camera"
	case NodeTransform:
		return "transform"
	case NodeGeometry:
		return "geometry"
	case NodeLightsManager:
		return "lightsManager"
	case NodeLight:
		return "light"
	default:
		return "generic"
	}
}

// A registered node type tag. Value-kinded tags produce leaf nodes holding a
// single typed value; the rest produce structural nodes.
type nodeDef struct {
	tag   string
	ntype NodeType
	kind  Kind
}

// A registered concrete variant for a polymorphic node role, selectable via
// CreateChildAs. Renderer variants name the backend that the frame
// coordinator will drive.
type subtypeDef struct {
	tag     string
	ntype   NodeType
	variant string
	backend string
}

var (
	nodeDefs    = make(map[string]nodeDef)
	subtypeDefs = make(map[string]subtypeDef)
	lightKinds  = make(map[string]string)
)

func registerNodeDef(def nodeDef) {
	if _, exists := nodeDefs[def.tag]; exists {
		panic(fmt.Sprintf("sg: node type %q registered twice", def.tag))
	}
	nodeDefs[def.tag] = def
}

func registerSubtypeDef(def subtypeDef) {
	if _, exists := subtypeDefs[def.tag]; exists {
		panic(fmt.Sprintf("sg: node subtype %q registered twice", def.tag))
	}
	if def.variant == "" {
		panic(fmt.Sprintf("sg: node subtype %q has no variant name", def.tag))
	}
	subtypeDefs[def.tag] = def
	if def.ntype == NodeLight {
		lightKinds[def.variant] = def.tag
	}
}

func init() {
	// Structural tags.
	registerNodeDef(nodeDef{tag: "world", ntype: NodeWorld})
	registerNodeDef(nodeDef{tag: "camera", ntype: NodeCamera})
	registerNodeDef(nodeDef{tag: "transform", ntype: NodeTransform})
	registerNodeDef(nodeDef{tag: "lightsManager", ntype: NodeLightsManager})
	registerNodeDef(nodeDef{tag: "generic", ntype: NodeGeneric})

	// Value tags.
	registerNodeDef(nodeDef{tag: "float", ntype: NodeGeneric, kind: KindFloat})
	registerNodeDef(nodeDef{tag: "vec2i", ntype: NodeGeneric, kind: KindVec2i})
	registerNodeDef(nodeDef{tag: "vec3f", ntype: NodeGeneric, kind: KindVec3f})
	registerNodeDef(nodeDef{tag: "uint", ntype: NodeGeneric, kind: KindUInt})
	registerNodeDef(nodeDef{tag: "string", ntype: NodeGeneric, kind: KindString})

	// Concrete variants.
	registerSubtypeDef(subtypeDef{tag: "renderer_mpiRaycast", ntype: NodeRenderer, variant: "mpiRaycast", backend: "raycast"})
	registerSubtypeDef(subtypeDef{tag: "renderer_raycast", ntype: NodeRenderer, variant: "raycast", backend: "raycast"})
	registerSubtypeDef(subtypeDef{tag: "geometry_triangles", ntype: NodeGeometry, variant: "triangles"})
	registerSubtypeDef(subtypeDef{tag: "light_ambient", ntype: NodeLight, variant: "ambient"})
	registerSubtypeDef(subtypeDef{tag: "light_distant", ntype: NodeLight, variant: "distant"})
}

// NodeTypes lists the registered structural and value type tags in stable
// order.
func NodeTypes() []string {
	tags := make([]string, 0, len(nodeDefs))
	for tag := range nodeDefs {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Subtypes lists the registered concrete variant tags in stable order.
func Subtypes() []string {
	tags := make([]string, 0, len(subtypeDefs))
	for tag := range subtypeDefs {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// LightKinds lists the registered light kinds in stable order.
func LightKinds() []string {
	kinds := make([]string, 0, len(lightKinds))
	for kind := range lightKinds {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
