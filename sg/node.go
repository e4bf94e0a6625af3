package sg

import (
	"errors"
	"fmt"
	"strings"
)

var errEmptyName = errors.New("sg: node name cannot be empty")

// A Node is a named, typed element of the scene graph. It owns an ordered
// set of uniquely named children and a set of uniquely named parameter
// values; children are destroyed with their parent and are never shared
// between parents.
type Node struct {
	name    string
	tag     string
	ntype   NodeType
	subtype string

	parent   *Node
	order    []string
	children map[string]*Node
	params   map[string]*Param

	// Value-typed leaf nodes carry their payload here.
	value *Param

	// Mutation counter, only maintained on the tree root. Any mutation
	// below bumps it, which is what invalidates compiled scenes and
	// triggers the navigation-resolution frame.
	version uint64
}

func newNode(name, tag string, ntype NodeType) *Node {
	return &Node{
		name:     name,
		tag:      tag,
		ntype:    ntype,
		children: make(map[string]*Node),
		params:   make(map[string]*Param),
	}
}

// Get node name.
func (n *Node) Name() string {
	return n.name
}

// Get the type tag the node was created with.
func (n *Node) TypeTag() string {
	return n.tag
}

// Get the structural node type.
func (n *Node) Type() NodeType {
	return n.ntype
}

// Get the concrete variant for polymorphic nodes ("mpiRaycast",
// "triangles", ...). Empty for plain nodes.
func (n *Node) Subtype() string {
	return n.subtype
}

// Get the owning parent, nil for roots.
func (n *Node) Parent() *Node {
	return n.parent
}

// Get the node's value payload. Only value-typed leaf nodes have one.
func (n *Node) Value() *Param {
	return n.value
}

// CreateChild constructs a node of the given type under this node. Value
// tags (float, vec2i, vec3f, uint, string) require an initial value and
// produce leaf nodes; registered subtype tags are accepted as well. The
// child mapping is left untouched when the call fails.
func (n *Node) CreateChild(name, typeTag string, initial ...interface{}) (*Node, error) {
	if name == "" {
		return nil, errEmptyName
	}
	if _, exists := n.children[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	if def, exists := subtypeDefs[typeTag]; exists {
		return n.adoptChild(newVariantNode(name, def)), nil
	}

	def, exists := nodeDefs[typeTag]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeTag)
	}

	child := newNode(name, typeTag, def.ntype)
	if def.kind != KindUnknown {
		if len(initial) == 0 {
			return nil, fmt.Errorf("%w: %q (%s)", ErrMissingValue, name, typeTag)
		}
		param, err := newParam("value", initial[0])
		if err != nil {
			return nil, err
		}
		if param.Kind() != def.kind {
			return nil, fmt.Errorf("%w: %q declared %s, got %s", ErrTypeMismatch, name, def.kind, param.Kind())
		}
		child.value = param
	}

	return n.adoptChild(child), nil
}

// CreateChildAs constructs a child selecting a concrete implementation
// variant for a polymorphic role, e.g. a specific renderer algorithm.
func (n *Node) CreateChildAs(name, subtype string) (*Node, error) {
	if name == "" {
		return nil, errEmptyName
	}
	if _, exists := n.children[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	def, exists := subtypeDefs[subtype]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSubtype, subtype)
	}

	return n.adoptChild(newVariantNode(name, def)), nil
}

// CreateChildData constructs a data leaf child from a contiguous buffer:
// vertex positions ([]types.Vec3), vertex colors ([]types.Vec4), triangle
// indices ([][3]uint32) or material ids ([]uint32). The buffer kind must be
// consistent with the semantic role implied by the child name.
func (n *Node) CreateChildData(name string, buffer interface{}) (*Node, error) {
	if name == "" {
		return nil, errEmptyName
	}
	if _, exists := n.children[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	param, err := newParam("value", buffer)
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported data buffer type %T", ErrShapeMismatch, buffer)
	}
	kind := param.Kind()
	switch kind {
	case KindVertexArray, KindColorArray, KindIndexArray, KindScalarArray:
	default:
		return nil, fmt.Errorf("%w: %s is not a data buffer kind", ErrShapeMismatch, kind)
	}

	if want, constrained := dataRoleKind(name); constrained && want != kind {
		return nil, fmt.Errorf("%w: %q requires %s, got %s", ErrShapeMismatch, name, want, kind)
	}

	child := newNode(name, kind.String(), NodeGeneric)
	child.value = param
	return n.adoptChild(child), nil
}

// The buffer kind implied by a data child's name, when the name carries a
// known semantic role.
func dataRoleKind(name string) (Kind, bool) {
	switch {
	case strings.Contains(name, "position"):
		return KindVertexArray, true
	case strings.Contains(name, "color"):
		return KindColorArray, true
	case strings.Contains(name, "index"):
		return KindIndexArray, true
	case strings.Contains(name, "material"):
		return KindScalarArray, true
	default:
		return KindUnknown, false
	}
}

// Child looks up a direct child by name.
func (n *Node) Child(name string) (*Node, error) {
	child, exists := n.children[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return child, nil
}

// Children returns the direct children in insertion order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.order))
	for idx, name := range n.order {
		out[idx] = n.children[name]
	}
	return out
}

// SetParam declares or updates a parameter value on the node. Updating an
// already-declared parameter with a value of a different kind fails;
// retyping requires an explicit RemoveParam first.
func (n *Node) SetParam(name string, value interface{}) error {
	param, err := newParam(name, value)
	if err != nil {
		return err
	}

	if existing, exists := n.params[name]; exists && existing.Kind() != param.Kind() {
		return fmt.Errorf("%w: %q declared %s, got %s", ErrTypeMismatch, name, existing.Kind(), param.Kind())
	}

	n.params[name] = param
	n.bumpVersion()
	return nil
}

// SetValue replaces a value-typed node's payload with a value of the same
// kind. Like parameters, value nodes are never silently retyped.
func (n *Node) SetValue(value interface{}) error {
	if n.value == nil {
		return fmt.Errorf("%w: %q is not a value node", ErrTypeMismatch, n.name)
	}
	param, err := newParam("value", value)
	if err != nil {
		return err
	}
	if param.Kind() != n.value.Kind() {
		return fmt.Errorf("%w: %q declared %s, got %s", ErrTypeMismatch, n.name, n.value.Kind(), param.Kind())
	}
	n.value = param
	n.bumpVersion()
	return nil
}

// Param looks up a declared parameter by name.
func (n *Node) Param(name string) (*Param, bool) {
	param, exists := n.params[name]
	return param, exists
}

// RemoveParam drops a declared parameter so that a later SetParam may
// redeclare it with a different kind.
func (n *Node) RemoveParam(name string) {
	if _, exists := n.params[name]; exists {
		delete(n.params, name)
		n.bumpVersion()
	}
}

// Version returns the mutation counter of the tree this node belongs to.
func (n *Node) Version() uint64 {
	return n.root().version
}

func newVariantNode(name string, def subtypeDef) *Node {
	node := newNode(name, def.tag, def.ntype)
	node.subtype = def.variant
	return node
}

func (n *Node) adoptChild(child *Node) *Node {
	child.parent = n
	n.children[child.name] = child
	n.order = append(n.order, child.name)
	n.bumpVersion()
	return child
}

func (n *Node) removeChild(name string) {
	child, exists := n.children[name]
	if !exists {
		return
	}
	child.parent = nil
	delete(n.children, name)
	for idx, childName := range n.order {
		if childName == name {
			n.order = append(n.order[:idx], n.order[idx+1:]...)
			break
		}
	}
	n.bumpVersion()
}

func (n *Node) root() *Node {
	root := n
	for root.parent != nil {
		root = root.parent
	}
	return root
}

func (n *Node) bumpVersion() {
	n.root().version++
}

// clone produces a deep copy of the node subtree. Parameter values share
// the underlying buffers; params are immutable once set so this is safe.
func (n *Node) clone() *Node {
	out := newNode(n.name, n.tag, n.ntype)
	out.subtype = n.subtype
	out.value = n.value
	for name, param := range n.params {
		out.params[name] = param
	}
	for _, child := range n.Children() {
		out.adoptChild(child.clone())
	}
	return out
}
