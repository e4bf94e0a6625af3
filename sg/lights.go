package sg

import (
	"fmt"

	"github.com/borealis-gfx/borealis/types"
)

// The name of the world child that holds the pushed light set.
const worldLightsChild = "lights"

// LightsManager owns a set of named lights and pushes them into a world's
// light list. It is itself a scene node, so lights are created, typed and
// parameterized like any other child.
type LightsManager struct {
	*Node
}

// Create a lights manager.
func NewLightsManager() *LightsManager {
	return &LightsManager{Node: newNode("lightsManager", "lightsManager", NodeLightsManager)}
}

// AddLight registers a light of the given kind under management. The light
// starts with unit white color and unit intensity.
func (lm *LightsManager) AddLight(name, kind string) (*Node, error) {
	subtypeTag, exists := lightKinds[kind]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLightKind, kind)
	}

	light, err := lm.CreateChildAs(name, subtypeTag)
	if err != nil {
		return nil, err
	}

	light.SetParam("color", types.XYZ(1, 1, 1))
	light.SetParam("intensity", float32(1))
	if kind == "distant" {
		light.SetParam("direction", types.XYZ(0, 0, -1))
	}
	return light, nil
}

// UpdateWorld pushes all managed lights into the world's light list,
// replacing any previously pushed set. Calling it twice with unchanged
// lights yields the same world light list.
func (lm *LightsManager) UpdateWorld(world *Node) error {
	if world == nil || world.Type() != NodeWorld {
		return fmt.Errorf("%w: lights can only be pushed into a world node", ErrIncompleteScene)
	}

	world.removeChild(worldLightsChild)
	lights, err := world.CreateChild(worldLightsChild, "generic")
	if err != nil {
		return err
	}

	for _, light := range lm.Children() {
		lights.adoptChild(light.clone())
	}
	return nil
}
