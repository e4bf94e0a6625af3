package render

import (
	"fmt"
	"sort"
	"time"
)

// Per-worker statistics for the last rendered frame.
type WorkerStat struct {
	// The worker id.
	Id string

	// The block height and the percentage of total frame area it represents.
	BlockH       uint32
	FramePercent float32

	// Render time for assigned block
	RenderTime time.Duration
}

// The Backend interface is implemented by the rendering algorithms that
// produce a rank's partial frame tile. A backend only sees the compiled
// scene; it knows nothing about ranks or compositing.
type Backend interface {
	// Get backend id.
	Id() string

	// Render the scene into a fresh tile at the given resolution.
	Render(scene *Scene, frameW, frameH int) (*Tile, error)

	// Fraction of the in-flight frame that has been rendered so far.
	Progress() float32

	// Per-worker statistics for the last rendered frame.
	WorkerStats() []WorkerStat

	// Shutdown and cleanup backend.
	Close()
}

var backendFactories = make(map[string]func() Backend)

// Register a backend constructor under a name. Renderer node subtypes
// resolve to backend names at frame start.
func RegisterBackend(name string, factory func() Backend) {
	if _, exists := backendFactories[name]; exists {
		panic(fmt.Sprintf("render: backend %q registered twice", name))
	}
	backendFactories[name] = factory
}

// Create a backend instance by name.
func NewBackend(name string) (Backend, error) {
	factory, exists := backendFactories[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return factory(), nil
}

// List the registered backend names in stable order.
func Backends() []string {
	names := make([]string, 0, len(backendFactories))
	for name := range backendFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
