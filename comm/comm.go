// Package comm abstracts the message-passing layer that cooperating render
// ranks use for collective operations. The scene-graph layer only depends on
// rank identity, world size and a single reduction primitive; anything
// fancier (MPI, sockets) plugs in behind the Communicator interface.
package comm

// A rank's contribution to a collective reduction.
type Payload interface {
	// Merge folds another rank's contribution into this payload. The
	// operation must be associative and commutative so that rank arrival
	// order cannot change the reduced result.
	Merge(other Payload) error

	// Clone returns a deep copy that the communicator may mutate freely.
	Clone() Payload
}

// The Communicator interface is implemented by all rank transports.
type Communicator interface {
	// Get the id of the calling rank.
	Rank() int

	// Get the number of cooperating ranks.
	WorldSize() int

	// AllReduce merges the payloads contributed by every rank and returns
	// the combined result to all of them. It is a collective call: every
	// rank in the group must invoke it exactly once per round. The
	// returned payload is shared between ranks and must be treated as
	// read-only.
	AllReduce(p Payload) (Payload, error)
}
