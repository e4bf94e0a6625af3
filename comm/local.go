package comm

import (
	"errors"
	"sync"
)

var ErrGroupSize = errors.New("comm: group size must be at least 1")

// An in-process rank group. All ranks live in the same process and
// synchronize through a shared reduction round; it is the reference
// Communicator implementation and the one the tests run against.
type localGroup struct {
	sync.Mutex

	size  int
	round *reduceRound
}

// State for one in-flight AllReduce round. The last rank to arrive closes
// doneChan to release everyone blocked on the round.
type reduceRound struct {
	acc      Payload
	err      error
	arrived  int
	doneChan chan struct{}
}

type localComm struct {
	rank  int
	group *localGroup
}

// Create an in-process communicator group of the given size. The returned
// slice holds one Communicator per rank, indexed by rank id.
func NewLocalGroup(size int) ([]Communicator, error) {
	if size < 1 {
		return nil, ErrGroupSize
	}

	group := &localGroup{size: size}
	comms := make([]Communicator, size)
	for rank := 0; rank < size; rank++ {
		comms[rank] = &localComm{rank: rank, group: group}
	}
	return comms, nil
}

// Get the id of the calling rank.
func (c *localComm) Rank() int {
	return c.rank
}

// Get the number of cooperating ranks.
func (c *localComm) WorldSize() int {
	return c.group.size
}

// AllReduce merges the payloads contributed by every rank in the group and
// returns the combined result to all of them. Contributions are folded in
// arrival order; Merge must be associative and commutative so the order
// cannot be observed in the result.
func (c *localComm) AllReduce(p Payload) (Payload, error) {
	group := c.group

	group.Lock()
	if group.round == nil {
		group.round = &reduceRound{
			acc:      p.Clone(),
			arrived:  1,
			doneChan: make(chan struct{}),
		}
	} else {
		if err := group.round.acc.Merge(p); err != nil && group.round.err == nil {
			group.round.err = err
		}
		group.round.arrived++
	}
	round := group.round

	if round.arrived == group.size {
		// Last rank in; complete the round and release the others.
		group.round = nil
		close(round.doneChan)
	}
	group.Unlock()

	<-round.doneChan
	return round.acc, round.err
}
