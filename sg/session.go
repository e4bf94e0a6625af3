package sg

import (
	"sync"

	"github.com/borealis-gfx/borealis/comm"
)

// A Session binds one rank's scene-graph state to its distributed
// communicator. It is created once at process start and passed explicitly
// to NewFrame; there is no ambient process-wide state. A session allows at
// most one active frame at a time.
type Session struct {
	sync.Mutex

	comm        comm.Communicator
	activeFrame bool
}

// Create a session for the given communicator.
func NewSession(c comm.Communicator) *Session {
	return &Session{comm: c}
}

// Get the id of this session's rank.
func (s *Session) Rank() int {
	return s.comm.Rank()
}

// Get the number of cooperating ranks.
func (s *Session) WorldSize() int {
	return s.comm.WorldSize()
}

// Get the session communicator.
func (s *Session) Communicator() comm.Communicator {
	return s.comm
}

func (s *Session) acquireFrame() error {
	s.Lock()
	defer s.Unlock()

	if s.activeFrame {
		return ErrFrameActive
	}
	s.activeFrame = true
	return nil
}

func (s *Session) releaseFrame() {
	s.Lock()
	s.activeFrame = false
	s.Unlock()
}
