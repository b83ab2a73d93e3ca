package firmware

import (
	"log"
	"sync"
)

// SimLink stands in for the controller when running with -sim or when no
// hardware is attached. It records the last command instead of writing it.
type SimLink struct {
	mu          sync.Mutex
	Left, Right int16
	Quiet       bool
}

func NewSimLink() *SimLink {
	return &SimLink{}
}

func (s *SimLink) SendMotor(left, right int16) error {
	s.mu.Lock()
	s.Left, s.Right = left, right
	quiet := s.Quiet
	s.mu.Unlock()

	if !quiet {
		log.Printf("sim motor: L=%d R=%d", left, right)
	}
	return nil
}

// Last returns the most recent wheel command.
func (s *SimLink) Last() (left, right int16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Left, s.Right
}

func (s *SimLink) Close() error {
	return nil
}
