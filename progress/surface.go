package progress

import "sync"

// Surface is a mounted modal. It remembers the generation at which it
// became visible so its teardown can be recognised as stale.
type Surface struct {
	controller *Controller
	target     State
	generation uint64
	once       sync.Once
	accepted   bool
}

func (s *Surface) Target() State      { return s.target }
func (s *Surface) Generation() uint64 { return s.generation }

// Active reports whether this surface is still the presented one.
func (s *Surface) Active() bool {
	return s.controller.Snapshot().Accepts(s.target, s.generation)
}

// Closed is the teardown notification. Only the first call has an effect,
// and it hides the surface only while the surface is still active.
func (s *Surface) Closed() bool {
	s.once.Do(func() {
		s.accepted = s.controller.NotifyClosed(s.target, s.generation)
	})
	return s.accepted
}
