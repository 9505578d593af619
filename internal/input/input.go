// Package input is the seam to the host's input subsystem. The engine
// samples a Source exactly once per tick, before entity updates run, and
// hands the resulting State to behaviors read-only.
package input

import "github.com/1studio/SpaceHuggers/internal/mathx"

const (
	MaxButtons = 16
	MaxSticks  = 2
)

// State is one tick's input snapshot.
type State struct {
	down     [MaxButtons]bool
	pressed  [MaxButtons]bool
	released [MaxButtons]bool
	sticks   [MaxSticks]mathx.Vector2
}

func (s *State) Down(button int) bool {
	return button >= 0 && button < MaxButtons && s.down[button]
}

func (s *State) Pressed(button int) bool {
	return button >= 0 && button < MaxButtons && s.pressed[button]
}

func (s *State) Released(button int) bool {
	return button >= 0 && button < MaxButtons && s.released[button]
}

func (s *State) Stick(index int) mathx.Vector2 {
	if index < 0 || index >= MaxSticks {
		return mathx.Vector2{}
	}
	return s.sticks[index]
}

// Source produces input snapshots. Implemented by the host platform layer;
// the engine never calls it more than once per tick.
type Source interface {
	Sample() State
}

// Static is a Source driven by direct setters. Used by tests and replay
// playback. Pressed/released edges are derived from the previous Sample.
type Static struct {
	down   [MaxButtons]bool
	sticks [MaxSticks]mathx.Vector2
	prev   [MaxButtons]bool
}

func NewStatic() *Static { return &Static{} }

func (s *Static) SetDown(button int, down bool) {
	if button >= 0 && button < MaxButtons {
		s.down[button] = down
	}
}

func (s *Static) SetStick(index int, v mathx.Vector2) {
	if index >= 0 && index < MaxSticks {
		s.sticks[index] = v
	}
}

func (s *Static) Sample() State {
	var st State
	st.down = s.down
	st.sticks = s.sticks
	for i := 0; i < MaxButtons; i++ {
		st.pressed[i] = s.down[i] && !s.prev[i]
		st.released[i] = !s.down[i] && s.prev[i]
	}
	s.prev = s.down
	return st
}

// Null is a Source that reports nothing held. The default for headless
// worlds.
type Null struct{}

func (Null) Sample() State { return State{} }
