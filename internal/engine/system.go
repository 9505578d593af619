package engine

import "sort"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput   Phase = iota // 0: sample the input collaborator
	PhaseUpdate               // 1: entity updates + physics resolution
	PhaseOutput               // 2: hand draw state to the render collaborator
	PhaseCleanup              // 3: compact destroyed entities
)

// System is one stage of the tick. Built-in systems cover input sampling,
// simulation, and cleanup; collaborators (the render view, gameplay-level
// systems) register their own.
type System interface {
	Phase() Phase
	Update(w *World)
}

// Runner executes systems in phase order each tick.
type Runner struct {
	systems []System
	sorted  bool
}

func NewRunner() *Runner {
	return &Runner{systems: make([]System, 0, 8)}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick(w *World) {
	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(w)
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
