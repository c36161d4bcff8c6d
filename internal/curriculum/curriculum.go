// Package curriculum implements seq2seq-style horizon scheduling: the
// training time window grows across phases, and each phase transition
// produces new generator windows and operator horizons as values. Nothing
// here is read inside loss evaluation.
package curriculum

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrScheduleExhausted reports an Advance past the last phase.
var ErrScheduleExhausted = errors.New("schedule exhausted")

// Schedule is the static phase plan: TimeSteps[i] is the horizon tmax of
// phase i, IterSteps[i] the training iteration at which phase i begins.
// Both slices have equal length and are strictly increasing.
type Schedule struct {
	TimeSteps []float64 `yaml:"time_steps"`
	IterSteps []int     `yaml:"iter_steps"`
}

// Validate checks the schedule invariants.
func (s Schedule) Validate() error {
	if len(s.TimeSteps) == 0 {
		return fmt.Errorf("empty schedule")
	}
	if len(s.TimeSteps) != len(s.IterSteps) {
		return fmt.Errorf("%d time steps but %d iter steps", len(s.TimeSteps), len(s.IterSteps))
	}
	for i := 1; i < len(s.TimeSteps); i++ {
		if s.TimeSteps[i] <= s.TimeSteps[i-1] {
			return fmt.Errorf("time steps not increasing at phase %d", i)
		}
		if s.IterSteps[i] <= s.IterSteps[i-1] {
			return fmt.Errorf("iter steps not increasing at phase %d", i)
		}
	}
	return nil
}

// Phases reports the number of phases.
func (s Schedule) Phases() int { return len(s.TimeSteps) }

// PhaseAt reports the phase active at a training iteration.
func (s Schedule) PhaseAt(iter int) int {
	phase := 0
	for i, start := range s.IterSteps {
		if iter >= start {
			phase = i
		}
	}
	return phase
}

// Load reads a schedule from a YAML file and validates it.
func Load(path string) (Schedule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Schedule{}, fmt.Errorf("reading schedule: %w", err)
	}
	var s Schedule
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Schedule{}, fmt.Errorf("parsing schedule: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Schedule{}, fmt.Errorf("invalid schedule: %w", err)
	}
	return s, nil
}

// State is the curriculum position: the active phase and the window and
// horizon it implies. States are immutable; Advance returns new ones.
type State struct {
	Phase int
	TMin  float64
	TMax  float64
}

// Start builds the state of phase 0.
func Start(s Schedule, tmin float64) (State, error) {
	if err := s.Validate(); err != nil {
		return State{}, err
	}
	return State{Phase: 0, TMin: tmin, TMax: s.TimeSteps[0]}, nil
}

// Advance is the pure phase transition: given the current state and a
// target phase, it returns the state of that phase. Callers apply the new
// window to their generator and the new horizon to their operators
// between iterations, outside the differentiable path.
func Advance(state State, s Schedule, phase int) (State, error) {
	if err := s.Validate(); err != nil {
		return State{}, err
	}
	if phase < 0 || phase >= s.Phases() {
		return State{}, fmt.Errorf("%w: phase %d of %d", ErrScheduleExhausted, phase, s.Phases())
	}
	return State{Phase: phase, TMin: state.TMin, TMax: s.TimeSteps[phase]}, nil
}
