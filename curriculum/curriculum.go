// Copyright 2026 The gopinn Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package curriculum schedules the training time horizon in phases.
package curriculum

import "github.com/gopinn/gopinn/internal/curriculum"

// ErrScheduleExhausted reports an advance past the final phase.
var ErrScheduleExhausted = curriculum.ErrScheduleExhausted

// Schedule maps iteration thresholds to growing time horizons.
type Schedule = curriculum.Schedule

// State is the position of a training run within a schedule.
type State = curriculum.State

// Load reads and validates a YAML schedule file.
func Load(path string) (Schedule, error) { return curriculum.Load(path) }

// Start returns the state for the first phase of a schedule.
func Start(s Schedule, tmin float64) (State, error) { return curriculum.Start(s, tmin) }

// Advance moves a state to the given phase, leaving the input untouched.
func Advance(state State, s Schedule, phase int) (State, error) {
	return curriculum.Advance(state, s, phase)
}
