// Package session accumulates trial trajectories and persists them once per run.
package session

import "visuomotor/experiment/perturb"

// Position is an (x, y) cursor sample in display coordinates. It encodes as a
// two-element array.
type Position [2]float64

// PositionOf converts a point to a Position.
func PositionOf(p perturb.Point) Position { return Position{p.X, p.Y} }

// TrialRecord is the trajectory captured for one trial, one sample per frame.
type TrialRecord struct {
	TrialNumber     int        `json:"trial_number"`
	CursorPositions []Position `json:"cursor_positions"`
}

// Record is the ordered list of trial records of a session.
type Record []TrialRecord
