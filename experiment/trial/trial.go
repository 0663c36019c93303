// Package trial runs a single reaching trial: the participant first brings the
// pointer home to the center, then reaches toward a target while the cursor
// feedback is rotated by the trial's angular displacement.
package trial

import (
	"fmt"
	"image/color"

	"visuomotor/experiment/gfx"
	"visuomotor/experiment/perturb"
	"visuomotor/experiment/session"
	"visuomotor/experiment/trials"
)

const (
	// RingRadius is the distance from the center to the targets. A reach that
	// carries the pointer beyond it ends the trial.
	RingRadius = 200
	// HomeRadius is how close the pointer must get to the center to start a reach.
	HomeRadius = 15
	// HitDist2 is the squared cursor-target distance that counts as a hit.
	HitDist2 = 100

	centerDotRadius = 10
	targetRadius    = 10
	cursorRadius    = 5
)

// State is the phase of a trial.
type State uint8

const (
	AwaitCenter State = iota
	Reaching
	Done
)

func (s State) String() string {
	switch s {
	case AwaitCenter:
		return "await-center"
	case Reaching:
		return "reaching"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Outcome is why a trial reached Done. It is reported for logging only; the
// saved trajectory does not distinguish a hit from an overshoot.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeHit
	OutcomeOvershoot
	// OutcomeCancelled is the soft cancel (escape).
	OutcomeCancelled
	// OutcomeQuit is the hard cancel (window close, interrupt).
	OutcomeQuit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeHit:
		return "hit"
	case OutcomeOvershoot:
		return "overshoot"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeQuit:
		return "quit"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}

// Frame is the input sampled for one step.
type Frame struct {
	Pointer perturb.Point
	Escape  bool
	Quit    bool
}

// Canvas is the drawing surface a trial renders onto.
type Canvas interface {
	Clear(col color.RGBA)
	Circle(x, y, r int, col color.RGBA)
	Disc(x, y, r int, col color.RGBA)
}

// Machine steps one trial through AwaitCenter, Reaching and Done.
type Machine struct {
	spec   trials.Spec
	center perturb.Point
	target perturb.Point

	state   State
	outcome Outcome

	// live is the raw pointer distance to center while awaiting, the cursor
	// while reaching.
	live   float64
	cursor perturb.Point

	rec session.TrialRecord
}

// New returns a machine for spec, with the home position at center.
func New(spec trials.Spec, center perturb.Point) *Machine {
	return &Machine{
		spec:   spec,
		center: center,
		target: perturb.OnRing(center, RingRadius, spec.TargetAngle),
		state:  AwaitCenter,
		rec:    session.TrialRecord{TrialNumber: spec.TrialNumber, CursorPositions: []session.Position{}},
	}
}

// Spec returns the trial definition.
func (m *Machine) Spec() trials.Spec { return m.spec }

// State returns the current phase.
func (m *Machine) State() State { return m.state }

// Outcome returns why the trial ended, or OutcomeNone while it runs.
func (m *Machine) Outcome() Outcome { return m.outcome }

// Target returns the target position.
func (m *Machine) Target() perturb.Point { return m.target }

// Cursor returns the last displayed cursor position.
func (m *Machine) Cursor() perturb.Point { return m.cursor }

// Record returns the samples captured so far.
func (m *Machine) Record() session.TrialRecord { return m.rec }

// Sampled reports whether the trial entered Reaching, and so has samples worth
// keeping on a hard quit.
func (m *Machine) Sampled() bool { return len(m.rec.CursorPositions) > 0 }

// Step advances the trial by one frame and returns the new state. Cancellation
// is checked before the pointer is sampled.
func (m *Machine) Step(f Frame) State {
	if m.state == Done {
		return m.state
	}
	if f.Quit {
		m.finish(OutcomeQuit)
		return m.state
	}
	if f.Escape {
		m.finish(OutcomeCancelled)
		return m.state
	}

	switch m.state {
	case AwaitCenter:
		m.live = perturb.Dist(f.Pointer, m.center)
		if m.live < HomeRadius {
			m.state = Reaching
		}

	case Reaching:
		m.cursor = perturb.Rotate(m.center, f.Pointer, m.spec.AngularDisplacement)
		m.rec.CursorPositions = append(m.rec.CursorPositions, session.PositionOf(m.cursor))

		switch {
		case perturb.Dist2(m.cursor, m.target) < HitDist2:
			m.finish(OutcomeHit)
		case perturb.Dist(m.cursor, m.center) > RingRadius:
			m.finish(OutcomeOvershoot)
		}
	}
	return m.state
}

func (m *Machine) finish(o Outcome) {
	m.state = Done
	m.outcome = o
}

// Render draws the current frame. While awaiting the center a guide circle tracks
// the raw pointer distance; while reaching the target is shown, and the rotated
// cursor only on trials with visible feedback.
func (m *Machine) Render(c Canvas) {
	c.Clear(gfx.White)
	cx, cy := int(m.center.X), int(m.center.Y)

	switch m.state {
	case AwaitCenter:
		c.Circle(cx, cy, int(m.live), gfx.Black)
		c.Disc(cx, cy, centerDotRadius, gfx.Green)

	case Reaching, Done:
		c.Disc(int(m.target.X), int(m.target.Y), targetRadius, gfx.Red)
		if m.spec.CursorVisible && m.Sampled() {
			c.Disc(int(m.cursor.X), int(m.cursor.Y), cursorRadius, gfx.Blue)
		}
	}
}
