// Package app wires the experiment together: participant id prompt, trial list,
// the per-trial state machine and the session recorder.
package app

import (
	"errors"
	"fmt"
	"time"

	"visuomotor/experiment/gfx"
	"visuomotor/experiment/perturb"
	"visuomotor/experiment/prompt"
	"visuomotor/experiment/session"
	"visuomotor/experiment/trial"
	"visuomotor/experiment/trials"
	"visuomotor/hal"
)

// Config is what the experiment needs beyond the HAL.
type Config struct {
	TrialsPath string
	ResultsDir string
	Store      session.Store
	// Now stamps the artifact name; nil means time.Now.
	Now func() time.Time
}

type phase uint8

const (
	phasePrompt phase = iota
	phaseTrials
	phaseDone
)

// Experiment runs one session. Step is called once per frame by a HAL runner.
type Experiment struct {
	cfg Config

	log    hal.Logger
	fb     hal.Framebuffer
	canvas *gfx.Canvas
	kbd    hal.Keyboard
	ptr    hal.Pointer
	center perturb.Point

	phase  phase
	prompt *prompt.Prompt
	specs  []trials.Spec
	next   int
	cur    *trial.Machine
	rec    *session.Recorder

	keys     []hal.KeyEvent
	artifact string
}

// New builds an experiment on h.
func New(h hal.HAL, cfg Config) *Experiment {
	e := &Experiment{
		cfg:    cfg,
		log:    h.Logger(),
		prompt: prompt.New(),
	}
	if d := h.Display(); d != nil {
		e.fb = d.Framebuffer()
		e.canvas = gfx.NewCanvas(e.fb)
	}
	if in := h.Input(); in != nil {
		e.kbd = in.Keyboard()
		e.ptr = in.Pointer()
	}
	if e.fb != nil {
		e.center = perturb.Point{X: float64(e.fb.Width() / 2), Y: float64(e.fb.Height() / 2)}
	}
	return e
}

// Artifact returns the path of the saved session, once finalized.
func (e *Experiment) Artifact() string { return e.artifact }

// Recorder returns the session recorder, nil until the participant id is entered.
func (e *Experiment) Recorder() *session.Recorder { return e.rec }

// Step runs one frame. It returns hal.ErrStop once the session has been saved or
// abandoned, and any fatal error otherwise.
func (e *Experiment) Step() error {
	e.keys = hal.DrainKeys(e.kbd, e.keys[:0])

	switch e.phase {
	case phasePrompt:
		return e.stepPrompt()
	case phaseTrials:
		return e.stepTrial()
	default:
		return hal.ErrStop
	}
}

// Abort is the hard cancel from outside the frame loop, such as an interrupt
// signal. A trial already being reached is kept.
func (e *Experiment) Abort() error {
	switch e.phase {
	case phasePrompt:
		e.phase = phaseDone
		return nil
	case phaseTrials:
		e.cur.Step(trial.Frame{Quit: true})
		if err := e.trialDone(); !errors.Is(err, hal.ErrStop) {
			return err
		}
		return nil
	default:
		return nil
	}
}

func (e *Experiment) stepPrompt() error {
	st := e.prompt.Step(e.keys)
	if e.canvas != nil {
		e.prompt.Render(e.canvas)
		_ = e.canvas.Display()
	}

	switch st {
	case prompt.Quit:
		e.phase = phaseDone
		e.logf("quit before a participant id was entered; nothing saved")
		return hal.ErrStop
	case prompt.Submitted:
		return e.begin(e.prompt.ID())
	}
	return nil
}

func (e *Experiment) begin(participant string) error {
	specs, err := trials.Load(e.cfg.TrialsPath)
	if err != nil {
		e.phase = phaseDone
		return fmt.Errorf("load trials: %w", err)
	}
	e.specs = specs
	e.rec = session.NewRecorder(e.cfg.Store, e.cfg.ResultsDir, participant, e.cfg.Now)
	e.phase = phaseTrials
	e.logf("session: participant %q, %d trials from %s", participant, len(specs), e.cfg.TrialsPath)
	return e.advance()
}

// advance starts the next trial, or finalizes when none are left.
func (e *Experiment) advance() error {
	if e.next >= len(e.specs) {
		return e.finish("all trials done")
	}
	e.cur = trial.New(e.specs[e.next], e.center)
	e.next++
	sp := e.cur.Spec()
	vis := "shown"
	if !sp.CursorVisible {
		vis = "hidden"
	}
	e.logf("trial %d: start, target %g deg, rotation %g deg, cursor %s",
		sp.TrialNumber, sp.TargetAngle, sp.AngularDisplacement, vis)
	return nil
}

func (e *Experiment) stepTrial() error {
	f := trial.Frame{}
	if e.ptr != nil {
		x, y := e.ptr.Position()
		f.Pointer = perturb.Point{X: float64(x), Y: float64(y)}
	}
	for _, ev := range e.keys {
		if !ev.Press {
			continue
		}
		switch ev.Code {
		case hal.KeyEscape:
			f.Escape = true
		case hal.KeyQuit:
			f.Quit = true
		}
	}

	st := e.cur.Step(f)
	if e.canvas != nil {
		e.cur.Render(e.canvas)
		_ = e.canvas.Display()
	}
	if st != trial.Done {
		return nil
	}
	return e.trialDone()
}

func (e *Experiment) trialDone() error {
	m := e.cur
	tr := m.Record()
	switch m.Outcome() {
	case trial.OutcomeHit, trial.OutcomeOvershoot:
		e.rec.Append(tr)
		e.logf("trial %d: %s after %d samples", tr.TrialNumber, m.Outcome(), len(tr.CursorPositions))
		return e.advance()
	case trial.OutcomeCancelled:
		e.logf("trial %d: cancelled; trial discarded", tr.TrialNumber)
		return e.finish("escape")
	default:
		if m.Sampled() {
			e.rec.Append(tr)
			e.logf("trial %d: quit mid-reach; kept %d samples", tr.TrialNumber, len(tr.CursorPositions))
		} else {
			e.logf("trial %d: quit before the reach; trial discarded", tr.TrialNumber)
		}
		return e.finish("quit")
	}
}

func (e *Experiment) finish(reason string) error {
	e.phase = phaseDone
	path, err := e.rec.Finalize()
	if err != nil {
		return err
	}
	e.artifact = path
	e.logf("session saved (%s): %d trials -> %s", reason, e.rec.Len(), path)
	return hal.ErrStop
}

func (e *Experiment) logf(format string, args ...any) {
	if e.log == nil {
		return
	}
	e.log.WriteLineString(fmt.Sprintf(format, args...))
}
