package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"visuomotor/experiment/session"
	"visuomotor/hal"
)

var fixedNow = func() time.Time { return time.Date(2024, 7, 12, 11, 58, 5, 0, time.UTC) }

func writeTrials(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trials.csv")
	body := "trial_number,angular_displacement,cursor_visibility,target_number\n" + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// fakeHAL is a 1280x800 display whose input is set directly by the test.
type fakeHAL struct {
	log  bytes.Buffer
	fb   *fakeFB
	kbd  *fakeKeyboard
	x, y int
}

func newFakeHAL() *fakeHAL {
	return &fakeHAL{
		fb:  &fakeFB{w: 1280, h: 800, buf: make([]byte, 1280*800*2)},
		kbd: &fakeKeyboard{ch: make(chan hal.KeyEvent, 64)},
	}
}

func (h *fakeHAL) Logger() hal.Logger   { return h }
func (h *fakeHAL) Display() hal.Display { return h }
func (h *fakeHAL) Input() hal.Input     { return h }

func (h *fakeHAL) WriteLineString(s string)     { h.log.WriteString(s + "\n") }
func (h *fakeHAL) WriteLineBytes(b []byte)      { h.log.Write(append(b, '\n')) }
func (h *fakeHAL) Framebuffer() hal.Framebuffer { return h.fb }
func (h *fakeHAL) Keyboard() hal.Keyboard       { return h.kbd }
func (h *fakeHAL) Pointer() hal.Pointer         { return h }
func (h *fakeHAL) Position() (int, int)         { return h.x, h.y }

type fakeKeyboard struct{ ch chan hal.KeyEvent }

func (k *fakeKeyboard) Events() <-chan hal.KeyEvent { return k.ch }

type fakeFB struct {
	w, h int
	buf  []byte
}

func (f *fakeFB) Width() int              { return f.w }
func (f *fakeFB) Height() int             { return f.h }
func (f *fakeFB) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *fakeFB) StrideBytes() int        { return f.w * 2 }
func (f *fakeFB) Buffer() []byte          { return f.buf }
func (f *fakeFB) ClearRGB(r, g, b uint8)  {}
func (f *fakeFB) Present() error          { return nil }

// frame moves the pointer, queues keys and steps e once.
func (h *fakeHAL) frame(t *testing.T, e *Experiment, x, y int, keys ...hal.KeyEvent) error {
	t.Helper()
	h.x, h.y = x, y
	for _, k := range keys {
		h.kbd.ch <- k
	}
	return e.Step()
}

var (
	enter  = hal.KeyEvent{Code: hal.KeyEnter, Press: true}
	escape = hal.KeyEvent{Code: hal.KeyEscape, Press: true}
	quit   = hal.KeyEvent{Code: hal.KeyQuit, Press: true}
)

func newExperiment(t *testing.T, h hal.HAL, trialsPath, format string) (*Experiment, string) {
	t.Helper()
	store, err := session.StoreFor(format)
	if err != nil {
		t.Fatalf("StoreFor: %v", err)
	}
	dir := filepath.Join(t.TempDir(), "Results")
	return New(h, Config{TrialsPath: trialsPath, ResultsDir: dir, Store: store, Now: fixedNow}), dir
}

func enterID(t *testing.T, h *fakeHAL, e *Experiment, id string) {
	t.Helper()
	keys := append(hal.TypeText(id), enter)
	if err := h.frame(t, e, 900, 400, keys...); err != nil {
		t.Fatalf("Step: %v", err)
	}
}

func TestTwoTrialHitScenarioHeadless(t *testing.T) {
	path := writeTrials(t, "1,0,1,0", "2,90,0,90")
	store, _ := session.StoreFor(session.FormatJSON)
	dir := filepath.Join(t.TempDir(), "Results")

	// Center is (640,400). Trial 1 reaches straight to the target at 0 degrees.
	// Trial 2 rotates feedback by 90 degrees, so the same physical reach lands
	// the cursor on the target at 90 degrees.
	script := []hal.ScriptFrame{{X: 900, Y: 400, Keys: append(hal.TypeText("01"), enter)}}
	for trialN := 0; trialN < 2; trialN++ {
		script = append(script, hal.ScriptFrame{X: 640, Y: 400})
		for x := 640; x <= 840; x += 10 {
			script = append(script, hal.ScriptFrame{X: x, Y: 400})
		}
	}

	var e *Experiment
	var logBuf bytes.Buffer
	err := hal.RunHeadless(context.Background(), func(h hal.HAL) func() error {
		e = New(h, Config{TrialsPath: path, ResultsDir: dir, Store: store, Now: fixedNow})
		return e.Step
	}, hal.HeadlessConfig{Hz: 2000, Width: 1280, Height: 800, Script: script, Log: &logBuf, Ticks: 1000})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}

	if want := filepath.Join(dir, "data_01_20240712_115805.json"); e.Artifact() != want {
		t.Fatalf("artifact %q, want %q", e.Artifact(), want)
	}
	rec, err := session.Open(e.Artifact())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(rec) != 2 || rec[0].TrialNumber != 1 || rec[1].TrialNumber != 2 {
		t.Fatalf("record trials = %+v", rec)
	}
	for _, tr := range rec {
		if len(tr.CursorPositions) == 0 {
			t.Fatalf("trial %d has no samples", tr.TrialNumber)
		}
	}
	if n := strings.Count(logBuf.String(), ": hit after"); n != 2 {
		t.Fatalf("log has %d hits, want 2:\n%s", n, logBuf.String())
	}
	if !strings.Contains(logBuf.String(), "trial 2: start, target 90 deg, rotation 90 deg, cursor hidden") {
		t.Fatalf("log missing trial 2 start:\n%s", logBuf.String())
	}
}

func TestInterruptMidReachSavesPartialTrial(t *testing.T) {
	path := writeTrials(t, "1,0,1,0", "2,0,1,90")
	store, _ := session.StoreFor(session.FormatJSON)
	dir := filepath.Join(t.TempDir(), "Results")

	// Acquire the center, move part way out, then hold well inside the ring
	// for longer than the run needs so only the interrupt can end it.
	script := []hal.ScriptFrame{
		{X: 900, Y: 400, Keys: append(hal.TypeText("07"), enter)},
		{X: 640, Y: 400},
		{X: 660, Y: 380},
	}
	for i := 0; i < 5000; i++ {
		script = append(script, hal.ScriptFrame{X: 680, Y: 360})
	}

	sig := make(chan os.Signal, 1)
	var logBuf bytes.Buffer
	var e *Experiment
	steps := 0
	err := hal.RunHeadless(context.Background(), func(h hal.HAL) func() error {
		e = New(h, Config{TrialsPath: path, ResultsDir: dir, Store: store, Now: fixedNow})
		return func() error {
			steps++
			if steps == 6 {
				sig <- os.Interrupt
			}
			return e.Step()
		}
	}, hal.HeadlessConfig{Hz: 2000, Width: 1280, Height: 800, Script: script, Signals: sig, Log: &logBuf, Ticks: 4000})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}

	if e.Artifact() == "" {
		t.Fatalf("no artifact saved; log:\n%s", logBuf.String())
	}
	rec, err := session.Open(e.Artifact())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(rec) != 1 || rec[0].TrialNumber != 1 {
		t.Fatalf("record = %+v, want the partial trial 1", rec)
	}
	if n := len(rec[0].CursorPositions); n == 0 || n > 10 {
		t.Fatalf("trial 1 has %d samples, want a short partial reach", n)
	}
	if !strings.Contains(logBuf.String(), "trial 1: quit mid-reach") {
		t.Fatalf("log:\n%s", logBuf.String())
	}
}

func TestEscapeDuringAcquisitionSavesEmptySession(t *testing.T) {
	for _, format := range []string{session.FormatJSON, session.FormatSQLite} {
		t.Run(format, func(t *testing.T) {
			h := newFakeHAL()
			e, dir := newExperiment(t, h, writeTrials(t, "1,0,1,0", "2,0,1,90", "3,0,1,180"), format)
			enterID(t, h, e, "p3")

			if err := h.frame(t, e, 900, 400); err != nil {
				t.Fatalf("Step: %v", err)
			}
			if err := h.frame(t, e, 900, 400, escape); !errors.Is(err, hal.ErrStop) {
				t.Fatalf("Step err = %v, want ErrStop", err)
			}

			if filepath.Dir(e.Artifact()) != dir {
				t.Fatalf("artifact %q not in %q", e.Artifact(), dir)
			}
			rec, err := session.Open(e.Artifact())
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if rec == nil || len(rec) != 0 {
				t.Fatalf("record = %#v, want empty", rec)
			}
		})
	}
}

func TestEscapeMidReachDropsInterruptedTrial(t *testing.T) {
	h := newFakeHAL()
	e, _ := newExperiment(t, h, writeTrials(t, "1,0,1,0", "2,0,1,90"), session.FormatJSON)
	enterID(t, h, e, "p")

	steps := [][2]int{{640, 400}, {740, 400}, {840, 400}, {640, 400}, {640, 350}}
	for _, s := range steps {
		if err := h.frame(t, e, s[0], s[1]); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if err := h.frame(t, e, 640, 300, escape); !errors.Is(err, hal.ErrStop) {
		t.Fatalf("Step err = %v, want ErrStop", err)
	}
	rec := e.Recorder().Record()
	if len(rec) != 1 || rec[0].TrialNumber != 1 || len(rec[0].CursorPositions) != 2 {
		t.Fatalf("record = %+v", rec)
	}
}

func TestQuitMidReachKeepsPartialTrial(t *testing.T) {
	h := newFakeHAL()
	e, _ := newExperiment(t, h, writeTrials(t, "1,0,1,90", "2,0,1,90"), session.FormatJSON)
	enterID(t, h, e, "p")

	for _, x := range []int{640, 660, 680} {
		if err := h.frame(t, e, x, 400); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if err := h.frame(t, e, 700, 400, quit); !errors.Is(err, hal.ErrStop) {
		t.Fatalf("Step err = %v, want ErrStop", err)
	}
	rec, err := session.Open(e.Artifact())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(rec) != 1 || len(rec[0].CursorPositions) != 2 {
		t.Fatalf("record = %+v, want one trial with 2 samples", rec)
	}
	if !e.Recorder().Finalized() {
		t.Fatal("recorder not finalized")
	}
	if err := e.Step(); !errors.Is(err, hal.ErrStop) {
		t.Fatalf("Step after finish = %v, want ErrStop", err)
	}
}

func TestQuitDuringAcquisitionDropsTrial(t *testing.T) {
	h := newFakeHAL()
	e, _ := newExperiment(t, h, writeTrials(t, "1,0,1,0"), session.FormatJSON)
	enterID(t, h, e, "p")
	if err := h.frame(t, e, 900, 400, quit); !errors.Is(err, hal.ErrStop) {
		t.Fatalf("Step err = %v, want ErrStop", err)
	}
	if n := e.Recorder().Len(); n != 0 {
		t.Fatalf("trials = %d, want 0", n)
	}
	if e.Artifact() == "" {
		t.Fatal("artifact not written")
	}
}

func TestAbortMidReach(t *testing.T) {
	h := newFakeHAL()
	e, _ := newExperiment(t, h, writeTrials(t, "1,30,1,0"), session.FormatSQLite)
	enterID(t, h, e, "p")
	h.frame(t, e, 640, 400)
	h.frame(t, e, 650, 400)

	if err := e.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	rec, err := session.Open(e.Artifact())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(rec) != 1 || len(rec[0].CursorPositions) != 1 {
		t.Fatalf("record = %+v", rec)
	}
	if err := e.Abort(); err != nil {
		t.Fatalf("second Abort: %v", err)
	}
}

func TestQuitDuringPromptSavesNothing(t *testing.T) {
	h := newFakeHAL()
	e, dir := newExperiment(t, h, writeTrials(t, "1,0,1,0"), session.FormatJSON)
	if err := h.frame(t, e, 0, 0, quit); !errors.Is(err, hal.ErrStop) {
		t.Fatalf("Step err = %v, want ErrStop", err)
	}
	if _, err := os.Stat(dir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("results dir exists: %v", err)
	}
	if e.Recorder() != nil {
		t.Fatal("recorder created without a participant id")
	}
}

func TestMissingTrialsFileIsFatal(t *testing.T) {
	h := newFakeHAL()
	e, _ := newExperiment(t, h, filepath.Join(t.TempDir(), "nope.csv"), session.FormatJSON)
	err := h.frame(t, e, 0, 0, enter)
	if err == nil || errors.Is(err, hal.ErrStop) {
		t.Fatalf("Step err = %v, want load failure", err)
	}
}

func TestEmptyTrialListFinalizesImmediately(t *testing.T) {
	h := newFakeHAL()
	e, _ := newExperiment(t, h, writeTrials(t), session.FormatJSON)
	if err := h.frame(t, e, 0, 0, enter); !errors.Is(err, hal.ErrStop) {
		t.Fatalf("Step err = %v, want ErrStop", err)
	}
	if e.Artifact() == "" {
		t.Fatal("artifact not written")
	}
}
