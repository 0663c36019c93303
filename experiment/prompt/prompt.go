// Package prompt collects the participant id before a session starts.
package prompt

import (
	"image/color"
	"unicode"

	"visuomotor/experiment/gfx"
	"visuomotor/hal"
)

// Label precedes the typed id on screen.
const Label = "Enter Participant ID: "

// Status is the result of feeding a frame of key events.
type Status uint8

const (
	Editing Status = iota
	Submitted
	Quit
)

// Canvas is the drawing surface the prompt renders onto.
type Canvas interface {
	Clear(col color.RGBA)
	Text(x, y int, s string, col color.RGBA)
	Width() int
	Height() int
}

// Prompt accumulates typed runes until Enter.
type Prompt struct {
	id     []rune
	status Status
}

// New returns an empty prompt.
func New() *Prompt { return &Prompt{} }

// ID returns the text typed so far.
func (p *Prompt) ID() string { return string(p.id) }

// Status returns the current status.
func (p *Prompt) Status() Status { return p.status }

// Step applies key events in order. Events after Enter or a quit are ignored.
func (p *Prompt) Step(events []hal.KeyEvent) Status {
	for _, ev := range events {
		if p.status != Editing {
			break
		}
		if !ev.Press {
			continue
		}
		switch ev.Code {
		case hal.KeyQuit:
			p.status = Quit
		case hal.KeyEnter:
			p.status = Submitted
		case hal.KeyBackspace:
			if len(p.id) > 0 {
				p.id = p.id[:len(p.id)-1]
			}
		case hal.KeyUnknown:
			if ev.Rune != 0 && unicode.IsPrint(ev.Rune) {
				p.id = append(p.id, ev.Rune)
			}
		}
	}
	return p.status
}

// Render draws the label and the id typed so far.
func (p *Prompt) Render(c Canvas) {
	c.Clear(gfx.White)
	c.Text(c.Width()/4, c.Height()/2, Label+p.ID(), gfx.Black)
}
