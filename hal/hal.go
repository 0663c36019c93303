package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// ErrStop is returned by a step function to end the run loop cleanly.
var ErrStop = errors.New("hal: stop")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// KeyCode is a minimal key identifier.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyEnter
	KeyEscape
	KeyBackspace
	// KeyQuit is synthesized when the window is asked to close.
	KeyQuit
)

// KeyEvent is a keyboard event. Text input arrives with Code == KeyUnknown and a Rune.
type KeyEvent struct {
	Code  KeyCode
	Press bool
	Rune  rune
}

// Keyboard provides key events (best-effort on each platform).
type Keyboard interface {
	Events() <-chan KeyEvent
}

// Pointer reports the pointer position in framebuffer coordinates.
type Pointer interface {
	Position() (x, y int)
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Input provides access to input devices (if available).
type Input interface {
	Keyboard() Keyboard
	Pointer() Pointer
}

// HAL provides the only contact point between the experiment and the outside world.
type HAL interface {
	Logger() Logger
	Display() Display
	Input() Input
}

// DrainKeys returns every key event queued on kbd without blocking.
func DrainKeys(kbd Keyboard, dst []KeyEvent) []KeyEvent {
	if kbd == nil {
		return dst
	}
	ch := kbd.Events()
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return dst
			}
			dst = append(dst, ev)
		default:
			return dst
		}
	}
}
