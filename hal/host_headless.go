//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Hz     int
	Width  int
	Height int
	// Ticks stops the run after N ticks (0 = run until the app stops).
	Ticks uint64
	// Script feeds one frame of input per tick. When it runs out a KeyQuit is
	// delivered so the app can finalize.
	Script []ScriptFrame
	// Signals, when set, are delivered to the app as KeyQuit on the next tick.
	Signals <-chan os.Signal
	Log     io.Writer
}

// RunHeadless runs the app without opening a window.
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = FrameRate
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 1280, 800
	}
	if cfg.Log == nil {
		cfg.Log = os.Stdout
	}

	h := newHost(cfg.Log, cfg.Width, cfg.Height)
	step := newApp(h)

	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-cfg.Signals:
			if !ok {
				cfg.Signals = nil
				continue
			}
			h.kbd.push(KeyEvent{Code: KeyQuit, Press: true})
		case <-t.C:
			h.feed(cfg.Script, tick)
			if step != nil {
				if err := step(); err != nil {
					if errors.Is(err, ErrStop) {
						return nil
					}
					return err
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}

// feed applies script frame n, or a quit request right after the last frame.
func (h *hostHAL) feed(script []ScriptFrame, n uint64) {
	if n > uint64(len(script)) {
		return
	}
	if n == uint64(len(script)) {
		h.kbd.push(KeyEvent{Code: KeyQuit, Press: true})
		return
	}
	f := script[n]
	h.ptr.set(f.X, f.Y)
	for _, ev := range f.Keys {
		h.kbd.push(ev)
	}
}
