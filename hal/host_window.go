//go:build !tinygo && cgo

package hal

import (
	"errors"
	"image"
	"os"
	"os/signal"

	"visuomotor/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow opens a window that displays the framebuffer and forwards pointer and
// keyboard input. It blocks until the step function returns ErrStop, another error,
// or the window closes. An interrupt signal is delivered to the app as KeyQuit.
func RunWindow(cfg WindowConfig, newApp func(HAL) func() error) error {
	w, h := cfg.Width, cfg.Height
	if cfg.Fullscreen {
		w, h = ebiten.ScreenSizeInFullscreen()
	}
	if w <= 0 || h <= 0 {
		w, h = 1280, 800
	}

	host := newHost(os.Stdout, w, h)
	step := newApp(host)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)
	done := make(chan struct{})
	defer close(done)
	go host.kbd.quitOn(sig, done)

	g := &hostGame{h: host, step: step}
	ebiten.SetWindowTitle(cfg.title() + " (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(w, h)
	ebiten.SetFullscreen(cfg.Fullscreen)
	ebiten.SetCursorMode(ebiten.CursorModeHidden)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetTPS(FrameRate)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h     *hostHAL
	img   *image.RGBA
	fbImg *ebiten.Image
	step  func() error
}

func (g *hostGame) Update() error {
	g.h.kbd.poll()
	g.h.ptr.set(ebiten.CursorPosition())
	if g.step == nil {
		return nil
	}
	if err := g.step(); err != nil {
		if errors.Is(err, ErrStop) {
			return ebiten.Termination
		}
		return err
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil || g.img.Bounds().Dx() != fb.width || g.img.Bounds().Dy() != fb.height {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}

	fb.snapshotRGBA(g.img.Pix)
	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
