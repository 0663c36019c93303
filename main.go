package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"visuomotor/app"
	"visuomotor/experiment/session"
	"visuomotor/hal"
	"visuomotor/internal/buildinfo"
	"visuomotor/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	store, err := session.StoreFor(cfg.Format)
	if err != nil {
		fatal(err)
	}
	appCfg := app.Config{
		TrialsPath: cfg.TrialsPath,
		ResultsDir: cfg.ResultsDir,
		Store:      store,
	}

	var exp *app.Experiment
	newApp := func(h hal.HAL) func() error {
		h.Logger().WriteLineString("visuomotor " + buildinfo.String())
		exp = app.New(h, appCfg)
		return exp.Step
	}

	if cfg.Headless {
		hcfg := hal.HeadlessConfig{Hz: cfg.HeadlessHz, Width: cfg.Width, Height: cfg.Height}
		if cfg.ScriptPath != "" {
			if hcfg.Script, err = hal.LoadScript(cfg.ScriptPath); err != nil {
				fatal(err)
			}
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		defer signal.Stop(sig)
		hcfg.Signals = sig

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
		defer stop()
		if err := hal.RunHeadless(ctx, newApp, hcfg); err != nil {
			if errors.Is(err, context.Canceled) {
				if exp != nil {
					if err := exp.Abort(); err != nil {
						fatal(err)
					}
				}
				return
			}
			fatal(err)
		}
		return
	}

	wcfg := hal.WindowConfig{Fullscreen: cfg.Fullscreen, Width: cfg.Width, Height: cfg.Height}
	if err := hal.RunWindow(wcfg, newApp); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
