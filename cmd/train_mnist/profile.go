package main

import (
	"log/slog"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/pkg/errors"
)

// startProfile writes a CPU profile to path until the returned stop is
// called or the process is interrupted.
func startProfile(path string) (stop func(), err error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "create cpu profile")
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "start cpu profile")
	}

	sig := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	finish := func() {
		pprof.StopCPUProfile()
		f.Close()
		slog.Info("cpu profile written", "path", path)
	}
	go func() {
		select {
		case <-sig:
			finish()
			os.Exit(130)
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sig)
		close(done)
		finish()
	}, nil
}
