package pipeline

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"
)

// ExitForced is the process exit code after a second interrupt.
const ExitForced = 130

// Interrupter turns SIGINT/SIGTERM into a stop request. The first signal only
// sets a flag that the orchestrator polls after each attraction; the second
// calls exit immediately and nothing is saved.
type Interrupter struct {
	count atomic.Int32
	exit  func(code int)
	log   *zap.Logger
}

// NewInterrupter returns an Interrupter that calls exit on the second signal.
// A nil exit defaults to os.Exit.
func NewInterrupter(log *zap.Logger, exit func(code int)) *Interrupter {
	if log == nil {
		log = zap.NewNop()
	}
	if exit == nil {
		exit = os.Exit
	}
	return &Interrupter{exit: exit, log: log}
}

// Notify records one interrupt.
func (i *Interrupter) Notify() {
	switch i.count.Add(1) {
	case 1:
		i.log.Warn("interrupt received, stopping after the current attraction (press Ctrl-C again to exit without saving)")
	default:
		i.log.Error("second interrupt received, exiting without saving")
		i.exit(ExitForced)
	}
}

// ShouldStop reports whether an interrupt has been received.
func (i *Interrupter) ShouldStop() bool {
	return i.count.Load() > 0
}

// Listen forwards process signals to Notify until ctx is done or the
// returned stop function is called.
func (i *Interrupter) Listen(ctx context.Context) (stop func()) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ch:
				i.Notify()
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
