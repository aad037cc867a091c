package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robmorgan/kinetic/config"
	"github.com/robmorgan/kinetic/fixture"
	"github.com/robmorgan/kinetic/logger"
	"k8s.io/utils/clock"
)

// cycleInterval returns the time between control cycles at fps.
func cycleInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 1
	}
	return time.Second / time.Duration(fps)
}

// ProcessForever runs the control cycle at the configured frame rate until ctx is cancelled.
// Each cycle samples source, reads the live config from store and writes the output into state
// at the patched universe and address.
func (e *Engine) ProcessForever(ctx context.Context, clk clock.Clock, wg *sync.WaitGroup, source InputSource, store *config.Store, state *fixture.DMXState) {
	wg.Add(1)
	go e.processCycles(ctx, clk, wg, source, store, state)
}

func (e *Engine) processCycles(ctx context.Context, clk clock.Clock, wg *sync.WaitGroup, source InputSource, store *config.Store, state *fixture.DMXState) {
	defer wg.Done()

	log := logger.GetProjectLogger()

	t := clk.NewTimer(cycleInterval(store.Get().FPS))
	defer t.Stop()

	var lastErr error
	for {
		select {
		case <-ctx.Done():
			log.Info("control loop shutdown")
			return
		case <-t.C():
			cfg := store.Get()
			out, err := e.Step(cfg, source.Sample())

			switch {
			case err != nil && (lastErr == nil || err.Error() != lastErr.Error()):
				log.WithError(err).WithField("cycle", e.ExecuteCount()).Warn(failureMessage(err))
			case err == nil && lastErr != nil:
				log.WithField("cycle", e.ExecuteCount()).Info("fixture output restored")
			}
			lastErr = err

			if werr := state.Write(e.fixture.Universe, e.fixture.Address, out.Bytes()); werr != nil {
				log.WithError(werr).Error("writing fixture output")
			}
			t.Reset(cycleInterval(cfg.FPS))
		}
	}
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, ErrConfigInvalid):
		return "configuration invalid, fixture blacked out"
	case errors.Is(err, ErrRangeViolation):
		return "pose out of range, fixture blacked out"
	default:
		return "cycle failed, fixture blacked out"
	}
}
