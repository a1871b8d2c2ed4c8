// Package stress drives an event.Event under contention and checks the
// invariants that must hold however the goroutines interleave.
package stress

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/llxisdsh/event"
)

// Config describes one stress run.
type Config struct {
	// Waiters is the number of goroutines looping on Wait.
	Waiters int
	// Signallers is the number of goroutines calling Signal.
	Signallers int
	// Duration bounds the run.
	Duration time.Duration
	// AutoReset selects the event's reset mode.
	AutoReset bool
	// Timeout bounds each wait. Zero or less means waiters block until
	// signalled or until the run ends.
	Timeout time.Duration
	// Rate caps signals per second across all signallers; zero is unlimited.
	Rate float64
	// PulseEvery turns every n-th signal into a Pulse.
	PulseEvery int
	// ResetEvery resets a manual-reset event after every n-th signal.
	ResetEvery int
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Waiters <= 0:
		return errors.Errorf("stress: waiters must be positive, got %d", c.Waiters)
	case c.Signallers <= 0:
		return errors.Errorf("stress: signallers must be positive, got %d", c.Signallers)
	case c.Duration <= 0:
		return errors.Errorf("stress: duration must be positive, got %v", c.Duration)
	case c.Rate < 0:
		return errors.Errorf("stress: rate must not be negative, got %v", c.Rate)
	case c.PulseEvery < 0 || c.ResetEvery < 0:
		return errors.New("stress: pulse and reset intervals must not be negative")
	}
	return nil
}

// Report holds the counters of a finished run.
type Report struct {
	AutoReset bool
	Signals   int64
	Pulses    int64
	Resets    int64
	Woken     int64
	Timeouts  int64
	Elapsed   time.Duration
}

// ErrInvariant is returned by Check when the counters are impossible for a
// correct event.
var ErrInvariant = errors.New("stress: invariant violated")

// Check verifies the counters. An auto-reset event hands each Signal or Pulse
// to at most one waiter, so it can never release more waiters than that.
func (r Report) Check() error {
	if r.AutoReset && r.Woken > r.Signals+r.Pulses {
		return errors.Wrapf(ErrInvariant,
			"%d waits succeeded on %d signals and %d pulses", r.Woken, r.Signals, r.Pulses)
	}
	return nil
}

// Fields renders the report for structured logging.
func (r Report) Fields() logrus.Fields {
	secs := r.Elapsed.Seconds()
	if secs <= 0 {
		secs = 1
	}
	return logrus.Fields{
		"auto_reset": r.AutoReset,
		"signals":    humanize.Comma(r.Signals),
		"pulses":     humanize.Comma(r.Pulses),
		"resets":     humanize.Comma(r.Resets),
		"woken":      humanize.Comma(r.Woken),
		"timeouts":   humanize.Comma(r.Timeouts),
		"wakes_rate": humanize.SI(float64(r.Woken)/secs, "/s"),
		"elapsed":    r.Elapsed.Round(time.Millisecond).String(),
	}
}

func (r Report) String() string {
	return fmt.Sprintf("signals=%s pulses=%s resets=%s woken=%s timeouts=%s elapsed=%v",
		humanize.Comma(r.Signals), humanize.Comma(r.Pulses), humanize.Comma(r.Resets),
		humanize.Comma(r.Woken), humanize.Comma(r.Timeouts), r.Elapsed.Round(time.Millisecond))
}

type counters struct {
	signals  atomic.Int64
	pulses   atomic.Int64
	resets   atomic.Int64
	woken    atomic.Int64
	timeouts atomic.Int64
}

// Run executes cfg until its duration elapses or ctx is done. Waiters still
// blocked at the end are released by cancellation, not by a signal, so they
// do not count as woken.
func Run(ctx context.Context, cfg Config, log logrus.FieldLogger) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	log = log.WithFields(logrus.Fields{
		"waiters":    cfg.Waiters,
		"signallers": cfg.Signallers,
		"auto_reset": cfg.AutoReset,
	})
	log.WithField("duration", cfg.Duration).Debug("stress run starting")

	ev := event.New(cfg.AutoReset, false)
	var c counters
	var seq atomic.Int64

	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Signallers)
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	start := time.Now()
	for range cfg.Waiters {
		g.Go(func() error {
			for gctx.Err() == nil {
				if cfg.Timeout <= 0 {
					if ev.WaitContext(gctx) == nil {
						c.woken.Add(1)
					}
					continue
				}
				if ev.WaitTimeout(cfg.Timeout) {
					c.woken.Add(1)
				} else {
					c.timeouts.Add(1)
				}
			}
			return nil
		})
	}
	for range cfg.Signallers {
		g.Go(func() error {
			for {
				if limiter != nil {
					if limiter.Wait(gctx) != nil {
						return nil
					}
				} else if gctx.Err() != nil {
					return nil
				} else {
					runtime.Gosched()
				}

				n := seq.Add(1)
				if cfg.PulseEvery > 0 && n%int64(cfg.PulseEvery) == 0 {
					if err := ev.Pulse(); err != nil {
						return errors.Wrap(err, "stress: pulse")
					}
					c.pulses.Add(1)
					continue
				}
				if err := ev.Signal(); err != nil {
					return errors.Wrap(err, "stress: signal")
				}
				c.signals.Add(1)
				if !cfg.AutoReset && cfg.ResetEvery > 0 && n%int64(cfg.ResetEvery) == 0 {
					ev.Reset()
					c.resets.Add(1)
				}
			}
		})
	}

	err := g.Wait()
	rep := Report{
		AutoReset: cfg.AutoReset,
		Signals:   c.signals.Load(),
		Pulses:    c.pulses.Load(),
		Resets:    c.resets.Load(),
		Woken:     c.woken.Load(),
		Timeouts:  c.timeouts.Load(),
		Elapsed:   time.Since(start),
	}
	if err != nil {
		return rep, err
	}
	if n := ev.Waiters(); n != 0 {
		return rep, errors.Wrapf(ErrInvariant, "%d waiters still queued after the run", n)
	}
	ev.Close()

	log.WithFields(rep.Fields()).Debug("stress run finished")
	return rep, nil
}
