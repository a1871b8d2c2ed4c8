// Command eventstress hammers an event.Event with concurrent waiters and
// signallers and fails if the observed counts break its guarantees.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/llxisdsh/event/internal/stress"
)

type args struct {
	Waiters    int           `arg:"-w,--waiters,env:EVENTSTRESS_WAITERS" default:"8" help:"goroutines looping on Wait"`
	Signallers int           `arg:"-s,--signallers,env:EVENTSTRESS_SIGNALLERS" default:"2" help:"goroutines calling Signal"`
	Duration   time.Duration `arg:"-d,--duration,env:EVENTSTRESS_DURATION" default:"5s" help:"length of the run"`
	AutoReset  bool          `arg:"-a,--auto-reset,env:EVENTSTRESS_AUTO_RESET" help:"use an auto-reset event"`
	Timeout    time.Duration `arg:"-t,--timeout,env:EVENTSTRESS_TIMEOUT" default:"1ms" help:"per-wait timeout, 0 blocks until signalled"`
	Rate       float64       `arg:"-r,--rate,env:EVENTSTRESS_RATE" help:"signals per second, 0 is unlimited"`
	PulseEvery int           `arg:"--pulse-every" help:"turn every n-th signal into a pulse"`
	ResetEvery int           `arg:"--reset-every" help:"reset a manual-reset event after every n-th signal"`
	LogLevel   string        `arg:"--log-level,env:EVENTSTRESS_LOG_LEVEL" default:"info" help:"logrus level"`
	LogJSON    bool          `arg:"--log-json,env:EVENTSTRESS_LOG_JSON" help:"log as JSON"`
}

func (args) Description() string {
	return "eventstress runs waiters and signallers against one event and checks the wakeup counts."
}

func (a args) config() stress.Config {
	return stress.Config{
		Waiters:    a.Waiters,
		Signallers: a.Signallers,
		Duration:   a.Duration,
		AutoReset:  a.AutoReset,
		Timeout:    a.Timeout,
		Rate:       a.Rate,
		PulseEvery: a.PulseEvery,
		ResetEvery: a.ResetEvery,
	}
}

func newLogger(level string, json bool) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(lvl)
	if json {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l, nil
}

func run(ctx context.Context, a args, log logrus.FieldLogger) error {
	rep, err := stress.Run(ctx, a.config(), log)
	if err != nil {
		return err
	}
	log.WithFields(rep.Fields()).Info("stress run complete")
	return rep.Check()
}

func main() {
	var a args
	p := arg.MustParse(&a)
	if err := a.config().Validate(); err != nil {
		p.Fail(err.Error())
	}
	log, err := newLogger(a.LogLevel, a.LogJSON)
	if err != nil {
		p.Fail(err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, a, log); err != nil {
		log.WithError(err).Error("stress run failed")
		stop()
		os.Exit(1)
	}
}
