package server

import (
	"context"
	"time"

	"texpand/internal/engine"
	"texpand/internal/keyboard"
	"texpand/internal/logging"
	"texpand/internal/metrics"
)

func NewListener(eng *engine.Engine, exec keyboard.Executor, settle time.Duration) *Listener {
	return &Listener{
		Engine:   eng,
		Executor: exec,
		Settle:   settle,
		log:      logging.GetLogger("listener"),
		now:      time.Now,
	}
}

// Run consumes events until ctx is cancelled or the channel closes. A
// channel that closes while ctx is still live yields ErrSourceClosed.
func (l *Listener) Run(ctx context.Context, events <-chan engine.Event) error {
	l.log.Info().Msg("Text replacer is running, press Ctrl+C to stop")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				l.log.Warn().Msg("Key source closed")
				return ErrSourceClosed
			}
			l.Step(ctx, ev)
		}
	}
}

// Step processes one event to completion, including replaying any
// correction. It reports whether a correction was executed.
//
// Events inside the settle window still reached the focused application,
// so they are not matched but taint the word they belong to.
func (l *Listener) Step(ctx context.Context, ev engine.Event) (engine.Action, bool) {
	metrics.KeyEventsTotal.WithLabelValues(ev.Kind.String()).Inc()

	if l.now().Before(l.ignoreUntil) {
		metrics.KeyEventsDropped.Inc()
		l.taint(ev)
		return engine.Action{}, false
	}
	if l.tainted {
		l.taint(ev)
		return engine.Action{}, false
	}

	action, ok := l.Engine.Handle(ev)
	if !ok {
		return engine.Action{}, false
	}

	start := time.Now()
	if err := l.Executor.Execute(ctx, action); err != nil {
		l.log.Err(err).Str("trigger", action.Rule.Trigger).Msg("Failed to replay replacement")
		metrics.ErrorsTotal.WithLabelValues(metrics.ErrorTypeExecute).Inc()
		l.Engine.Reset()
		return action, false
	}
	metrics.ExecuteDuration.Observe(time.Since(start).Seconds())
	metrics.ReplacementsTotal.WithLabelValues(action.Rule.Source.String()).Inc()

	l.ignoreUntil = l.now().Add(l.Settle)

	l.log.Info().
		Str("trigger", action.Rule.Trigger).
		Int("deleted", action.Delete).
		Msg("Replaced trigger")
	return action, true
}

// taint discards the engine's view of the current word. A delimiter ends
// the word, so the next one starts clean.
func (l *Listener) taint(ev engine.Event) {
	l.Engine.Reset()
	l.tainted = !l.isDelimiter(ev)
}

func (l *Listener) isDelimiter(ev engine.Event) bool {
	switch ev.Kind {
	case engine.KindEnter, engine.KindTab, engine.KindSpace, engine.KindPunct:
		return true
	case engine.KindChar:
		return l.Engine.IsDelimiter(ev.Rune)
	}
	return false
}
