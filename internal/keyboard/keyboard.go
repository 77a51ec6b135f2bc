// Package keyboard connects the engine to the operating system: a Source
// delivers key presses, an Executor replays corrections as synthetic input.
//
// Platform support:
//   - Linux: reads /dev/input/event* keyboards (input group or root) and
//     types through a uinput virtual keyboard (/dev/uinput access).
//   - Elsewhere: NewSource and NewExecutor return ErrNotAvailable.
package keyboard

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"texpand/internal/engine"
)

// Source delivers key presses in order. The channel is closed when the
// source stops.
type Source interface {
	Start(ctx context.Context) (<-chan engine.Event, error)
	Close() error
}

// Executor replays a correction as synthetic key presses.
type Executor interface {
	Execute(ctx context.Context, a engine.Action) error
	Close() error
}

var (
	ErrNotAvailable     = errors.New("keyboard hook not available on this platform")
	ErrPermissionDenied = errors.New("insufficient permissions for keyboard access")
	ErrAlreadyRunning   = errors.New("key source already running")
)

// LogExecutor only logs corrections.
type LogExecutor struct{}

func NewLogExecutor() *LogExecutor {
	return &LogExecutor{}
}

func (LogExecutor) Execute(_ context.Context, a engine.Action) error {
	log.Info().
		Str("trigger", a.Rule.Trigger).
		Int("delete", a.Delete).
		Str("insert", a.Insert).
		Str("retype", a.Retype).
		Msg("Dry run, not typing replacement")
	return nil
}

func (LogExecutor) Close() error { return nil }

// ParseText turns text into key events. Backspace is the \b character or
// the two-character escape `\b`; `\n` and `\t` escapes are also accepted,
// and `\\` types a single backslash.
func ParseText(text string) []engine.Event {
	text = strings.NewReplacer(`\\`, `\`, `\b`, "\b", `\n`, "\n", `\t`, "\t").Replace(text)

	events := make([]engine.Event, 0, len(text))
	for _, r := range text {
		switch r {
		case '\b':
			events = append(events, engine.Backspace())
		case '\n':
			events = append(events, engine.Enter())
		case '\t':
			events = append(events, engine.Tab())
		case ' ':
			events = append(events, engine.Space())
		default:
			events = append(events, engine.Char(r))
		}
	}
	return events
}
