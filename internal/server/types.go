package server

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"texpand/internal/engine"
	"texpand/internal/keyboard"
)

// ErrSourceClosed is returned by Run when the key source stops delivering
// events before the context is cancelled.
var ErrSourceClosed = errors.New("key source closed")

// Listener feeds key events through the engine and replays the resulting
// corrections, one event at a time.
type Listener struct {
	Engine   *engine.Engine
	Executor keyboard.Executor
	Settle   time.Duration

	log         zerolog.Logger
	now         func() time.Time
	ignoreUntil time.Time
	// tainted is set while the current word was only partly seen by the
	// engine; it clears at the next delimiter.
	tainted bool
}
