// Package engine turns a stream of key events into text corrections.
//
// The engine keeps the word currently being typed. When a delimiter ends
// the word and the word is a configured trigger, it returns an Action that
// deletes the trigger, types the replacement and retypes the delimiter.
// It is not safe for concurrent use; feed it from a single goroutine.
package engine

import (
	"github.com/rs/zerolog/log"
	"k8s.io/apimachinery/pkg/util/sets"

	"texpand/pkg/matcher"
)

// New creates an engine over rules. A nil delimiter set selects
// DefaultDelimiters.
func New(rules *matcher.RuleSet, delimiters sets.Set[rune]) *Engine {
	if delimiters == nil {
		delimiters = DefaultDelimiters()
	}
	return &Engine{
		rules:      rules,
		delimiters: delimiters,
		buf:        NewBuffer(rules.MaxLen()),
	}
}

func (e *Engine) IsDelimiter(r rune) bool {
	return e.delimiters.Has(r)
}

// OnCharacter appends a non-delimiter rune to the word.
func (e *Engine) OnCharacter(ch rune) {
	e.buf.Append(ch)
}

// OnBackspace removes the last typed rune of the word.
func (e *Engine) OnBackspace() {
	e.buf.Backspace()
}

// OnDelimiter ends the current word and resolves it against the rules.
func (e *Engine) OnDelimiter(delim rune) (Action, bool) {
	defer e.buf.Reset()

	if e.buf.Len() == 0 {
		return Action{}, false
	}
	// In word mode a word longer than every trigger cannot match.
	if e.buf.Overflowed() && e.rules.Options().Mode == matcher.ModeWord {
		return Action{}, false
	}

	m, ok := e.rules.Match(e.buf.String())
	if !ok {
		return Action{}, false
	}

	log.Debug().
		Str("trigger", m.Rule.Trigger).
		Str("source", m.Rule.Source.String()).
		Msg("Trigger matched")

	return Action{
		Delete: m.Length,
		Insert: m.Rule.Replacement,
		Retype: string(delim),
		Rule:   m.Rule,
	}, true
}

// Handle dispatches one event.
func (e *Engine) Handle(ev Event) (Action, bool) {
	switch ev.Kind {
	case KindBackspace:
		e.OnBackspace()
	case KindEnter:
		return e.OnDelimiter('\n')
	case KindTab:
		return e.OnDelimiter('\t')
	case KindSpace:
		return e.OnDelimiter(' ')
	case KindPunct:
		return e.OnDelimiter(ev.Rune)
	case KindChar:
		if e.IsDelimiter(ev.Rune) {
			return e.OnDelimiter(ev.Rune)
		}
		e.OnCharacter(ev.Rune)
	}
	return Action{}, false
}

// Reset forgets the current word.
func (e *Engine) Reset() {
	e.buf.Reset()
}

// Buffered returns the retained tail of the current word.
func (e *Engine) Buffered() string {
	return e.buf.String()
}

func (e *Engine) Rules() *matcher.RuleSet {
	return e.rules
}
