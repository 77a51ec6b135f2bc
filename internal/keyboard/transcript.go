package keyboard

import (
	"context"
	"sync"
	"unicode/utf8"

	"texpand/internal/engine"
)

// Transcript models a text field that receives both the user's key presses
// and the executor's corrections. Like the evdev source, it sees the
// delimiter before the correction, so Execute removes it and retypes it.
type Transcript struct {
	mu      sync.Mutex
	text    []rune
	actions []engine.Action
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// Type applies a key press as the focused application would.
func (t *Transcript) Type(ev engine.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Kind {
	case engine.KindBackspace:
		t.erase(1)
	case engine.KindEnter:
		t.text = append(t.text, '\n')
	case engine.KindTab:
		t.text = append(t.text, '\t')
	case engine.KindSpace:
		t.text = append(t.text, ' ')
	case engine.KindChar, engine.KindPunct:
		t.text = append(t.text, ev.Rune)
	}
}

func (t *Transcript) Execute(ctx context.Context, a engine.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.erase(utf8.RuneCountInString(a.Retype) + a.Delete)
	t.text = append(t.text, []rune(a.Insert)...)
	t.text = append(t.text, []rune(a.Retype)...)
	t.actions = append(t.actions, a)
	return nil
}

func (t *Transcript) erase(n int) {
	if n > len(t.text) {
		n = len(t.text)
	}
	t.text = t.text[:len(t.text)-n]
}

func (t *Transcript) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.text)
}

func (t *Transcript) Actions() []engine.Action {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]engine.Action(nil), t.actions...)
}

func (t *Transcript) Close() error { return nil }
