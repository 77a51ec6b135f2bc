package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texpand/internal/engine"
	"texpand/internal/keyboard"
	"texpand/pkg/matcher"
)

type failingExecutor struct{ calls int }

func (f *failingExecutor) Execute(context.Context, engine.Action) error {
	f.calls++
	return errors.New("uinput gone")
}

func (f *failingExecutor) Close() error { return nil }

func newEngine(t *testing.T, pairs ...string) *engine.Engine {
	t.Helper()
	var rules []matcher.Rule
	for i := 0; i+1 < len(pairs); i += 2 {
		rules = append(rules, matcher.Rule{Trigger: pairs[i], Replacement: pairs[i+1]})
	}
	rs, err := matcher.Build(rules, matcher.Options{Delimiters: engine.DefaultDelimiters()})
	require.NoError(t, err)
	return engine.New(rs, nil)
}

func typeText(ctx context.Context, l *Listener, tr *keyboard.Transcript, text string) {
	for _, ev := range keyboard.ParseText(text) {
		tr.Type(ev)
		l.Step(ctx, ev)
	}
}

func TestListenerReplacesInTranscript(t *testing.T) {
	tr := keyboard.NewTranscript()
	l := NewListener(newEngine(t, "omw", "On my way!", "ty", "Thank you"), tr, 0)

	typeText(context.Background(), l, tr, `see you, omw. ty\n`)

	assert.Equal(t, "see you, On my way!. Thank you\n", tr.String())
	require.Len(t, tr.Actions(), 2)
}

func TestListenerBackspaceScenario(t *testing.T) {
	tr := keyboard.NewTranscript()
	l := NewListener(newEngine(t, "omw", "On my way!"), tr, 0)

	typeText(context.Background(), l, tr, `om\bmw `)

	assert.Equal(t, "On my way! ", tr.String())
	require.Len(t, tr.Actions(), 1)
	a := tr.Actions()[0]
	assert.Equal(t, 3, a.Delete)
	assert.Equal(t, " ", a.Retype)
}

func TestListenerBackToBackTriggers(t *testing.T) {
	tr := keyboard.NewTranscript()
	l := NewListener(newEngine(t, "omw", "On my way!"), tr, 0)

	typeText(context.Background(), l, tr, "omw omw ")

	assert.Equal(t, "On my way! On my way! ", tr.String())
	assert.Len(t, tr.Actions(), 2)
}

func TestListenerSettleWindowTaintsWord(t *testing.T) {
	tests := []struct {
		name        string
		inWindow    string
		afterWindow string
		want        string
		wantActions int
	}{
		{
			name:        "key in window taints the rest of the word",
			inWindow:    "x",
			afterWindow: "omw ",
			want:        "On my way! xomw ",
			wantActions: 1,
		},
		{
			name:        "delimiter in window clears the taint",
			inWindow:    "x ",
			afterWindow: "omw ",
			want:        "On my way! x On my way! ",
			wantActions: 2,
		},
		{
			name:        "punctuation in window clears the taint",
			inWindow:    "x.",
			afterWindow: "omw ",
			want:        "On my way! x.On my way! ",
			wantActions: 2,
		},
		{
			name:        "trigger typed inside window is not matched",
			inWindow:    "omw ",
			afterWindow: "",
			want:        "On my way! omw ",
			wantActions: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := keyboard.NewTranscript()
			l := NewListener(newEngine(t, "omw", "On my way!"), tr, 200*time.Millisecond)

			now := time.Unix(1000, 0)
			l.now = func() time.Time { return now }
			ctx := context.Background()

			typeText(ctx, l, tr, "omw ")
			require.Len(t, tr.Actions(), 1)

			now = now.Add(100 * time.Millisecond)
			typeText(ctx, l, tr, tt.inWindow)

			now = now.Add(150 * time.Millisecond)
			typeText(ctx, l, tr, tt.afterWindow)

			assert.Equal(t, tt.want, tr.String())
			assert.Len(t, tr.Actions(), tt.wantActions)
		})
	}
}

func TestListenerExecutorErrorKeepsRunning(t *testing.T) {
	exec := &failingExecutor{}
	l := NewListener(newEngine(t, "omw", "On my way!"), exec, 0)
	ctx := context.Background()

	for _, ev := range keyboard.ParseText("omw omw ") {
		_, ok := l.Step(ctx, ev)
		assert.False(t, ok)
	}
	assert.Equal(t, 2, exec.calls)
}

func TestListenerRun(t *testing.T) {
	tr := keyboard.NewTranscript()
	l := NewListener(newEngine(t, "brb", "be right back"), tr, 0)

	events := make(chan engine.Event)
	done := make(chan error, 1)
	go func() {
		done <- l.Run(context.Background(), events)
	}()

	for _, ev := range keyboard.ParseText("brb ") {
		events <- ev
	}
	close(events)

	assert.ErrorIs(t, <-done, ErrSourceClosed)
	require.Len(t, tr.Actions(), 1)
	assert.Equal(t, "be right back", tr.Actions()[0].Insert)
}

func TestListenerRunStopsOnCancel(t *testing.T) {
	l := NewListener(newEngine(t, "brb", "be right back"), keyboard.NewTranscript(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, l.Run(ctx, make(chan engine.Event)))
}

func TestListenerRunClosedAfterCancel(t *testing.T) {
	l := NewListener(newEngine(t, "brb", "be right back"), keyboard.NewTranscript(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	events := make(chan engine.Event)
	close(events)
	assert.NoError(t, l.Run(ctx, events))
}
