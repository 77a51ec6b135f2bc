package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texpand/pkg/matcher"
)

func newEngine(t *testing.T, opts matcher.Options, pairs ...string) *Engine {
	t.Helper()
	var rules []matcher.Rule
	for i := 0; i+1 < len(pairs); i += 2 {
		rules = append(rules, matcher.Rule{Trigger: pairs[i], Replacement: pairs[i+1]})
	}
	opts.Delimiters = DefaultDelimiters()
	rs, err := matcher.Build(rules, opts)
	require.NoError(t, err)
	return New(rs, nil)
}

func feed(e *Engine, events ...Event) []Action {
	var out []Action
	for _, ev := range events {
		if a, ok := e.Handle(ev); ok {
			out = append(out, a)
		}
	}
	return out
}

func chars(s string) []Event {
	var out []Event
	for _, r := range s {
		out = append(out, Char(r))
	}
	return out
}

func TestBackspaceScenario(t *testing.T) {
	e := newEngine(t, matcher.Options{}, "omw", "On my way!")

	got := feed(e, Char('o'), Char('m'), Backspace(), Char('m'), Char('w'), Space())

	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Delete)
	assert.Equal(t, "On my way!", got[0].Insert)
	assert.Equal(t, " ", got[0].Retype)
}

func TestCaseSensitivity(t *testing.T) {
	events := []Event{Char('T'), Char('y'), Enter()}

	sensitive := newEngine(t, matcher.Options{}, "ty", "Thank you")
	assert.Empty(t, feed(sensitive, events...))

	insensitive := newEngine(t, matcher.Options{IgnoreCase: true}, "ty", "Thank you")
	got := feed(insensitive, events...)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Delete)
	assert.Equal(t, "Thank you", got[0].Insert)
	assert.Equal(t, "\n", got[0].Retype)
}

func TestDelimiters(t *testing.T) {
	tests := []struct {
		name   string
		delim  Event
		retype string
	}{
		{"space", Space(), " "},
		{"enter", Enter(), "\n"},
		{"tab", Tab(), "\t"},
		{"punct", Punct('!'), "!"},
		{"space char", Char(' '), " "},
		{"comma char", Char(','), ","},
		{"closing brace", Char('}'), "}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, matcher.Options{}, "brb", "be right back")
			got := feed(e, append(chars("brb"), tt.delim)...)
			require.Len(t, got, 1)
			assert.Equal(t, tt.retype, got[0].Retype)
			assert.Equal(t, "be right back", got[0].Insert)
		})
	}
}

func TestNoMatch(t *testing.T) {
	e := newEngine(t, matcher.Options{}, "omw", "On my way!")

	assert.Empty(t, feed(e, append(chars("om"), Space())...))
	assert.Empty(t, feed(e, append(chars("omwx"), Space())...))
	assert.Empty(t, feed(e, Space(), Space(), Enter()))
	assert.Empty(t, e.Buffered())
}

func TestOverflowedWordDoesNotMatch(t *testing.T) {
	e := newEngine(t, matcher.Options{}, "omw", "On my way!")

	assert.Empty(t, feed(e, append(chars("xomw"), Space())...))

	// Backspacing the overflowed word does not resurrect the lost prefix.
	assert.Empty(t, feed(e, append(chars("xomw"), Backspace(), Char('w'), Space())...))
}

func TestSuffixModeMatchesInsideWord(t *testing.T) {
	e := newEngine(t, matcher.Options{Mode: matcher.ModeSuffix}, "omw", "On my way!", "ty", "Thank you")

	got := feed(e, append(chars("xxomw"), Space())...)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Delete)

	got = feed(e, append(chars("pty"), Punct('.'))...)
	require.Len(t, got, 1)
	assert.Equal(t, "Thank you", got[0].Insert)
	assert.Equal(t, ".", got[0].Retype)
}

func TestBufferBound(t *testing.T) {
	e := newEngine(t, matcher.Options{}, "omw", "x", "sig", "y")
	for _, r := range "the quick brown fox" {
		if e.IsDelimiter(r) {
			continue
		}
		e.OnCharacter(r)
		assert.LessOrEqual(t, len([]rune(e.Buffered())), e.Rules().MaxLen())
	}
}

func TestEmptyReplacement(t *testing.T) {
	e := newEngine(t, matcher.Options{}, "zz", "")
	got := feed(e, append(chars("zz"), Space())...)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Delete)
	assert.Equal(t, "", got[0].Insert)
}

func TestDeterministicReplay(t *testing.T) {
	events := append(chars("omw"), Space())
	events = append(events, chars("ty")...)
	events = append(events, Enter())
	events = append(events, chars("nope")...)
	events = append(events, Tab())

	first := feed(newEngine(t, matcher.Options{}, "omw", "On my way!", "ty", "Thank you"), events...)
	second := feed(newEngine(t, matcher.Options{}, "omw", "On my way!", "ty", "Thank you"), events...)

	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, "On my way!", first[0].Insert)
	assert.Equal(t, "Thank you", first[1].Insert)
}

func TestBufferBackspaceOnEmpty(t *testing.T) {
	b := NewBuffer(3)
	b.Backspace()
	assert.Equal(t, 0, b.Len())
	b.Append('a')
	b.Append('b')
	b.Backspace()
	assert.Equal(t, "a", b.String())
	assert.False(t, b.Overflowed())
	for _, r := range "bcd" {
		b.Append(r)
	}
	assert.Equal(t, "bcd", b.String())
	assert.True(t, b.Overflowed())
	b.Reset()
	assert.False(t, b.Overflowed())
	assert.Equal(t, "", b.String())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "backspace", KindBackspace.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
