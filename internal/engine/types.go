package engine

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"texpand/pkg/matcher"
)

// Kind tags a key event. The set is closed: sources produce nothing else.
type Kind uint8

const (
	KindChar Kind = iota
	KindBackspace
	KindEnter
	KindTab
	KindSpace
	KindPunct
)

var kindNames = [...]string{"char", "backspace", "enter", "tab", "space", "punct"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Event is one key press. Rune is set for KindChar and KindPunct.
type Event struct {
	Kind Kind
	Rune rune
}

func Char(r rune) Event  { return Event{Kind: KindChar, Rune: r} }
func Punct(r rune) Event { return Event{Kind: KindPunct, Rune: r} }
func Backspace() Event   { return Event{Kind: KindBackspace} }
func Enter() Event       { return Event{Kind: KindEnter} }
func Tab() Event         { return Event{Kind: KindTab} }
func Space() Event       { return Event{Kind: KindSpace} }

// Action is a correction: remove Delete runes before the cursor, type
// Insert, then type Retype (the delimiter that completed the trigger).
type Action struct {
	Delete int
	Insert string
	Retype string
	Rule   matcher.Rule
}

// DefaultDelimiters returns the characters that end a word.
func DefaultDelimiters() sets.Set[rune] {
	return sets.New(' ', '\n', '\t', '.', ',', '!', '?', ';', ':', ')', ']', '}')
}

type Engine struct {
	rules      *matcher.RuleSet
	delimiters sets.Set[rune]
	buf        *Buffer
}
