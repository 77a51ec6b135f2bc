package matcher

import (
	"errors"

	"github.com/armon/go-radix"
	"github.com/bits-and-blooms/bloom/v3"
	"k8s.io/apimachinery/pkg/util/sets"
)

// Mode selects how a typed word is compared against the triggers.
type Mode uint8

const (
	// ModeWord matches only when the whole word equals a trigger.
	ModeWord Mode = iota
	// ModeSuffix matches the longest trigger the word ends with.
	ModeSuffix
)

func (m Mode) String() string {
	switch m {
	case ModeSuffix:
		return "suffix"
	default:
		return "word"
	}
}

// ParseMode accepts "word" or "suffix".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "word":
		return ModeWord, nil
	case "suffix":
		return ModeSuffix, nil
	}
	return ModeWord, ErrUnknownMode
}

// Source records where a rule was loaded from.
type Source uint8

const (
	SourceFile Source = iota
	SourceInline
)

func (s Source) String() string {
	if s == SourceInline {
		return "inline"
	}
	return "file"
}

type Rule struct {
	Trigger     string `json:"trigger"`
	Replacement string `json:"replacement"`
	Source      Source `json:"-"`
}

type Options struct {
	IgnoreCase bool
	Mode       Mode
	// Delimiters, when set, are rejected inside triggers.
	Delimiters sets.Set[rune]
}

type entry struct {
	rule Rule
	key  string
}

// RuleSet is the immutable trigger table. It is safe for concurrent reads.
type RuleSet struct {
	opts   Options
	tree   *radix.Tree
	bf     *bloom.BloomFilter
	maxLen int
}

// Match is a resolved trigger. Length is the number of typed runes it covers.
type Match struct {
	Rule   Rule
	Length int
}

var (
	ErrNoRules            = errors.New("no replacement rules supplied")
	ErrEmptyTrigger       = errors.New("trigger text cannot be empty")
	ErrDelimiterInTrigger = errors.New("trigger contains a delimiter character")
	ErrUnknownMode        = errors.New("unknown match mode, expected word or suffix")
)
