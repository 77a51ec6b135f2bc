package matcher

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/armon/go-radix"
	"github.com/bits-and-blooms/bloom/v3"
	"golang.org/x/text/cases"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

func (rs *RuleSet) normalize(s string) string {
	if rs.opts.IgnoreCase {
		// A Caser is stateful, so each call gets its own.
		return cases.Fold().String(s)
	}
	return s
}

func reverseRunes(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// Build validates rules and loads them in order. A later rule whose
// (normalized) trigger equals an earlier one replaces it.
func Build(rules []Rule, opts Options) (*RuleSet, error) {
	if len(rules) == 0 {
		return nil, ErrNoRules
	}

	rs := &RuleSet{
		opts: opts,
		tree: radix.New(),
		bf:   bloom.NewWithEstimates(uint(len(rules))*4, 1e-4),
	}

	var errs []error
	for _, r := range rules {
		if r.Trigger == "" {
			errs = append(errs, ErrEmptyTrigger)
			continue
		}
		if opts.Delimiters != nil {
			for _, ch := range r.Trigger {
				if opts.Delimiters.Has(ch) {
					errs = append(errs, fmt.Errorf("%w: %q", ErrDelimiterInTrigger, r.Trigger))
					break
				}
			}
		}

		key := rs.normalize(r.Trigger)
		rs.tree.Insert(reverseRunes(key), &entry{rule: r, key: key})
		rs.bf.AddString(key)
	}

	if err := utilerrors.NewAggregate(errs); err != nil {
		return nil, err
	}

	// Only surviving rules count; an overwritten trigger may be longer.
	rs.tree.Walk(func(_ string, v interface{}) bool {
		e := v.(*entry)
		rs.maxLen = max(rs.maxLen, utf8.RuneCountInString(e.rule.Trigger), utf8.RuneCountInString(e.key))
		return false
	})
	return rs, nil
}

// Lookup reports the rule whose trigger equals word.
func (rs *RuleSet) Lookup(word string) (Match, bool) {
	key := rs.normalize(word)
	if !rs.bf.TestString(key) {
		return Match{}, false
	}
	v, ok := rs.tree.Get(reverseRunes(key))
	if !ok {
		return Match{}, false
	}
	return Match{Rule: v.(*entry).rule, Length: utf8.RuneCountInString(word)}, true
}

// LongestSuffix reports the longest trigger that text ends with.
func (rs *RuleSet) LongestSuffix(text string) (Match, bool) {
	_, v, ok := rs.tree.LongestPrefix(reverseRunes(rs.normalize(text)))
	if !ok {
		return Match{}, false
	}
	e := v.(*entry)

	// Folding can change rune counts, so measure the typed tail that
	// normalizes to the matched key.
	typed := []rune(text)
	for n := 1; n <= len(typed); n++ {
		if rs.normalize(string(typed[len(typed)-n:])) == e.key {
			return Match{Rule: e.rule, Length: n}, true
		}
	}
	return Match{}, false
}

// Match resolves text according to the configured mode.
func (rs *RuleSet) Match(text string) (Match, bool) {
	if rs.opts.Mode == ModeSuffix {
		return rs.LongestSuffix(text)
	}
	return rs.Lookup(text)
}

// MaxLen is the longest trigger length in runes.
func (rs *RuleSet) MaxLen() int {
	return rs.maxLen
}

func (rs *RuleSet) Len() int {
	return rs.tree.Len()
}

func (rs *RuleSet) Options() Options {
	return rs.opts
}

// Rules returns the effective rules sorted by trigger.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, 0, rs.tree.Len())
	rs.tree.Walk(func(_ string, v interface{}) bool {
		out = append(out, v.(*entry).rule)
		return false
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].Trigger < out[j].Trigger
	})
	return out
}
