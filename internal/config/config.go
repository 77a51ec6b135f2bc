package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/text/cases"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"texpand/internal/engine"
	"texpand/pkg/matcher"
)

// DefaultSettle is zero: the key source never reads the virtual keyboard
// back, so there is no echo to wait out.
const DefaultSettle time.Duration = 0

// Config holds the raw command-line values.
type Config struct {
	ConfigPath  string
	Maps        []string
	IgnoreCase  bool
	MatchMode   string
	Settle      time.Duration
	DryRun      bool
	MetricsAddr string
	Verbosity   int
}

// Settings is the validated result of merging flags and the config file.
type Settings struct {
	Rules       []matcher.Rule
	IgnoreCase  bool
	Mode        matcher.Mode
	Settle      time.Duration
	DryRun      bool
	MetricsAddr string
	ConfigPath  string
}

var ErrInvalidMapping = errors.New("invalid --map entry, expected format: trigger=replacement")

func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.ConfigPath, "config", "c", "", "Path to a config file with a replacements mapping (json, yaml or toml)")
	fs.StringArrayVarP(&c.Maps, "map", "m", nil, "Inline replacement rule TRIGGER=REPLACEMENT, may be repeated")
	fs.BoolVarP(&c.IgnoreCase, "ignore-case", "i", false, "Match triggers case-insensitively")
	fs.StringVar(&c.MatchMode, "match", "word", "Match mode: word (whole word) or suffix (word ends with trigger)")
	fs.DurationVar(&c.Settle, "settle", DefaultSettle, "Do not match words typed within this long after a replacement")
	fs.BoolVar(&c.DryRun, "dry-run", false, "Log replacements instead of typing them")
	fs.StringVar(&c.MetricsAddr, "metrics", "", "Metrics HTTP server address, disabled when empty")
}

// ParseMappings parses trigger=replacement entries in order. The trigger is
// trimmed, the replacement is kept verbatim.
func ParseMappings(items []string) ([]matcher.Rule, error) {
	rules := make([]matcher.Rule, 0, len(items))
	var errs []error
	for _, item := range items {
		trigger, replacement, ok := strings.Cut(item, "=")
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidMapping, item))
			continue
		}
		trigger = strings.TrimSpace(trigger)
		if trigger == "" {
			errs = append(errs, fmt.Errorf("%w: %q", matcher.ErrEmptyTrigger, item))
			continue
		}
		rules = append(rules, matcher.Rule{Trigger: trigger, Replacement: replacement, Source: matcher.SourceInline})
	}
	return rules, utilerrors.NewAggregate(errs)
}

// FileRules returns the file's rules in sorted trigger order.
func FileRules(f *File) []matcher.Rule {
	rules := make([]matcher.Rule, 0, len(f.Replacements))
	for trigger, replacement := range f.Replacements {
		rules = append(rules, matcher.Rule{Trigger: trigger, Replacement: replacement, Source: matcher.SourceFile})
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].Trigger < rules[j].Trigger
	})
	return rules
}

// Merge applies file rules first and inline rules after, so an inline
// rule overrides a file rule with the same trigger.
func Merge(file, inline []matcher.Rule) []matcher.Rule {
	out := make([]matcher.Rule, 0, len(file)+len(inline))
	out = append(out, file...)
	return append(out, inline...)
}

// checkFoldCollisions rejects file triggers that differ only by case when
// matching ignores case: their relative order in the file is not preserved.
func checkFoldCollisions(rules []matcher.Rule) []error {
	seen := make(map[string]string, len(rules))
	var errs []error
	for _, r := range rules {
		key := cases.Fold().String(r.Trigger)
		if prev, ok := seen[key]; ok && prev != r.Trigger {
			errs = append(errs, fmt.Errorf("triggers %q and %q collide when ignoring case", prev, r.Trigger))
			continue
		}
		seen[key] = r.Trigger
	}
	return errs
}

// Load merges the config file and the flags. Flags that were set
// explicitly win over file settings.
func Load(c *Config, fs *pflag.FlagSet) (*Settings, error) {
	s := &Settings{
		IgnoreCase:  c.IgnoreCase,
		Settle:      c.Settle,
		DryRun:      c.DryRun,
		MetricsAddr: c.MetricsAddr,
		ConfigPath:  c.ConfigPath,
	}
	changed := func(name string) bool {
		return fs != nil && fs.Changed(name)
	}

	if s.ConfigPath == "" {
		s.ConfigPath = DefaultPath()
	}

	file := &File{}
	if s.ConfigPath != "" {
		var err error
		if file, err = LoadFile(s.ConfigPath); err != nil {
			return nil, err
		}
		log.Debug().Str("path", s.ConfigPath).Int("rules", len(file.Replacements)).Msg("Loaded config file")
	}

	var errs []error

	if file.IgnoreCase != nil && !changed("ignore-case") {
		s.IgnoreCase = *file.IgnoreCase
	}
	if file.SettleMS != nil && !changed("settle") {
		s.Settle = time.Duration(*file.SettleMS) * time.Millisecond
	}
	if s.Settle < 0 {
		errs = append(errs, fmt.Errorf("settle must not be negative, got %v", s.Settle))
	}

	mode := c.MatchMode
	if file.MatchMode != "" && !changed("match") {
		mode = file.MatchMode
	}
	m, err := matcher.ParseMode(mode)
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: %q", err, mode))
	}
	s.Mode = m

	fileRules := FileRules(file)
	if s.IgnoreCase {
		errs = append(errs, checkFoldCollisions(fileRules)...)
	}

	inline, err := ParseMappings(c.Maps)
	if err != nil {
		errs = append(errs, err)
	}

	s.Rules = Merge(fileRules, inline)
	if len(s.Rules) == 0 && len(errs) == 0 {
		errs = append(errs, fmt.Errorf("%w, use --config and/or --map", matcher.ErrNoRules))
	}

	if err := utilerrors.NewAggregate(errs); err != nil {
		return nil, err
	}
	return s, nil
}

// MatcherOptions returns the rule set options for these settings.
func (s *Settings) MatcherOptions() matcher.Options {
	return matcher.Options{
		IgnoreCase: s.IgnoreCase,
		Mode:       s.Mode,
		Delimiters: engine.DefaultDelimiters(),
	}
}

// RuleSet builds the rule set. Malformed rules fail here, before any
// keyboard device is touched.
func (s *Settings) RuleSet() (*matcher.RuleSet, error) {
	rs, err := matcher.Build(s.Rules, s.MatcherOptions())
	if err != nil {
		return nil, fmt.Errorf("invalid replacement rules: %w", err)
	}
	return rs, nil
}
