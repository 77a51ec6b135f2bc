package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

const appName = "texpand"

// File is the on-disk configuration.
type File struct {
	Replacements map[string]string `json:"replacements" yaml:"replacements" toml:"replacements"`
	IgnoreCase   *bool             `json:"ignore_case,omitempty" yaml:"ignore_case,omitempty" toml:"ignore_case,omitempty"`
	MatchMode    string            `json:"match_mode,omitempty" yaml:"match_mode,omitempty" toml:"match_mode,omitempty"`
	SettleMS     *int              `json:"settle_ms,omitempty" yaml:"settle_ms,omitempty" toml:"settle_ms,omitempty"`
}

var defaultNames = []string{"config.json", "config.yaml", "config.yml", "config.toml"}

// DefaultPath returns the first existing config file under the XDG config
// directories, or "" when there is none.
func DefaultPath() string {
	for _, name := range defaultNames {
		if p, err := xdg.SearchConfigFile(filepath.Join(appName, name)); err == nil {
			return p
		}
	}
	return ""
}

// LoadFile decodes a config file, picking the format from the extension.
// Unknown extensions are decoded as JSON.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	f := &File{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), f); err != nil {
			return nil, fmt.Errorf("decode TOML %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, f); err != nil {
			return nil, fmt.Errorf("decode YAML %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, f); err != nil {
			return nil, fmt.Errorf("decode JSON %s: %w", path, err)
		}
	}
	return f, nil
}
