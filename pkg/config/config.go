package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/ritzau/roadmap-graph/pkg/layout"
	"github.com/spf13/pflag"
)

// DefaultFile is read from the working directory when present
const DefaultFile = "roadmap.toml"

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore: ROADMAP_LAYOUT__SPINE_PITCH=140.
const EnvPrefix = "ROADMAP_"

// Output formats for the render command
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// Config holds all configuration for the application
type Config struct {
	Roadmaps  string        `koanf:"roadmaps"` // Directory of definition files
	Port      int           `koanf:"port"`
	Watch     bool          `koanf:"watch"`
	DB        string        `koanf:"db"` // SQLite path for mastery state; empty keeps it in memory
	Verbosity string        `koanf:"verbosity"`
	JSONLogs  bool          `koanf:"json_logs"`
	Format    string        `koanf:"format"`
	Output    string        `koanf:"output"` // Render destination; "-" is stdout
	Active    string        `koanf:"active"` // Node to highlight when rendering
	Layout    layout.Config `koanf:"layout"`
}

func defaults() map[string]any {
	l := layout.DefaultConfig()
	return map[string]any{
		"roadmaps":  "roadmaps",
		"port":      8080,
		"watch":     false,
		"db":        "",
		"verbosity": "info",
		"json_logs": false,
		"format":    FormatSVG,
		"output":    "-",
		"active":    "",
		"layout": map[string]any{
			"spine_x":       l.SpineX,
			"phase_start":   l.PhaseStart,
			"spine_pitch":   l.SpinePitch,
			"option_pitch":  l.OptionPitch,
			"group_padding": l.GroupPadding,
			"branch_offset": l.BranchOffset,
			"depth_offset":  l.DepthOffset,
			"bracket_width": l.BracketWidth,
			"bracket_gap":   l.BracketGap,
		},
	}
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
//
// A --config flag names the file explicitly; then a missing or broken file is
// an error. Otherwise DefaultFile is read if it exists.
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	path, explicit := configPath(f)
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	// 3. Environment Variables
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.ProviderWithFlag(f, ".", k, func(fl *pflag.Flag) (string, any) {
			if fl.Name == "config" {
				return "", nil
			}
			return flagKey(fl.Name), posflag.FlagVal(f, fl)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no command can work with
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	switch c.Format {
	case FormatSVG, FormatPNG, FormatJSON:
	default:
		return fmt.Errorf("unknown format %q (want svg, png or json)", c.Format)
	}
	if c.Layout.SpinePitch <= 0 || c.Layout.OptionPitch <= 0 {
		return fmt.Errorf("layout pitches must be positive")
	}
	return nil
}

func configPath(f *pflag.FlagSet) (string, bool) {
	if f != nil {
		if fl := f.Lookup("config"); fl != nil && fl.Value.String() != "" {
			return fl.Value.String(), true
		}
	}
	return DefaultFile, false
}

// envKey maps ROADMAP_JSON_LOGS to json_logs and ROADMAP_LAYOUT__SPINE_X to
// layout.spine_x
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// flagKey maps --json-logs to json_logs and --layout-spine-x to layout.spine_x
func flagKey(name string) string {
	key := strings.ReplaceAll(name, "-", "_")
	if rest, ok := strings.CutPrefix(key, "layout_"); ok {
		return "layout." + rest
	}
	return key
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]any
}

func makeMapProvider(m map[string]any) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]any, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
