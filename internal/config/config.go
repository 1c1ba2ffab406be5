package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/staffsight/ligature/internal/core/model"
	"github.com/staffsight/ligature/internal/core/relation"
)

type ServerConfig struct {
	Port string `toml:"port"`
}

type ScaleConfig struct {
	Interline int `toml:"interline"`
}

// GapConfig overrides a relation kind's tolerance spec, in interline units.
type GapConfig struct {
	XOutGap     float64 `toml:"x_out_gap"`
	YGap        float64 `toml:"y_gap"`
	XOutGapStep float64 `toml:"x_out_gap_step"`
	YGapStep    float64 `toml:"y_gap_step"`
}

type Config struct {
	Server     ServerConfig         `toml:"server"`
	Scale      ScaleConfig          `toml:"scale"`
	Tolerances map[string]GapConfig `toml:"tolerances"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Scale:  ScaleConfig{Interline: 20},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Scale.Interline <= 0 {
		return fmt.Errorf("scale.interline must be positive, got %d", c.Scale.Interline)
	}

	for name, gap := range c.Tolerances {
		if _, err := relation.ParseKind(name); err != nil {
			return fmt.Errorf("tolerances: %w", err)
		}
		if gap.XOutGap < 0 || gap.YGap < 0 {
			return fmt.Errorf("tolerances.%s: base gaps must be non-negative", name)
		}
		// Negative steps would make a higher profile tighter than a lower one.
		if gap.XOutGapStep < 0 || gap.YGapStep < 0 {
			return fmt.Errorf("tolerances.%s: profile steps must be non-negative", name)
		}
	}

	return nil
}

// Registry builds the tolerance registry: built-in defaults with any
// configured overrides applied per kind.
func (c *Config) Registry() (*relation.Registry, error) {
	specs := relation.DefaultSpecs()

	for name, gap := range c.Tolerances {
		kind, err := relation.ParseKind(name)
		if err != nil {
			return nil, err
		}
		specs[kind] = relation.GapSpec{
			XOutGap:     model.Fraction(gap.XOutGap),
			YGap:        model.Fraction(gap.YGap),
			XOutGapStep: model.Fraction(gap.XOutGapStep),
			YGapStep:    model.Fraction(gap.YGapStep),
		}
	}

	return relation.NewRegistry(specs)
}
