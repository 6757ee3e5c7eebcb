package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quantlab/tradesim/internal/sim"
)

// Data locates the input price series.
type Data struct {
	Path string `yaml:"path"`
}

// Output controls where histories and reports land.
type Output struct {
	Dir string `yaml:"dir"`
}

// Root is the top-level configuration file.
type Root struct {
	Data    Data       `yaml:"data"`
	Output  Output     `yaml:"output"`
	Seed    int64      `yaml:"seed"`
	Episode sim.Config `yaml:"episode"`
}

// Load reads a yaml config and fills defaults for anything unset. An empty
// path returns the pure-default configuration.
func Load(path string) (Root, error) {
	var c Root
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if c.Data.Path == "" {
		c.Data.Path = "data/prices.csv"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "results"
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	c.Episode.ApplyDefaults()
	if err := c.Episode.Validate(); err != nil {
		return c, err
	}
	return c, nil
}
