package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"minimir/internal/layout"
)

const configFileName = "minimir.toml"

type toolConfig struct {
	Target targetConfig `toml:"target"`
	Check  checkConfig  `toml:"check"`
}

type targetConfig struct {
	Name    string `toml:"name"`
	PtrSize int    `toml:"ptr_size"`
}

type checkConfig struct {
	Jobs int `toml:"jobs"`
}

// settings is the resolved configuration a command runs with.
type settings struct {
	Path   string // empty when no file was found
	Target layout.Target
	Jobs   int
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadConfig(path string) (settings, error) {
	var cfg toolConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return settings{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return settings{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}

	out := settings{Path: path, Target: layout.Default()}
	if meta.IsDefined("target", "ptr_size") {
		target, err := layout.ForPtrSize(cfg.Target.Name, cfg.Target.PtrSize)
		if err != nil {
			return settings{}, fmt.Errorf("%s: [target].ptr_size: %w", path, err)
		}
		out.Target = target
	} else if cfg.Target.Name != "" {
		out.Target.Name = cfg.Target.Name
	}
	if cfg.Check.Jobs < 0 {
		return settings{}, fmt.Errorf("%s: [check].jobs must not be negative", path)
	}
	out.Jobs = cfg.Check.Jobs
	return out, nil
}

// resolveSettings loads --config, or the nearest minimir.toml, or the defaults.
func resolveSettings(cmd *cobra.Command) (settings, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return settings{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path == "" {
		found, ok, err := findConfig(".")
		if err != nil {
			return settings{}, err
		}
		if !ok {
			return settings{Target: layout.Default()}, nil
		}
		path = found
	}
	return loadConfig(path)
}

func (s settings) workers() int {
	if s.Jobs > 0 {
		return s.Jobs
	}
	return runtime.GOMAXPROCS(0)
}
