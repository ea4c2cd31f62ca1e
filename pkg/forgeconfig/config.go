// Package forgeconfig holds ambient, operational configuration for
// binaries and tests that embed the engine — worker-pool sizing,
// default decay parameters, and log level. None of it is read by
// tensor, graphstore or csr themselves: those packages take everything
// they need as explicit arguments, per the no-CLI/no-env-vars contract
// on the core.
package forgeconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config collects the operational knobs surrounding the engine.
type Config struct {
	// WorkerPool configures workerpool.Pooled for surrounding binaries
	// that don't want the runtime.GOMAXPROCS(0) default.
	WorkerPool WorkerPoolConfig `json:"worker_pool" yaml:"worker_pool"`

	// Decay documents the half-life a caller intends to pass into
	// tensor.ApplyDecay / graphstore.Graph.ApplyDecay call sites; it is
	// not consumed by those functions directly.
	Decay DecayConfig `json:"decay" yaml:"decay"`

	// LogLevel sets forgelog's level: "debug", "info", "warn", "error".
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// WorkerPoolConfig sizes the shared execution pool.
type WorkerPoolConfig struct {
	// Size is the worker cap; <= 0 means runtime.GOMAXPROCS(0).
	Size int `json:"size" yaml:"size"`
}

// DecayConfig documents the default decay rate surrounding binaries
// should use when none is supplied explicitly by a caller.
type DecayConfig struct {
	// HalfLifeDays is converted by callers into a λ via
	// λ = ln(2) / half_life_days before calling ApplyDecay.
	HalfLifeDays float64 `json:"half_life_days" yaml:"half_life_days"`
}

// Default returns a Config with safe, documented defaults.
func Default() Config {
	return Config{
		WorkerPool: WorkerPoolConfig{Size: 0},
		Decay:      DecayConfig{HalfLifeDays: 138.629},
		LogLevel:   "info",
	}
}

// Load reads a Config from path (JSON or YAML, chosen by extension,
// falling back to trying both when the extension is unrecognized),
// starting from Default and overlaying the file's values, then
// environment overrides, then validation.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		applyEnvOverrides(&cfg)
		return cfg, cfg.Validate()
	}
	if err := loadFile(path, &cfg); err != nil {
		return cfg, err
	}
	applyEnvOverrides(&cfg)
	return cfg, cfg.Validate()
}

func loadFile(path string, out *Config) error {
	bs, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("forgeconfig: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(bs, out); err != nil {
			return fmt.Errorf("forgeconfig: json unmarshal: %w", err)
		}
		return nil
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(bs, out); err != nil {
			return fmt.Errorf("forgeconfig: yaml unmarshal: %w", err)
		}
		return nil
	default:
		if err := json.Unmarshal(bs, out); err == nil {
			return nil
		}
		if err := yaml.Unmarshal(bs, out); err == nil {
			return nil
		}
		return fmt.Errorf("forgeconfig: %s is neither valid JSON nor YAML", path)
	}
}

// Validate rejects configurations that would produce nonsensical
// runtime behavior.
func (c *Config) Validate() error {
	if c.WorkerPool.Size < 0 {
		return errors.New("forgeconfig: worker_pool.size must be >= 0")
	}
	if c.Decay.HalfLifeDays <= 0 {
		return errors.New("forgeconfig: decay.half_life_days must be > 0")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("forgeconfig: unsupported log_level: %s", c.LogLevel)
	}
	return nil
}

// applyEnvOverrides lets a small set of environment variables override
// file/default values.
//
//	FORGE_WORKER_POOL_SIZE, FORGE_DECAY_HALF_LIFE_DAYS, FORGE_LOG_LEVEL
func applyEnvOverrides(c *Config) {
	if v := os.Getenv("FORGE_WORKER_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.WorkerPool.Size = n
		}
	}
	if v := os.Getenv("FORGE_DECAY_HALF_LIFE_DAYS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Decay.HalfLifeDays = f
		}
	}
	if v := os.Getenv("FORGE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}
