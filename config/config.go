// Package config loads runtime configuration from the environment, an optional
// .env file and an optional YAML overlay.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"gonum.org/v1/plot/vg"

	"geneflow_go/env_summary"
	"geneflow_go/gene_flow"
	"geneflow_go/heatmap"
)

// Config holds application configuration
type Config struct {
	Port        int
	LogLevel    string
	LogPretty   bool
	DevMode     bool
	MaxUploadMB int
	Delimiter   string
	ConfigFile  string

	Simulation gene_flow.Config
	Heatmap    HeatmapConfig
}

// HeatmapConfig sizes the rendered heatmap in inches.
type HeatmapConfig struct {
	ColorMap string  `yaml:"color_map"`
	WidthIn  float64 `yaml:"width_in"`
	HeightIn float64 `yaml:"height_in"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvAsInt("GENEFLOW_PORT", 8080),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogPretty:   getEnvAsBool("LOG_PRETTY", true),
		DevMode:     getEnvAsBool("DEV_MODE", false),
		MaxUploadMB: getEnvAsInt("GENEFLOW_MAX_UPLOAD_MB", 32),
		Delimiter:   getEnv("GENEFLOW_DELIMITER", ","),
		ConfigFile:  getEnv("GENEFLOW_CONFIG", ""),
		Simulation:  gene_flow.DefaultConfig(),
		Heatmap: HeatmapConfig{
			ColorMap: heatmap.DefaultColorMap,
			WidthIn:  float64(heatmap.DefaultWidth / vg.Inch),
			HeightIn: float64(heatmap.DefaultHeight / vg.Inch),
		},
	}

	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// fileOverlay is the YAML document shape. Absent keys keep their current value.
type fileOverlay struct {
	Simulation *struct {
		Generations       *int     `yaml:"generations"`
		MutationRate      *float64 `yaml:"mutation_rate"`
		MigrationRate     *float64 `yaml:"migration_rate"`
		SelectionPressure *float64 `yaml:"selection_pressure"`
		InitialFrequency  *float64 `yaml:"initial_frequency"`
		Clamp             *bool    `yaml:"clamp"`
	} `yaml:"simulation"`
	Heatmap *struct {
		ColorMap *string  `yaml:"color_map"`
		WidthIn  *float64 `yaml:"width_in"`
		HeightIn *float64 `yaml:"height_in"`
	} `yaml:"heatmap"`
}

// LoadFile overlays the YAML file at path onto c. Unknown keys are rejected.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	var doc fileOverlay
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if s := doc.Simulation; s != nil {
		setIf(&c.Simulation.Generations, s.Generations)
		setIf(&c.Simulation.MutationRate, s.MutationRate)
		setIf(&c.Simulation.MigrationRate, s.MigrationRate)
		setIf(&c.Simulation.SelectionPressure, s.SelectionPressure)
		setIf(&c.Simulation.InitialFrequency, s.InitialFrequency)
		setIf(&c.Simulation.Clamp, s.Clamp)
	}
	if h := doc.Heatmap; h != nil {
		setIf(&c.Heatmap.ColorMap, h.ColorMap)
		setIf(&c.Heatmap.WidthIn, h.WidthIn)
		setIf(&c.Heatmap.HeightIn, h.HeightIn)
	}
	return nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("GENEFLOW_PORT must be within 1-65535, got %d", c.Port)
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("GENEFLOW_MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	if _, err := env_summary.ParseDelimiter(c.Delimiter); err != nil {
		return fmt.Errorf("GENEFLOW_DELIMITER: %w", err)
	}
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if _, err := heatmap.NewRenderer(c.HeatmapOptions()); err != nil {
		return fmt.Errorf("heatmap: %w", err)
	}
	return nil
}

// Comma returns the configured environmental table delimiter.
func (c *Config) Comma() rune {
	r, err := env_summary.ParseDelimiter(c.Delimiter)
	if err != nil {
		return ','
	}
	return r
}

// MaxUploadBytes is the request body limit for upload endpoints.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// HeatmapOptions converts the heatmap section to renderer options.
func (c *Config) HeatmapOptions() heatmap.Options {
	return heatmap.Options{
		ColorMap: c.Heatmap.ColorMap,
		Width:    vg.Length(c.Heatmap.WidthIn) * vg.Inch,
		Height:   vg.Length(c.Heatmap.HeightIn) * vg.Inch,
	}
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
