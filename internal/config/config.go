// Package config loads the YAML file that drives dungeon generation and the
// tools around it.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/dungeongen/internal/catalog"
	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
	"github.com/lawnchairsociety/dungeongen/internal/logger"
)

// Config is the top-level generator configuration.
type Config struct {
	// Seed is an integer or a phrase. Empty means a time based seed.
	Seed string `yaml:"seed"`

	// Count is the number of dungeons generated per run.
	Count int `yaml:"count"`

	Rows        int `yaml:"rows"`
	Spacing     int `yaml:"spacing"`
	Parallelism int `yaml:"parallelism"`

	Areas []AreaConfig `yaml:"areas"`

	Output  OutputConfig   `yaml:"output"`
	Logging logger.Config  `yaml:"logging"`
	Catalog catalog.Config `yaml:"catalog"`
	Server  ServerConfig   `yaml:"server"`
}

// AreaConfig describes one area: how its rooms are placed and joined.
type AreaConfig struct {
	// Generator is chamber, grow or grow_separated.
	Generator   string `yaml:"generator"`
	Count       int    `yaml:"count"`
	MinSize     int    `yaml:"min_size"`
	MaxSize     int    `yaml:"max_size"`
	MaxAttempts int    `yaml:"max_attempts"`

	// Tunneler is lshape or weighted.
	Tunneler string `yaml:"tunneler"`

	// Strategy is basic or secondary. MaxDist bounds secondary corridors.
	Strategy string `yaml:"strategy"`
	MaxDist  int    `yaml:"max_dist"`
}

// OutputConfig controls what the CLI writes.
type OutputConfig struct {
	// PNGPattern is a fmt pattern taking the dungeon index. Empty disables PNGs.
	PNGPattern string `yaml:"png_pattern"`
	Scale      int    `yaml:"scale"`

	// ASCII prints every dungeon to stdout.
	ASCII bool `yaml:"ascii"`

	// Color is auto, always or never.
	Color string `yaml:"color"`
}

// ServerConfig holds preview server settings.
type ServerConfig struct {
	Address string `yaml:"address"`

	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy. "*" allows all origins.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxPerIP and MaxTotal limit concurrent connections. 0 means unlimited.
	MaxPerIP int `yaml:"max_per_ip"`
	MaxTotal int `yaml:"max_total"`

	// TrustProxy takes the client address from X-Forwarded-For or X-Real-IP.
	// Only enable it behind a reverse proxy that sets those headers.
	TrustProxy bool `yaml:"trust_proxy"`

	MaxMessageSize int64 `yaml:"max_message_size"`

	// MaxRows caps the row count a client may request.
	MaxRows int `yaml:"max_rows"`

	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig throttles preview requests per client IP. An IP that sends
// more than MaxRequests previews within WindowSeconds is locked out for
// LockoutSeconds, doubling on each repeat up to MaxLockoutSeconds.
type RateLimitConfig struct {
	MaxRequests       int `yaml:"max_requests"`
	WindowSeconds     int `yaml:"window_seconds"`
	LockoutSeconds    int `yaml:"lockout_seconds"`
	MaxLockoutSeconds int `yaml:"max_lockout_seconds"`
}

// DefaultArea is the area used by the default configuration.
func DefaultArea() AreaConfig {
	return AreaConfig{
		Generator: "grow",
		Count:     5,
		MinSize:   4,
		MaxSize:   8,
		Tunneler:  "lshape",
		Strategy:  "secondary",
		MaxDist:   16,
	}
}

// DefaultConfig returns six grown areas in two rows, twelve dungeons per run
// saved as PNG at scale 4.
func DefaultConfig() *Config {
	areas := make([]AreaConfig, 6)
	for i := range areas {
		areas[i] = DefaultArea()
	}

	return &Config{
		Count:       12,
		Rows:        2,
		Spacing:     dungeon.DefaultSpacing,
		Parallelism: 1,
		Areas:       areas,
		Output: OutputConfig{
			PNGPattern: "img_%d.png",
			Scale:      4,
			Color:      "auto",
		},
		Logging: logger.DefaultConfig(),
		Catalog: catalog.DefaultConfig(),
		Server: ServerConfig{
			Address:        ":8090",
			AllowedOrigins: []string{},
			MaxPerIP:       3,
			MaxTotal:       100,
			MaxMessageSize: 4096,
			MaxRows:        8,
			RateLimit: RateLimitConfig{
				MaxRequests:       20,
				WindowSeconds:     10,
				LockoutSeconds:    5,
				MaxLockoutSeconds: 120,
			},
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides for logging are applied either way.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			config.Logging.ApplyEnv()
			return config, nil
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
	}

	config.normalize()
	config.Logging.ApplyEnv()
	return config, nil
}

func (c *Config) normalize() {
	for i := range c.Areas {
		a := &c.Areas[i]
		if a.MinSize == 0 && a.MaxSize == 0 {
			def := DefaultArea()
			a.MinSize, a.MaxSize = def.MinSize, def.MaxSize
		}
	}
	if c.Parallelism == 0 {
		c.Parallelism = 1
	}
	if c.Spacing == 0 {
		c.Spacing = dungeon.DefaultSpacing
	}
	if c.Output.Scale == 0 {
		c.Output.Scale = 1
	}
	c.Logging.Normalize()
}

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Rows < 1 {
		errs = append(errs, fmt.Errorf("rows: %w", dungeon.ErrInvalidRowCount))
	}
	if c.Count < 1 {
		errs = append(errs, fmt.Errorf("count must be at least 1, got %d", c.Count))
	}
	if c.Spacing < 1 {
		errs = append(errs, fmt.Errorf("spacing must be at least 1, got %d", c.Spacing))
	}
	if c.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism))
	}
	if len(c.Areas) == 0 {
		errs = append(errs, fmt.Errorf("areas: %w", dungeon.ErrNoAreas))
	}
	for i, a := range c.Areas {
		if _, err := a.Build(); err != nil {
			errs = append(errs, fmt.Errorf("areas[%d]: %w", i, err))
		}
	}
	if c.Output.Scale < 1 {
		errs = append(errs, fmt.Errorf("output.scale must be at least 1, got %d", c.Output.Scale))
	}
	if c.Output.PNGPattern != "" && !strings.Contains(c.Output.PNGPattern, "%d") {
		errs = append(errs, fmt.Errorf("output.png_pattern %q has no %%d verb", c.Output.PNGPattern))
	}
	switch c.Output.Color {
	case "", "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("output.color must be auto, always or never, got %q", c.Output.Color))
	}
	if c.Catalog.Enabled {
		if _, err := catalog.DialectFor(c.Catalog.Driver); err != nil {
			errs = append(errs, fmt.Errorf("catalog.driver: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Build creates the area described by a.
func (a AreaConfig) Build() (*dungeon.Area, error) {
	gen, err := dungeon.ParseGenerator(dungeon.GeneratorSpec{
		Name:        a.Generator,
		Count:       a.Count,
		MinSize:     a.MinSize,
		MaxSize:     a.MaxSize,
		MaxAttempts: a.MaxAttempts,
	})
	if err != nil {
		return nil, err
	}

	tun, err := dungeon.ParseTunneler(a.Tunneler)
	if err != nil {
		return nil, err
	}

	if a.MaxDist < 0 {
		return nil, fmt.Errorf("max_dist must not be negative, got %d", a.MaxDist)
	}
	strategy, err := dungeon.ParseStrategy(a.Strategy, a.MaxDist)
	if err != nil {
		return nil, err
	}

	return dungeon.NewArea(gen, tun, strategy), nil
}

// BuildDungeon creates an ungenerated dungeon with every configured area.
// rows overrides c.Rows when positive.
func (c *Config) BuildDungeon(rows int, log *slog.Logger) (*dungeon.Dungeon, error) {
	if rows <= 0 {
		rows = c.Rows
	}

	opts := []dungeon.Option{
		dungeon.WithSpacing(c.Spacing),
		dungeon.WithParallelism(c.Parallelism),
	}
	if log != nil {
		opts = append(opts, dungeon.WithLogger(log))
	}

	d, err := dungeon.NewDungeon(rows, opts...)
	if err != nil {
		return nil, err
	}

	for i, a := range c.Areas {
		area, err := a.Build()
		if err != nil {
			return nil, fmt.Errorf("areas[%d]: %w", i, err)
		}
		d.AddArea(area)
	}
	return d, nil
}

// generationParams is the part of the config that decides the map shape.
type generationParams struct {
	Rows    int          `yaml:"rows"`
	Spacing int          `yaml:"spacing"`
	Areas   []AreaConfig `yaml:"areas"`
}

// Params serializes the settings that, together with a seed, reproduce a
// dungeon. rows overrides c.Rows when positive.
func (c *Config) Params(rows int) ([]byte, error) {
	if rows <= 0 {
		rows = c.Rows
	}
	return yaml.Marshal(generationParams{Rows: rows, Spacing: c.Spacing, Areas: c.Areas})
}

// IsOriginAllowed checks an Origin header against AllowedOrigins. With no
// allowed origins configured only same-origin requests pass.
func (c *ServerConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // non-browser client
	}

	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
