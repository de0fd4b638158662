// Package config loads callscope settings from a TOML file.
//
// Every key is optional; missing keys keep the values of [Default]. Unknown
// keys and out-of-range values are reported as INVALID_CONFIG errors so typos
// do not pass silently.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/callscope/pkg/cluster"
	apperrors "github.com/matzehuels/callscope/pkg/errors"
	"github.com/matzehuels/callscope/pkg/metrics"
	"github.com/matzehuels/callscope/pkg/overlap"
)

const (
	// AppName names the configuration directory.
	AppName = "callscope"
	// FileName is the configuration file inside that directory.
	FileName = "config.toml"
)

// Config holds all tunable settings.
type Config struct {
	Layout  Layout  `toml:"layout"`
	Overlap Overlap `toml:"overlap"`
	View    View    `toml:"view"`
	Metrics Metrics `toml:"metrics"`
}

// Layout configures the cluster planner.
type Layout struct {
	PackageSpacing      float64 `toml:"package_spacing"`
	IntraPackageSpacing float64 `toml:"intra_package_spacing"`
	RowSpacing          float64 `toml:"row_spacing"`
}

// Overlap configures the node footprint used to resolve collisions.
type Overlap struct {
	NodeWidth  float64 `toml:"node_width"`
	NodeHeight float64 `toml:"node_height"`
	Margin     float64 `toml:"margin"`
}

// View holds display policies.
type View struct {
	ShowIsolated bool `toml:"show_isolated"`
	// MaxDepth hides functions more than this many calls below an entry
	// point. Zero shows every depth.
	MaxDepth int `toml:"max_depth"`
}

// Metrics configures chain computation.
type Metrics struct {
	MaxExpansions int `toml:"max_expansions"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: Layout{
			PackageSpacing:      cluster.DefaultPackageSpacing,
			IntraPackageSpacing: cluster.DefaultIntraPackageSpacing,
			RowSpacing:          cluster.DefaultRowSpacing,
		},
		Overlap: Overlap{
			NodeWidth:  overlap.DefaultWidth,
			NodeHeight: overlap.DefaultHeight,
			Margin:     overlap.DefaultMargin,
		},
		Metrics: Metrics{MaxExpansions: metrics.DefaultMaxExpansions},
	}
}

// Parse decodes TOML data on top of [Default] and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "invalid TOML")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "config file %s not found", path)
	}
	if err != nil {
		return Config{}, apperrors.Wrap(apperrors.ErrCodeInternal, err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return cfg, nil
}

// LoadOrDefault loads the file at path. An empty path falls back to
// [DefaultPath] and a missing default file yields [Default].
func LoadOrDefault(path string) (Config, error) {
	if path != "" {
		return Load(path)
	}
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	cfg, err := Load(path)
	if apperrors.Is(err, apperrors.ErrCodeFileNotFound) {
		return Default(), nil
	}
	return cfg, err
}

// DefaultPath returns $XDG_CONFIG_HOME/callscope/config.toml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, FileName), nil
}

// Validate rejects non-positive spacings, sizes and budgets, a negative
// margin and a negative depth limit.
func (c Config) Validate() error {
	positive := []struct {
		key string
		val float64
	}{
		{"layout.package_spacing", c.Layout.PackageSpacing},
		{"layout.intra_package_spacing", c.Layout.IntraPackageSpacing},
		{"layout.row_spacing", c.Layout.RowSpacing},
		{"overlap.node_width", c.Overlap.NodeWidth},
		{"overlap.node_height", c.Overlap.NodeHeight},
		{"metrics.max_expansions", float64(c.Metrics.MaxExpansions)},
	}
	for _, p := range positive {
		if p.val <= 0 {
			return apperrors.New(apperrors.ErrCodeInvalidConfig, "%s must be positive, got %v", p.key, p.val)
		}
	}
	if c.Overlap.Margin < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "overlap.margin must not be negative, got %v", c.Overlap.Margin)
	}
	if c.View.MaxDepth < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "view.max_depth must not be negative, got %d", c.View.MaxDepth)
	}
	return nil
}

// ClusterOptions returns the planner spacings. Priority is left unset.
func (c Config) ClusterOptions() cluster.Options {
	return cluster.Options{
		PackageSpacing:      c.Layout.PackageSpacing,
		IntraPackageSpacing: c.Layout.IntraPackageSpacing,
		RowSpacing:          c.Layout.RowSpacing,
	}
}

// Footprint returns the node box used by the overlap resolver.
func (c Config) Footprint() overlap.Footprint {
	return overlap.Footprint{Width: c.Overlap.NodeWidth, Height: c.Overlap.NodeHeight}
}

// MetricsOptions returns the chain computation options.
func (c Config) MetricsOptions() metrics.Options {
	return metrics.Options{MaxExpansions: c.Metrics.MaxExpansions}
}
