// Package sources discovers candidate article links for a keyword, either
// through the Google News RSS search feed or by scraping publisher listing
// pages, and carries per-publisher selector overrides loaded from YAML.
package sources

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/newsflowai/newsflow/internal/extract"
	"github.com/newsflowai/newsflow/internal/logger"
)

// Config describes one named publisher: the hosts it serves articles from,
// an optional listing page to scrape, and selector overrides applied when
// extracting its pages.
type Config struct {
	Name       string            `yaml:"name" mapstructure:"name"`
	Hosts      []string          `yaml:"hosts" mapstructure:"hosts"`
	ListingURL string            `yaml:"listing_url" mapstructure:"listing_url"`
	Selectors  extract.Selectors `yaml:"selectors" mapstructure:"selectors"`
}

// Registry holds the loaded publisher configurations indexed by host.
type Registry struct {
	configs []Config
	byHost  map[string]*Config
}

// LoadRegistry reads publisher configurations from a YAML file. A missing
// file yields an empty registry; the generic cascade handles every host.
func LoadRegistry(path string, log logger.Interface) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug("no sources file, using generic extraction", "path", path)
			return NewRegistry(nil), nil
		}
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	configs, err := parseConfigs(data)
	if err != nil {
		return nil, fmt.Errorf("load sources from %s: %w", path, err)
	}

	log.Info("loaded source configurations", "path", path, "count", len(configs))

	return NewRegistry(configs), nil
}

// NewRegistry builds a registry from already-parsed configurations.
func NewRegistry(configs []Config) *Registry {
	byHost := make(map[string]*Config)
	for i := range configs {
		for _, host := range configs[i].Hosts {
			byHost[normalizeHost(host)] = &configs[i]
		}
	}

	return &Registry{configs: configs, byHost: byHost}
}

// Configs returns the loaded configurations in file order.
func (r *Registry) Configs() []Config {
	return r.configs
}

// SelectorsFor returns the selector overrides for a host, or nil when the
// host has none configured.
func (r *Registry) SelectorsFor(host string) *extract.Selectors {
	cfg, ok := r.byHost[normalizeHost(host)]
	if !ok {
		return nil
	}

	if cfg.Selectors.Empty() && cfg.Selectors.Links == "" {
		return nil
	}

	return &cfg.Selectors
}

// parseConfigs decodes the YAML through an intermediate map so unknown keys
// are tolerated and field names stay in one place (the mapstructure tags).
func parseConfigs(data []byte) ([]Config, error) {
	var raw struct {
		Sources []map[string]any `yaml:"sources"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	configs := make([]Config, 0, len(raw.Sources))
	for i, entry := range raw.Sources {
		var cfg Config
		if err := mapstructure.Decode(entry, &cfg); err != nil {
			return nil, fmt.Errorf("decode source %d: %w", i, err)
		}
		if cfg.Name == "" {
			return nil, fmt.Errorf("source %d: name is required", i)
		}
		configs = append(configs, cfg)
	}

	return configs, nil
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(host)), "www.")
}
