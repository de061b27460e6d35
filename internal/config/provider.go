// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"fmt"

	"github.com/enc4idea/enclocate/internal/locator"
)

var _ locator.Settings = (*Config)(nil)

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	// A missing file is an error, unlike the default location.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
}

// Provider loads configuration from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

type fileProvider struct{}

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return loadWithOptions(ctx, opts)
}

type staticProvider struct {
	cfg *Config
}

// NewStaticProvider returns a provider that always yields cfg, ignoring the
// load options. A nil cfg yields DefaultConfig.
func NewStaticProvider(cfg *Config) Provider {
	return &staticProvider{cfg: cfg}
}

func (p *staticProvider) Load(ctx context.Context, _ LoadOptions) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load config canceled: %w", err)
	}
	if p.cfg == nil {
		return DefaultConfig(), nil
	}
	return p.cfg, nil
}
