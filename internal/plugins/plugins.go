// Package plugins defines the collector/analyzer plugin contract and the
// registry the run command selects plugins from.
package plugins

import (
	"context"
	"fmt"
	"sort"

	"github.com/setevik/nodescan/internal/config"
	"github.com/setevik/nodescan/internal/result"
)

// Plugin pairs a collector, which gathers raw data from the local node, with
// an analyzer that validates the data and emits events. Run performs both
// phases and never panics; collection failures surface as an
// EXECUTION_FAILURE result.
type Plugin interface {
	Name() string
	Run(ctx context.Context) *result.Result
}

// Factory builds a plugin from the loaded configuration.
type Factory func(cfg *config.Config) (Plugin, error)

var registry = make(map[string]Factory)

// Register adds a plugin factory under the given name. Plugins register
// themselves from init; duplicate names are a programming error.
func Register(name string, factory Factory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("plugin %q registered twice", name))
	}
	registry[name] = factory
}

// New builds the named plugin.
func New(name string, cfg *config.Config) (Plugin, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown plugin %q (available: %v)", name, Names())
	}
	return factory(cfg)
}

// Names returns the registered plugin names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
