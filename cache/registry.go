package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/xid"
	"go.uber.org/zap"
)

// Registry resolves named regions, creating them lazily on first
// reference from the configuration supplied at definition time. It is
// explicit, injectable process-scoped state — construct one per process
// (or per test) and pass it by reference; there is no package-level
// singleton.
type Registry struct {
	mu      sync.Mutex
	configs map[string]Config
	regions map[string]Region
	logger  *zap.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used by the registry and the regions it
// creates. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty region registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		configs: make(map[string]Config),
		regions: make(map[string]Region),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Define records the configuration for a named region. Redefining a
// name is allowed until the region has been instantiated; afterwards it
// fails with ErrRegionInUse.
func (r *Registry) Define(name string, cfg Config) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty region name", ErrCaching)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.regions[name]; exists {
		return fmt.Errorf("%w: %q", ErrRegionInUse, name)
	}
	r.configs[name] = cfg
	return nil
}

// Region resolves a region by name, creating it on first reference.
func (r *Registry) Region(name string) (Region, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.regionLocked(name)
}

func (r *Registry) regionLocked(name string) (Region, error) {
	if region, ok := r.regions[name]; ok {
		return region, nil
	}

	cfg, ok := r.configs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRegionNotDefined, name)
	}

	region, err := r.create(name, cfg)
	if err != nil {
		return nil, err
	}
	r.regions[name] = region

	r.logger.Info("cache region created",
		zap.String("region", name),
		zap.Stringer("kind", cfg.Kind))
	return region, nil
}

func (r *Registry) create(name string, cfg Config) (Region, error) {
	switch cfg.Kind {
	case KindMemory:
		return NewMemoryRegion(cfg.MaxSize), nil

	case KindPersistent:
		location := cfg.Location
		if location == "" {
			location = filepath.Join(os.TempDir(),
				fmt.Sprintf("parmem_%s_%s.sqlite3", name, xid.New()))
		}
		return NewPersistentRegion(location, r.logger)

	default:
		return nil, fmt.Errorf("%w: region %q has unknown kind %v", ErrCaching, name, cfg.Kind)
	}
}

// Clear empties the named region, instantiating it first if needed so a
// persistent region's on-disk entries from a previous run are removed.
func (r *Registry) Clear(ctx context.Context, name string) error {
	r.mu.Lock()
	region, err := r.regionLocked(name)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return region.Clear(ctx)
}

// Defined returns the names of all defined regions in sorted order.
func (r *Registry) Defined() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset closes every instantiated region and forgets all definitions,
// returning the registry to its initial state. Intended for isolating
// independent test runs. The first close failure is returned; the reset
// itself always completes.
func (r *Registry) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for name, region := range r.regions {
		if err := region.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing region %q: %w", name, err)
		}
	}
	r.configs = make(map[string]Config)
	r.regions = make(map[string]Region)
	return firstErr
}
