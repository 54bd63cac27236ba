// Package hook runs registered callbacks when a specification file is
// saved. Hooks are explicitly registered by the caller; nothing in this
// package registers itself.
package hook

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/specpress/specpress/internal/config"
	"github.com/specpress/specpress/internal/digest"
	"github.com/specpress/specpress/internal/errors"
	"github.com/specpress/specpress/internal/profile"
	"github.com/specpress/specpress/internal/spec"
)

// Func is a save hook. It receives the path of the saved specification.
type Func func(path string) error

type entry struct {
	name string
	fn   Func
}

// Registry holds named hooks and fires them in registration order.
type Registry struct {
	mu      sync.Mutex
	entries []entry
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a named hook. Names must be unique.
func (r *Registry) Register(name string, fn Func) error {
	if name == "" {
		return errors.NewValidation("hook name must not be empty")
	}
	if fn == nil {
		return errors.NewValidation("hook function must not be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.name == name {
			return errors.NewValidation(fmt.Sprintf("hook %q is already registered", name))
		}
	}
	r.entries = append(r.entries, entry{name: name, fn: fn})
	return nil
}

// Unregister removes a hook by name. Removing an unknown name is a no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.name == name {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// Names lists registered hooks in firing order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// Fire runs every hook in order. The first failing hook stops the run and
// its error is returned wrapped with the hook name.
func (r *Registry) Fire(path string) error {
	r.mu.Lock()
	hooks := append([]entry(nil), r.entries...)
	r.mu.Unlock()

	for _, e := range hooks {
		if err := e.fn(path); err != nil {
			return fmt.Errorf("hook %q: %w", e.name, err)
		}
	}
	return nil
}

// AutoDigest returns the save hook that regenerates a digest next to the
// saved file. It is inert unless cfg.AutoOptimize is set, and it skips
// digest files themselves so a digest write never triggers another run.
func AutoDigest(cfg *config.Config) Func {
	return func(path string) error {
		if cfg == nil || !cfg.AutoOptimize {
			return nil
		}
		if IsDigestPath(path) {
			return nil
		}

		s, err := spec.Load(path)
		if err != nil {
			return err
		}

		level, err := profile.ParseLevel(cfg.DefaultLevel)
		if err != nil {
			return err
		}

		d, _, err := digest.Generate(s, profile.ForLevel(level), "")
		if err != nil {
			return err
		}

		return d.ToFile(OutputPath(cfg, path))
	}
}

// OutputPath resolves where a digest for path belongs: the configured
// digest directory when set, otherwise next to the source file.
func OutputPath(cfg *config.Config, path string) string {
	out := digest.DefaultOutputPath(path)
	if cfg != nil && cfg.DigestDirectory != "" {
		return filepath.Join(cfg.DigestDirectory, filepath.Base(out))
	}
	return out
}

// IsDigestPath reports whether path looks like a generated digest.
func IsDigestPath(path string) bool {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.HasSuffix(strings.TrimSuffix(base, ext), ".digest")
}
