package orchestrator

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

var (
	ErrThemeNotFound   = errors.New("orchestrator: theme not found")
	ErrVariantNotFound = errors.New("orchestrator: theme variant not found")
)

// ManifestSelector serves themes from manifests held in memory, typically
// the ones declared in the config file. The first registered manifest is the
// default.
type ManifestSelector struct {
	mu        sync.RWMutex
	registry  interface{ Register(*theme.Manifest) error }
	manifests map[string]*theme.Manifest
	order     []string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector registers manifests in order.
func NewManifestSelector(manifests ...*theme.Manifest) (*ManifestSelector, error) {
	s := &ManifestSelector{
		registry:  theme.NewRegistry(),
		manifests: make(map[string]*theme.Manifest),
	}
	for _, manifest := range manifests {
		if err := s.Register(manifest); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Register adds a manifest. Names must be unique.
func (s *ManifestSelector) Register(manifest *theme.Manifest) error {
	if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
		return errors.New("orchestrator: theme manifest requires a name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.manifests[manifest.Name]; exists {
		return fmt.Errorf("orchestrator: theme %q already registered", manifest.Name)
	}
	if err := s.registry.Register(manifest); err != nil {
		return fmt.Errorf("orchestrator: register theme %q: %w", manifest.Name, err)
	}
	s.manifests[manifest.Name] = manifest
	s.order = append(s.order, manifest.Name)
	return nil
}

// Names lists registered themes in registration order.
func (s *ManifestSelector) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Select implements theme.ThemeSelector. An empty name picks the default
// theme; an empty variant picks the base manifest.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name = strings.TrimSpace(name)
	if name == "" {
		if len(s.order) == 0 {
			return nil, ErrThemeNotFound
		}
		name = s.order[0]
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	variant = strings.TrimSpace(variant)
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("%w: %q in theme %q", ErrVariantNotFound, variant, name)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}
