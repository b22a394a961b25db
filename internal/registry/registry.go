// Package registry holds the immutable activity type policy table.
package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/Dias221467/Activity_Notifier/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed activity_types.yaml
var defaultDefinitions []byte

// ErrUnknownActivityType is returned by Lookup for unregistered types.
var ErrUnknownActivityType = errors.New("unknown activity type")

// Registry maps activity types to their notification policy. It is built once
// at startup and never mutated.
type Registry struct {
	types map[string]models.ActivityTypeMeta
}

// New builds a registry from the given table. The table is copied.
func New(types map[string]models.ActivityTypeMeta) (*Registry, error) {
	copied := make(map[string]models.ActivityTypeMeta, len(types))
	for name, meta := range types {
		if err := validateMeta(name, meta); err != nil {
			return nil, err
		}
		meta.NotifyGroup = append([]models.WatcherGroup(nil), meta.NotifyGroup...)
		copied[name] = meta
	}
	return &Registry{types: copied}, nil
}

// Parse builds a registry from a YAML document.
func Parse(data []byte) (*Registry, error) {
	var types map[string]models.ActivityTypeMeta
	if err := yaml.Unmarshal(data, &types); err != nil {
		return nil, fmt.Errorf("failed to parse activity types: %w", err)
	}
	return New(types)
}

// Default returns the registry built from the embedded definitions.
func Default() (*Registry, error) {
	return Parse(defaultDefinitions)
}

// Load reads the definitions at path, or the embedded ones when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read activity types %s: %w", path, err)
	}
	return Parse(data)
}

// Lookup returns the policy for activityType.
func (r *Registry) Lookup(activityType string) (models.ActivityTypeMeta, error) {
	meta, ok := r.types[activityType]
	if !ok {
		return models.ActivityTypeMeta{}, fmt.Errorf("%w: %s", ErrUnknownActivityType, activityType)
	}
	return meta, nil
}

// Has reports whether activityType is registered.
func (r *Registry) Has(activityType string) bool {
	_, ok := r.types[activityType]
	return ok
}

func validateMeta(name string, meta models.ActivityTypeMeta) error {
	if !meta.Notify {
		return nil
	}
	switch meta.Mode {
	case models.ModeIndividual, models.ModeGroup:
		return nil
	default:
		return fmt.Errorf("activity type %s: invalid mode %q", name, meta.Mode)
	}
}
