package entity

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownEntityType is returned when an entity type has no manifest
	// entry. This is a configuration error, never a silent default: an
	// unclassified entity must not be routed anywhere.
	ErrUnknownEntityType = errors.New("entity type not present in manifest")

	// ErrInvalidManifest is returned when the manifest cannot be parsed or
	// contains invalid entries.
	ErrInvalidManifest = errors.New("invalid entity manifest")
)

// Manifest is the static entity type -> scope table supplied at startup.
// Entity type names follow the "<module>.<entity>" convention used by the
// business modules, e.g. "students.student" or "accounts.user".
type Manifest struct {
	scopes map[string]Scope
}

// NewManifest builds a manifest from an explicit table. Every scope must be
// valid and the table must not be empty.
func NewManifest(scopes map[string]Scope) (*Manifest, error) {
	if len(scopes) == 0 {
		return nil, errors.Join(ErrInvalidManifest, errors.New("empty manifest"))
	}
	copied := make(map[string]Scope, len(scopes))
	for typ, scope := range scopes {
		if typ == "" {
			return nil, errors.Join(ErrInvalidManifest, errors.New("empty entity type name"))
		}
		if !scope.Valid() {
			return nil, errors.Join(ErrInvalidManifest,
				fmt.Errorf("entity type %q has unknown scope %q", typ, scope))
		}
		copied[typ] = scope
	}
	return &Manifest{scopes: copied}, nil
}

// LoadManifest reads the manifest from a YAML file mapping entity type
// names to scopes:
//
//	accounts.user: always_global
//	students.student: tenant
//	core.schoolconfiguration: tenant
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidManifest, err)
	}
	return ParseManifest(raw)
}

// ParseManifest parses the YAML manifest from raw bytes.
func ParseManifest(raw []byte) (*Manifest, error) {
	var scopes map[string]Scope
	if err := yaml.Unmarshal(raw, &scopes); err != nil {
		return nil, errors.Join(ErrInvalidManifest, err)
	}
	return NewManifest(scopes)
}

// ScopeOf returns the scope for an entity type, or ErrUnknownEntityType
// when the type has no entry.
func (m *Manifest) ScopeOf(entityType string) (Scope, error) {
	scope, ok := m.scopes[entityType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownEntityType, entityType)
	}
	return scope, nil
}

// Types returns all registered entity type names, sorted for stable output.
func (m *Manifest) Types() []string {
	types := make([]string, 0, len(m.scopes))
	for typ := range m.scopes {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}
