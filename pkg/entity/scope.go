package entity

import "fmt"

// Scope classifies where an entity type's data lives.
type Scope string

const (
	// TenantScoped data lives in the database of the tenant that owns it.
	TenantScoped Scope = "tenant"

	// GlobalScoped data lives in the shared global database.
	GlobalScoped Scope = "global"

	// AlwaysGlobal data lives in the global database and must never be read
	// or written against a tenant alias, even when a tenant is resolved.
	// Identity and session records fall in this class.
	AlwaysGlobal Scope = "always_global"
)

// Valid reports whether s is one of the three known scopes.
func (s Scope) Valid() bool {
	switch s {
	case TenantScoped, GlobalScoped, AlwaysGlobal:
		return true
	}
	return false
}

func (s Scope) String() string {
	return string(s)
}

// UnmarshalYAML validates the scope while decoding the manifest file.
func (s *Scope) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	scope := Scope(raw)
	if !scope.Valid() {
		return fmt.Errorf("unknown scope %q", raw)
	}
	*s = scope
	return nil
}
