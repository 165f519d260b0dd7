package pg

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GlobalAlias is the reserved alias of the shared, non-tenant database.
// Tenant entries in the databases table may not use it.
const GlobalAlias = "global"

// Databases is the alias -> connection-string table supplied at startup.
// The global database holds globally scoped data (tenant registry, identity
// records); each tenant entry points at one tenant's physical database.
type Databases struct {
	Global  string            `yaml:"global"`
	Tenants map[string]string `yaml:"tenants"`
}

// LoadDatabases reads and validates the YAML databases table.
func LoadDatabases(path string) (Databases, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Databases{}, errors.Join(ErrDatabasesFileUnreadable, err)
	}
	return ParseDatabases(raw)
}

// ParseDatabases parses the YAML databases table from raw bytes.
func ParseDatabases(raw []byte) (Databases, error) {
	var dbs Databases
	if err := yaml.Unmarshal(raw, &dbs); err != nil {
		return Databases{}, errors.Join(ErrDatabasesFileInvalid, err)
	}
	if dbs.Global == "" {
		return Databases{}, errors.Join(ErrDatabasesFileInvalid, errors.New("missing global connection string"))
	}
	for alias, dsn := range dbs.Tenants {
		if alias == GlobalAlias {
			return Databases{}, errors.Join(ErrDatabasesFileInvalid,
				fmt.Errorf("tenant alias %q is reserved", GlobalAlias))
		}
		if dsn == "" {
			return Databases{}, errors.Join(ErrDatabasesFileInvalid,
				fmt.Errorf("tenant alias %q has empty connection string", alias))
		}
	}
	return dbs, nil
}

// TenantAliases returns the configured tenant aliases in no particular order.
func (d Databases) TenantAliases() []string {
	aliases := make([]string, 0, len(d.Tenants))
	for alias := range d.Tenants {
		aliases = append(aliases, alias)
	}
	return aliases
}

// Has reports whether the alias names a configured database, the global one
// included.
func (d Databases) Has(alias string) bool {
	if alias == GlobalAlias {
		return true
	}
	_, ok := d.Tenants[alias]
	return ok
}
