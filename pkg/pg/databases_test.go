package pg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolara/schoolara/pkg/pg"
)

func TestParseDatabases(t *testing.T) {
	t.Parallel()

	t.Run("valid table", func(t *testing.T) {
		t.Parallel()

		raw := []byte(`
global: postgres://app@pg-global/schoolara
tenants:
  blue: postgres://app@pg-blue/schoolara
  green: postgres://app@pg-green/schoolara
`)
		dbs, err := pg.ParseDatabases(raw)
		require.NoError(t, err)

		assert.Equal(t, "postgres://app@pg-global/schoolara", dbs.Global)
		assert.Len(t, dbs.Tenants, 2)
		assert.ElementsMatch(t, []string{"blue", "green"}, dbs.TenantAliases())
	})

	t.Run("no tenants is valid", func(t *testing.T) {
		t.Parallel()

		dbs, err := pg.ParseDatabases([]byte("global: postgres://app@pg/schoolara\n"))
		require.NoError(t, err)
		assert.Empty(t, dbs.TenantAliases())
	})

	t.Run("missing global", func(t *testing.T) {
		t.Parallel()

		_, err := pg.ParseDatabases([]byte("tenants:\n  blue: postgres://app@pg-blue/s\n"))
		assert.ErrorIs(t, err, pg.ErrDatabasesFileInvalid)
	})

	t.Run("reserved alias rejected", func(t *testing.T) {
		t.Parallel()

		raw := []byte(`
global: postgres://app@pg/s
tenants:
  global: postgres://app@pg-other/s
`)
		_, err := pg.ParseDatabases(raw)
		assert.ErrorIs(t, err, pg.ErrDatabasesFileInvalid)
	})

	t.Run("empty tenant dsn rejected", func(t *testing.T) {
		t.Parallel()

		raw := []byte(`
global: postgres://app@pg/s
tenants:
  blue: ""
`)
		_, err := pg.ParseDatabases(raw)
		assert.ErrorIs(t, err, pg.ErrDatabasesFileInvalid)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		_, err := pg.ParseDatabases([]byte("global: [unterminated"))
		assert.ErrorIs(t, err, pg.ErrDatabasesFileInvalid)
	})
}

func TestDatabasesHas(t *testing.T) {
	t.Parallel()

	dbs := pg.Databases{
		Global:  "postgres://app@pg/s",
		Tenants: map[string]string{"blue": "postgres://app@pg-blue/s"},
	}

	assert.True(t, dbs.Has(pg.GlobalAlias))
	assert.True(t, dbs.Has("blue"))
	assert.False(t, dbs.Has("red"))
}
