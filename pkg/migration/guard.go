package migration

import (
	"log/slog"

	"github.com/schoolara/schoolara/pkg/entity"
	"github.com/schoolara/schoolara/pkg/pg"
)

// Decision is the guard's verdict for one (schema change, candidate
// database) pair.
type Decision int

const (
	// Abstain means no concrete target database exists yet (schema
	// planning); the guard refuses to guess rather than bake a wrong
	// decision into generated artifacts.
	Abstain Decision = iota

	// Allow permits the schema change against the candidate database.
	Allow

	// Deny rejects it; a denied change is fatal at deploy time, never
	// silently skipped.
	Deny
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "abstain"
	}
}

// Guard restricts which database a schema change for a given entity group
// may target, so tenant-owned and globally-owned schemas never cross.
type Guard struct {
	tenantDBs map[string]struct{}
	groups    map[string]entity.Scope
	log       *slog.Logger
}

// NewGuard builds a guard over the registered tenant database aliases and
// the entity-group table (module name -> scope, e.g. "students" ->
// tenant). A nil log falls back to slog.Default().
func NewGuard(tenantAliases []string, groups map[string]entity.Scope, log *slog.Logger) *Guard {
	if log == nil {
		log = slog.Default()
	}
	dbs := make(map[string]struct{}, len(tenantAliases))
	for _, alias := range tenantAliases {
		dbs[alias] = struct{}{}
	}
	return &Guard{tenantDBs: dbs, groups: groups, log: log}
}

// Allowed decides whether a schema change for the named entity group may
// target the candidate database. Unknown groups default to requiring the
// global database, with a warning, so unclassified data cannot scatter
// across tenant stores.
func (g *Guard) Allowed(targetDB, group string) Decision {
	scope, ok := g.groups[group]
	if !ok {
		g.log.Warn("unknown entity group in migration, requiring global database",
			slog.String("group", group),
			slog.String("target_db", targetDB))
		scope = entity.GlobalScoped
	}
	return g.AllowedScope(targetDB, scope)
}

// AllowedScope is Allowed for a pre-classified scope.
func (g *Guard) AllowedScope(targetDB string, scope entity.Scope) Decision {
	// No concrete target during schema generation or planning.
	if targetDB == "" {
		return Abstain
	}

	switch scope {
	case entity.GlobalScoped, entity.AlwaysGlobal:
		if targetDB == pg.GlobalAlias {
			return Allow
		}
		return Deny
	case entity.TenantScoped:
		// Fail closed: tenant schemas never land on the global database,
		// even when no tenant databases are registered at all.
		if targetDB == pg.GlobalAlias {
			return Deny
		}
		if _, ok := g.tenantDBs[targetDB]; ok {
			return Allow
		}
		return Deny
	}
	return Deny
}
