package dbrouter

import (
	"github.com/schoolara/schoolara/pkg/entity"
)

// AllowRelation reports whether two entity instances may reference each
// other by key, given the type and database alias each was loaded from.
//
// A relation is allowed when either side is always-global, or when both
// sides share the same scope and the same alias. Two tenant-scoped
// instances from different tenant databases never relate; a key crossing
// that line would silently couple two tenants' data.
func (r *Router) AllowRelation(aType, aAlias, bType, bAlias string) (bool, error) {
	aScope, err := r.manifest.ScopeOf(aType)
	if err != nil {
		return false, err
	}
	bScope, err := r.manifest.ScopeOf(bType)
	if err != nil {
		return false, err
	}

	if aScope == entity.AlwaysGlobal || bScope == entity.AlwaysGlobal {
		return true, nil
	}
	return aScope == bScope && aAlias == bAlias, nil
}
