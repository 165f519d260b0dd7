// Package entity defines the static classification of entity types by
// isolation scope.
//
// Every entity type a business module manages has exactly one manifest
// entry declaring whether its data is tenant-scoped, global-scoped, or
// always-global. The connection router and the migration guard both consult
// this table; an entity type missing from it is a configuration error, not
// a silent default.
package entity
