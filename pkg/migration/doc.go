// Package migration keeps schema changes on the right class of database.
//
// The Guard answers, per (schema change, candidate database) pair, whether
// the change may run there: globally owned schema only against the global
// database, tenant-scoped schema only against registered tenant databases
// and never against the global one, even when zero tenant databases exist.
// With no concrete target yet (schema planning) the guard abstains instead
// of guessing.
//
// Apply is the deploy-time runner: goose migrations from scope-segregated
// directories, every (directory, target) pairing cleared by the Guard
// before any database is touched.
package migration
