// Package logger provides a configured slog.Logger factory with automatic
// context attribute injection.
//
// Components in the routing core log security-relevant events (rejected
// overrides, fallbacks, unreachable databases) through a logger built here.
// Context extractors let request-scoped values such as the resolved tenant
// alias appear on every record without each call site repeating them:
//
//	log := logger.New(
//		logger.WithProduction("schoolara"),
//		logger.WithContextExtractors(tenant.LogExtractor()),
//	)
//
// Attribute helpers (logger.TenantAlias, logger.EntityType, ...) keep key
// names consistent across packages.
package logger
