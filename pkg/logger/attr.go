package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// TenantAlias records a tenant database alias under the key "tenant_alias".
func TenantAlias(alias string) slog.Attr {
	return slog.String("tenant_alias", alias)
}

// Database records a database alias under the key "database".
func Database(alias string) slog.Attr {
	return slog.String("database", alias)
}

// EntityType records an entity type name under the key "entity_type".
func EntityType(name string) slog.Attr {
	return slog.String("entity_type", name)
}

// TenantKey records a tenant lookup key under the key "tenant_key".
func TenantKey(key string) slog.Attr {
	return slog.String("tenant_key", key)
}

// SessionID records the session identifier under the key "session_id".
func SessionID(id string) slog.Attr {
	return slog.String("session_id", id)
}

// ClientIP records the client address under the key "client_ip".
func ClientIP(ip string) slog.Attr {
	return slog.String("client_ip", ip)
}

// Path records the request path under the key "path".
func Path(p string) slog.Attr {
	return slog.String("path", p)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Reason records a human-readable cause under the key "reason".
func Reason(r string) slog.Attr {
	return slog.String("reason", r)
}
