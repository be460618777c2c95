package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/rs/zerolog"
)

// RequestLogger writes one line per request after the handler chain returns.
// Mounted after Auth it also carries the caller's identity.
func RequestLogger(log zerolog.Logger) drift.HandlerFunc {
	return func(c *drift.Context) {
		start := time.Now()

		c.Next()

		evt := log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Dur("duration", time.Since(start))
		if userID := GetUserID(c); userID != uuid.Nil {
			evt = evt.Str("user_id", userID.String())
		}
		if tenantID := GetTenantID(c); tenantID != uuid.Nil {
			evt = evt.Str("tenant_id", tenantID.String())
		}
		evt.Msg("request")
	}
}
