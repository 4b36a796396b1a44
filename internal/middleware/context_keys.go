package middleware

import (
	"context"

	"github.com/SscSPs/edu_center_app/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// principalKey is the key used to store the authenticated principal in the request context.
const principalKey = contextKey("principal")

// WithPrincipal returns a copy of ctx carrying the principal.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipalFromContext retrieves the authenticated principal from the Gin request context.
// It returns the principal and a boolean indicating if it was found.
func GetPrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	p, ok := c.Request.Context().Value(principalKey).(domain.Principal)
	if !ok || p.ID == "" {
		return domain.Principal{}, false
	}
	return p, true
}
