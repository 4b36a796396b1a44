package middleware

import (
	"github.com/SscSPs/edu_center_app/internal/platform/i18n"
	"github.com/gin-gonic/gin"
)

// LocaleMiddleware resolves Accept-Language into one of the supported locales and stores it
// in the request context for day-name rendering.
func LocaleMiddleware(localizer *i18n.Localizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tag := localizer.Match(c.GetHeader("Accept-Language"))
		c.Header("Content-Language", tag.String())
		c.Request = c.Request.WithContext(i18n.WithLocale(c.Request.Context(), tag))
		c.Next()
	}
}
