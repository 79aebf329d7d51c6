package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/eduportal/locale"
)

// LocaleKey 是 gin.Context 中当前语言的键
const LocaleKey = "locale"

// Locale 在页面逻辑之前执行语言路由：
// 路径首段为支持的语言时放行并记录语言，否则 307 重定向到协商出的语言前缀。
func Locale(r *locale.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := r.ResolveURL(c.Request.URL, c.GetHeader("Accept-Language"))
		if d.Action == locale.Redirect {
			c.Redirect(http.StatusTemporaryRedirect, d.Location)
			c.Abort()
			return
		}
		if d.Locale != "" {
			c.Set(LocaleKey, d.Locale)
			c.Request = c.Request.WithContext(locale.NewContext(c.Request.Context(), d.Locale))
		}
		c.Next()
	}
}

// CurrentLocale 返回 Locale 中间件记录的语言
func CurrentLocale(c *gin.Context) (string, bool) {
	return locale.FromContext(c.Request.Context())
}
