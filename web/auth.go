package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/eduportal/api"
	middleware "github.com/kochabx/eduportal/middleware/http"
	"github.com/kochabx/eduportal/model"
	transport "github.com/kochabx/eduportal/transport/http"
)

func (h *Handler) authRoutes(r *gin.Engine) {
	g := r.Group("/auth", h.bind)
	g.POST("/login", h.login)
	g.POST("/logout", h.logout)
	g.GET("/me", h.me)

	p := r.Group("/profile", h.bind, middleware.RequireSession(middleware.GuardConfig{
		Session:   h.sessionOf,
		LoginPath: h.config.LoginPath,
	}))
	p.GET("", h.profile)
	p.GET("/docs", h.profileDocs)
}

func (h *Handler) login(c *gin.Context) {
	var creds model.Credentials
	if err := bindBody(c, &creds); err != nil {
		h.fail(c, err)
		return
	}
	u, err := scopeOf(c).api.Auth.Login(c.Request.Context(), creds)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Info().Str("username", u.Username).Str("role", string(u.Role)).Msg("user logged in")
	transport.GinJSON(c, u)
}

func (h *Handler) logout(c *gin.Context) {
	if err := scopeOf(c).api.Auth.Logout(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	transport.GinJSON(c, nil)
}

func (h *Handler) me(c *gin.Context) {
	u, err := scopeOf(c).api.Auth.CurrentUser(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	transport.GinJSON(c, u)
}

// profile always asks the upstream so a role change shows up on the next visit.
func (h *Handler) profile(c *gin.Context) {
	u, err := scopeOf(c).api.Auth.Me(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	transport.GinJSON(c, u)
}

func (h *Handler) profileDocs(c *gin.Context) {
	var f api.DocumentFilter
	if err := h.bindQuery(c, &f); err != nil {
		h.fail(c, err)
		return
	}
	view, err := h.educationView(c, f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, transport.Success(view))
}
