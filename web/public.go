package web

import (
	"github.com/gin-gonic/gin"

	"github.com/kochabx/eduportal/api"
	middleware "github.com/kochabx/eduportal/middleware/http"
	"github.com/kochabx/eduportal/model"
	transport "github.com/kochabx/eduportal/transport/http"
)

const (
	homeNewsLimit  = 3
	newsPageLimit  = 9
	leadershipDept = "Leadership"
)

// Page is the view model every public page returns.
type Page struct {
	Locale string      `json:"locale"`
	Page   string      `json:"page"`
	User   *model.User `json:"user,omitempty"`
	Data   any         `json:"data,omitempty"`
}

// EducationView is the documents page: the filtered list plus the filter options.
type EducationView struct {
	Documents  *model.Page[model.Document]         `json:"documents"`
	Categories *model.Page[model.DocumentCategory] `json:"categories"`
	Years      *model.Page[model.EducationYear]    `json:"years"`
}

func (h *Handler) publicRoutes(r *gin.Engine) {
	g := r.Group("/:lang", h.bind)
	g.GET("", h.home)
	g.GET("/", h.home)
	g.GET("/news", h.newsList)
	g.GET("/news/:slug", h.newsDetail)
	g.GET("/teachers", h.teacherList)
	g.GET("/teachers/:id", h.teacherDetail)
	g.GET("/leadership", h.leadership)
	g.GET("/education", h.education)
	for _, name := range []string{"about", "contacts"} {
		g.GET("/"+name, h.static(name))
	}
}

func (h *Handler) page(c *gin.Context, name string, data any) {
	lang, _ := middleware.CurrentLocale(c)
	user, _ := scopeOf(c).session.User(c.Request.Context())
	transport.GinJSON(c, Page{Locale: lang, Page: name, User: user, Data: data})
}

func (h *Handler) home(c *gin.Context) {
	news, err := scopeOf(c).api.News.List(c.Request.Context(), api.ListOptions{Limit: homeNewsLimit})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.page(c, "home", news)
}

func (h *Handler) newsList(c *gin.Context) {
	opts := api.ListOptions{Limit: newsPageLimit}
	if err := h.bindQuery(c, &opts); err != nil {
		h.fail(c, err)
		return
	}
	news, err := scopeOf(c).api.News.List(c.Request.Context(), opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.page(c, "news", news)
}

func (h *Handler) newsDetail(c *gin.Context) {
	n, err := scopeOf(c).api.News.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.page(c, "news-detail", n)
}

func (h *Handler) teacherList(c *gin.Context) {
	var f api.TeacherFilter
	if err := h.bindQuery(c, &f); err != nil {
		h.fail(c, err)
		return
	}
	teachers, err := scopeOf(c).api.Teachers.List(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.page(c, "teachers", teachers)
}

func (h *Handler) teacherDetail(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	t, err := scopeOf(c).api.Teachers.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.page(c, "teacher-detail", t)
}

func (h *Handler) leadership(c *gin.Context) {
	f := api.TeacherFilter{Department: leadershipDept}
	teachers, err := scopeOf(c).api.Teachers.List(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.page(c, "leadership", teachers)
}

func (h *Handler) education(c *gin.Context) {
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
	h.page(c, "education", view)
}

func (h *Handler) educationView(c *gin.Context, f api.DocumentFilter) (*EducationView, error) {
	ctx := c.Request.Context()
	a := scopeOf(c).api

	docs, err := a.Documents.List(ctx, f)
	if err != nil {
		return nil, err
	}
	categories, err := a.Categories.List(ctx, api.ListOptions{Limit: 100})
	if err != nil {
		return nil, err
	}
	years, err := a.Years.List(ctx, api.ListOptions{Limit: 100})
	if err != nil {
		return nil, err
	}
	return &EducationView{Documents: docs, Categories: categories, Years: years}, nil
}

// static pages carry no upstream data; their text lives in the frontend bundle.
func (h *Handler) static(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.page(c, name, nil)
	}
}
