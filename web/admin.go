package web

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/eduportal/api"
	middleware "github.com/kochabx/eduportal/middleware/http"
	"github.com/kochabx/eduportal/model"
	transport "github.com/kochabx/eduportal/transport/http"
)

func (h *Handler) adminRoutes(r *gin.Engine) {
	g := r.Group("/admin", h.bind, middleware.RequireSession(middleware.GuardConfig{
		Session:   h.sessionOf,
		Roles:     []model.Role{model.RoleAdmin},
		LoginPath: h.config.LoginPath,
	}))

	news := g.Group("/news")
	news.GET("", h.adminNewsList)
	news.POST("", h.saveNews)
	news.GET("/:id", h.adminNews)
	news.PUT("/:id", h.saveNews)
	news.DELETE("/:id", h.remove(func(a *api.API) deleter { return a.News }))

	docs := g.Group("/documents")
	docs.GET("", h.adminDocumentList)
	docs.POST("", h.saveDocument)
	docs.GET("/:id", h.adminDocument)
	docs.PUT("/:id", h.saveDocument)
	docs.DELETE("/:id", h.remove(func(a *api.API) deleter { return a.Documents }))

	categories := docs.Group("/categories")
	categories.GET("", h.adminCategoryList)
	categories.POST("", h.saveCategory)
	categories.PUT("/:id", h.saveCategory)
	categories.DELETE("/:id", h.remove(func(a *api.API) deleter { return a.Categories }))

	years := docs.Group("/years")
	years.GET("", h.adminYearList)
	years.POST("", h.saveYear)
	years.PUT("/:id", h.saveYear)
	years.DELETE("/:id", h.remove(func(a *api.API) deleter { return a.Years }))

	teachers := g.Group("/teachers")
	teachers.GET("", h.adminTeacherList)
	teachers.POST("", h.saveTeacher)
	teachers.GET("/:id", h.adminTeacher)
	teachers.PUT("/:id", h.saveTeacher)
	teachers.DELETE("/:id", h.remove(func(a *api.API) deleter { return a.Teachers }))
}

// reply writes v or routes err through fail.
func reply[T any](h *Handler, c *gin.Context, v T, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	transport.GinJSON(c, v)
}

// updateID is the id of a PUT, zero for a POST.
func updateID(c *gin.Context) (int64, error) {
	if c.Param("id") == "" {
		return 0, nil
	}
	return idParam(c)
}

type deleter interface {
	Delete(ctx context.Context, id int64) error
}

func (h *Handler) remove(pick func(*api.API) deleter) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err == nil {
			err = pick(scopeOf(c).api).Delete(c.Request.Context(), id)
		}
		reply(h, c, gin.H{"id": id}, err)
	}
}

// News

func (h *Handler) adminNewsList(c *gin.Context) {
	var opts api.ListOptions
	if err := h.bindQuery(c, &opts); err != nil {
		h.fail(c, err)
		return
	}
	v, err := scopeOf(c).api.News.List(c.Request.Context(), opts)
	reply(h, c, v, err)
}

func (h *Handler) adminNews(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	v, err := scopeOf(c).api.News.Get(c.Request.Context(), id)
	reply(h, c, v, err)
}

func (h *Handler) saveNews(c *gin.Context) {
	id, err := updateID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var in model.NewsInput
	if err := bindBody(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	image, done, err := upload(c, "image")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer done()

	news, ctx := scopeOf(c).api.News, c.Request.Context()
	var v *model.News
	if id == 0 {
		v, err = news.Create(ctx, in, image)
	} else {
		v, err = news.Update(ctx, id, in, image)
	}
	reply(h, c, v, err)
}

// Documents

func (h *Handler) adminDocumentList(c *gin.Context) {
	var f api.DocumentFilter
	if err := h.bindQuery(c, &f); err != nil {
		h.fail(c, err)
		return
	}
	v, err := scopeOf(c).api.Documents.List(c.Request.Context(), f)
	reply(h, c, v, err)
}

func (h *Handler) adminDocument(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	v, err := scopeOf(c).api.Documents.Get(c.Request.Context(), id)
	reply(h, c, v, err)
}

func (h *Handler) saveDocument(c *gin.Context) {
	id, err := updateID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var in model.DocumentInput
	if err := bindBody(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	file, done, err := upload(c, "file")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer done()

	docs, ctx := scopeOf(c).api.Documents, c.Request.Context()
	var v *model.Document
	if id == 0 {
		v, err = docs.Create(ctx, in, file)
	} else {
		v, err = docs.Update(ctx, id, in, file)
	}
	reply(h, c, v, err)
}

// Categories and years

func (h *Handler) adminCategoryList(c *gin.Context) {
	var opts api.ListOptions
	if err := h.bindQuery(c, &opts); err != nil {
		h.fail(c, err)
		return
	}
	v, err := scopeOf(c).api.Categories.List(c.Request.Context(), opts)
	reply(h, c, v, err)
}

func (h *Handler) saveCategory(c *gin.Context) {
	saveResource(h, c, func(a *api.API) *api.Categories { return a.Categories })
}

func (h *Handler) adminYearList(c *gin.Context) {
	var opts api.ListOptions
	if err := h.bindQuery(c, &opts); err != nil {
		h.fail(c, err)
		return
	}
	v, err := scopeOf(c).api.Years.List(c.Request.Context(), opts)
	reply(h, c, v, err)
}

func (h *Handler) saveYear(c *gin.Context) {
	saveResource(h, c, func(a *api.API) *api.Years { return a.Years })
}

func saveResource[T, In any](h *Handler, c *gin.Context, pick func(*api.API) *api.Resource[T, In]) {
	id, err := updateID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var in In
	if err := bindBody(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	res, ctx := pick(scopeOf(c).api), c.Request.Context()
	var v *T
	if id == 0 {
		v, err = res.Create(ctx, in)
	} else {
		v, err = res.Update(ctx, id, in)
	}
	reply(h, c, v, err)
}

// Teachers

func (h *Handler) adminTeacherList(c *gin.Context) {
	var f api.TeacherFilter
	if err := h.bindQuery(c, &f); err != nil {
		h.fail(c, err)
		return
	}
	v, err := scopeOf(c).api.Teachers.List(c.Request.Context(), f)
	reply(h, c, v, err)
}

func (h *Handler) adminTeacher(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	v, err := scopeOf(c).api.Teachers.Get(c.Request.Context(), id)
	reply(h, c, v, err)
}

func (h *Handler) saveTeacher(c *gin.Context) {
	id, err := updateID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var in model.TeacherInput
	if err := bindBody(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	photo, done, err := upload(c, "image")
	if err != nil {
		h.fail(c, err)
		return
	}
	defer done()

	teachers, ctx := scopeOf(c).api.Teachers, c.Request.Context()
	var v *model.Teacher
	if id == 0 {
		v, err = teachers.Create(ctx, in, photo)
	} else {
		v, err = teachers.Update(ctx, id, in, photo)
	}
	reply(h, c, v, err)
}
