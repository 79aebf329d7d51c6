package mockapi

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/eduportal/core/auth/jwt"
	"github.com/kochabx/eduportal/errors"
	middleware "github.com/kochabx/eduportal/middleware/http"
	"github.com/kochabx/eduportal/model"
	"github.com/kochabx/eduportal/validator"
)

var errTokenRevoked = errors.Unauthorized("token revoked")

func (s *Server) routes() {
	authn := s.authenticate()
	admin := []gin.HandlerFunc{authn, s.requireAdmin}
	with := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(admin[:len(admin):len(admin)], h)
	}

	token := s.engine.Group("/api/token")
	token.POST("/", s.login)
	token.POST("/refresh/", s.refresh)
	token.POST("/logout/", s.logout)

	v1 := s.engine.Group("/api/v1")
	v1.GET("/users/me/", authn, s.me)

	about := v1.Group("/about")
	about.GET("/", s.listNews)
	about.GET("/slug/:slug/", s.newsBySlug)
	about.GET("/:id/", s.getNews)
	about.POST("/", with(s.createNews)...)
	about.PUT("/:id/", with(s.updateNews)...)
	about.DELETE("/:id/", with(s.deleteNews)...)

	docs := v1.Group("/documents")
	docs.GET("/document/", s.listDocuments)
	docs.GET("/document/:id/", s.getDocument)
	docs.POST("/document/", with(s.createDocument)...)
	docs.PUT("/document/:id/", with(s.updateDocument)...)
	docs.DELETE("/document/:id/", with(s.deleteDocument)...)

	docs.GET("/category/", s.listCategories)
	docs.GET("/category/:id/", s.getCategory)
	docs.POST("/category/", with(s.createCategory)...)
	docs.PUT("/category/:id/", with(s.updateCategory)...)
	docs.DELETE("/category/:id/", with(s.deleteCategory)...)

	docs.GET("/year/", s.listYears)
	docs.GET("/year/:id/", s.getYear)
	docs.POST("/year/", with(s.createYear)...)
	docs.PUT("/year/:id/", with(s.updateYear)...)
	docs.DELETE("/year/:id/", with(s.deleteYear)...)

	teachers := v1.Group("/teachers")
	teachers.GET("/list/teacher/", s.listTeachers)
	teachers.GET("/detail/teacher/:id/", s.getTeacher)
	teachers.POST("/post/teacher/", with(s.createTeacher)...)
	teachers.PUT("/post/teacher/:id/", with(s.updateTeacher)...)
	teachers.DELETE("/delete/teacher/:id/", with(s.deleteTeacher)...)
}

// authenticate 校验 access token，声明写入 request context
func (s *Server) authenticate() gin.HandlerFunc {
	return middleware.Auth(middleware.AuthConfig[*jwt.Claims]{
		Authenticator: middleware.AuthenticatorFunc[*jwt.Claims](func(_ context.Context, token string) (*jwt.Claims, error) {
			claims, err := s.jwt.Parse(token, jwt.KindAccess)
			if err != nil {
				return nil, err
			}
			if !s.isLive(token, jwt.KindAccess) {
				return nil, errTokenRevoked
			}
			return claims, nil
		}),
		ErrorHandler: func(c *gin.Context, err error) {
			if errors.Is(err, middleware.ErrTokenMissing) {
				detail(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
				return
			}
			detail(c, http.StatusUnauthorized, "Given token not valid for any token type")
		},
		Logger: s.logger,
	})
}

func (s *Server) requireAdmin(c *gin.Context) {
	claims, ok := middleware.GetClaims[*jwt.Claims](c.Request.Context())
	if !ok || model.Role(claims.Role) != model.RoleAdmin {
		detail(c, http.StatusForbidden, "You do not have permission to perform this action.")
		return
	}
	c.Next()
}

func detail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

func fieldErrors(c *gin.Context, fields map[string][]string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"errors": fields})
}

// bind 解析 JSON 或表单请求体并校验，失败时已写入响应
func (s *Server) bind(c *gin.Context, in any) bool {
	if err := c.ShouldBind(in); err != nil {
		detail(c, http.StatusBadRequest, "malformed request body")
		return false
	}
	err := s.validate.StructCtx(c.Request.Context(), in)
	if err == nil {
		return true
	}
	var es validator.Errors
	if !errors.As(err, &es) {
		detail(c, http.StatusBadRequest, err.Error())
		return false
	}
	fields := make(map[string][]string, len(es))
	for _, fe := range es {
		fields[fe.Field] = append(fields[fe.Field], fe.Message)
	}
	fieldErrors(c, fields)
	return false
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		detail(c, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}

// upload 返回上传文件的存放地址，未上传时 ok 为 false
func upload(c *gin.Context, field, dir string) (string, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", false
	}
	return "/media/" + dir + "/" + path.Base(fh.Filename), true
}

// absURL 分页链接使用的绝对地址
func absURL(c *gin.Context) *url.URL {
	u := *c.Request.URL
	u.Scheme = "http"
	if c.Request.TLS != nil {
		u.Scheme = "https"
	}
	u.Host = c.Request.Host
	return &u
}
