package mockapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/eduportal/model"
)

var now = time.Now

func respond[T any](c *gin.Context, v T, ok bool) {
	if !ok {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}
	c.JSON(http.StatusOK, v)
}

func remove[T any](c *gin.Context, col *collection[T]) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if !col.delete(id) {
		detail(c, http.StatusNotFound, "Not found.")
		return
	}
	c.Status(http.StatusNoContent)
}

func get[T any](c *gin.Context, col *collection[T]) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	v, ok := col.get(id)
	respond(c, v, ok)
}

// slugify lowercases s and folds every run of non-alphanumerics into "-".
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// News

func (s *Server) listNews(c *gin.Context) {
	c.JSON(http.StatusOK, paginate(s.news.list(nil), absURL(c)))
}

func (s *Server) getNews(c *gin.Context) {
	get(c, s.news)
}

func (s *Server) newsBySlug(c *gin.Context) {
	slug := c.Param("slug")
	v, ok := s.news.find(func(n model.News) bool { return n.Slug == slug })
	respond(c, v, ok)
}

func (s *Server) slugTaken(slug string, except int64) bool {
	_, taken := s.news.find(func(n model.News) bool { return n.Slug == slug && n.ID != except })
	return taken
}

func (s *Server) createNews(c *gin.Context) {
	var in model.NewsInput
	if !s.bind(c, &in) {
		return
	}
	slug := in.Slug
	if slug == "" {
		slug = slugify(in.Title)
	}
	if s.slugTaken(slug, 0) {
		fieldErrors(c, map[string][]string{"slug": {"news with this slug already exists."}})
		return
	}
	image, _ := upload(c, "image", "news")
	ts := now()
	c.JSON(http.StatusCreated, s.news.create(model.News{
		Title:     in.Title,
		Content:   in.Content,
		Slug:      slug,
		Image:     image,
		CreatedAt: ts,
		UpdatedAt: ts,
	}))
}

func (s *Server) updateNews(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in model.NewsInput
	if !s.bind(c, &in) {
		return
	}
	if in.Slug != "" && s.slugTaken(in.Slug, id) {
		fieldErrors(c, map[string][]string{"slug": {"news with this slug already exists."}})
		return
	}
	image, replaced := upload(c, "image", "news")
	v, ok := s.news.update(id, func(n *model.News) bool {
		n.Title, n.Content = in.Title, in.Content
		if in.Slug != "" {
			n.Slug = in.Slug
		}
		if replaced {
			n.Image = image
		}
		n.UpdatedAt = now()
		return true
	})
	respond(c, v, ok)
}

func (s *Server) deleteNews(c *gin.Context) {
	remove(c, s.news)
}

// Documents

func (s *Server) listDocuments(c *gin.Context) {
	category := int64(queryInt(c.Request.URL.Query(), "category", 0))
	year := int64(queryInt(c.Request.URL.Query(), "year", 0))
	docs := s.documents.list(func(d model.Document) bool {
		return (category == 0 || d.CategoryID == category) && (year == 0 || d.YearID == year)
	})
	c.JSON(http.StatusOK, paginate(docs, absURL(c)))
}

func (s *Server) getDocument(c *gin.Context) {
	get(c, s.documents)
}

// checkRefs reports whether the category and year of a document exist.
func (s *Server) checkRefs(c *gin.Context, in model.DocumentInput) bool {
	fields := map[string][]string{}
	if _, ok := s.categories.get(in.CategoryID); !ok {
		fields["categoryId"] = []string{"Invalid pk \"" + strconv.FormatInt(in.CategoryID, 10) + "\" - object does not exist."}
	}
	if _, ok := s.years.get(in.YearID); !ok {
		fields["yearId"] = []string{"Invalid pk \"" + strconv.FormatInt(in.YearID, 10) + "\" - object does not exist."}
	}
	if len(fields) > 0 {
		fieldErrors(c, fields)
		return false
	}
	return true
}

func (s *Server) createDocument(c *gin.Context) {
	var in model.DocumentInput
	if !s.bind(c, &in) || !s.checkRefs(c, in) {
		return
	}
	file, ok := upload(c, "file", "documents")
	if !ok {
		fieldErrors(c, map[string][]string{"file": {"No file was submitted."}})
		return
	}
	ts := now()
	c.JSON(http.StatusCreated, s.documents.create(model.Document{
		Title:       in.Title,
		Description: in.Description,
		File:        file,
		CategoryID:  in.CategoryID,
		YearID:      in.YearID,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}))
}

func (s *Server) updateDocument(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in model.DocumentInput
	if !s.bind(c, &in) || !s.checkRefs(c, in) {
		return
	}
	file, replaced := upload(c, "file", "documents")
	v, ok := s.documents.update(id, func(d *model.Document) bool {
		d.Title, d.Description = in.Title, in.Description
		d.CategoryID, d.YearID = in.CategoryID, in.YearID
		if replaced {
			d.File = file
		}
		d.UpdatedAt = now()
		return true
	})
	respond(c, v, ok)
}

func (s *Server) deleteDocument(c *gin.Context) {
	remove(c, s.documents)
}

// Categories

func (s *Server) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, paginate(s.categories.list(nil), absURL(c)))
}

func (s *Server) getCategory(c *gin.Context) {
	get(c, s.categories)
}

func (s *Server) createCategory(c *gin.Context) {
	var in model.CategoryInput
	if !s.bind(c, &in) {
		return
	}
	c.JSON(http.StatusCreated, s.categories.create(model.DocumentCategory{Name: in.Name, Description: in.Description}))
}

func (s *Server) updateCategory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in model.CategoryInput
	if !s.bind(c, &in) {
		return
	}
	v, ok := s.categories.update(id, func(d *model.DocumentCategory) bool {
		d.Name, d.Description = in.Name, in.Description
		return true
	})
	respond(c, v, ok)
}

// deleteCategory refuses categories still referenced by documents.
func (s *Server) deleteCategory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if _, used := s.documents.find(func(d model.Document) bool { return d.CategoryID == id }); used {
		detail(c, http.StatusConflict, "Category is referenced by documents.")
		return
	}
	remove(c, s.categories)
}

// Years

func (s *Server) listYears(c *gin.Context) {
	c.JSON(http.StatusOK, paginate(s.years.list(nil), absURL(c)))
}

func (s *Server) getYear(c *gin.Context) {
	get(c, s.years)
}

func (s *Server) createYear(c *gin.Context) {
	var in model.YearInput
	if !s.bind(c, &in) {
		return
	}
	c.JSON(http.StatusCreated, s.years.create(model.EducationYear{Name: in.Name, IsActive: in.IsActive}))
}

func (s *Server) updateYear(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in model.YearInput
	if !s.bind(c, &in) {
		return
	}
	v, ok := s.years.update(id, func(y *model.EducationYear) bool {
		y.Name, y.IsActive = in.Name, in.IsActive
		return true
	})
	respond(c, v, ok)
}

func (s *Server) deleteYear(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if _, used := s.documents.find(func(d model.Document) bool { return d.YearID == id }); used {
		detail(c, http.StatusConflict, "Education year is referenced by documents.")
		return
	}
	remove(c, s.years)
}

// Teachers

func (s *Server) listTeachers(c *gin.Context) {
	department := c.Query("department")
	teachers := s.teachers.list(func(t model.Teacher) bool {
		return department == "" || strings.EqualFold(t.Department, department)
	})
	c.JSON(http.StatusOK, paginate(teachers, absURL(c)))
}

func (s *Server) getTeacher(c *gin.Context) {
	get(c, s.teachers)
}

func (s *Server) createTeacher(c *gin.Context) {
	var in model.TeacherInput
	if !s.bind(c, &in) {
		return
	}
	image, _ := upload(c, "image", "teachers")
	c.JSON(http.StatusCreated, s.teachers.create(model.Teacher{
		FullName:   in.FullName,
		Position:   in.Position,
		Department: in.Department,
		Bio:        in.Bio,
		Email:      in.Email,
		Phone:      in.Phone,
		Image:      image,
	}))
}

func (s *Server) updateTeacher(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in model.TeacherInput
	if !s.bind(c, &in) {
		return
	}
	image, replaced := upload(c, "image", "teachers")
	v, ok := s.teachers.update(id, func(t *model.Teacher) bool {
		t.FullName, t.Position, t.Department = in.FullName, in.Position, in.Department
		t.Bio, t.Email, t.Phone = in.Bio, in.Email, in.Phone
		if replaced {
			t.Image = image
		}
		return true
	})
	respond(c, v, ok)
}

func (s *Server) deleteTeacher(c *gin.Context) {
	remove(c, s.teachers)
}
