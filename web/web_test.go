package web

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/eduportal/core/auth/jwt"
	"github.com/kochabx/eduportal/mockapi"
	"github.com/kochabx/eduportal/model"
	"github.com/kochabx/eduportal/store/cookie"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code     int               `json:"code"`
	Msg      string            `json:"msg"`
	Data     json.RawMessage   `json:"data"`
	Metadata map[string]string `json:"metadata"`
}

type browser struct {
	t    *testing.T
	base string
	http *http.Client
}

func (b *browser) do(method, path string, body io.Reader, header map[string]string) *http.Response {
	b.t.Helper()
	req, err := http.NewRequest(method, b.base+path, body)
	require.NoError(b.t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := b.http.Do(req)
	require.NoError(b.t, err)
	b.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (b *browser) get(path string) *http.Response {
	return b.do(http.MethodGet, path, nil, nil)
}

func (b *browser) json(method, path string, v any) *http.Response {
	data, err := json.Marshal(v)
	require.NoError(b.t, err)
	return b.do(method, path, bytes.NewReader(data), map[string]string{"Content-Type": "application/json"})
}

func (b *browser) login(username string) {
	b.t.Helper()
	resp := b.json(http.MethodPost, "/auth/login", model.Credentials{Username: username, Password: username})
	require.Equal(b.t, http.StatusOK, resp.StatusCode)
}

func read(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func data[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(read(t, resp).Data, &v))
	return v
}

type fixture struct {
	mock     *mockapi.Server
	registry *prometheus.Registry
	browser  *browser
}

func newFixture(t *testing.T, store func(Config) SessionStore) *fixture {
	t.Helper()
	j, err := jwt.New(jwt.Config{Secret: "web-test-secret-0123456789abcdef"})
	require.NoError(t, err)
	mock := mockapi.New(j, mockapi.WithSeed())
	upstream := httptest.NewServer(mock.Handler())
	t.Cleanup(upstream.Close)

	cfg := Config{BaseURL: upstream.URL, SingleFlight: true}
	reg := prometheus.NewRegistry()
	h, err := New(cfg, store(cfg), WithRegisterer(reg))
	require.NoError(t, err)
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &fixture{
		mock:     mock,
		registry: reg,
		browser: &browser{t: t, base: srv.URL, http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}},
	}
}

func cookies(Config) SessionStore {
	return CookieStore{}
}

func memory(Config) SessionStore {
	return NewMemoryStore("eduportal_sid", cookie.Config{}, 0)
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "not a url"}, CookieStore{})
	assert.Error(t, err)
	_, err = New(Config{BaseURL: "http://localhost"}, nil)
	assert.Error(t, err)
}

func TestLocaleRedirect(t *testing.T) {
	b := newFixture(t, cookies).browser

	resp := b.do(http.MethodGet, "/news?page=2", nil, map[string]string{"Accept-Language": "ru-RU,ru;q=0.9"})
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/ru/news?page=2", resp.Header.Get("Location"))

	resp = b.get("/")
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/en/", resp.Header.Get("Location"))
}

func TestPublicPages(t *testing.T) {
	b := newFixture(t, cookies).browser

	resp := b.get("/uz/news")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := data[struct {
		Locale string                  `json:"locale"`
		Page   string                  `json:"page"`
		Data   model.Page[model.News] `json:"data"`
	}](t, resp)
	assert.Equal(t, "uz", page.Locale)
	assert.Equal(t, "news", page.Page)
	assert.Equal(t, 3, page.Data.Count)

	resp = b.get("/en/news/admission-campaign-opens")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = b.get("/en/news/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = b.get("/en/teachers?department=Physics")
	teachers := data[struct {
		Data model.Page[model.Teacher] `json:"data"`
	}](t, resp)
	assert.Equal(t, 1, teachers.Data.Count)

	resp = b.get("/en/teachers/abc")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = b.get("/ru/education?category=1")
	edu := data[struct {
		Data EducationView `json:"data"`
	}](t, resp)
	assert.Equal(t, 2, edu.Data.Documents.Count)
	assert.Equal(t, 2, edu.Data.Categories.Count)
	assert.Equal(t, 2, edu.Data.Years.Count)

	resp = b.get("/en/news?limit=1000")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = b.get("/en/about")
	assert.Equal(t, "about", data[Page](t, resp).Page)

	b.login("admin")
	resp = b.json(http.MethodPost, "/admin/news", model.NewsInput{Title: "Новости вуза", Content: "Приём"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := data[model.News](t, resp)
	require.Equal(t, "новости-вуза", created.Slug)

	resp = b.get("/ru/news/" + url.PathEscape(created.Slug))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, data[struct {
		Data model.News `json:"data"`
	}](t, resp).Data.ID)
}

func TestLoginLogout(t *testing.T) {
	b := newFixture(t, cookies).browser

	resp := b.get("/admin/news")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth", resp.Header.Get("Location"))

	resp = b.json(http.MethodPost, "/auth/login", model.Credentials{Username: "admin", Password: "admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.RoleAdmin, data[model.User](t, resp).Role)

	resp = b.get("/auth/me")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "admin", data[model.User](t, resp).Username)

	resp = b.get("/admin/news")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = b.do(http.MethodPost, "/auth/logout", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = b.get("/admin/news")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	resp = b.get("/auth/me")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginErrors(t *testing.T) {
	b := newFixture(t, cookies).browser

	resp := b.json(http.MethodPost, "/auth/login", model.Credentials{Username: "admin", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = b.do(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin"}`),
		map[string]string{"Content-Type": "application/json", "Accept-Language": "ru"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, read(t, resp).Metadata, "password")
}

func TestRoleGuard(t *testing.T) {
	b := newFixture(t, memory).browser
	b.login("teacher")

	resp := b.get("/admin/news")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp = b.json(http.MethodPost, "/admin/news", model.NewsInput{Title: "x", Content: "y"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = b.get("/profile")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.RoleTeacher, data[model.User](t, resp).Role)

	resp = b.get("/profile/docs?year=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, data[EducationView](t, resp).Documents.Count)
}

func TestAdminCRUD(t *testing.T) {
	b := newFixture(t, memory).browser
	b.login("admin")

	resp := b.json(http.MethodPost, "/admin/documents/categories", model.CategoryInput{Name: "Orders"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cat := data[model.DocumentCategory](t, resp)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Order 7"))
	require.NoError(t, mw.WriteField("categoryId", "3"))
	require.NoError(t, mw.WriteField("yearId", "1"))
	part, err := mw.CreateFormFile("file", "order-7.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF"))
	require.NoError(t, mw.Close())

	resp = b.do(http.MethodPost, "/admin/documents", &body, map[string]string{"Content-Type": mw.FormDataContentType()})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := data[model.Document](t, resp)
	assert.Equal(t, cat.ID, doc.CategoryID)
	assert.Equal(t, "/media/documents/order-7.pdf", doc.File)

	resp = b.json(http.MethodPost, "/admin/news", model.NewsInput{Content: "untitled"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = b.json(http.MethodPut, "/admin/documents/years/1", model.YearInput{Name: "2024/25"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2024/25", data[model.EducationYear](t, resp).Name)

	resp = b.do(http.MethodDelete, "/admin/documents/1", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = b.get("/admin/documents/1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = b.json(http.MethodPut, "/admin/teachers/2", model.TeacherInput{FullName: "Bobur Tursunov", Position: "Professor", Department: "Physics"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Professor", data[model.Teacher](t, resp).Position)
}

func TestTransparentRefresh(t *testing.T) {
	f := newFixture(t, cookies)
	f.browser.login("admin")

	f.mock.ExpireAccessTokens()
	resp := f.browser.get("/profile")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), f.mock.Refreshes())

	// the refreshed token went back to the browser
	resp = f.browser.get("/profile")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), f.mock.Refreshes())
}

func TestSessionLossRedirects(t *testing.T) {
	f := newFixture(t, memory)
	f.browser.login("admin")

	f.mock.ExpireAccessTokens()
	f.mock.RevokeRefreshTokens()
	resp := f.browser.json(http.MethodPost, "/admin/documents/categories", model.CategoryInput{Name: "Orders"})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth", resp.Header.Get("Location"))

	resp = f.browser.get("/profile")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	resp = f.browser.get("/auth/me")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	f := newFixture(t, cookies)
	f.browser.get("/en/news")
	f.browser.get("/en/teachers")

	n, err := testutil.GatherAndCount(f.registry, "eduportal_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = testutil.GatherAndCount(f.registry, "eduportal_client_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIDStore(t *testing.T) {
	store := NewMemoryStore("sid", cookie.Config{Prefix: "edu_"}, 0)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(&http.Cookie{Name: "edu_sid", Value: "../../etc"})
	_, err := store.Open(c)
	require.NoError(t, err)

	issued := w.Result().Cookies()
	require.Len(t, issued, 1)
	assert.Equal(t, "edu_sid", issued[0].Name)
	assert.NotEqual(t, "../../etc", issued[0].Value)
	assert.True(t, issued[0].HttpOnly)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(issued[0])
	_, err = store.Open(c)
	require.NoError(t, err)
	assert.Empty(t, w.Result().Cookies())
}
