package routes

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"studyproject/backend/config"
	"studyproject/backend/models"
	"studyproject/backend/testutil"
	"studyproject/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.DB(t)
	cfg := testutil.Config(t)
	app := fiber.New()
	SetupRoutes(app, db, cfg, testutil.Logger(t))
	return &testServer{app: app, db: db, cfg: cfg}
}

func (s *testServer) user(t *testing.T, username string, superuser bool) (models.User, string) {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com", PasswordHash: "x", IsSuperuser: superuser}
	require.NoError(t, s.db.Create(&u).Error)
	token, err := utils.GenerateJWTToken(u.ID, s.cfg)
	require.NoError(t, err)
	return u, token
}

func (s *testServer) course(t *testing.T, title, slug string, published bool) models.Course {
	t.Helper()
	category := models.Category{Name: "Cat " + slug, Slug: "cat-" + slug}
	require.NoError(t, s.db.Create(&category).Error)
	c := models.Course{
		Title:       title,
		Slug:        slug,
		Description: "About " + title,
		CategoryID:  category.ID,
		Difficulty:  models.DifficultyBeginner,
		IsPublished: published,
	}
	require.NoError(t, s.db.Create(&c).Error)
	return c
}

func (s *testServer) do(t *testing.T, method, target, token string, form url.Values) *http.Response {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func flashOf(t *testing.T, resp *http.Response) []utils.FlashMessage {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name != "flash" || cookie.Value == "" {
			continue
		}
		raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
		require.NoError(t, err)
		var messages []utils.FlashMessage
		require.NoError(t, json.Unmarshal(raw, &messages))
		return messages
	}
	return nil
}

func TestHomePage(t *testing.T) {
	s := newTestServer(t)
	s.course(t, "Go Basics", "go-basics", true)

	resp := s.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decode(t, resp)["data"].(map[string]interface{})
	stats := data["stats"].(map[string]interface{})
	students := stats["total_students"].(map[string]interface{})
	assert.Equal(t, "1000+", students["display"])
	courses := stats["total_courses"].(map[string]interface{})
	assert.Equal(t, "1+", courses["display"])
	assert.Len(t, data["popular_courses"], 1)
}

func TestStaticPages(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/about", "/contacts/"} {
		resp := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestCourseCatalog(t *testing.T) {
	s := newTestServer(t)
	s.course(t, "Go Basics", "go-basics", true)
	s.course(t, "Draft", "draft", false)

	resp := s.do(t, http.MethodGet, "/courses/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decode(t, resp)["data"].(map[string]interface{})
	assert.Len(t, data["courses"], 1)

	resp = s.do(t, http.MethodGet, "/courses/go-basics/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, false, detail["is_enrolled"])

	resp = s.do(t, http.MethodGet, "/courses/draft/", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/courses/category/cat-go-basics/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/courses/category/nope/", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEnrollFlow(t *testing.T) {
	s := newTestServer(t)
	course := s.course(t, "Go Basics", "go-basics", true)
	_, token := s.user(t, "ann", false)
	enroll := "/courses/" + strconv.Itoa(int(course.ID)) + "/enroll/"

	resp := s.do(t, http.MethodPost, enroll, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, http.MethodPost, enroll, token, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/courses/go-basics/", resp.Header.Get("Location"))
	flash := flashOf(t, resp)
	require.Len(t, flash, 1)
	assert.Equal(t, utils.FlashSuccess, flash[0].Level)

	resp = s.do(t, http.MethodPost, enroll, token, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	flash = flashOf(t, resp)
	require.Len(t, flash, 1)
	assert.Equal(t, utils.FlashInfo, flash[0].Level)

	var n int64
	require.NoError(t, s.db.Model(&models.Enrollment{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	resp = s.do(t, http.MethodGet, "/courses/go-basics/", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, true, detail["is_enrolled"])
}

func TestReviewFlow(t *testing.T) {
	s := newTestServer(t)
	course := s.course(t, "Go Basics", "go-basics", true)
	_, token := s.user(t, "ann", false)
	review := "/courses/" + strconv.Itoa(int(course.ID)) + "/review/"

	resp := s.do(t, http.MethodPost, review, token, url.Values{"rating": {"7"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = s.do(t, http.MethodPost, review, token, url.Values{"rating": {"4"}, "comment": {"Good"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "Thank you for your review!", flashOf(t, resp)[0].Message)

	resp = s.do(t, http.MethodPost, review, token, url.Values{"rating": {"5"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "Your review has been updated.", flashOf(t, resp)[0].Message)

	var n int64
	require.NoError(t, s.db.Model(&models.Review{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestAdminPanelRequiresSuperuser(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user(t, "ann", false)

	for _, tok := range []string{"", token} {
		resp := s.do(t, http.MethodGet, "/admin-panel/", tok, nil)
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
		flash := flashOf(t, resp)
		require.Len(t, flash, 1)
		assert.Equal(t, utils.FlashError, flash[0].Level)
	}
}

func TestAdminCreatesCourse(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user(t, "root", true)
	category := models.Category{Name: "Programming", Slug: "programming"}
	require.NoError(t, s.db.Create(&category).Error)

	resp := s.do(t, http.MethodPost, "/admin-panel/", token, url.Values{
		"title":        {"Go Basics"},
		"description":  {"Learn Go"},
		"category":     {strconv.Itoa(int(category.ID))},
		"price":        {"10.50"},
		"is_published": {"on"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin-panel/", resp.Header.Get("Location"))

	var course models.Course
	require.NoError(t, s.db.Where("slug = ?", "go-basics").First(&course).Error)
	assert.True(t, course.IsPublished)
	assert.Equal(t, 10.5, course.Price)

	resp = s.do(t, http.MethodPost, "/admin-panel/", token, url.Values{
		"title":    {"  "},
		"category": {strconv.Itoa(int(category.ID))},
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode(t, resp)
	errs := body["errors"].(map[string]interface{})
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "description")
	assert.NotNil(t, body["form_data"])

	resp = s.do(t, http.MethodGet, "/admin-panel/edit/"+strconv.Itoa(int(course.ID))+"/", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	form := decode(t, resp)["data"].(map[string]interface{})["form_data"].(map[string]interface{})
	assert.Equal(t, "10.50", form["price"])

	resp = s.do(t, http.MethodGet, "/admin-panel/courses/"+strconv.Itoa(int(course.ID))+"/analytics/", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/admin-panel/delete/"+strconv.Itoa(int(course.ID))+"/", token, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	var n int64
	require.NoError(t, s.db.Model(&models.Course{}).Count(&n).Error)
	assert.Equal(t, int64(0), n)
}

func TestAdminSampleCourses(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user(t, "root", true)

	resp := s.do(t, http.MethodPost, "/admin-panel/sample-courses/", token, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, utils.FlashSuccess, flashOf(t, resp)[0].Level)

	resp = s.do(t, http.MethodPost, "/admin-panel/sample-courses/", token, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, utils.FlashInfo, flashOf(t, resp)[0].Level)
}

func TestCategoryDeleteBlocked(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user(t, "root", true)
	course := s.course(t, "Go Basics", "go-basics", true)

	resp := s.do(t, http.MethodPost, "/admin-panel/manage-categories/delete/"+strconv.Itoa(int(course.CategoryID))+"/", token, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin-panel/manage-categories/", resp.Header.Get("Location"))
	flash := flashOf(t, resp)
	require.Len(t, flash, 1)
	assert.Equal(t, utils.FlashError, flash[0].Level)
	assert.Contains(t, flash[0].Message, "1 course(s)")

	resp = s.do(t, http.MethodPost, "/admin-panel/manage-categories/", token, url.Values{"name": {"Cat go-basics"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/admin-panel/manage-categories/", token, url.Values{"name": {"Design"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	var design models.Category
	require.NoError(t, s.db.Where("slug = ?", "design").First(&design).Error)

	resp = s.do(t, http.MethodPost, "/admin-panel/manage-categories/delete/"+strconv.Itoa(int(design.ID))+"/", token, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, utils.FlashSuccess, flashOf(t, resp)[0].Level)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/auth/register/", "", url.Values{
		"username": {"ann"},
		"email":    {"ann@example.com"},
		"password": {"password123"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/auth/login/", "", url.Values{"username": {"ann"}, "password": {"wrong-pass"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/auth/login/", "", url.Values{"username": {"ann"}, "password": {"password123"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session string
	for _, cookie := range resp.Cookies() {
		if cookie.Name == utils.TokenCookie {
			session = cookie.Value
		}
	}
	require.NotEmpty(t, session)

	req := httptest.NewRequest(http.MethodGet, "/account/profile/", nil)
	req.AddCookie(&http.Cookie{Name: utils.TokenCookie, Value: session})
	profile, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, profile.StatusCode)
}
