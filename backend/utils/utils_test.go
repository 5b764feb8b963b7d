package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"studyproject/backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testsecret", TokenTTLHours: 1}
	token, err := GenerateJWTToken(42, cfg)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/whoami", func(c *fiber.Ctx) error {
		id, err := ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return Unauthorized(c, err.Error())
		}
		return c.JSON(fiber.Map{"user_id": id})
	})

	cases := []struct {
		name   string
		header string
		cookie string
		status int
	}{
		{"bearer header", "Bearer " + token, "", http.StatusOK},
		{"raw header", token, "", http.StatusOK},
		{"cookie", "", token, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tc.cookie})
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}

	other := &config.Config{JWTSecret: "othersecret"}
	forged, err := GenerateJWTToken(42, other)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFlashSurvivesOneRedirect(t *testing.T) {
	app := fiber.New()
	app.Post("/save", func(c *fiber.Ctx) error {
		return RedirectWithFlash(c, "/list", FlashSuccess, "Saved.")
	})
	app.Get("/list", func(c *fiber.Ctx) error {
		return Success(c, fiber.StatusOK, nil)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/save", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/list", resp.Header.Get("Location"))

	var flash *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == flashCookie {
			flash = cookie
		}
	}
	require.NotNil(t, flash)

	req := httptest.NewRequest(http.MethodGet, "/list", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: flash.Value})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)

	var body SuccessResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []FlashMessage{{Level: FlashSuccess, Message: "Saved."}}, body.Messages)

	cleared := false
	for _, cookie := range resp.Cookies() {
		if cookie.Name == flashCookie && cookie.Value == "" {
			cleared = true
		}
	}
	assert.True(t, cleared)

	// A tampered cookie is ignored.
	req = httptest.NewRequest(http.MethodGet, "/list", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: "%%%"})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	body = SuccessResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.Messages)
}

func uploadedFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func TestMediaStore(t *testing.T) {
	store := NewMediaStore(t.TempDir(), "/media/")

	ref, err := store.SaveImage(uploadedFile(t, "Cover.PNG", []byte("png")), "courses")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "courses/"))
	assert.True(t, strings.HasSuffix(ref, ".png"))
	assert.Equal(t, "/media/"+ref, store.FileURL(ref))

	stored, err := os.ReadFile(filepath.Join(store.Root, filepath.FromSlash(ref)))
	require.NoError(t, err)
	assert.Equal(t, "png", string(stored))

	_, err = store.SaveImage(uploadedFile(t, "script.sh", []byte("#!")), "courses")
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	require.NoError(t, store.Remove(ref))
	_, err = os.Stat(filepath.Join(store.Root, filepath.FromSlash(ref)))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Remove(ref))
	assert.NoError(t, store.Remove(""))
	assert.Equal(t, "", store.FileURL(""))
}

func TestMediaStoreFailedWriteLeavesNoFile(t *testing.T) {
	store := NewMediaStore(t.TempDir(), "/media")
	require.NoError(t, os.MkdirAll(filepath.Join(store.Root, "courses"), 0o755))

	broken := io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(errors.New("connection reset")))
	err := store.write("courses/cover.png", broken)
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(store.Root, "courses"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
