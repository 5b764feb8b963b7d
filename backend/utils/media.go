package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedImage is returned for uploads whose extension is not an image type.
var ErrUnsupportedImage = errors.New("upload a JPG, PNG, GIF or WebP image")

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// MediaStore keeps uploaded files under Root. References handed out are relative
// slash-separated paths such as "courses/<uuid>.png".
type MediaStore struct {
	Root string
	URL  string
}

func NewMediaStore(root, url string) *MediaStore {
	return &MediaStore{Root: root, URL: strings.TrimRight(url, "/")}
}

// SaveImage copies an uploaded image into dir and returns its reference.
func (m *MediaStore) SaveImage(file *multipart.FileHeader, dir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		return "", fmt.Errorf("%w: got %q", ErrUnsupportedImage, ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Join(m.Root, dir), 0o755); err != nil {
		return "", err
	}

	ref := path.Join(dir, uuid.NewString()+ext)
	if err := m.write(ref, src); err != nil {
		return "", err
	}
	return ref, nil
}

// write stores src under ref. A failed write leaves no partial file behind.
func (m *MediaStore) write(ref string, src io.Reader) error {
	name := filepath.Join(m.Root, filepath.FromSlash(ref))
	dst, err := os.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("store %s: %w", ref, err)
	}
	return nil
}

// Remove deletes a stored file. Missing files are not an error.
func (m *MediaStore) Remove(ref string) error {
	if ref == "" {
		return nil
	}
	err := os.Remove(filepath.Join(m.Root, filepath.FromSlash(ref)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// FileURL is the public URL of a stored reference.
func (m *MediaStore) FileURL(ref string) string {
	if ref == "" {
		return ""
	}
	return m.URL + "/" + ref
}
