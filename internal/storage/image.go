// Package storage decodes uploaded recipe images and persists them to the
// local media directory or an S3 bucket.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidImage is returned for payloads that are not base64 image data URIs.
var ErrInvalidImage = errors.New("image must be a base64 data URI")

const imagePrefix = "recipes/images/"

// MaxImageBytes caps a decoded upload.
const MaxImageBytes = 5 << 20

// allowedExts are the image subtypes accepted in uploads, after jpeg is
// folded into jpg.
var allowedExts = map[string]bool{"jpg": true, "png": true, "gif": true, "webp": true}

// ImageStore persists objects under a key and serves them at a public URL.
type ImageStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Image is a decoded upload.
type Image struct {
	Data        []byte
	Ext         string
	ContentType string
}

// IsDataURI reports whether s looks like an inline upload rather than an
// already stored URL.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// DecodeDataURI parses "data:image/<ext>;base64,<payload>".
func DecodeDataURI(s string) (*Image, error) {
	header, payload, ok := strings.Cut(s, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, ErrInvalidImage
	}
	contentType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	ext := strings.TrimPrefix(contentType, "image/")
	if ext == "jpeg" {
		ext = "jpg"
	}
	if !allowedExts[ext] {
		return nil, fmt.Errorf("%w: unsupported image type %q", ErrInvalidImage, contentType)
	}
	if len(payload) > base64.StdEncoding.EncodedLen(MaxImageBytes) {
		return nil, fmt.Errorf("%w: image is larger than %d bytes", ErrInvalidImage, MaxImageBytes)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return nil, ErrInvalidImage
	}
	return &Image{Data: data, Ext: ext, ContentType: contentType}, nil
}

// NewImageKey returns a fresh object key for an image with extension ext.
func NewImageKey(ext string) string {
	return imagePrefix + uuid.NewString() + "." + ext
}

// SaveDataURI decodes s and stores it under a fresh key, returning the
// public URL and the key.
func SaveDataURI(ctx context.Context, store ImageStore, s string) (url, key string, err error) {
	img, err := DecodeDataURI(s)
	if err != nil {
		return "", "", err
	}
	key = NewImageKey(img.Ext)
	url, err = store.Save(ctx, key, img.Data, img.ContentType)
	if err != nil {
		return "", "", err
	}
	return url, key, nil
}

// LocalStore writes objects under a media root served at baseURL.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) *LocalStore {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStore{root: root, baseURL: baseURL}
}

func (s *LocalStore) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	target := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return s.baseURL + path.Clean(key), nil
}

// Delete removes the object at key. A missing object is not an error.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// Root returns the directory objects are written to.
func (s *LocalStore) Root() string {
	return s.root
}
