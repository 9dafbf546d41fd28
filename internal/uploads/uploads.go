package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"bakery-api/config"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Subdirectories under the uploads root
const (
	AvatarsDir  = "avatars"
	ProductsDir = "products"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrForeignURL      = errors.New("url does not point into uploads")
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Storage keeps uploaded images on the local filesystem
type Storage struct {
	dir        string
	publicPath string
	baseURL    string
	now        func() time.Time
}

// NewStorage creates the upload directories if they do not exist
func NewStorage(cfg config.UploadsConfig, baseURL string) (*Storage, error) {
	for _, sub := range []string{AvatarsDir, ProductsDir} {
		if err := os.MkdirAll(filepath.Join(cfg.Dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload dir: %w", err)
		}
	}
	return &Storage{
		dir:        cfg.Dir,
		publicPath: "/" + strings.Trim(cfg.PublicPath, "/"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
	}, nil
}

// Dir is the filesystem root served under PublicPath
func (s *Storage) Dir() string {
	return s.dir
}

// PublicPath is the URL prefix uploaded files are served under
func (s *Storage) PublicPath() string {
	return s.publicPath
}

// Save writes file into subdir and returns its public URL. A non-empty label
// is slugified into the filename.
func (s *Storage) Save(file *multipart.FileHeader, subdir, label string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExt[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	name := s.filename(label, ext)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, subdir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return s.baseURL + path.Join(s.publicPath, subdir, name), nil
}

// Remove deletes a file previously returned by Save
func (s *Storage) Remove(url string) error {
	rel := strings.TrimPrefix(url, s.baseURL+s.publicPath+"/")
	if rel == url || rel == "" {
		return fmt.Errorf("%w: %q", ErrForeignURL, url)
	}
	rel = path.Clean(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") || path.IsAbs(rel) {
		return fmt.Errorf("%w: %q", ErrForeignURL, url)
	}
	return os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel)))
}

func (s *Storage) filename(label, ext string) string {
	unique := fmt.Sprintf("%d-%s", s.now().UnixNano(), uuid.NewString()[:8])
	if label = slug.Make(label); label != "" {
		return label + "-" + unique + ext
	}
	return unique + ext
}
