package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/2beens/gymtrack/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// URLPathPrefix is the public path under which saved images are served.
// Stored image paths look like /uploads/<name> and the name maps directly
// to a file in the store's root directory.
const URLPathPrefix = "/uploads/"

var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

// AllowedFile reports whether the filename carries a supported image
// extension.
func AllowedFile(filename string) bool {
	_, ok := allowedExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Store keeps uploaded exercise images as plain files in a single flat
// directory. Filenames are sanitized and made unique on save, so callers
// can upload the same original name repeatedly.
type Store struct {
	rootPath string
}

func NewStore(rootPath string) (*Store, error) {
	if rootPath == "" {
		return nil, errors.New("root path cannot be empty")
	}
	if err := os.MkdirAll(rootPath, 0755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{
		rootPath: rootPath,
	}, nil
}

// Save writes the image to disk and returns its public URL path
// (/uploads/<name>).
func (s *Store) Save(ctx context.Context, filename string, src io.Reader) (_ string, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "uploads.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("file.name", filename))

	if !AllowedFile(filename) {
		return "", fmt.Errorf("file type not allowed: %s", filename)
	}

	newFileName := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeFilename(filename))
	newFilePath := path.Join(s.rootPath, newFileName)

	dst, err := os.Create(newFilePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		if removeErr := os.Remove(newFilePath); removeErr != nil {
			log.Errorf("failed to remove file after failed write: %s", removeErr)
		}
		return "", err
	}

	log.Debugf("uploads: saved new image: %s", newFileName)
	return URLPathPrefix + newFileName, nil
}

// Delete removes the file behind the given public URL path. A missing file
// is not an error.
func (s *Store) Delete(ctx context.Context, urlPath string) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "uploads.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("file.path", urlPath))

	name := strings.TrimPrefix(urlPath, URLPathPrefix)
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid image path: %s", urlPath)
	}

	if err := os.Remove(path.Join(s.rootPath, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// HandleServe serves a stored image over HTTP.
func (s *Store) HandleServe(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["filename"]
	if name == "" || name != filepath.Base(name) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path.Join(s.rootPath, name))
}

// sanitizeFilename keeps letters, digits, dots, dashes and underscores and
// drops everything else, including any directory part.
func sanitizeFilename(filename string) string {
	base := filepath.Base(filename)
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
