package uploads_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/2beens/gymtrack/internal/uploads"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedFile(t *testing.T) {
	assert.True(t, uploads.AllowedFile("squat.png"))
	assert.True(t, uploads.AllowedFile("squat.JPG"))
	assert.True(t, uploads.AllowedFile("squat.jpeg"))
	assert.True(t, uploads.AllowedFile("squat.gif"))
	assert.False(t, uploads.AllowedFile("squat.pdf"))
	assert.False(t, uploads.AllowedFile("squat"))
	assert.False(t, uploads.AllowedFile(""))
}

func TestStore_Save(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := uploads.NewStore(root)
	require.NoError(t, err)

	imagePath, err := store.Save(ctx, "squat.png", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(imagePath, "/uploads/"))
	assert.True(t, strings.HasSuffix(imagePath, "_squat.png"))

	onDisk := filepath.Join(root, strings.TrimPrefix(imagePath, "/uploads/"))
	content, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(content))

	// same original name saves under a fresh unique name
	imagePath2, err := store.Save(ctx, "squat.png", strings.NewReader("other-bytes"))
	require.NoError(t, err)
	assert.NotEqual(t, imagePath, imagePath2)
}

func TestStore_Save_notAllowed(t *testing.T) {
	store, err := uploads.NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "malware.exe", strings.NewReader("nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed")
}

func TestStore_Save_sanitizesName(t *testing.T) {
	root := t.TempDir()
	store, err := uploads.NewStore(root)
	require.NoError(t, err)

	imagePath, err := store.Save(context.Background(), "../../etc/my pic!.png", strings.NewReader("img"))
	require.NoError(t, err)

	name := strings.TrimPrefix(imagePath, "/uploads/")
	assert.NotContains(t, name, "/")
	assert.NotContains(t, name, " ")
	assert.True(t, strings.HasSuffix(name, "mypic.png"))

	_, err = os.Stat(filepath.Join(root, name))
	require.NoError(t, err)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := uploads.NewStore(root)
	require.NoError(t, err)

	imagePath, err := store.Save(ctx, "squat.png", strings.NewReader("img"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, imagePath))
	_, err = os.Stat(filepath.Join(root, strings.TrimPrefix(imagePath, "/uploads/")))
	assert.True(t, os.IsNotExist(err))

	// deleting again is fine
	require.NoError(t, store.Delete(ctx, imagePath))

	// path traversal is rejected
	require.Error(t, store.Delete(ctx, "/uploads/../secret"))
}

func TestStore_HandleServe(t *testing.T) {
	ctx := context.Background()
	store, err := uploads.NewStore(t.TempDir())
	require.NoError(t, err)

	imagePath, err := store.Save(ctx, "squat.png", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	name := strings.TrimPrefix(imagePath, "/uploads/")

	req := httptest.NewRequest("GET", imagePath, nil)
	req = mux.SetURLVars(req, map[string]string{"filename": name})
	rec := httptest.NewRecorder()
	store.HandleServe(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image-bytes", rec.Body.String())

	req = httptest.NewRequest("GET", "/uploads/unknown.png", nil)
	req = mux.SetURLVars(req, map[string]string{"filename": "unknown.png"})
	rec = httptest.NewRecorder()
	store.HandleServe(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
