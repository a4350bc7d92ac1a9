package files

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadHeader(t *testing.T, field, filename, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	headers := req.MultipartForm.File[field]
	require.Len(t, headers, 1)
	return headers[0]
}

func TestStoreAndDeleteRoundTrip(t *testing.T) {
	store := &AssetStore{Root: t.TempDir()}
	fh := uploadHeader(t, "images", "kitchen.jpg", "jpegbytes")

	url, err := store.Store(OwnerListing, "abc123", fh, "http://localhost:5002")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:5002/uploads/listing/abc123/"))
	assert.True(t, strings.HasSuffix(url, "-kitchen.jpg"))

	abs := store.ResolvePath(url)
	require.NotEmpty(t, abs)
	data, err := os.ReadFile(abs)
	require.NoError(t, err)
	assert.Equal(t, "jpegbytes", string(data))

	store.Delete(url)
	_, err = os.Stat(abs)
	assert.True(t, os.IsNotExist(err))

	// Deleting again is a no-op.
	store.Delete(url)
}

func TestResolvePathConfinedToRoot(t *testing.T) {
	root := t.TempDir()
	store := &AssetStore{Root: root}

	assert.Empty(t, store.ResolvePath(""))
	assert.Empty(t, store.ResolvePath("https://cdn.example.com/image.jpg"))
	assert.Empty(t, store.ResolvePath("/elsewhere/listing/x/file.jpg"))
	assert.Empty(t, store.ResolvePath("/uploads/../../etc/passwd"))

	abs := store.ResolvePath("/uploads/agent/a1/1-logo.png")
	require.NotEmpty(t, abs)
	rootAbs, err := filepath.Abs(root)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(abs, rootAbs+string(filepath.Separator)))
}

func TestDeleteUnresolvableIsNoOp(t *testing.T) {
	store := &AssetStore{Root: t.TempDir()}
	store.Delete("https://cdn.example.com/external.jpg")
	store.Delete("/uploads/../outside.txt")
}
