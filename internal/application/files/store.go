package files

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Owner types scoping the on-disk layout: uploads/{ownerType}/{ownerId}/...
const (
	OwnerListing = "listing"
	OwnerAgent   = "agent"
)

const webPrefix = "/uploads/"

// AssetStore persists uploaded bytes under an owner-scoped directory tree and
// maps each stored file to a public URL. Deletion is traversal-safe and
// best-effort: cleanup is hygiene, never a correctness-blocking concern.
type AssetStore struct {
	Root string // uploads root directory
}

// Store writes one uploaded file to uploads/{ownerType}/{ownerID}/ and
// returns its public URL. The stored name is prefixed with the current
// millisecond timestamp to avoid collisions.
func (s *AssetStore) Store(ownerType, ownerID string, fh *multipart.FileHeader, baseURL string) (string, error) {
	dir := filepath.Join(s.Root, ownerType, ownerID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(fh.Filename))

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}

	return strings.TrimRight(baseURL, "/") + webPrefix + path.Join(ownerType, ownerID, name), nil
}

// ResolvePath maps a public URL (or raw /uploads/... path) back to an
// absolute filesystem path strictly confined to the uploads root. Returns ""
// when the input is not an uploads URL or the resolved path escapes the root.
func (s *AssetStore) ResolvePath(urlish string) string {
	if urlish == "" {
		return ""
	}

	pathname := urlish
	if u, err := url.Parse(urlish); err == nil && u.Path != "" {
		pathname = u.Path
	}

	if !strings.HasPrefix(pathname, webPrefix) {
		return ""
	}
	rel := strings.TrimPrefix(pathname, webPrefix)

	root, err := filepath.Abs(s.Root)
	if err != nil {
		return ""
	}
	abs := filepath.Clean(filepath.Join(root, filepath.FromSlash(rel)))
	if !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return ""
	}
	return abs
}

// Delete unlinks the file behind a public URL. Missing files and
// unresolvable URLs are no-ops; any other failure is logged and swallowed so
// cleanup never fails the caller's primary operation.
func (s *AssetStore) Delete(urlish string) {
	abs := s.ResolvePath(urlish)
	if abs == "" {
		return
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", abs).Err(err).Msg("unlink warning")
	}
}
