// Package storage persists uploaded files under a configured root directory
// and hands back the site-relative URL they are served from.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	postsDir = "Posts"
	filesDir = "files"
)

// Characters invalid in file names on either Windows or Unix, plus control
// characters. Stripping the union keeps a directory portable across both.
var invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// FileStore writes uploaded files below root/Posts/files/.
type FileStore struct {
	root string
}

// NewFileStore returns a FileStore rooted at the given directory.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// SaveFile writes data to a uniquely named file derived from suggestedName
// and returns its root-relative URL path. The name gets a time-derived
// suffix for collision resistance and is created with fail-on-exists
// semantics, so a residual collision surfaces as an error instead of
// silently overwriting.
func (f *FileStore) SaveFile(data []byte, suggestedName string) (string, error) {
	suffix := cleanFileName(strconv.FormatInt(time.Now().UTC().UnixNano(), 10))

	base := filepath.Base(suggestedName)
	ext := filepath.Ext(base)
	name := cleanFileName(strings.TrimSuffix(base, ext))
	fileName := name + "_" + suffix + cleanFileName(ext)

	dir := filepath.Join(f.root, postsDir, filesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}

	dst, err := os.OpenFile(filepath.Join(dir, fileName), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", fileName, err)
	}
	if _, err := dst.Write(data); err != nil {
		dst.Close()
		return "", fmt.Errorf("write %s: %w", fileName, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", fileName, err)
	}

	return "/" + postsDir + "/" + filesDir + "/" + fileName, nil
}

// cleanFileName strips characters that cannot appear in file names or paths.
func cleanFileName(s string) string {
	return invalidFileChars.ReplaceAllString(s, "")
}
