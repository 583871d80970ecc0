// Package storage puts uploaded images on the local filesystem and maps
// them to the public /uploads paths stored in the database.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const publicPrefix = "/uploads"

type ImageStore struct {
	// Root is the on-disk directory served under /uploads.
	Root string
}

func NewImageStore(root string) *ImageStore {
	return &ImageStore{Root: root}
}

// Save writes one uploaded file under Root/subdir with a random name and
// returns its public path, e.g. "/uploads/categories/<uuid>.jpg".
func (s *ImageStore) Save(file *multipart.FileHeader, subdir string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dir := filepath.Join(s.Root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path.Join(publicPrefix, subdir, name), nil
}

// Remove deletes the file behind a public path. A missing file is not an
// error; the row is already gone and that is what matters.
func (s *ImageStore) Remove(publicPath string) error {
	rel, ok := strings.CutPrefix(publicPath, publicPrefix+"/")
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
