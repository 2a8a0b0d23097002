package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore guarda imágenes en un directorio servido como /static.
type LocalStore struct {
	dir        string
	publicBase string
}

// NewLocalStore crea el directorio si no existe.
func NewLocalStore(dir, publicBase string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("crear directorio de imágenes: %w", err)
	}
	return &LocalStore{dir: dir, publicBase: strings.TrimSuffix(publicBase, "/")}, nil
}

// Save escribe el contenido en disco y devuelve la URL pública.
func (s *LocalStore) Save(_ context.Context, filename string, content io.Reader) (string, error) {
	// filepath.Base evita que un nombre manipulado escape del directorio.
	filename = filepath.Base(filename)
	dest := filepath.Join(s.dir, filename)

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("crear archivo de imagen: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("escribir imagen: %w", err)
	}
	return s.publicBase + "/" + filename, nil
}
