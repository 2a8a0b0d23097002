package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// SupabaseStore sube imágenes al Storage de Supabase vía su API REST
// (POST /storage/v1/object/<bucket>/<name>) y devuelve la URL pública.
type SupabaseStore struct {
	baseURL string
	bucket  string
	key     string
	client  *http.Client
}

// NewSupabaseStore construye el cliente. baseURL es https://<proyecto>.supabase.co.
func NewSupabaseStore(baseURL, bucket, key string) *SupabaseStore {
	return &SupabaseStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		bucket:  bucket,
		key:     key,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Save sube el objeto y devuelve su URL pública. Cualquier estado no-2xx se
// reporta como error para que el alta de la figura no escriba nada.
func (s *SupabaseStore) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, content)
	if err != nil {
		return "", fmt.Errorf("construir request de subida: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.key)
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("subir imagen a supabase: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("supabase storage respondió %d: %s", resp.StatusCode, string(body))
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, filename), nil
}
