// Package storage implementa el puerto inventory.ImageStore: disco local
// para desarrollo y Supabase Storage para despliegues, elegido al arranque.
package storage

import (
	"fmt"

	"github.com/jcastro/figuras-api/internal/application/inventory"
	"github.com/jcastro/figuras-api/pkg/config"
)

// New construye el backend de imágenes según la configuración.
func New(cfg config.StorageConfig) (inventory.ImageStore, error) {
	switch cfg.Backend {
	case "local":
		return NewLocalStore(cfg.LocalDir, cfg.PublicBaseURL)
	case "supabase":
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return nil, fmt.Errorf("backend supabase requiere SUPABASE_URL y SUPABASE_SERVICE_KEY")
		}
		return NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseKey), nil
	default:
		return nil, fmt.Errorf("backend de storage desconocido: %q", cfg.Backend)
	}
}
