package repository

import (
	"context"

	"github.com/user/bookmeta/internal/entity"
)

// CatalogClient looks a volume up in a remote book catalog by its id.
type CatalogClient interface {
	Volume(ctx context.Context, id string) (*entity.CatalogVolume, error)
}
