package ports

import (
	"context"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
)

// CatalogSource supplies the static machine definitions at startup.
type CatalogSource interface {
	Load(ctx context.Context) ([]domain.Machine, error)
	Name() string
}
