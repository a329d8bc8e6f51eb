package ports

import (
	"context"

	"github.com/postboard/blog-api/internal/core/domain"
)

// StatsService serves the dashboard aggregates.
type StatsService interface {
	Stats(ctx context.Context) (*domain.StatsSnapshot, error)
	TagFrequency(ctx context.Context) ([]domain.TagCount, error)
	// Refresh recomputes both aggregates and stores them in the cache.
	Refresh(ctx context.Context) error
}
