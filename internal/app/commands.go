package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/domain"
)

// IngestionService runs the one-shot seed/refresh batch: fetch raw upstream
// reviews, normalize them, and upsert into the store. Approval state on
// existing records is never touched by re-ingestion.
type IngestionService struct {
	source      domain.ReviewSource
	repo        domain.ReviewRepository
	cache       domain.Cache
	skipInvalid bool
}

func NewIngestionService(src domain.ReviewSource, r domain.ReviewRepository, cache domain.Cache, skipInvalid bool) *IngestionService {
	return &IngestionService{source: src, repo: r, cache: cache, skipInvalid: skipInvalid}
}

// Seed ingests the full upstream batch and returns the number of records
// written. When force is false and the store already holds reviews, the seed
// is a no-op.
//
// Records failing normalization are skipped (logged) or abort the batch,
// depending on the skip-invalid policy. Upstream fetch failures are always
// fatal to the batch.
func (s *IngestionService) Seed(ctx context.Context, force bool) (int, error) {
	if !force {
		existing, err := s.repo.GetAll(ctx)
		if err != nil {
			return 0, fmt.Errorf("check existing reviews: %w", err)
		}
		if len(existing) > 0 {
			log.Info().Int("existing", len(existing)).Msg("store already seeded, skipping")
			return 0, nil
		}
	}

	raws, err := s.source.FetchReviews(ctx)
	if err != nil {
		return 0, err
	}
	log.Info().Int("raw", len(raws)).Msg("fetched upstream reviews")

	normalized := make([]domain.Review, 0, len(raws))
	for _, raw := range raws {
		rv, err := Normalize(raw)
		if err != nil {
			var verr *domain.ValidationError
			if s.skipInvalid && errors.As(err, &verr) {
				log.Warn().Int64("id", verr.ReviewID).Str("field", verr.Field).
					Float64("value", verr.Value).Msg("skipping invalid review")
				continue
			}
			if s.skipInvalid {
				log.Warn().Int64("id", raw.ID).Err(err).Msg("skipping unparseable review")
				continue
			}
			return 0, err
		}
		normalized = append(normalized, rv)
	}

	count, err := s.repo.BulkUpsert(ctx, normalized)
	if err != nil {
		return count, err
	}

	if s.cache != nil {
		s.invalidateLists(ctx, normalized)
	}
	log.Info().Int("written", count).Int("normalized", len(normalized)).Msg("seed complete")
	return count, nil
}

func (s *IngestionService) invalidateLists(ctx context.Context, rs []domain.Review) {
	_ = s.cache.Del(ctx, keyAllReviews)
	_ = s.cache.Del(ctx, keyApproved(nil))
	seen := map[string]struct{}{}
	for _, rv := range rs {
		if rv.ListingID == nil {
			continue
		}
		if _, ok := seen[*rv.ListingID]; ok {
			continue
		}
		seen[*rv.ListingID] = struct{}{}
		_ = s.cache.Del(ctx, keyListing(*rv.ListingID))
		_ = s.cache.Del(ctx, keyApproved(rv.ListingID))
	}
}
