package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flex_reviews/internal/domain"
)

const keyAllReviews = "reviews:all"

func keyListing(listingID string) string { return "reviews:listing:" + listingID }

func keyApproved(listingID *string) string {
	if listingID == nil {
		return "reviews:approved"
	}
	return fmt.Sprintf("reviews:approved:%s", *listingID)
}

// QueryService serves the dashboard read paths with a read-through cache in
// front of the repository.
type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) ListAll(ctx context.Context) ([]domain.Review, error) {
	return s.cachedList(ctx, keyAllReviews, func() ([]domain.Review, error) {
		return s.repo.GetAll(ctx)
	})
}

func (s *QueryService) ListByListing(ctx context.Context, listingID string) ([]domain.Review, error) {
	return s.cachedList(ctx, keyListing(listingID), func() ([]domain.Review, error) {
		return s.repo.GetByListing(ctx, listingID)
	})
}

// ListApproved returns approved reviews, optionally scoped to one listing.
// Private notes are NOT stripped here; the public-facing handler does that.
func (s *QueryService) ListApproved(ctx context.Context, listingID *string) ([]domain.Review, error) {
	return s.cachedList(ctx, keyApproved(listingID), func() ([]domain.Review, error) {
		return s.repo.GetApproved(ctx, listingID)
	})
}

func (s *QueryService) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *QueryService) cachedList(ctx context.Context, key string, load func() ([]domain.Review, error)) ([]domain.Review, error) {
	var cached []domain.Review
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}
	rs, err := load()
	if err != nil {
		return nil, err
	}

	// copy to avoid aliasing the repo's backing array through the cache
	out := make([]domain.Review, len(rs))
	copy(out, rs)

	// size guard: oversized lists are served from the store only
	if b, _ := json.Marshal(out); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}
