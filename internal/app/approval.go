package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/domain"
)

// ApprovalService is thin orchestration over the store for the dashboard's
// approve/reject surface.
type ApprovalService struct {
	repo  domain.ReviewRepository
	cache domain.Cache
}

func NewApprovalService(r domain.ReviewRepository, cache domain.Cache) *ApprovalService {
	return &ApprovalService{repo: r, cache: cache}
}

// Toggle sets the approval flag on one review. Returns domain.ErrNotFound
// when the id has no record; that is never treated as success.
func (s *ApprovalService) Toggle(ctx context.Context, id int64, approved bool) (domain.Review, error) {
	rv, err := s.repo.SetApproval(ctx, id, approved)
	if err != nil {
		return domain.Review{}, err
	}
	log.Info().Int64("id", id).Bool("approved", approved).Msg("approval updated")
	if s.cache != nil {
		s.invalidateFor(ctx, rv.ListingID)
	}
	return rv, nil
}

// BulkToggle sets the approval flag on every existing id in the set and
// returns how many existed. Missing ids are silently skipped; an empty set
// is accepted and yields 0.
func (s *ApprovalService) BulkToggle(ctx context.Context, ids []int64, approved bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	count, err := s.repo.BulkSetApproval(ctx, ids, approved)
	if err != nil {
		return 0, err
	}
	log.Info().Int("count", count).Bool("approved", approved).Msg("bulk approval updated")
	if s.cache != nil {
		// listing-scoped keys are left to expire by TTL; the bulk path does
		// not know which listings the ids belong to
		_ = s.cache.Del(ctx, keyAllReviews)
		_ = s.cache.Del(ctx, keyApproved(nil))
	}
	return count, nil
}

// ListApproved delegates to the store. Callers on the public surface are
// responsible for stripping private notes before emission.
func (s *ApprovalService) ListApproved(ctx context.Context, listingID *string) ([]domain.Review, error) {
	return s.repo.GetApproved(ctx, listingID)
}

func (s *ApprovalService) invalidateFor(ctx context.Context, listingID *string) {
	_ = s.cache.Del(ctx, keyAllReviews)
	_ = s.cache.Del(ctx, keyApproved(nil))
	if listingID != nil {
		_ = s.cache.Del(ctx, keyListing(*listingID))
		_ = s.cache.Del(ctx, keyApproved(listingID))
	}
}
