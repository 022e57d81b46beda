package domain

import "context"

// ReviewRepository is the keyed persistent collection of canonical reviews.
// All list operations return reviews ordered by SubmittedAt descending,
// ties broken by insertion order.
type ReviewRepository interface {
	// Write paths
	// Upsert overwrites every field except IsApproved/ApprovedAt when the id
	// already exists; approval state is sticky across re-ingestion.
	Upsert(ctx context.Context, r Review) (Review, error)
	// BulkUpsert applies Upsert per record; individual failures are logged
	// and skipped. Returns the count of records written.
	BulkUpsert(ctx context.Context, rs []Review) (int, error)
	// SetApproval flips IsApproved and stamps/clears ApprovedAt atomically.
	// Returns ErrNotFound when the id has no record.
	SetApproval(ctx context.Context, id int64, approved bool) (Review, error)
	// BulkSetApproval updates every listed id that exists, in one
	// transaction. Missing ids are silently ignored and not counted.
	BulkSetApproval(ctx context.Context, ids []int64, approved bool) (int, error)

	// Read paths
	GetAll(ctx context.Context) ([]Review, error)
	GetByID(ctx context.Context, id int64) (Review, error)
	GetByListing(ctx context.Context, listingID string) ([]Review, error)
	GetApproved(ctx context.Context, listingID *string) ([]Review, error)
}

// ReviewSource supplies raw upstream reviews, either from the live Hostaway
// API or from a static mock payload.
type ReviewSource interface {
	FetchReviews(ctx context.Context) ([]RawReview, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
