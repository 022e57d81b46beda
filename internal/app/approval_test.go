package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

func TestToggle_SetsAndClearsApprovedAt(t *testing.T) {
	repo := newFakeRepo()
	ctx := context.Background()
	_, _ = repo.Upsert(ctx, seedReview(7453, "FLX-307", "2024-08-21T22:45:14Z", "Ana"))

	svc := app.NewApprovalService(repo, &fakeCache{})

	rv, err := svc.Toggle(ctx, 7453, true)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !rv.IsApproved || rv.ApprovedAt == nil {
		t.Fatalf("expected approved with timestamp, got %+v", rv)
	}

	rv, err = svc.Toggle(ctx, 7453, false)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if rv.IsApproved || rv.ApprovedAt != nil {
		t.Fatalf("expected rejection to clear approvedAt, got %+v", rv)
	}
}

func TestToggle_NotFound(t *testing.T) {
	svc := app.NewApprovalService(newFakeRepo(), &fakeCache{})
	_, err := svc.Toggle(context.Background(), 99999, true)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestToggle_InvalidatesListCaches(t *testing.T) {
	repo := newFakeRepo()
	ctx := context.Background()
	_, _ = repo.Upsert(ctx, seedReview(1, "FLX-1", "2024-08-21T22:45:14Z", "Ana"))

	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)
	svc := app.NewApprovalService(repo, cache)

	// Warm the approved cache, then approve and read again.
	before, _ := q.ListApproved(ctx, nil)
	if len(before) != 0 {
		t.Fatalf("expected no approved reviews yet")
	}
	if _, err := svc.Toggle(ctx, 1, true); err != nil {
		t.Fatalf("err: %v", err)
	}
	after, _ := q.ListApproved(ctx, nil)
	if len(after) != 1 || after[0].ID != 1 {
		t.Fatalf("expected approval to show after invalidation, got %+v", after)
	}
}

func TestBulkToggle_EmptySetIsNoop(t *testing.T) {
	svc := app.NewApprovalService(newFakeRepo(), &fakeCache{})
	count, err := svc.BulkToggle(context.Background(), nil, true)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0, got %d", count)
	}
}

func TestBulkToggle_MissingIDsSilentlySkipped(t *testing.T) {
	repo := newFakeRepo()
	ctx := context.Background()
	_, _ = repo.Upsert(ctx, seedReview(1, "FLX-1", "2024-08-21T22:45:14Z", "Ana"))

	svc := app.NewApprovalService(repo, &fakeCache{})
	count, err := svc.BulkToggle(ctx, []int64{1, 99999}, true)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 existing id counted, got %d", count)
	}
	rv, _ := repo.GetByID(ctx, 1)
	if !rv.IsApproved {
		t.Fatalf("existing id should be approved")
	}
}
