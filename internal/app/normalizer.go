package app

import (
	"fmt"
	"math"
	"strings"

	"flex_reviews/internal/domain"
)

const defaultChannel = "hostaway"

// Normalize converts a raw Hostaway review into the canonical record.
//
// Policies:
//   - category ratings collapse into a map; duplicate names overwrite (last
//     wins), matching upstream behavior
//   - overall rating: explicit rating wins, else the mean of category values
//     rounded to 2 decimals, else absent
//   - submittedAt is re-emitted as ISO-8601 UTC with a "Z" suffix; non-UTC
//     offsets are converted, not relabeled
//   - approval always starts false; upstream never carries approval state
//
// A rating outside [0,10] on either the overall value or any category fails
// with *domain.ValidationError; the caller decides skip vs. abort.
func Normalize(raw domain.RawReview) (domain.Review, error) {
	categories := extractCategoryRatings(raw.ReviewCategory)
	for _, c := range raw.ReviewCategory {
		if c.Rating < 0 || c.Rating > 10 {
			return domain.Review{}, &domain.ValidationError{
				ReviewID: raw.ID,
				Field:    fmt.Sprintf("categoryRatings[%s]", c.Category),
				Value:    float64(c.Rating),
			}
		}
	}

	overall := deriveOverallRating(raw.Rating, categories)
	if overall != nil && (*overall < 0 || *overall > 10) {
		return domain.Review{}, &domain.ValidationError{
			ReviewID: raw.ID,
			Field:    "overallRating",
			Value:    *overall,
		}
	}

	submittedAt, err := NormalizeTimestamp(raw.SubmittedAt)
	if err != nil {
		return domain.Review{}, fmt.Errorf("review %d: %w", raw.ID, err)
	}

	channel := defaultChannel
	if raw.Channel != nil && strings.TrimSpace(*raw.Channel) != "" {
		channel = *raw.Channel
	}

	return domain.Review{
		ID:              raw.ID,
		ListingID:       raw.ListingID,
		ListingName:     raw.ListingName,
		ListingLocation: raw.ListingLocation,
		Channel:         channel,
		Type:            raw.Type,
		Status:          raw.Status,
		OverallRating:   overall,
		CategoryRatings: categories,
		PublicReview:    raw.PublicReview,
		PrivateNote:     raw.PrivateNote,
		GuestName:       raw.GuestName,
		SubmittedAt:     submittedAt,
		StayDate:        raw.StayDate,
		StayLength:      raw.StayLength,
		IsApproved:      false,
	}, nil
}

func extractCategoryRatings(in []domain.CategoryRating) map[string]int {
	out := make(map[string]int, len(in))
	for _, c := range in {
		out[c.Category] = c.Rating
	}
	return out
}

func deriveOverallRating(explicit *float64, categories map[string]int) *float64 {
	if explicit != nil {
		f := *explicit
		return &f
	}
	if len(categories) == 0 {
		return nil
	}
	sum := 0
	for _, v := range categories {
		sum += v
	}
	mean := math.Round(float64(sum)/float64(len(categories))*100) / 100
	return &mean
}

// NormalizeTimestamp canonicalizes an upstream timestamp to
// "YYYY-MM-DDTHH:MM:SSZ". See domain.ParseSubmittedAt for accepted inputs.
func NormalizeTimestamp(s string) (string, error) {
	t, err := domain.ParseSubmittedAt(s)
	if err != nil {
		return "", err
	}
	return domain.FormatSubmittedAt(t), nil
}
