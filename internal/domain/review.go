package domain

// CategoryRating is a named sub-score in the 0-10 range, e.g. {"cleanliness", 10}.
type CategoryRating struct {
	Category string `json:"category"`
	Rating   int    `json:"rating"`
}

// RawReview is the upstream Hostaway review shape. Only ID, Type, Status,
// ListingName and SubmittedAt are guaranteed; everything else is optional.
type RawReview struct {
	ID              int64            `json:"id"`
	Type            string           `json:"type"`
	Status          string           `json:"status"`
	Rating          *float64         `json:"rating"`
	PublicReview    *string          `json:"publicReview"`
	PrivateNote     *string          `json:"privateNote"`
	ReviewCategory  []CategoryRating `json:"reviewCategory"`
	SubmittedAt     string           `json:"submittedAt"`
	GuestName       *string          `json:"guestName"`
	ListingID       *string          `json:"listingId"`
	ListingName     string           `json:"listingName"`
	ListingLocation *string          `json:"listingLocation"`
	Channel         *string          `json:"channel"`
	StayDate        *string          `json:"stayDate"`
	StayLength      *int             `json:"stayLength"`
}

// Review is the canonical, persisted review record.
//
// SubmittedAt is always ISO-8601 UTC with a trailing "Z".
// ApprovedAt is non-nil iff IsApproved is true.
type Review struct {
	ID              int64          `json:"id"`
	ListingID       *string        `json:"listingId"`
	ListingName     string         `json:"listingName"`
	ListingLocation *string        `json:"listingLocation"`
	Channel         string         `json:"channel"`
	Type            string         `json:"type"`
	Status          string         `json:"status"`
	OverallRating   *float64       `json:"overallRating"`
	CategoryRatings map[string]int `json:"categoryRatings"`
	PublicReview    *string        `json:"publicReview"`
	PrivateNote     *string        `json:"privateNote,omitempty"`
	GuestName       *string        `json:"guestName"`
	SubmittedAt     string         `json:"submittedAt"`
	StayDate        *string        `json:"stayDate"`
	StayLength      *int           `json:"stayLength"`
	IsApproved      bool           `json:"isApproved"`
	ApprovedAt      *string        `json:"approvedAt"`
}

// Public returns a copy safe for public-facing emission: the private note
// never leaves the dashboard surface.
func (r Review) Public() Review {
	r.PrivateNote = nil
	return r
}
