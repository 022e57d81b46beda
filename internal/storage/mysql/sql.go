package mysql

// Every non-approval column is refreshed on conflict; is_approved and
// approved_at are deliberately absent from the UPDATE list so approval state
// survives re-ingestion.
const upsertReviewSQL = `
INSERT INTO reviews
  (id, listing_id, listing_name, listing_location, channel, type, status,
   overall_rating, category_ratings, public_review, private_note, guest_name,
   submitted_at, stay_date, stay_length, is_approved, approved_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  listing_id       = VALUES(listing_id),
  listing_name     = VALUES(listing_name),
  listing_location = VALUES(listing_location),
  channel          = VALUES(channel),
  type             = VALUES(type),
  status           = VALUES(status),
  overall_rating   = VALUES(overall_rating),
  category_ratings = VALUES(category_ratings),
  public_review    = VALUES(public_review),
  private_note     = VALUES(private_note),
  guest_name       = VALUES(guest_name),
  submitted_at     = VALUES(submitted_at),
  stay_date        = VALUES(stay_date),
  stay_length      = VALUES(stay_length),
  updated_at       = CURRENT_TIMESTAMP
`

// selectReviewCols is shared by every read path so scanReview stays in sync.
const selectReviewCols = `
SELECT
  id, listing_id, listing_name, listing_location, channel, type, status,
  overall_rating, category_ratings, public_review, private_note, guest_name,
  submitted_at, stay_date, stay_length, is_approved, approved_at
FROM reviews
`

// Most recent first; seq is the insertion counter, so ties keep insertion order.
const orderBySubmitted = ` ORDER BY submitted_at DESC, seq ASC`

const getAllSQL = selectReviewCols + orderBySubmitted

const getByIDSQL = selectReviewCols + ` WHERE id = ?`

const getByListingSQL = selectReviewCols + ` WHERE listing_id = ?` + orderBySubmitted

const getApprovedSQL = selectReviewCols + ` WHERE is_approved = 1` + orderBySubmitted

const getApprovedByListingSQL = selectReviewCols +
	` WHERE is_approved = 1 AND listing_id = ?` + orderBySubmitted

const lockReviewSQL = `SELECT id FROM reviews WHERE id = ? FOR UPDATE`

const setApprovalSQL = `
UPDATE reviews SET is_approved = ?, approved_at = ? WHERE id = ?
`
