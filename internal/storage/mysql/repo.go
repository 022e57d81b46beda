package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Upsert writes the review and reads the stored row back within the same
// transaction, so the returned record carries the surviving approval state
// of a pre-existing row.
func (r *Repo) Upsert(ctx context.Context, rv domain.Review) (domain.Review, error) {
	submitted, err := domain.ParseSubmittedAt(rv.SubmittedAt)
	if err != nil {
		return domain.Review{}, err
	}
	cats, err := json.Marshal(rv.CategoryRatings)
	if err != nil {
		return domain.Review{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Review{}, err
	}
	defer tx.Rollback()

	var approvedAt any
	if rv.ApprovedAt != nil {
		t, err := domain.ParseSubmittedAt(*rv.ApprovedAt)
		if err != nil {
			return domain.Review{}, err
		}
		approvedAt = t
	}
	if _, err := tx.ExecContext(ctx, upsertReviewSQL,
		rv.ID,
		valStr(rv.ListingID),
		rv.ListingName,
		valStr(rv.ListingLocation),
		rv.Channel,
		rv.Type,
		rv.Status,
		valF64(rv.OverallRating),
		string(cats),
		valStr(rv.PublicReview),
		valStr(rv.PrivateNote),
		valStr(rv.GuestName),
		submitted,
		valStr(rv.StayDate),
		valInt(rv.StayLength),
		rv.IsApproved,
		approvedAt,
	); err != nil {
		return domain.Review{}, err
	}

	stored, err := scanReview(tx.QueryRowContext(ctx, getByIDSQL, rv.ID))
	if err != nil {
		return domain.Review{}, err
	}
	return stored, tx.Commit()
}

// BulkUpsert applies Upsert per record. A single record's failure is logged
// and skipped, not fatal to the batch. Returns the count written.
func (r *Repo) BulkUpsert(ctx context.Context, rs []domain.Review) (int, error) {
	count := 0
	for _, rv := range rs {
		if _, err := r.Upsert(ctx, rv); err != nil {
			log.Error().Int64("id", rv.ID).Err(err).Msg("upsert review failed, skipping")
			continue
		}
		count++
	}
	return count, nil
}

// SetApproval flips the flag and stamps or clears approved_at in one
// transaction; a reader never observes the two columns out of step.
func (r *Repo) SetApproval(ctx context.Context, id int64, approved bool) (domain.Review, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Review{}, err
	}
	defer tx.Rollback()

	var got int64
	if err := tx.QueryRowContext(ctx, lockReviewSQL, id).Scan(&got); err != nil {
		if err == sql.ErrNoRows {
			return domain.Review{}, domain.ErrNotFound
		}
		return domain.Review{}, err
	}

	var approvedAt any
	if approved {
		approvedAt = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx, setApprovalSQL, approved, approvedAt, id); err != nil {
		return domain.Review{}, err
	}

	stored, err := scanReview(tx.QueryRowContext(ctx, getByIDSQL, id))
	if err != nil {
		return domain.Review{}, err
	}
	return stored, tx.Commit()
}

// BulkSetApproval updates every listed id that exists, all in one
// transaction. Missing ids are filtered out first and never counted.
func (r *Repo) BulkSetApproval(ctx context.Context, ids []int64, approved bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM reviews WHERE id IN (`+placeholders+`) FOR UPDATE`, args...)
	if err != nil {
		return 0, err
	}
	var existing []any
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		existing = append(existing, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(existing) == 0 {
		return 0, tx.Commit()
	}

	var approvedAt any
	if approved {
		approvedAt = time.Now().UTC()
	}
	updArgs := append([]any{approved, approvedAt}, existing...)
	updPlaceholders := strings.TrimSuffix(strings.Repeat("?,", len(existing)), ",")
	if _, err := tx.ExecContext(ctx,
		`UPDATE reviews SET is_approved = ?, approved_at = ? WHERE id IN (`+updPlaceholders+`)`,
		updArgs...); err != nil {
		return 0, err
	}
	return len(existing), tx.Commit()
}

func (r *Repo) GetAll(ctx context.Context) ([]domain.Review, error) {
	return r.list(ctx, getAllSQL)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (domain.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, getByIDSQL, id))
	if err == sql.ErrNoRows {
		return domain.Review{}, domain.ErrNotFound
	}
	return rv, err
}

func (r *Repo) GetByListing(ctx context.Context, listingID string) ([]domain.Review, error) {
	return r.list(ctx, getByListingSQL, listingID)
}

func (r *Repo) GetApproved(ctx context.Context, listingID *string) ([]domain.Review, error) {
	if listingID != nil {
		return r.list(ctx, getApprovedByListingSQL, *listingID)
	}
	return r.list(ctx, getApprovedSQL)
}

func (r *Repo) list(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanReview(row rowScanner) (domain.Review, error) {
	var (
		rv            domain.Review
		listingID     sql.NullString
		listingLoc    sql.NullString
		overallRating sql.NullFloat64
		catsRaw       []byte
		publicReview  sql.NullString
		privateNote   sql.NullString
		guestName     sql.NullString
		submittedAt   time.Time
		stayDate      sql.NullString
		stayLength    sql.NullInt64
		approvedAt    sql.NullTime
	)
	if err := row.Scan(
		&rv.ID,
		&listingID,
		&rv.ListingName,
		&listingLoc,
		&rv.Channel,
		&rv.Type,
		&rv.Status,
		&overallRating,
		&catsRaw,
		&publicReview,
		&privateNote,
		&guestName,
		&submittedAt,
		&stayDate,
		&stayLength,
		&rv.IsApproved,
		&approvedAt,
	); err != nil {
		return domain.Review{}, err
	}

	if listingID.Valid {
		s := listingID.String
		rv.ListingID = &s
	}
	if listingLoc.Valid {
		s := listingLoc.String
		rv.ListingLocation = &s
	}
	if overallRating.Valid {
		f := overallRating.Float64
		rv.OverallRating = &f
	}
	rv.CategoryRatings = map[string]int{}
	if len(catsRaw) > 0 {
		_ = json.Unmarshal(catsRaw, &rv.CategoryRatings)
	}
	if publicReview.Valid {
		s := publicReview.String
		rv.PublicReview = &s
	}
	if privateNote.Valid {
		s := privateNote.String
		rv.PrivateNote = &s
	}
	if guestName.Valid {
		s := guestName.String
		rv.GuestName = &s
	}
	rv.SubmittedAt = domain.FormatSubmittedAt(submittedAt)
	if stayDate.Valid {
		s := stayDate.String
		rv.StayDate = &s
	}
	if stayLength.Valid {
		n := int(stayLength.Int64)
		rv.StayLength = &n
	}
	if approvedAt.Valid {
		s := domain.FormatSubmittedAt(approvedAt.Time)
		rv.ApprovedAt = &s
	}
	return rv, nil
}
