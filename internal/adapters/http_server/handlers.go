// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

type Handlers struct {
	Q *app.QueryService
	A *app.ApprovalService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type approvalRequest struct {
	ReviewID int64 `json:"reviewId"`
	Approved bool  `json:"approved"`
}

type bulkApprovalRequest struct {
	ReviewIDs []int64 `json:"reviewIds"`
	Approved  bool    `json:"approved"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/reviews", h.listReviews)
	s.mux.Get("/v1/reviews/approved", h.listApproved)
	s.mux.Get("/v1/reviews/{id}", h.getReview)
	s.mux.Get("/v1/listings/{listingID}/reviews", h.listByListing)
	s.mux.Patch("/v1/reviews/approve", h.toggleApproval)
	s.mux.Patch("/v1/reviews/approve/bulk", h.bulkToggleApproval)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeWithETag(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// listReviews is the dashboard list: every review, private notes included.
func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ListAll(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Store Error", "failed to list reviews")
		return
	}
	if out == nil {
		out = []domain.Review{}
	}
	writeWithETag(w, r, out)
}

func (h *Handlers) getReview(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	rv, err := h.Q.GetReview(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "review not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Store Error", "failed to load review")
		return
	}
	writeWithETag(w, r, rv)
}

func (h *Handlers) listByListing(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")
	out, err := h.Q.ListByListing(r.Context(), listingID)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Store Error", "failed to list reviews")
		return
	}
	if out == nil {
		out = []domain.Review{}
	}
	writeWithETag(w, r, out)
}

// listApproved is the public surface: private notes are stripped here, at
// the boundary, not in the core.
func (h *Handlers) listApproved(w http.ResponseWriter, r *http.Request) {
	var listingID *string
	if v := r.URL.Query().Get("listingId"); v != "" {
		listingID = &v
	}
	rs, err := h.Q.ListApproved(r.Context(), listingID)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Store Error", "failed to list approved reviews")
		return
	}
	out := make([]domain.Review, 0, len(rs))
	for _, rv := range rs {
		out = append(out, rv.Public())
	}
	writeWithETag(w, r, out)
}

func (h *Handlers) toggleApproval(w http.ResponseWriter, r *http.Request) {
	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "expected {reviewId, approved}")
		return
	}
	rv, err := h.A.Toggle(r.Context(), req.ReviewID, req.Approved)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "review not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Store Error", "failed to update approval")
		return
	}
	observability.ObserveApproval("single", req.Approved)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"reviewId":   rv.ID,
		"isApproved": rv.IsApproved,
		"approvedAt": rv.ApprovedAt,
	})
}

func (h *Handlers) bulkToggleApproval(w http.ResponseWriter, r *http.Request) {
	var req bulkApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "expected {reviewIds, approved}")
		return
	}
	count, err := h.A.BulkToggle(r.Context(), req.ReviewIDs, req.Approved)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Store Error", "failed to update approvals")
		return
	}
	observability.ObserveApproval("bulk", req.Approved)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"updatedCount": count,
		"isApproved":   req.Approved,
	})
}
