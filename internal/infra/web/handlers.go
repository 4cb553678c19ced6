package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tax-filing-service/internal/domain"
	"tax-filing-service/internal/domain/model"
	"tax-filing-service/internal/domain/ports/adapter"
)

// maxUploadBytes caps one multipart upload request.
const maxUploadBytes = 64 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDomainError maps domain sentinels onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrQuotaExhausted):
		http.Error(w, "No submission quota remaining", http.StatusPaymentRequired)
	case errors.Is(err, domain.ErrCalculationLocked):
		http.Error(w, "Calculation already in progress", http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrProcessorFailure):
		http.Error(w, "Tax processor unavailable", http.StatusBadGateway)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// ownedSubmission loads a submission and hides other users' submissions
// behind a 404.
func (s *Server) ownedSubmission(w http.ResponseWriter, r *http.Request) (*model.Submission, bool) {
	sub, err := s.subUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	if sub.UserID != UserID(r.Context()) {
		http.Error(w, "Not found", http.StatusNotFound)
		return nil, false
	}
	return sub, true
}

type submissionCreateRequest struct {
	Title          string `json:"title"`
	SubmissionType string `json:"submission_type"`
	FiscalNumber   string `json:"fiscal_number"`
	Year           int    `json:"year"`
	WantsPremium   bool   `json:"wants_premium"`
}

func (s *Server) submissionCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req submissionCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		sub, err := s.subUC.Create(ctx, UserID(ctx), req.Title, req.SubmissionType, req.FiscalNumber, req.Year, req.WantsPremium)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, sub)
	}
}

func (s *Server) submissionListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		subs, err := s.subUC.ListByUser(ctx, UserID(ctx))
		if err != nil {
			http.Error(w, "Failed to list submissions", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data []*model.Submission `json:"data"`
		}{Data: subs}

		writeJSON(w, http.StatusOK, response)
	}
}

func (s *Server) submissionGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, ok := s.ownedSubmission(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

func (s *Server) submissionCalculateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, ok := s.ownedSubmission(w, r)
		if !ok {
			return
		}

		updated, err := s.subUC.Calculate(r.Context(), sub.ID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) submissionResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, ok := s.ownedSubmission(w, r)
		if !ok {
			return
		}

		res, err := s.subUC.LatestResult(r.Context(), sub.ID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		// The payload is the processor's verbatim JSON; pass it through.
		response := struct {
			ID           string          `json:"id"`
			SubmissionID string          `json:"submission_id"`
			Results      json.RawMessage `json:"results"`
			CreatedAt    string          `json:"created_at"`
		}{
			ID:           res.ID,
			SubmissionID: res.SubmissionID,
			Results:      json.RawMessage(res.Results),
			CreatedAt:    res.CreatedAt.Format(time.RFC3339),
		}

		writeJSON(w, http.StatusOK, response)
	}
}

func (s *Server) filesListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, ok := s.ownedSubmission(w, r)
		if !ok {
			return
		}

		groups, err := s.fileUC.ListGrouped(r.Context(), sub.ID)
		if err != nil {
			http.Error(w, "Failed to list files", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data []model.PlatformFiles `json:"data"`
		}{Data: groups}

		writeJSON(w, http.StatusOK, response)
	}
}

func (s *Server) filesUploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, ok := s.ownedSubmission(w, r)
		if !ok {
			return
		}
		brokerID := chi.URLParam(r, "brokerID")

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, "Invalid multipart request", http.StatusBadRequest)
			return
		}

		var uploads []adapter.BrokerUpload
		for _, hdr := range r.MultipartForm.File["files"] {
			f, err := hdr.Open()
			if err != nil {
				http.Error(w, "Unreadable file part", http.StatusBadRequest)
				return
			}
			content, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				http.Error(w, "Unreadable file part", http.StatusBadRequest)
				return
			}
			uploads = append(uploads, adapter.BrokerUpload{FileName: hdr.Filename, Content: content})
		}

		saved, err := s.fileUC.Upload(r.Context(), sub.ID, brokerID, uploads)
		if err != nil && len(saved) == 0 {
			writeDomainError(w, err)
			return
		}

		response := struct {
			Data     []*model.SubmissionFile `json:"data"`
			Rejected string                  `json:"rejected,omitempty"`
		}{Data: saved}
		if err != nil {
			// Partial acceptance: report rejections alongside the saved rows.
			response.Rejected = err.Error()
		}

		writeJSON(w, http.StatusOK, response)
	}
}

func (s *Server) brokerFilesDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, ok := s.ownedSubmission(w, r)
		if !ok {
			return
		}

		if err := s.fileUC.RemoveBroker(r.Context(), sub.ID, chi.URLParam(r, "brokerID")); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) fileDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, ok := s.ownedSubmission(w, r)
		if !ok {
			return
		}

		if err := s.fileUC.Remove(r.Context(), sub.ID, chi.URLParam(r, "fileID")); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) brokersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		brokers, err := s.fileUC.SupportedBrokers(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		response := struct {
			Data []string `json:"data"`
		}{Data: brokers}

		writeJSON(w, http.StatusOK, response)
	}
}

func (s *Server) packsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		packs, err := s.packUC.ListPurchasable(r.Context())
		if err != nil {
			http.Error(w, "Failed to list packs", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data []*model.Pack `json:"data"`
		}{Data: packs}

		writeJSON(w, http.StatusOK, response)
	}
}

func (s *Server) myPacksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		includeExhausted := r.URL.Query().Get("all") == "true"
		entries, err := s.ledgerUC.PaymentSummary(ctx, UserID(ctx), includeExhausted)
		if err != nil {
			http.Error(w, "Failed to load pack summary", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data []*model.UserPack `json:"data"`
		}{Data: entries}

		writeJSON(w, http.StatusOK, response)
	}
}

func (s *Server) freePackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		entry, err := s.ledgerUC.GrantFreePack(ctx, UserID(ctx))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, entry)
	}
}

type paymentInitiateRequest struct {
	PackID string `json:"pack_id"`
}

func (s *Server) paymentInitiateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req paymentInitiateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		payment, redirectURL, err := s.paymentUC.Initiate(ctx, UserID(ctx), req.PackID, s.callbackURL)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		response := struct {
			Payment     *model.Payment `json:"payment"`
			RedirectURL string         `json:"redirect_url"`
		}{Payment: payment, RedirectURL: redirectURL}

		writeJSON(w, http.StatusCreated, response)
	}
}

// paymentCallbackHandler is where the provider redirects the buyer after
// checkout. Verification runs regardless of the reported status so a spoofed
// query string cannot mark a payment as paid.
func (s *Server) paymentCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		authority := r.URL.Query().Get("Authority")
		if authority == "" {
			http.Error(w, "Authority is required", http.StatusBadRequest)
			return
		}

		payment, err := s.paymentUC.Confirm(ctx, authority)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, payment)
	}
}

func (s *Server) statsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		byStatus, byPack, remaining, err := s.statsUC.Totals(ctx)
		if err != nil {
			http.Error(w, "Failed to get totals", http.StatusInternalServerError)
			return
		}

		week, month, year, err := s.statsUC.Revenue(ctx)
		if err != nil {
			http.Error(w, "Failed to get revenue", http.StatusInternalServerError)
			return
		}

		response := struct {
			SubmissionsByStatus map[model.SubmissionStatus]int `json:"submissions_by_status"`
			LedgerByPack        map[string]int                 `json:"ledger_by_pack"`
			QuotaRemaining      int64                          `json:"quota_remaining"`
			Revenue             struct {
				Week  int64 `json:"week"`
				Month int64 `json:"month"`
				Year  int64 `json:"year"`
			} `json:"revenue_cents"`
		}{
			SubmissionsByStatus: byStatus,
			LedgerByPack:        byPack,
			QuotaRemaining:      remaining,
		}
		response.Revenue.Week = week
		response.Revenue.Month = month
		response.Revenue.Year = year

		writeJSON(w, http.StatusOK, response)
	}
}

func (s *Server) adminPacksListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		packs, err := s.packUC.List(r.Context())
		if err != nil {
			http.Error(w, "Failed to list packs", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data []*model.Pack `json:"data"`
		}{Data: packs}

		writeJSON(w, http.StatusOK, response)
	}
}

type packCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Quota       int    `json:"quota"`
	Premium     bool   `json:"premium"`
}

func (s *Server) adminPackCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req packCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		pack, err := s.packUC.Create(ctx, req.Name, req.Description, req.PriceCents, req.Quota, req.Premium)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, pack)
	}
}

func (s *Server) adminPackDeactivateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.packUC.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
