package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"tax-filing-service/internal/usecase"
)

type Server struct {
	subUC     usecase.SubmissionUseCase
	fileUC    usecase.FileUseCase
	packUC    *usecase.PackUseCase
	ledgerUC  usecase.UserPackUseCase
	paymentUC usecase.PaymentUseCase
	statsUC   usecase.StatsUseCase

	auth        *AuthManager
	adminKey    string
	callbackURL string
	limiter     RateLimiter
	rateLimit   int
	rateWindow  time.Duration

	log *zerolog.Logger
}

func NewServer(
	subUC usecase.SubmissionUseCase,
	fileUC usecase.FileUseCase,
	packUC *usecase.PackUseCase,
	ledgerUC usecase.UserPackUseCase,
	paymentUC usecase.PaymentUseCase,
	statsUC usecase.StatsUseCase,
	auth *AuthManager,
	adminKey string,
	callbackURL string,
	limiter RateLimiter,
	rateLimit int,
	rateWindow time.Duration,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		subUC:       subUC,
		fileUC:      fileUC,
		packUC:      packUC,
		ledgerUC:    ledgerUC,
		paymentUC:   paymentUC,
		statsUC:     statsUC,
		auth:        auth,
		adminKey:    adminKey,
		callbackURL: callbackURL,
		limiter:     limiter,
		rateLimit:   rateLimit,
		rateWindow:  rateWindow,
		log:         logger,
	}
}

// Router builds the full HTTP surface: public health/metrics plus the
// payment callback, bearer-authenticated user API, and key-guarded admin API.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// The payment provider redirects the browser here; no session exists.
	r.Get("/api/v1/payments/callback", s.paymentCallbackHandler())

	r.Group(func(r chi.Router) {
		r.Use(s.userAuthMiddleware)

		r.Post("/api/v1/submissions", s.submissionCreateHandler())
		r.Get("/api/v1/submissions", s.submissionListHandler())
		r.Get("/api/v1/submissions/{id}", s.submissionGetHandler())
		r.Method(http.MethodPost, "/api/v1/submissions/{id}/calculate",
			s.rateLimitMiddleware("calculate", s.submissionCalculateHandler()))
		r.Get("/api/v1/submissions/{id}/result", s.submissionResultHandler())

		r.Get("/api/v1/submissions/{id}/files", s.filesListHandler())
		r.Post("/api/v1/submissions/{id}/brokers/{brokerID}/files", s.filesUploadHandler())
		r.Delete("/api/v1/submissions/{id}/brokers/{brokerID}/files", s.brokerFilesDeleteHandler())
		r.Delete("/api/v1/submissions/{id}/files/{fileID}", s.fileDeleteHandler())

		r.Get("/api/v1/brokers", s.brokersHandler())
		r.Get("/api/v1/packs", s.packsListHandler())
		r.Get("/api/v1/me/packs", s.myPacksHandler())
		r.Post("/api/v1/me/free-pack", s.freePackHandler())
		r.Post("/api/v1/payments", s.paymentInitiateHandler())
	})

	r.Group(func(r chi.Router) {
		r.Use(s.adminAuthMiddleware)

		r.Get("/api/v1/admin/stats", s.statsHandler())
		r.Get("/api/v1/admin/packs", s.adminPacksListHandler())
		r.Post("/api/v1/admin/packs", s.adminPackCreateHandler())
		r.Delete("/api/v1/admin/packs/{id}", s.adminPackDeactivateHandler())
	})

	return r
}
