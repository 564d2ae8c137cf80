package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appaudit "github.com/affordableaudits/audit-api/internal/application/audit"
	domain "github.com/affordableaudits/audit-api/internal/domain/audit"
	"github.com/affordableaudits/audit-api/internal/domain/payment"
	"github.com/affordableaudits/audit-api/internal/middleware"
)

// maxUploadBytes caps the multipart artifact upload.
const maxUploadBytes = 2 << 20

type Router struct {
	auditSvc *appaudit.Service
	sessions *appaudit.Registry
}

func NewRouter(auditSvc *appaudit.Service, sessions *appaudit.Registry, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{auditSvc: auditSvc, sessions: sessions}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(10, 1))

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/checkout", r.wrap(r.handleStartCheckout))
		rt.Post("/checkout/{session}/verify", r.wrap(r.handleVerifyCheckout))
		rt.Post("/audits/{session}", r.wrap(r.handleRunAudit))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			http.Error(w, err.Error(), statusFor(err))
		}
	}
}

// statusFor maps the pipeline error taxonomy to HTTP status codes. Unknown
// errors stay 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrFileValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotAuthorized),
		errors.Is(err, payment.ErrVerification):
		return http.StatusPaymentRequired
	case errors.Is(err, payment.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, payment.ErrGatewayUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrToolUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, errSessionNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

var errSessionNotFound = errors.New("audit session not found")

// POST /v1/checkout
// Body: {"email": "you@company.com"}
func (r *Router) handleStartCheckout(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return nil
	}
	if err := middleware.ValidateEmail(body.Email); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	sess := r.sessions.Begin(body.Email)
	checkout, err := sess.Gate.StartCheckout(req.Context(), body.Email)
	if err != nil {
		r.sessions.End(sess.ID)
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"audit_session":    sess.ID,
		"checkout_session": checkout.SessionID,
		"checkout_url":     checkout.URL,
	})
}

// POST /v1/checkout/{session}/verify
// Body: {"checkout_session_id": "cs_..."}
func (r *Router) handleVerifyCheckout(w http.ResponseWriter, req *http.Request) error {
	sess, err := r.session(req)
	if err != nil {
		return err
	}

	var body struct {
		CheckoutSessionID string `json:"checkout_session_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return nil
	}

	if err := sess.Gate.Verify(req.Context(), body.CheckoutSessionID); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"audit_session": sess.ID,
		"status":        string(sess.Gate.State()),
	})
}

// POST /v1/audits/{session}
// Multipart upload, field "contract". Blocks until the audit completes or
// fails; the report is emailed before the response returns.
func (r *Router) handleRunAudit(w http.ResponseWriter, req *http.Request) error {
	sess, err := r.session(req)
	if err != nil {
		return err
	}

	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart upload", http.StatusBadRequest)
		return nil
	}
	file, header, err := req.FormFile("contract")
	if err != nil {
		http.Error(w, "contract file is required", http.StatusBadRequest)
		return nil
	}
	defer file.Close()

	middleware.IncrementAudits()
	middleware.IncrementAuditsRunning()
	defer middleware.DecrementAuditsRunning()

	filename := middleware.SanitizeFilename(header.Filename)
	result, err := r.auditSvc.Run(req.Context(), sess, filename, file)
	if err != nil {
		middleware.IncrementAuditsFailed()
		log.Printf("audit failed: session=%s err=%v", sess.ID, err)
		return err
	}

	// One payment, one audit: the session is spent.
	r.sessions.End(sess.ID)

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(result)
}

func (r *Router) session(req *http.Request) (*domain.Session, error) {
	id := chi.URLParam(req, "session")
	if err := middleware.ValidateSessionID(id); err != nil {
		return nil, fmt.Errorf("%w: %v", errSessionNotFound, err)
	}
	sess := r.sessions.Get(id)
	if sess == nil {
		return nil, errSessionNotFound
	}
	return sess, nil
}
