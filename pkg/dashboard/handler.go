package dashboard

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"awsdash/pkg/cloud"
	apperrors "awsdash/pkg/errors"
	"awsdash/pkg/logger"
	"awsdash/pkg/ratelimit"
	"awsdash/pkg/retry"
)

// InstanceLister returns the instances shown on the page
type InstanceLister interface {
	Instances(ctx context.Context) ([]cloud.Instance, error)
}

var pageTemplate = template.Must(template.New("instances").Parse(
	`{{range .}}{{.Label}} [{{.State}}] <br />
{{end}}`))

type handler struct {
	lister  InstanceLister
	limiter ratelimit.Limiter
	logger  logger.Logger
}

// NewHandler returns the dashboard routes. A nil limiter disables the
// request guard.
func NewHandler(lister InstanceLister, limiter ratelimit.Limiter, log logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	h := &handler{lister: lister, limiter: limiter, logger: log}

	router := mux.NewRouter()
	router.Handle("/", h.guard(http.HandlerFunc(h.instances))).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet, http.MethodHead)

	return h.logRequests(router)
}

func (h *handler) instances(w http.ResponseWriter, r *http.Request) {
	instances, err := h.lister.Instances(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, instances); err != nil {
		h.logger.WithError(err).Error("failed to render instance list")
	}
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// fail maps an inventory error to a status code. Exhausted retries are a
// temporary condition; anything else is an upstream failure.
func (h *handler) fail(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	msg := "AWS request failed"
	if errors.Is(err, retry.ErrExhausted) {
		status = http.StatusServiceUnavailable
		msg = "AWS API is throttling requests, try again later"
	}

	h.logger.ErrorWithFields("instance listing failed", map[string]interface{}{
		"error":      err,
		"error_type": string(apperrors.Classify(err)),
		"error_code": apperrors.Code(err),
		"status":     status,
	})
	http.Error(w, msg, status)
}

// guard rejects requests with 429 while the limiter is empty
func (h *handler) guard(next http.Handler) http.Handler {
	if h.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.limiter.Allow() {
			if rl, ok := h.limiter.(interface{ RetryAfter() time.Duration }); ok {
				secs := int(rl.RetryAfter().Round(time.Second) / time.Second)
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
			}
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.LogRequest(h.logger, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
