package server

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/finleaf/finops/internal/ai"
	"github.com/finleaf/finops/internal/handlers"
	"github.com/finleaf/finops/internal/httpx"
	"github.com/finleaf/finops/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares
// applied. The oracle may be nil when no API key is configured; assist
// endpoints then answer 503 instead of failing at startup.
func New(db *gorm.DB, oracle ai.Oracle, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	clientSvc := services.NewClientService(db)
	receivableSvc := services.NewReceivableService(db, log)
	invoiceSvc := services.NewInvoiceService(db)
	paymentSvc := services.NewPaymentService(db, log)

	ch := handlers.NewClientHandler(clientSvc, log)
	mux.Handle("/clients", methods(map[string]http.HandlerFunc{
		http.MethodGet:  ch.List,
		http.MethodPost: ch.Create,
	}))
	mux.Handle("/clients/get", methods(map[string]http.HandlerFunc{http.MethodGet: ch.Get}))
	mux.Handle("/clients/update", methods(map[string]http.HandlerFunc{http.MethodPost: ch.Update}))
	mux.Handle("/clients/phases", methods(map[string]http.HandlerFunc{http.MethodPost: ch.ReplacePhases}))

	rh := handlers.NewReceivableHandler(receivableSvc, log)
	mux.Handle("/receivables", methods(map[string]http.HandlerFunc{http.MethodGet: rh.List}))
	mux.Handle("/receivables/regenerate", methods(map[string]http.HandlerFunc{http.MethodPost: rh.Regenerate}))

	ih := handlers.NewInvoiceHandler(invoiceSvc, log)
	mux.Handle("/invoices", methods(map[string]http.HandlerFunc{
		http.MethodGet:  ih.List,
		http.MethodPost: ih.Create,
	}))
	mux.Handle("/invoices/get", methods(map[string]http.HandlerFunc{http.MethodGet: ih.Get}))
	mux.Handle("/invoices/send", methods(map[string]http.HandlerFunc{http.MethodPost: ih.Send}))
	mux.Handle("/invoices/void", methods(map[string]http.HandlerFunc{http.MethodPost: ih.Void}))

	ph := handlers.NewPaymentHandler(paymentSvc, log)
	mux.Handle("/payments", methods(map[string]http.HandlerFunc{
		http.MethodGet:  ph.List,
		http.MethodPost: ph.Record,
	}))
	mux.Handle("/payments/void", methods(map[string]http.HandlerFunc{http.MethodPost: ph.Void}))

	if oracle != nil {
		ah := handlers.NewAssistHandler(oracle, clientSvc, log)
		mux.Handle("/extract", methods(map[string]http.HandlerFunc{http.MethodPost: ah.Extract}))
		mux.Handle("/clients/chat", methods(map[string]http.HandlerFunc{http.MethodPost: ah.Chat}))
	} else {
		unavailable := func(w http.ResponseWriter, _ *http.Request) {
			httpx.JSONError(w, http.StatusServiceUnavailable, "oracle_not_configured", nil)
		}
		mux.HandleFunc("/extract", unavailable)
		mux.HandleFunc("/clients/chat", unavailable)
	}

	return withRecover(withLogging(mux, log), log)
}

// methods dispatches by HTTP method and answers 405 with an Allow header
// otherwise.
func methods(routes map[string]http.HandlerFunc) http.Handler {
	ms := make([]string, 0, len(routes))
	for m := range routes {
		ms = append(ms, m)
	}
	sort.Strings(ms)
	allow := strings.Join(ms, ",")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.Method]; ok {
			h(w, r)
			return
		}
		w.Header().Set("Allow", allow)
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler, log zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func withRecover(next http.Handler, log zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
