package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/config"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/metrics"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/patient"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps bundles what SetupRouter wires together.
type RouterDeps struct {
	ServiceName    string
	PatientHandler *patient.Handler
	Metrics        *metrics.Collector
	Limiter        *IPRateLimiter
	DB             Pinger
	CORS           config.CORSConfig
	Logger         *zap.Logger
}

// SetupRouter initializes all routes for the application and returns the
// handler to serve, with CORS and rate limiting applied ahead of routing.
func SetupRouter(deps RouterDeps) http.Handler {
	h := deps.PatientHandler

	r := mux.NewRouter()
	r.Use(
		otelmux.Middleware(deps.ServiceName),
		RequestLogging(deps.Logger),
		RequestMetrics(deps.Metrics),
	)

	r.HandleFunc("/health", healthHandler(deps.ServiceName, deps.DB)).Methods("GET")
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")
	}

	// /patients/search must be registered before /patients/{id}
	r.HandleFunc("/patients", h.ListPatients).Methods("GET")
	r.HandleFunc("/patients", h.CreatePatient).Methods("POST")
	r.HandleFunc("/patients/search", h.SearchPatients).Methods("GET")
	r.HandleFunc("/patients/{id}", h.GetPatient).Methods("GET")
	r.HandleFunc("/patients/{id}", h.UpdatePatient).Methods("PUT")
	r.HandleFunc("/patients/{id}", h.DeletePatient).Methods("DELETE")

	r.HandleFunc("/reports/{filename}", h.GetReport).Methods("GET")

	var handler http.Handler = r
	if deps.Limiter != nil {
		handler = deps.Limiter.Middleware(handler)
	}
	return CORSMiddleware(deps.CORS.AllowedOrigins)(handler)
}

func healthHandler(service string, db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := db.PingContext(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable","service":"` + service + `"}`))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"` + service + `"}`))
	}
}
