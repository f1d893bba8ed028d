package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"crm-softphone-connector/pkg/bridge"
	"crm-softphone-connector/pkg/config"
	"crm-softphone-connector/pkg/handlers"
	"crm-softphone-connector/pkg/widget"
)

func NewHTTPServer(config *config.Config, b *bridge.Bridge, emitter widget.Emitter, logger *logrus.Logger) *http.Server {
	handler := handlers.NewHandler(b, emitter, logger)

	router := mux.NewRouter()

	// Sandbox event ingress
	router.HandleFunc("/calls/{id}/updated", handler.CallUpdated).Methods("POST")
	router.HandleFunc("/calls/{id}/ended", handler.CallEnded).Methods("POST")

	// Operational routes
	router.HandleFunc("/health", handler.Health).Methods("GET")
	router.HandleFunc("/status", handler.Status).Methods("GET")
	router.HandleFunc("/queue", handler.Queue).Methods("GET")

	// Metrics endpoint
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Add logging middleware
	router.Use(loggingMiddleware(logger))

	return &http.Server{
		Addr:         ":" + config.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func loggingMiddleware(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
				"remote":   r.RemoteAddr,
			}).Debug("HTTP request processed")
		})
	}
}
