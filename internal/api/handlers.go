package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sipwatch/sipwatch-bot/internal/models"
	"github.com/sirupsen/logrus"
)

// Runner executes one pipeline invocation
type Runner interface {
	Run(ctx context.Context) *models.Execution
}

// NewRouter registers the trigger and health endpoints
func NewRouter(runner Runner) *mux.Router {
	router := mux.NewRouter()

	// Health check endpoint
	router.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)

	// Scheduler trigger endpoints
	router.HandleFunc("/api/cron", triggerHandler(runner)).Methods(http.MethodGet)
	router.HandleFunc("/trigger", triggerHandler(runner)).Methods(http.MethodGet)

	return router
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

// triggerHandler runs the pipeline synchronously. Stage failures are only
// reported in the body; the status is always 200.
func triggerHandler(runner Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exec := runner.Run(r.Context())

		logrus.WithFields(logrus.Fields{
			"run_id":   exec.RunID,
			"duration": exec.Duration.String(),
			"remote":   r.RemoteAddr,
		}).Info("Triggered pipeline run finished")

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(exec.Summary()))
	}
}
