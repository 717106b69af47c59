package routes

import (
	"net/http"
	"time"

	"batch-run-inspector/api/rest/handlers"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *mux.Router, insp handlers.RunInspector, timeout time.Duration, log *logrus.Entry) {
	runHandler := handlers.NewRunHandler(insp, timeout, log)

	api := r.PathPrefix("/v1").Subrouter()

	// Run endpoints
	api.HandleFunc("/runs/{id}/tasks", runHandler.GetRunTasks).Methods("GET")
	api.HandleFunc("/runs/{id}/children", runHandler.GetRunChildren).Methods("GET")

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")
}
