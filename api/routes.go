package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func composeRoutes(app *application) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthcheck", app.healthCheckHandler)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/signup", app.signupHandler)
	mux.HandleFunc("POST /api/token", app.createTokenHandler)
	mux.HandleFunc("GET /api/private", app.requireAuth(app.privateHandler))
	mux.HandleFunc("DELETE /api/user", app.requireAuth(app.deleteAccountHandler))

	mux.HandleFunc("GET /api/events", app.requireAuth(app.getEventsHandler))
	mux.HandleFunc("POST /api/events", app.requireAuth(app.createEventHandler))
	mux.HandleFunc("POST /api/events/batch", app.requireAuth(app.createEventBatchHandler))
	mux.HandleFunc("PUT /api/events/{id}", app.requireAuth(app.updateEventHandler))
	mux.HandleFunc("DELETE /api/events/{id}", app.requireAuth(app.deleteEventHandler))

	mux.HandleFunc("GET /api/tasks", app.requireAuth(app.getTasksHandler))
	mux.HandleFunc("POST /api/tasks", app.requireAuth(app.createTaskHandler))
	mux.HandleFunc("PUT /api/tasks/{id}", app.requireAuth(app.updateTaskHandler))
	mux.HandleFunc("DELETE /api/tasks/{id}", app.requireAuth(app.deleteTaskHandler))
	mux.HandleFunc("POST /api/tasks/{id}/toggle", app.requireAuth(app.toggleTaskHandler))

	mux.HandleFunc("GET /api/calendar", app.requireAuth(app.getCalendarHandler))

	var handler http.Handler = app.collectMetrics(app.enableCORS(mux))
	if app.config.limiter.enabled {
		handler = app.rateLimit(handler)
	}
	return handler
}
