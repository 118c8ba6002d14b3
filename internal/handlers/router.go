package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/orderflow/orderflowgo/internal/middleware"
	"github.com/orderflow/orderflowgo/internal/orders"
	"github.com/orderflow/orderflowgo/internal/websocket"
)

// Router wraps the mux router and the order service
type Router struct {
	*mux.Router
	svc *orders.Service
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(svc *orders.Service, hub *websocket.Hub, frontendDir string) *Router {
	r := &Router{
		Router: mux.NewRouter(),
		svc:    svc,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RoleFromQuery)

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Extraction
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/extract", r.extractText).Methods("POST")
	api.HandleFunc("/extract/image", r.extractImage).Methods("POST")

	// Order views and lifecycle
	api.HandleFunc("/orders", r.listOrders).Methods("GET")
	api.HandleFunc("/orders/text", r.ordersText).Methods("GET")
	api.HandleFunc("/orders/{id}/out-for-delivery", r.markOutForDelivery).Methods("POST")
	api.HandleFunc("/orders/{id}/delivered", r.markDelivered).Methods("POST")
	api.HandleFunc("/orders/{id}/cancel", r.cancelOrder).Methods("POST")
	api.HandleFunc("/orders/{id}", r.editOrder).Methods("PUT")

	// Analytics
	api.HandleFunc("/analytics", r.getAnalytics).Methods("GET")

	// Current batch
	api.HandleFunc("/batch", r.getCurrentBatch).Methods("GET")
	api.HandleFunc("/batch", r.clearCurrentBatch).Methods("DELETE")

	// History
	api.HandleFunc("/history", r.listHistory).Methods("GET")
	api.HandleFunc("/history", r.clearHistory).Methods("DELETE")
	api.HandleFunc("/history/{id}/load", r.loadFromHistory).Methods("POST")
	api.HandleFunc("/history/{id}", r.deleteHistory).Methods("DELETE")

	// Exports
	api.HandleFunc("/export/labels", r.exportLabels).Methods("GET")
	api.HandleFunc("/export/report", r.exportReport).Methods("GET")

	// Live order-update feed
	if hub != nil {
		r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
			websocket.ServeWs(hub, w, req)
		})
	}

	// Static frontend fallback
	if frontendDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(frontendDir)))
	}

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// dateParam returns the ?date= selector, defaulting to today
func dateParam(req *http.Request) string {
	if d := req.URL.Query().Get("date"); d != "" {
		return d
	}
	return time.Now().Local().Format("2006-01-02")
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
