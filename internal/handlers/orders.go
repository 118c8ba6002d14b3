package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/orderflow/orderflowgo/internal/analytics"
	"github.com/orderflow/orderflowgo/internal/export"
	"github.com/orderflow/orderflowgo/internal/middleware"
	"github.com/orderflow/orderflowgo/internal/models"
	"github.com/orderflow/orderflowgo/internal/orders"
)

// OrderView is one order plus its derived repeated-customer flag
type OrderView struct {
	models.OrderRecord
	RepeatedCustomer bool `json:"repeatedCustomer"`
}

// OrderListResponse is the listing payload for both dashboards
type OrderListResponse struct {
	Role   middleware.Role `json:"role"`
	Date   string          `json:"date"`
	Filter string          `json:"filter"`
	Count  int             `json:"count"`
	Orders []OrderView     `json:"orders"`
}

// listOrders returns the selected view: the current batch when one
// exists, otherwise the day view for ?date=. The ?status= filter is
// applied after selection.
func (r *Router) listOrders(w http.ResponseWriter, req *http.Request) {
	date := dateParam(req)
	filter := req.URL.Query().Get("status")
	if filter == "" {
		filter = "All"
	}

	// Repeated-customer detection runs against the unfiltered view
	all := r.svc.Orders(date, "All")
	filtered := r.svc.Orders(date, filter)

	views := make([]OrderView, 0, len(filtered))
	for _, o := range filtered {
		views = append(views, OrderView{
			OrderRecord:      o,
			RepeatedCustomer: analytics.RepeatedCustomer(o, all),
		})
	}

	respondJSON(w, http.StatusOK, OrderListResponse{
		Role:   middleware.GetRole(req.Context()),
		Date:   date,
		Filter: filter,
		Count:  len(views),
		Orders: views,
	})
}

// ordersText returns the copy-ready plain-text block for the view
func (r *Router) ordersText(w http.ResponseWriter, req *http.Request) {
	filter := req.URL.Query().Get("status")
	list := r.svc.Orders(dateParam(req), filter)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(export.FormatAll(list)))
}

func (r *Router) markOutForDelivery(w http.ResponseWriter, req *http.Request) {
	r.svc.MarkOutForDelivery(mux.Vars(req)["id"])
	respondJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

func (r *Router) markDelivered(w http.ResponseWriter, req *http.Request) {
	r.svc.MarkDelivered(mux.Vars(req)["id"])
	respondJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

// CancelRequest selects a preset reason, or Other with free text
type CancelRequest struct {
	Reason       string `json:"reason"`
	CustomReason string `json:"customReason"`
}

// ResolveCancelReason collapses the Other variant into its free-text
// value. The engine only ever sees one concrete reason string.
func ResolveCancelReason(reason, custom string) string {
	if reason == "Other" {
		return strings.TrimSpace(custom)
	}
	return strings.TrimSpace(reason)
}

func (r *Router) cancelOrder(w http.ResponseWriter, req *http.Request) {
	var body CancelRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	reason := ResolveCancelReason(body.Reason, body.CustomReason)
	if err := r.svc.Cancel(mux.Vars(req)["id"], reason); err != nil {
		if errors.Is(err, orders.ErrEmptyReason) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

func (r *Router) editOrder(w http.ResponseWriter, req *http.Request) {
	var patch models.OrderPatch
	if err := json.NewDecoder(req.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	r.svc.EditFields(mux.Vars(req)["id"], patch)
	respondJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

// getAnalytics summarizes the selected view for the dashboard bar
func (r *Router) getAnalytics(w http.ResponseWriter, req *http.Request) {
	list := r.svc.Orders(dateParam(req), "All")
	respondJSON(w, http.StatusOK, analytics.Compute(list))
}
