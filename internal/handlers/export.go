package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/orderflow/orderflowgo/internal/analytics"
	"github.com/orderflow/orderflowgo/internal/export"
)

// exportLabels renders the label sheet for the selected view (current
// batch when one exists, else the day view).
func (r *Router) exportLabels(w http.ResponseWriter, req *http.Request) {
	list := r.svc.Orders(dateParam(req), "All")
	if len(list) == 0 {
		respondError(w, http.StatusNotFound, "No orders to export")
		return
	}

	now := time.Now()
	pdfBytes, err := export.LabelSheet(list, now)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate PDF: %v", err))
		return
	}

	sendPDF(w, export.LabelSheetFilename(now), pdfBytes)
}

// exportReport renders the daily report. Reports are always sourced
// from the history day view, never the current batch.
func (r *Router) exportReport(w http.ResponseWriter, req *http.Request) {
	date := dateParam(req)
	dayOrders := r.svc.DayOrders(date)

	pdfBytes, err := export.DailyReport(date, analytics.Compute(dayOrders))
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate PDF: %v", err))
		return
	}

	sendPDF(w, export.ReportFilename(date), pdfBytes)
}

func sendPDF(w http.ResponseWriter, filename string, pdfBytes []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
	w.Write(pdfBytes)
}
