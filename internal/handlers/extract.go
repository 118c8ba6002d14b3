package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/orderflow/orderflowgo/internal/orders"
)

// ExtractTextRequest carries pasted raw order text
type ExtractTextRequest struct {
	Text string `json:"text"`
}

// ExtractImageRequest carries an uploaded screenshot as base64
type ExtractImageRequest struct {
	Data     string `json:"data"` // base64, optionally a data: URL
	MimeType string `json:"mimeType"`
}

// extractText runs the gateway over pasted text and returns the new batch
func (r *Router) extractText(w http.ResponseWriter, req *http.Request) {
	var body ExtractTextRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	batch, err := r.svc.ProcessText(req.Context(), body.Text)
	if err != nil {
		respondProcessError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, batch)
}

// extractImage runs the gateway over an uploaded screenshot
func (r *Router) extractImage(w http.ResponseWriter, req *http.Request) {
	var body ExtractImageRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	raw := body.Data
	// Accept full data URLs from file readers
	if idx := strings.Index(raw, ","); idx >= 0 && strings.HasPrefix(raw, "data:") {
		raw = raw[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid image encoding")
		return
	}
	if body.MimeType == "" {
		respondError(w, http.StatusBadRequest, "mimeType is required")
		return
	}

	batch, err := r.svc.ProcessImage(req.Context(), data, body.MimeType)
	if err != nil {
		respondProcessError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, batch)
}

func respondProcessError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orders.ErrEmptyInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, orders.ErrBusy):
		respondError(w, http.StatusConflict, err.Error())
	default:
		// One generic condition for all gateway failures
		respondError(w, http.StatusBadGateway, err.Error())
	}
}
