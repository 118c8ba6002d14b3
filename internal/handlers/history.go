package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (r *Router) getCurrentBatch(w http.ResponseWriter, req *http.Request) {
	batch, ok := r.svc.CurrentBatch()
	if !ok {
		respondError(w, http.StatusNotFound, "No active batch")
		return
	}
	respondJSON(w, http.StatusOK, batch)
}

// clearCurrentBatch dismisses the working set; history keeps its copy
func (r *Router) clearCurrentBatch(w http.ResponseWriter, req *http.Request) {
	r.svc.ClearCurrent()
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (r *Router) listHistory(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, r.svc.History())
}

func (r *Router) loadFromHistory(w http.ResponseWriter, req *http.Request) {
	batch, ok := r.svc.LoadFromHistory(mux.Vars(req)["id"])
	if !ok {
		respondError(w, http.StatusNotFound, "Batch not found")
		return
	}
	respondJSON(w, http.StatusOK, batch)
}

// deleteHistory removes one batch; deleting an absent id is a no-op
func (r *Router) deleteHistory(w http.ResponseWriter, req *http.Request) {
	r.svc.DeleteHistory(mux.Vars(req)["id"])
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (r *Router) clearHistory(w http.ResponseWriter, req *http.Request) {
	r.svc.ClearHistory()
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
