package web

import (
	"net/http"
	"time"

	"github.com/vbonduro/kitchzone/internal/availability"
)

type availabilityResponse struct {
	State     string     `json:"state"`
	Backend   string     `json:"backend"`
	Reason    string     `json:"reason,omitempty"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
}

func newAvailabilityResponse(v availability.Verdict) availabilityResponse {
	resp := availabilityResponse{State: v.State.String(), Backend: "local"}
	if v.Available() {
		resp.Backend = "remote"
	}
	if v.State == availability.Unavailable {
		resp.Reason = v.Kind.String()
	}
	if !v.CheckedAt.IsZero() {
		t := v.CheckedAt
		resp.CheckedAt = &t
	}
	return resp
}

func (s *Server) handleGetAvailability(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.Router.Availability(r.Context(), userID(r))
	if err != nil {
		s.writeServiceError(w, r, "check availability", err)
		return
	}
	writeJSON(w, http.StatusOK, newAvailabilityResponse(v))
}

func (s *Server) handleRetryAvailability(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.Router.Retry(r.Context(), userID(r))
	if err != nil {
		s.writeServiceError(w, r, "retry availability", err)
		return
	}
	writeJSON(w, http.StatusOK, newAvailabilityResponse(v))
}

// handleEndSession is called on sign-out so the next sign-in probes again.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Router.EndSession(userID(r)); err != nil {
		s.writeServiceError(w, r, "end session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Reorder.Stats(r.Context(), userID(r))
	if err != nil {
		s.writeServiceError(w, r, "load stats", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleListReorder(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.svc.Reorder.Suggestions(r.Context(), userID(r))
	if err != nil {
		s.writeServiceError(w, r, "load reorder suggestions", err)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}

type restockRequest struct {
	ItemIDs []string `json:"item_ids"`
}

// handleRestock restocks the listed items, or every candidate when the list
// is empty.
func (s *Server) handleRestock(w http.ResponseWriter, r *http.Request) {
	var req restockRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body", nil)
			return
		}
	}
	items, err := s.svc.Reorder.Restock(r.Context(), userID(r), req.ItemIDs)
	if err != nil {
		s.writeServiceError(w, r, "restock items", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
