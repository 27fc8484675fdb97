package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/kitchzone/internal/domain"
	"github.com/vbonduro/kitchzone/internal/service"
)

// zoneResponse adds the normalized rectangle so clients need not handle
// negative sizes from drags up or to the left.
type zoneResponse struct {
	domain.Zone
	Bounds domain.Rect `json:"bounds"`
}

func newZoneResponse(z domain.Zone) zoneResponse {
	return zoneResponse{Zone: z, Bounds: z.Bounds()}
}

func (s *Server) handleListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := s.svc.Zones.List(r.Context(), userID(r), r.URL.Query().Get("image_id"))
	if err != nil {
		s.writeServiceError(w, r, "list zones", err)
		return
	}
	out := make([]zoneResponse, 0, len(zones))
	for _, z := range zones {
		out = append(out, newZoneResponse(z))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateZone(w http.ResponseWriter, r *http.Request) {
	var in service.ZoneInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}
	zone, err := s.svc.Zones.Create(r.Context(), userID(r), in)
	if err != nil {
		s.writeServiceError(w, r, "create zone", err)
		return
	}
	writeJSON(w, http.StatusCreated, newZoneResponse(zone))
}

func (s *Server) handleUpdateZone(w http.ResponseWriter, r *http.Request) {
	var in service.ZoneInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}
	zone, err := s.svc.Zones.Update(r.Context(), userID(r), chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeServiceError(w, r, "update zone", err)
		return
	}
	writeJSON(w, http.StatusOK, newZoneResponse(zone))
}

func (s *Server) handleDeleteZone(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Zones.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, "delete zone", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
