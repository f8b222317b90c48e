package handler

import (
	"log/slog"
	"net/http"

	"plantracker/internal/auth"
	"plantracker/internal/model"
	"plantracker/internal/service"
	"plantracker/internal/ws"
)

type LocationHandler struct {
	locations *service.Locations
	hub       *ws.Hub
	logger    *slog.Logger
}

func NewLocationHandler(locations *service.Locations, hub *ws.Hub, logger *slog.Logger) *LocationHandler {
	return &LocationHandler{locations: locations, hub: hub, logger: logger}
}

func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	locations, err := h.locations.ListOwned(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if locations == nil {
		locations = []model.Location{}
	}
	writeJSON(w, http.StatusOK, locations)
}

func (h *LocationHandler) ListForFamily(w http.ResponseWriter, r *http.Request) {
	view, err := h.locations.ListForFamily(auth.UserID(r.Context()), r.PathValue("family_id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.LocationInput
	if !decode(w, r, &req) {
		return
	}

	l, err := h.locations.Create(auth.UserID(r.Context()), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("location", "created", l.ID, ""))
	writeJSON(w, http.StatusCreated, l)
}

func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.LocationInput
	if !decode(w, r, &req) {
		return
	}

	l, err := h.locations.Update(auth.UserID(r.Context()), r.PathValue("location_id"), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("location", "updated", l.ID, ""))
	writeJSON(w, http.StatusOK, l)
}

func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	locationID := r.PathValue("location_id")
	if err := h.locations.Delete(auth.UserID(r.Context()), locationID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("location", "deleted", locationID, ""))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *LocationHandler) Share(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if !decode(w, r, &req) {
		return
	}

	locationID := r.PathValue("location_id")
	if err := h.locations.Share(auth.UserID(r.Context()), locationID, req.FamilyID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("location", "shared", locationID, ""))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *LocationHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if !decode(w, r, &req) {
		return
	}

	locationID := r.PathValue("location_id")
	if err := h.locations.Unshare(auth.UserID(r.Context()), locationID, req.FamilyID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("location", "unshared", locationID, ""))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *LocationHandler) SetSharing(w http.ResponseWriter, r *http.Request) {
	var req setSharingRequest
	if !decode(w, r, &req) {
		return
	}

	familyID := r.PathValue("family_id")
	if err := h.locations.SetSharing(auth.UserID(r.Context()), familyID, req.IDs); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("location", "sharing_set", familyID, ""))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
