package handler

import (
	"log/slog"
	"net/http"

	"plantracker/internal/auth"
	"plantracker/internal/model"
	"plantracker/internal/service"
	"plantracker/internal/ws"
)

type FamilyHandler struct {
	families *service.Families
	hub      *ws.Hub
	logger   *slog.Logger
}

func NewFamilyHandler(families *service.Families, hub *ws.Hub, logger *slog.Logger) *FamilyHandler {
	return &FamilyHandler{families: families, hub: hub, logger: logger}
}

func (h *FamilyHandler) List(w http.ResponseWriter, r *http.Request) {
	families, err := h.families.ListMine(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if families == nil {
		families = []service.FamilyView{}
	}
	writeJSON(w, http.StatusOK, families)
}

type familyRequest struct {
	Name string `json:"name"`
}

func (h *FamilyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req familyRequest
	if !decode(w, r, &req) {
		return
	}

	f, err := h.families.Create(auth.UserID(r.Context()), req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("family", "created", f.ID, ""))
	writeJSON(w, http.StatusCreated, f)
}

func (h *FamilyHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req familyRequest
	if !decode(w, r, &req) {
		return
	}

	f, err := h.families.Rename(auth.UserID(r.Context()), r.PathValue("family_id"), req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("family", "updated", f.ID, ""))
	writeJSON(w, http.StatusOK, f)
}

func (h *FamilyHandler) Members(w http.ResponseWriter, r *http.Request) {
	members, err := h.families.Members(auth.UserID(r.Context()), r.PathValue("family_id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if members == nil {
		members = []model.FamilyMember{}
	}
	writeJSON(w, http.StatusOK, members)
}

type memberRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func (h *FamilyHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if !decode(w, r, &req) {
		return
	}

	familyID := r.PathValue("family_id")
	m, err := h.families.AddMember(auth.UserID(r.Context()), familyID, req.UserID, req.Role)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("family", "member_added", familyID, ""))
	writeJSON(w, http.StatusCreated, m)
}

type roleRequest struct {
	Role string `json:"role"`
}

func (h *FamilyHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if !decode(w, r, &req) {
		return
	}

	familyID := r.PathValue("family_id")
	m, err := h.families.UpdateMemberRole(auth.UserID(r.Context()), familyID, r.PathValue("user_id"), req.Role)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("family", "member_updated", familyID, ""))
	writeJSON(w, http.StatusOK, m)
}

func (h *FamilyHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	familyID := r.PathValue("family_id")
	if err := h.families.RemoveMember(auth.UserID(r.Context()), familyID, r.PathValue("user_id")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("family", "member_removed", familyID, ""))
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
