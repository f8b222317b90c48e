package handler

import (
	"log/slog"
	"net/http"

	"plantracker/internal/auth"
	"plantracker/internal/model"
	"plantracker/internal/service"
	"plantracker/internal/ws"
)

type ListHandler struct {
	lists  *service.Lists
	send   *service.SendList
	hub    *ws.Hub
	logger *slog.Logger
}

func NewListHandler(lists *service.Lists, send *service.SendList, hub *ws.Hub, logger *slog.Logger) *ListHandler {
	return &ListHandler{lists: lists, send: send, hub: hub, logger: logger}
}

// List returns the caller's own lists. Optional query params: type
// (SHOPPING or TASKS) and personal=true to exclude shared lists.
func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	listType := r.URL.Query().Get("type")
	personalOnly := r.URL.Query().Get("personal") == "true"

	lists, err := h.lists.ListMine(userID, listType, personalOnly)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if lists == nil {
		lists = []model.List{}
	}
	writeJSON(w, http.StatusOK, lists)
}

// ListShared returns other owners' lists visible through the caller's
// families.
func (h *ListHandler) ListShared(w http.ResponseWriter, r *http.Request) {
	lists, err := h.lists.ListShared(auth.UserID(r.Context()), r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if lists == nil {
		lists = []model.List{}
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *ListHandler) ListForFamily(w http.ResponseWriter, r *http.Request) {
	lists, err := h.lists.ListForFamily(auth.UserID(r.Context()), r.PathValue("family_id"), r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if lists == nil {
		lists = []model.List{}
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	list, err := h.lists.Get(auth.UserID(r.Context()), r.PathValue("list_id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateListInput
	if !decode(w, r, &req) {
		return
	}

	list, err := h.lists.Create(auth.UserID(r.Context()), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("list", "created", list.ID, list.ID))
	writeJSON(w, http.StatusCreated, list)
}

func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateListInput
	if !decode(w, r, &req) {
		return
	}

	list, err := h.lists.Update(auth.UserID(r.Context()), r.PathValue("list_id"), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("list", "updated", list.ID, list.ID))
	writeJSON(w, http.StatusOK, list)
}

func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("list_id")
	if err := h.lists.Delete(auth.UserID(r.Context()), listID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("list", "deleted", listID, listID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type reorderRequest struct {
	OrderedIDs []string `json:"orderedIds"`
	Checked    bool     `json:"checked"`
}

func (h *ListHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.lists.Reorder(auth.UserID(r.Context()), req.OrderedIDs); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("list", "reordered", "", ""))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type shareRequest struct {
	FamilyID string `json:"familyId"`
}

func (h *ListHandler) Share(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if !decode(w, r, &req) {
		return
	}

	listID := r.PathValue("list_id")
	if err := h.lists.Share(auth.UserID(r.Context()), listID, req.FamilyID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("list", "shared", listID, listID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ListHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if !decode(w, r, &req) {
		return
	}

	listID := r.PathValue("list_id")
	if err := h.lists.Unshare(auth.UserID(r.Context()), listID, req.FamilyID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("list", "unshared", listID, listID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type setSharingRequest struct {
	IDs []string `json:"ids"`
}

func (h *ListHandler) SetSharing(w http.ResponseWriter, r *http.Request) {
	var req setSharingRequest
	if !decode(w, r, &req) {
		return
	}

	familyID := r.PathValue("family_id")
	if err := h.lists.SetSharing(auth.UserID(r.Context()), familyID, req.IDs); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("list", "sharing_set", familyID, ""))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Send delivers the rendered list to family members over Telegram.
func (h *ListHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req service.SendInput
	if !decode(w, r, &req) {
		return
	}

	sent, err := h.send.Send(auth.UserID(r.Context()), r.PathValue("list_id"), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sent": sent})
}
