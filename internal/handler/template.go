package handler

import (
	"log/slog"
	"net/http"

	"plantracker/internal/auth"
	"plantracker/internal/model"
	"plantracker/internal/service"
	"plantracker/internal/ws"
)

type TemplateHandler struct {
	templates *service.Templates
	hub       *ws.Hub
	logger    *slog.Logger
}

func NewTemplateHandler(templates *service.Templates, hub *ws.Hub, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, hub: hub, logger: logger}
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.ListOwned(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if templates == nil {
		templates = []model.Template{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *TemplateHandler) ListForFamily(w http.ResponseWriter, r *http.Request) {
	view, err := h.templates.ListForFamily(auth.UserID(r.Context()), r.PathValue("family_id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.templates.Get(auth.UserID(r.Context()), r.PathValue("template_id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.TemplateInput
	if !decode(w, r, &req) {
		return
	}

	t, err := h.templates.Create(auth.UserID(r.Context()), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("template", "created", t.ID, ""))
	writeJSON(w, http.StatusCreated, t)
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.TemplateInput
	if !decode(w, r, &req) {
		return
	}

	t, err := h.templates.Update(auth.UserID(r.Context()), r.PathValue("template_id"), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("template", "updated", t.ID, ""))
	writeJSON(w, http.StatusOK, t)
}

type deleteTemplatesRequest struct {
	TemplateIDs []string `json:"templateIds"`
}

func (h *TemplateHandler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	var req deleteTemplatesRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.templates.DeleteMany(auth.UserID(r.Context()), req.TemplateIDs); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("template", "deleted", "", ""))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *TemplateHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.templates.Reorder(auth.UserID(r.Context()), req.OrderedIDs); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("template", "reordered", "", ""))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type addTemplateItemsRequest struct {
	Items []service.TemplateItemInput `json:"items"`
}

func (h *TemplateHandler) AddItems(w http.ResponseWriter, r *http.Request) {
	var req addTemplateItemsRequest
	if !decode(w, r, &req) {
		return
	}

	templateID := r.PathValue("template_id")
	t, err := h.templates.AddItems(auth.UserID(r.Context()), templateID, req.Items)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("template", "updated", templateID, ""))
	writeJSON(w, http.StatusOK, t)
}

func (h *TemplateHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateTemplateItemInput
	if !decode(w, r, &req) {
		return
	}

	templateID := r.PathValue("template_id")
	t, err := h.templates.UpdateItem(auth.UserID(r.Context()), templateID, r.PathValue("item_id"), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("template", "updated", templateID, ""))
	writeJSON(w, http.StatusOK, t)
}

func (h *TemplateHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	templateID := r.PathValue("template_id")
	t, err := h.templates.RemoveItem(auth.UserID(r.Context()), templateID, r.PathValue("item_id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("template", "updated", templateID, ""))
	writeJSON(w, http.StatusOK, t)
}

func (h *TemplateHandler) Share(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if !decode(w, r, &req) {
		return
	}

	templateID := r.PathValue("template_id")
	if err := h.templates.Share(auth.UserID(r.Context()), templateID, req.FamilyID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("template", "shared", templateID, ""))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *TemplateHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if !decode(w, r, &req) {
		return
	}

	templateID := r.PathValue("template_id")
	if err := h.templates.Unshare(auth.UserID(r.Context()), templateID, req.FamilyID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("template", "unshared", templateID, ""))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *TemplateHandler) SetSharing(w http.ResponseWriter, r *http.Request) {
	var req setSharingRequest
	if !decode(w, r, &req) {
		return
	}

	familyID := r.PathValue("family_id")
	if err := h.templates.SetSharing(auth.UserID(r.Context()), familyID, req.IDs); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("template", "sharing_set", familyID, ""))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
