package handler

import (
	"log/slog"
	"net/http"

	"plantracker/internal/auth"
	"plantracker/internal/model"
	"plantracker/internal/service"
	"plantracker/internal/ws"
)

type ProductHandler struct {
	products *service.Products
	hub      *ws.Hub
	logger   *slog.Logger
}

func NewProductHandler(products *service.Products, hub *ws.Hub, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{products: products, hub: hub, logger: logger}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListOwned(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) ListForFamily(w http.ResponseWriter, r *http.Request) {
	view, err := h.products.ListForFamily(auth.UserID(r.Context()), r.PathValue("family_id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.ProductInput
	if !decode(w, r, &req) {
		return
	}

	p, err := h.products.Create(auth.UserID(r.Context()), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("product", "created", p.ID, ""))
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.ProductInput
	if !decode(w, r, &req) {
		return
	}

	p, err := h.products.Update(auth.UserID(r.Context()), r.PathValue("product_id"), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("product", "updated", p.ID, ""))
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("product_id")
	if err := h.products.Delete(auth.UserID(r.Context()), productID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("product", "deleted", productID, ""))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *ProductHandler) Share(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if !decode(w, r, &req) {
		return
	}

	productID := r.PathValue("product_id")
	if err := h.products.Share(auth.UserID(r.Context()), productID, req.FamilyID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("product", "shared", productID, ""))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ProductHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if !decode(w, r, &req) {
		return
	}

	productID := r.PathValue("product_id")
	if err := h.products.Unshare(auth.UserID(r.Context()), productID, req.FamilyID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("product", "unshared", productID, ""))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ProductHandler) SetSharing(w http.ResponseWriter, r *http.Request) {
	var req setSharingRequest
	if !decode(w, r, &req) {
		return
	}

	familyID := r.PathValue("family_id")
	if err := h.products.SetSharing(auth.UserID(r.Context()), familyID, req.IDs); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("product", "sharing_set", familyID, ""))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
