package handler

import (
	"log/slog"
	"net/http"

	"plantracker/internal/auth"
	"plantracker/internal/model"
	"plantracker/internal/service"
	"plantracker/internal/store"
	"plantracker/internal/ws"
)

// ItemHandler serves both item kinds. The list's type decides whether a
// request lands in the shopping or the task service; all permission
// checks stay in the services.
type ItemHandler struct {
	lists    *store.ListStore
	shopping *service.Shopping
	tasks    *service.Tasks
	apply    *service.TemplateApply
	hub      *ws.Hub
	logger   *slog.Logger
}

func NewItemHandler(lists *store.ListStore, shopping *service.Shopping, tasks *service.Tasks, apply *service.TemplateApply, hub *ws.Hub, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{lists: lists, shopping: shopping, tasks: tasks, apply: apply, hub: hub, logger: logger}
}

// listKind returns the type of the addressed list, or "" after writing
// a 404.
func (h *ItemHandler) listKind(w http.ResponseWriter, listID string) string {
	list, err := h.lists.GetByID(listID)
	if err != nil {
		writeError(w, h.logger, err)
		return ""
	}
	if list == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "List not found"})
		return ""
	}
	return list.Type
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	listID := r.PathValue("list_id")

	switch h.listKind(w, listID) {
	case model.ListTypeShopping:
		items, err := h.shopping.Lifecycle.List(userID, listID)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		if items == nil {
			items = []*model.ShoppingItem{}
		}
		writeJSON(w, http.StatusOK, items)
	case model.ListTypeTasks:
		items, err := h.tasks.Lifecycle.List(userID, listID)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		if items == nil {
			items = []*model.TaskItem{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

type itemRequest struct {
	Title           string  `json:"title"`
	ProductID       *string `json:"productId"`
	Quantity        *int    `json:"quantity"`
	DurationMinutes *int    `json:"durationMinutes"`
	RepeatEveryDays *int    `json:"repeatEveryDays"`
	SortIndex       *int    `json:"sortIndex"`
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	listID := r.PathValue("list_id")

	var req itemRequest
	if !decode(w, r, &req) {
		return
	}

	switch h.listKind(w, listID) {
	case model.ListTypeShopping:
		item, err := h.shopping.Create(userID, listID, service.CreateShoppingItemInput{
			Title:           req.Title,
			ProductID:       req.ProductID,
			Quantity:        req.Quantity,
			RepeatEveryDays: req.RepeatEveryDays,
		})
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		h.hub.Broadcast(ws.NewEvent("item", "created", item.ID, listID))
		writeJSON(w, http.StatusCreated, item)
	case model.ListTypeTasks:
		item, err := h.tasks.Create(userID, listID, service.CreateTaskItemInput{
			Title:           req.Title,
			DurationMinutes: req.DurationMinutes,
			RepeatEveryDays: req.RepeatEveryDays,
		})
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		h.hub.Broadcast(ws.NewEvent("item", "created", item.ID, listID))
		writeJSON(w, http.StatusCreated, item)
	}
}

type updateItemRequest struct {
	Title           *string `json:"title"`
	ProductID       *string `json:"productId"`
	Quantity        *int    `json:"quantity"`
	DurationMinutes *int    `json:"durationMinutes"`
	RepeatEveryDays *int    `json:"repeatEveryDays"`
	SortIndex       *int    `json:"sortIndex"`
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	listID := r.PathValue("list_id")
	itemID := r.PathValue("item_id")

	var req updateItemRequest
	if !decode(w, r, &req) {
		return
	}

	switch h.listKind(w, listID) {
	case model.ListTypeShopping:
		item, err := h.shopping.Update(userID, listID, itemID, service.UpdateShoppingItemInput{
			Title:           req.Title,
			ProductID:       req.ProductID,
			Quantity:        req.Quantity,
			RepeatEveryDays: req.RepeatEveryDays,
			SortIndex:       req.SortIndex,
		})
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		h.hub.Broadcast(ws.NewEvent("item", "updated", item.ID, listID))
		writeJSON(w, http.StatusOK, item)
	case model.ListTypeTasks:
		item, err := h.tasks.Update(userID, listID, itemID, service.UpdateTaskItemInput{
			Title:           req.Title,
			DurationMinutes: req.DurationMinutes,
			RepeatEveryDays: req.RepeatEveryDays,
			SortIndex:       req.SortIndex,
		})
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		h.hub.Broadcast(ws.NewEvent("item", "updated", item.ID, listID))
		writeJSON(w, http.StatusOK, item)
	}
}

type toggleRequest struct {
	IsChecked bool `json:"isChecked"`
}

func (h *ItemHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	listID := r.PathValue("list_id")
	itemID := r.PathValue("item_id")

	var req toggleRequest
	if !decode(w, r, &req) {
		return
	}

	switch h.listKind(w, listID) {
	case model.ListTypeShopping:
		item, err := h.shopping.Toggle(userID, listID, itemID, req.IsChecked)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		h.hub.Broadcast(ws.NewEvent("item", "toggled", item.ID, listID))
		writeJSON(w, http.StatusOK, item)
	case model.ListTypeTasks:
		item, err := h.tasks.Toggle(userID, listID, itemID, req.IsChecked)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		h.hub.Broadcast(ws.NewEvent("item", "toggled", item.ID, listID))
		writeJSON(w, http.StatusOK, item)
	}
}

func (h *ItemHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	listID := r.PathValue("list_id")

	var req reorderRequest
	if !decode(w, r, &req) {
		return
	}

	var err error
	switch h.listKind(w, listID) {
	case model.ListTypeShopping:
		err = h.shopping.Reorder(userID, listID, req.OrderedIDs, req.Checked)
	case model.ListTypeTasks:
		err = h.tasks.Reorder(userID, listID, req.OrderedIDs, req.Checked)
	default:
		return
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("item", "reordered", "", listID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	listID := r.PathValue("list_id")
	itemID := r.PathValue("item_id")

	var err error
	switch h.listKind(w, listID) {
	case model.ListTypeShopping:
		err = h.shopping.Remove(userID, listID, itemID)
	case model.ListTypeTasks:
		err = h.tasks.Remove(userID, listID, itemID)
	default:
		return
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("item", "deleted", itemID, listID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type applyTemplatesRequest struct {
	TemplateIDs []string `json:"templateIds"`
}

// ApplyTemplates merges the given templates into the list.
func (h *ItemHandler) ApplyTemplates(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("list_id")

	var req applyTemplatesRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.apply.Apply(auth.UserID(r.Context()), listID, req.TemplateIDs)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ws.NewEvent("item", "merged", "", listID))
	writeJSON(w, http.StatusOK, result)
}
