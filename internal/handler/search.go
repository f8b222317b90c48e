package handler

import (
	"log/slog"
	"net/http"

	"plantracker/internal/auth"
	"plantracker/internal/service"
)

type SearchHandler struct {
	search *service.Search
	logger *slog.Logger
}

func NewSearchHandler(search *service.Search, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{search: search, logger: logger}
}

// Items searches items across the caller's readable lists. Query
// params: query (required), type, scope (personal, family, all) and
// familyId for the family scope.
func (h *SearchHandler) Items(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	results, err := h.search.Items(auth.UserID(r.Context()), service.SearchQuery{
		Query:    params.Get("query"),
		Type:     params.Get("type"),
		Scope:    params.Get("scope"),
		FamilyID: params.Get("familyId"),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
