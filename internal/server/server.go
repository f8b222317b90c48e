package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"plantracker/internal/access"
	"plantracker/internal/auth"
	"plantracker/internal/handler"
	"plantracker/internal/middleware"
	"plantracker/internal/notify"
	"plantracker/internal/service"
	"plantracker/internal/store"
	"plantracker/internal/ws"
)

// Config carries the secrets the server needs beyond its database.
type Config struct {
	BotToken  string
	JWTSecret string
	TokenTTL  time.Duration
	// InitDataMaxAge bounds how old a Mini App login payload may be.
	// Zero means one hour.
	InitDataMaxAge time.Duration
}

type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	authH          *handler.AuthHandler
	listH          *handler.ListHandler
	itemH          *handler.ItemHandler
	productH       *handler.ProductHandler
	locationH      *handler.LocationHandler
	templateH      *handler.TemplateHandler
	familyH        *handler.FamilyHandler
	searchH        *handler.SearchHandler
	userStore      *store.UserStore
	tokens         *auth.TokenManager
	botToken       string
	initDataMaxAge time.Duration
	rateLimiter    *middleware.RateLimiter
	logger         *slog.Logger
}

func New(db *sql.DB, cfg Config, notifier notify.Notifier, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "ws"))
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	userStore := store.NewUserStore(db)
	listStore := store.NewListStore(db)

	listAccess := access.NewLists(db)
	famAccess := access.NewFamilies(db)

	listSvc := service.NewLists(db, listAccess, famAccess)
	shoppingSvc := service.NewShopping(db, listAccess)
	taskSvc := service.NewTasks(db, listAccess)
	applySvc := service.NewTemplateApply(db, listAccess)
	productSvc := service.NewProducts(db, famAccess)
	locationSvc := service.NewLocations(db, famAccess)
	templateSvc := service.NewTemplates(db, famAccess)
	familySvc := service.NewFamilies(db, famAccess)
	sendSvc := service.NewSendList(db, listAccess, notifier)
	searchSvc := service.NewSearch(db)

	initDataMaxAge := cfg.InitDataMaxAge
	if initDataMaxAge == 0 {
		initDataMaxAge = time.Hour
	}

	return &Server{
		db:             db,
		hub:            hub,
		authH:          handler.NewAuthHandler(userStore, tokens, cfg.BotToken, logger.With("component", "auth")),
		listH:          handler.NewListHandler(listSvc, sendSvc, hub, logger.With("component", "list")),
		itemH:          handler.NewItemHandler(listStore, shoppingSvc, taskSvc, applySvc, hub, logger.With("component", "item")),
		productH:       handler.NewProductHandler(productSvc, hub, logger.With("component", "product")),
		locationH:      handler.NewLocationHandler(locationSvc, hub, logger.With("component", "location")),
		templateH:      handler.NewTemplateHandler(templateSvc, hub, logger.With("component", "template")),
		familyH:        handler.NewFamilyHandler(familySvc, hub, logger.With("component", "family")),
		searchH:        handler.NewSearchHandler(searchSvc, logger.With("component", "search")),
		userStore:      userStore,
		tokens:         tokens,
		botToken:       cfg.BotToken,
		initDataMaxAge: initDataMaxAge,
		rateLimiter:    middleware.NewRateLimiter(),
		logger:         logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("POST /api/auth/telegram", s.rateLimitedHandler(s.authH.TelegramLogin))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.tokens, s.userStore, s.botToken, s.initDataMaxAge)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/me", s.authH.Me)

	// List routes
	mux.HandleFunc("GET /api/lists", s.listH.List)
	mux.HandleFunc("POST /api/lists", s.listH.Create)
	mux.HandleFunc("GET /api/lists/shared", s.listH.ListShared)
	mux.HandleFunc("PUT /api/lists/reorder", s.listH.Reorder)
	mux.HandleFunc("GET /api/lists/{list_id}", s.listH.Get)
	mux.HandleFunc("PATCH /api/lists/{list_id}", s.listH.Update)
	mux.HandleFunc("DELETE /api/lists/{list_id}", s.listH.Delete)
	mux.HandleFunc("POST /api/lists/{list_id}/share", s.listH.Share)
	mux.HandleFunc("POST /api/lists/{list_id}/unshare", s.listH.Unshare)
	mux.HandleFunc("POST /api/lists/{list_id}/send", s.listH.Send)
	mux.HandleFunc("POST /api/lists/{list_id}/apply-templates", s.itemH.ApplyTemplates)

	// Cross-list item search
	mux.HandleFunc("GET /api/search", s.searchH.Items)

	// Item routes
	mux.HandleFunc("GET /api/lists/{list_id}/items", s.itemH.List)
	mux.HandleFunc("POST /api/lists/{list_id}/items", s.itemH.Create)
	mux.HandleFunc("PUT /api/lists/{list_id}/items/reorder", s.itemH.Reorder)
	mux.HandleFunc("PATCH /api/lists/{list_id}/items/{item_id}", s.itemH.Update)
	mux.HandleFunc("DELETE /api/lists/{list_id}/items/{item_id}", s.itemH.Delete)
	mux.HandleFunc("POST /api/lists/{list_id}/items/{item_id}/toggle", s.itemH.Toggle)

	// Product routes
	mux.HandleFunc("GET /api/products", s.productH.List)
	mux.HandleFunc("POST /api/products", s.productH.Create)
	mux.HandleFunc("PATCH /api/products/{product_id}", s.productH.Update)
	mux.HandleFunc("DELETE /api/products/{product_id}", s.productH.Delete)
	mux.HandleFunc("POST /api/products/{product_id}/share", s.productH.Share)
	mux.HandleFunc("POST /api/products/{product_id}/unshare", s.productH.Unshare)

	// Location routes
	mux.HandleFunc("GET /api/locations", s.locationH.List)
	mux.HandleFunc("POST /api/locations", s.locationH.Create)
	mux.HandleFunc("PATCH /api/locations/{location_id}", s.locationH.Update)
	mux.HandleFunc("DELETE /api/locations/{location_id}", s.locationH.Delete)
	mux.HandleFunc("POST /api/locations/{location_id}/share", s.locationH.Share)
	mux.HandleFunc("POST /api/locations/{location_id}/unshare", s.locationH.Unshare)

	// Template routes
	mux.HandleFunc("GET /api/templates", s.templateH.List)
	mux.HandleFunc("POST /api/templates", s.templateH.Create)
	mux.HandleFunc("POST /api/templates/delete", s.templateH.DeleteMany)
	mux.HandleFunc("PUT /api/templates/reorder", s.templateH.Reorder)
	mux.HandleFunc("GET /api/templates/{template_id}", s.templateH.Get)
	mux.HandleFunc("PATCH /api/templates/{template_id}", s.templateH.Update)
	mux.HandleFunc("POST /api/templates/{template_id}/items", s.templateH.AddItems)
	mux.HandleFunc("PATCH /api/templates/{template_id}/items/{item_id}", s.templateH.UpdateItem)
	mux.HandleFunc("DELETE /api/templates/{template_id}/items/{item_id}", s.templateH.RemoveItem)
	mux.HandleFunc("POST /api/templates/{template_id}/share", s.templateH.Share)
	mux.HandleFunc("POST /api/templates/{template_id}/unshare", s.templateH.Unshare)

	// Family routes
	mux.HandleFunc("GET /api/families", s.familyH.List)
	mux.HandleFunc("POST /api/families", s.familyH.Create)
	mux.HandleFunc("PATCH /api/families/{family_id}", s.familyH.Rename)
	mux.HandleFunc("GET /api/families/{family_id}/members", s.familyH.Members)
	mux.HandleFunc("POST /api/families/{family_id}/members", s.familyH.AddMember)
	mux.HandleFunc("PATCH /api/families/{family_id}/members/{user_id}", s.familyH.UpdateMemberRole)
	mux.HandleFunc("DELETE /api/families/{family_id}/members/{user_id}", s.familyH.RemoveMember)

	// Family-scoped views and batch sharing
	mux.HandleFunc("GET /api/families/{family_id}/lists", s.listH.ListForFamily)
	mux.HandleFunc("PUT /api/families/{family_id}/sharing/lists", s.listH.SetSharing)
	mux.HandleFunc("GET /api/families/{family_id}/products", s.productH.ListForFamily)
	mux.HandleFunc("PUT /api/families/{family_id}/sharing/products", s.productH.SetSharing)
	mux.HandleFunc("GET /api/families/{family_id}/locations", s.locationH.ListForFamily)
	mux.HandleFunc("PUT /api/families/{family_id}/sharing/locations", s.locationH.SetSharing)
	mux.HandleFunc("GET /api/families/{family_id}/templates", s.templateH.ListForFamily)
	mux.HandleFunc("PUT /api/families/{family_id}/sharing/templates", s.templateH.SetSharing)

	// Live updates
	mux.HandleFunc("GET /ws", ws.Handler(s.hub, s.logger.With("component", "ws")))
}
