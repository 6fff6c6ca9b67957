package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/perthro/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sh, if non-nil, mounts the navigation session and bridge endpoints.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// vaultRoot is used to resolve the assets directory.
func NewRouter(svc *noteservice.Service, sh *SessionHandler, authEnabled bool, token string, sseHandler http.Handler, vaultRoot string) chi.Router {
	h := NewHandler(svc)
	ah := NewAssetHandler(vaultRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/*", h.GetNote)
	r.Put("/notes/*", h.UpdateNote)
	r.Delete("/notes/*", h.DeleteNote)

	// Alternate note representations.
	r.Get("/documents/*", h.GetDocument)
	r.Put("/documents/*", h.UpdateDocument)
	r.Get("/blocks/*", h.GetBlocks)
	r.Put("/blocks/*", h.UpdateBlocks)

	// Content groups.
	r.Get("/groups", h.ListGroups)
	r.Post("/groups", h.CreateGroup)
	r.Get("/groups/{id}", h.GetGroup)
	r.Get("/validate", h.ValidateNote)

	// Search.
	r.Get("/search", h.Search)

	// Graph.
	r.Get("/graph", h.Graph)

	// Navigation session, mentions, and the editor bridge.
	if sh != nil {
		r.Get("/session", sh.State)
		r.Post("/session/enter", sh.Enter)
		r.Post("/session/leave", sh.Leave)
		r.Delete("/session", sh.Clear)
		r.Post("/session/content", sh.Content)
		r.Get("/mentions", sh.Mentions)
		r.Post("/mentions/resolve", sh.Resolve)
		r.Post("/bridge/reply", sh.BridgeReply)
	}

	// Asset upload (auth-protected).
	r.Post("/assets", ah.Upload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
