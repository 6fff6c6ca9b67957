package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListGroups handles GET /api/groups. The optional "note" query parameter
// restricts results to one note's groups in document order.
//
//	@Summary		List content groups
//	@Tags			groups
//	@Produce		json
//	@Param			note	query		string	false	"Restrict to one note path"
//	@Success		200		{object}	GroupListResponse
//	@Security		BearerAuth
//	@Router			/groups [get]
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	note := r.URL.Query().Get("note")
	groups, err := h.svc.ListGroups(r.Context(), note)
	if err != nil {
		writeServiceError(w, err, "list groups", slog.String("note", note))
		return
	}
	writeJSON(w, http.StatusOK, GroupListResponse{Groups: groups})
}

// GetGroup handles GET /api/groups/{id}: the group's inner markdown.
//
//	@Summary		Read a content group's inner markdown
//	@Tags			groups
//	@Produce		json
//	@Param			id	path		string	true	"Group id"
//	@Success		200	{object}	noteservice.GroupDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/groups/{id} [get]
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, err := h.svc.ReadGroup(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "read group", slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// CreateGroup handles POST /api/groups: mints a group id and appends a
// sentinel-wrapped region to the note.
//
//	@Summary		Create a content group
//	@Tags			groups
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateGroupRequest	true	"Target note and initial content"
//	@Success		201		{object}	noteservice.GroupDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/groups [post]
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	g, err := h.svc.CreateGroup(r.Context(), req.Path, req.Content)
	if err != nil {
		writeServiceError(w, err, "create group", slog.String("path", req.Path))
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

// ValidateNote handles GET /api/validate?path=: sentinel structure report.
//
//	@Summary		Report unmatched sentinels and duplicate group ids
//	@Tags			groups
//	@Produce		json
//	@Param			path	query		string	true	"Note path"
//	@Success		200		{object}	noteservice.ValidationReport
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/validate [get]
func (h *Handler) ValidateNote(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'path' is required"))
		return
	}
	rep, err := h.svc.ValidateNote(r.Context(), path)
	if err != nil {
		writeServiceError(w, err, "validate note", slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// GetDocument handles GET /api/documents/*: the note as a structural tree.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	path, ok := requirePath(w, r)
	if !ok {
		return
	}
	root, cs, err := h.svc.GetDocument(r.Context(), path)
	if err != nil {
		writeServiceError(w, err, "get document", slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, DocumentResponse{Path: path, Checksum: cs, Document: toNodeDTO(root)})
}

// UpdateDocument handles PUT /api/documents/*: serializes the posted tree
// back to markdown and writes it with optimistic concurrency.
func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	path, ok := requirePath(w, r)
	if !ok {
		return
	}
	var req struct {
		Document *NodeDTO `json:"document"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	root, err := fromNodeDTO(req.Document)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	note, err := h.svc.UpdateDocument(r.Context(), path, root, ifMatchHeader(r))
	if err != nil {
		writeServiceError(w, err, "update document", slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// GetBlocks handles GET /api/blocks/*: the note as the flat block list.
func (h *Handler) GetBlocks(w http.ResponseWriter, r *http.Request) {
	path, ok := requirePath(w, r)
	if !ok {
		return
	}
	blocks, cs, err := h.svc.GetBlocks(r.Context(), path)
	if err != nil {
		writeServiceError(w, err, "get blocks", slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, BlocksResponse{Path: path, Checksum: cs, Blocks: blocks})
}

// UpdateBlocks handles PUT /api/blocks/*: serializes posted blocks back to
// markdown and writes them with optimistic concurrency.
func (h *Handler) UpdateBlocks(w http.ResponseWriter, r *http.Request) {
	path, ok := requirePath(w, r)
	if !ok {
		return
	}
	var req BlocksResponse
	if !readJSON(w, r, &req) {
		return
	}
	note, err := h.svc.UpdateBlocks(r.Context(), path, req.Blocks, ifMatchHeader(r))
	if err != nil {
		writeServiceError(w, err, "update blocks", slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, note)
}
