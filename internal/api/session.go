package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/starford/perthro/internal/apperr"
	"github.com/starford/perthro/internal/mention"
	"github.com/starford/perthro/internal/session"
)

// SessionHandler exposes the navigation session, the mention picker, and
// the editor-side bridge endpoints.
type SessionHandler struct {
	sess     *session.Session
	saver    *session.Saver
	locator  *mention.Locator
	resolver *mention.Resolver
	bridge   *session.ChannelBridge
}

// NewSessionHandler wires the session surface for one editor.
func NewSessionHandler(sess *session.Session, saver *session.Saver, locator *mention.Locator, resolver *mention.Resolver, bridge *session.ChannelBridge) *SessionHandler {
	return &SessionHandler{sess: sess, saver: saver, locator: locator, resolver: resolver, bridge: bridge}
}

// State handles GET /api/session.
func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SessionState{
		ActiveNote: h.sess.ActiveNote(),
		Depth:      h.sess.Depth(),
		AtRoot:     h.sess.AtRoot(),
	})
}

// Enter handles POST /api/session/enter: descend into a group on the
// active note.
func (h *SessionHandler) Enter(w http.ResponseWriter, r *http.Request) {
	var req EnterGroupRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.GroupID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("group_id is required"))
		return
	}
	if err := h.sess.EnterGroup(r.Context(), req.GroupID, req.Title, ""); err != nil {
		h.writeSessionError(w, "enter group", err)
		return
	}
	h.State(w, r)
}

// Leave handles POST /api/session/leave: ascend one level, splicing edits
// back into the parent.
func (h *SessionHandler) Leave(w http.ResponseWriter, r *http.Request) {
	if err := h.sess.LeaveGroup(r.Context()); err != nil {
		h.writeSessionError(w, "leave group", err)
		return
	}
	h.State(w, r)
}

// Clear handles DELETE /api/session: drop the navigation stack without
// splicing. Pending edits are flushed first.
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.saver.Flush(r.Context()); err != nil {
		slog.Error("session clear: flush failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.sess.ClearAll()
	w.WriteHeader(http.StatusNoContent)
}

// Content handles POST /api/session/content: the editor's latest content,
// scheduled for a debounced durable write.
func (h *SessionHandler) Content(w http.ResponseWriter, r *http.Request) {
	var req EditorContentRequest
	if !readJSON(w, r, &req) {
		return
	}
	note := h.sess.ActiveNote()
	if note == "" {
		writeJSON(w, http.StatusConflict, errorBody("no active note"))
		return
	}
	h.saver.Schedule(note, req.Content)
	w.WriteHeader(http.StatusAccepted)
}

// Mentions handles GET /api/mentions?q=: addressable notes and groups.
func (h *SessionHandler) Mentions(w http.ResponseWriter, r *http.Request) {
	targets, err := h.locator.ListTargets(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		slog.Error("mentions failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"targets": targets})
}

// Resolve handles POST /api/mentions/resolve: navigate to a selected target.
func (h *SessionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveMentionRequest
	if !readJSON(w, r, &req) {
		return
	}
	t := mention.Target{
		Kind:           req.Kind,
		ID:             req.ID,
		ParentNotePath: req.ParentNotePath,
		Label:          req.Label,
	}
	if err := h.resolver.Resolve(r.Context(), t); err != nil {
		h.writeSessionError(w, "resolve mention", err)
		return
	}
	h.State(w, r)
}

// BridgeReply handles POST /api/bridge/reply: the editor's answer to a
// bridge.request event, matched by correlation id.
func (h *SessionHandler) BridgeReply(w http.ResponseWriter, r *http.Request) {
	var req BridgeReplyRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.ID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	var replyErr error
	if req.Error != "" {
		replyErr = fmt.Errorf("editor: %s", req.Error)
	}
	if !h.bridge.Deliver(req.ID, req.Content, replyErr) {
		writeJSON(w, http.StatusGone, errorBody("no request waiting for this id"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) writeSessionError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNavigationBusy):
		writeJSON(w, http.StatusConflict, errorBody("navigation in progress"))
	case errors.Is(err, apperr.ErrEmptyStack):
		writeJSON(w, http.StatusConflict, errorBody("already at root"))
	case errors.Is(err, apperr.ErrGroupNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("group not found"))
	case errors.Is(err, apperr.ErrBridgeClosed):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("editor bridge closed"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
