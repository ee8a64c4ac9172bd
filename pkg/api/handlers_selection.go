package api

import (
	"errors"
	"net/http"

	"github.com/dd0wney/cluso-eyeball/pkg/interaction"
	"github.com/dd0wney/cluso-eyeball/pkg/menu"
)

// handleClick applies a click event. An empty body or empty node list is a
// click on the canvas.
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var ev interaction.ClickEvent
	if err := decodeJSON(r, &ev); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, snap, err := s.ws.Click(r.Context(), ev)
	if err != nil {
		s.respondWorkspaceError(w, r, err, "click")
		return
	}
	s.respondJSON(w, http.StatusOK, ClickResponse{Outcome: outcome.String(), Snapshot: snap})
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ws.Snapshot(r.Context())
	if err != nil {
		s.respondWorkspaceError(w, r, err, "selection")
		return
	}
	s.respondJSON(w, http.StatusOK, selectionResponse(snap))
}

// handleMenu returns the open menu or 404 when none is open.
func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	m, ok, err := s.ws.Menu(r.Context())
	if err != nil {
		s.respondWorkspaceError(w, r, err, "menu")
		return
	}
	if !ok {
		s.respondError(w, http.StatusNotFound, "no menu open")
		return
	}
	s.respondJSON(w, http.StatusOK, m)
}

// handleCloseMenu dismisses the menu, which also clears the selection.
func (s *Server) handleCloseMenu(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ws.CloseMenu(r.Context())
	if err != nil {
		s.respondWorkspaceError(w, r, err, "close menu")
		return
	}
	s.respondJSON(w, http.StatusOK, selectionResponse(snap))
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	var req InvokeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Action == "" {
		s.respondError(w, http.StatusBadRequest, "action is required")
		return
	}

	result, err := s.ws.Invoke(r.Context(), req.Action)
	switch {
	case errors.Is(err, menu.ErrNoSelection):
		s.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, menu.ErrUnknownAction):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.respondWorkspaceError(w, r, err, "menu action")
	default:
		s.respondJSON(w, http.StatusOK, InvokeResponse{Action: req.Action, Result: result})
	}
}
