package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/dd0wney/cluso-eyeball/pkg/logging"
)

// handleGraph returns the styled, positioned graph.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ws.Snapshot(r.Context())
	if err != nil {
		s.respondWorkspaceError(w, r, err, "snapshot")
		return
	}
	w.Header().Set("X-Graph-Version", strconv.FormatUint(snap.Version, 10))
	s.respondJSON(w, http.StatusOK, snap)
}

// handleGraphDOT renders the graph as Graphviz DOT.
func (s *Server) handleGraphDOT(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ws.Snapshot(r.Context())
	if err != nil {
		s.respondWorkspaceError(w, r, err, "snapshot")
		return
	}

	var buf bytes.Buffer
	if err := snap.Visualization().ExportDOT(&buf); err != nil {
		s.respondWorkspaceError(w, r, err, "dot export")
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.Header().Set("X-Graph-Version", strconv.FormatUint(snap.Version, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("dot write failed", logging.Error(err))
	}
}

// handleRefresh pulls both sources now and rebuilds the graph.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ws.Refresh(r.Context())
	if err != nil {
		s.logger.Warn("refresh failed", logging.Error(err))
		s.respondError(w, http.StatusBadGateway, "refresh failed: "+err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}
