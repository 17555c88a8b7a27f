package server

import (
	"net/http"
	"strings"

	"aspirelink/pkg/domain"
	"aspirelink/services/api/internal/app"
)

type sessionRequest struct {
	AssignmentID    string `json:"assignmentId"`
	ScheduledDate   string `json:"scheduledDate"`
	ScheduledTime   string `json:"scheduledTime"`
	DurationMinutes int    `json:"durationMinutes"`
	MeetingLink     string `json:"meetingLink"`
	Notes           string `json:"notes"`
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request, ident domain.Identity) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	account, ok := s.callerAccount(w, ident)
	if !ok {
		return
	}
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	session, err := s.app.CreateSession(account, app.SessionInput{
		AssignmentID:    req.AssignmentID,
		ScheduledDate:   req.ScheduledDate,
		ScheduledTime:   req.ScheduledTime,
		DurationMinutes: req.DurationMinutes,
		MeetingLink:     req.MeetingLink,
		Notes:           req.Notes,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

type sessionUpdateRequest struct {
	ScheduledDate   *string `json:"scheduledDate"`
	ScheduledTime   *string `json:"scheduledTime"`
	DurationMinutes *int    `json:"durationMinutes"`
	MeetingLink     *string `json:"meetingLink"`
	Notes           *string `json:"notes"`
	Status          *string `json:"status"`
}

func (s *Server) handleSessionByID(w http.ResponseWriter, r *http.Request, ident domain.Identity) {
	id := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	account, ok := s.callerAccount(w, ident)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodPatch:
		var req sessionUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		update := app.SessionUpdate{
			ScheduledDate:   req.ScheduledDate,
			ScheduledTime:   req.ScheduledTime,
			DurationMinutes: req.DurationMinutes,
			MeetingLink:     req.MeetingLink,
			Notes:           req.Notes,
		}
		if req.Status != nil {
			status := domain.SessionStatus(strings.ToLower(strings.TrimSpace(*req.Status)))
			update.Status = &status
		}
		session, err := s.app.UpdateSession(account, id, update)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	case http.MethodDelete:
		if err := s.app.DeleteSession(account, id); err != nil {
			writeAppError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleAdminSessions(w http.ResponseWriter, r *http.Request, _ domain.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	cohortID := r.URL.Query().Get("cohortId")
	if cohortID == "" {
		writeError(w, http.StatusBadRequest, "cohortId is required")
		return
	}
	sessions, err := s.app.CohortSessions(cohortID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": sessions, "count": len(sessions)})
}
