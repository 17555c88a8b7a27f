package server

import (
	"net/http"
	"strings"
	"time"

	"aspirelink/pkg/domain"
	"aspirelink/services/api/internal/app"
)

type cohortRequest struct {
	Name                   string `json:"name"`
	Description            string `json:"description"`
	StartDate              string `json:"startDate"`
	EndDate                string `json:"endDate"`
	SessionsPerMonth       int    `json:"sessionsPerMonth"`
	SessionDurationMinutes int    `json:"sessionDurationMinutes"`
}

func (s *Server) handleCohorts(w http.ResponseWriter, r *http.Request, ident domain.Identity) {
	switch r.Method {
	case http.MethodGet:
		cohorts, err := s.app.ListCohorts()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": cohorts, "count": len(cohorts)})
	case http.MethodPost:
		var req cohortRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		startDate, err := parseDate(req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
			return
		}
		endDate, err := parseDate(req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "endDate must be YYYY-MM-DD")
			return
		}
		cohort, err := s.app.CreateCohort(domain.Cohort{
			Name:                   req.Name,
			Description:            req.Description,
			StartDate:              startDate,
			EndDate:                endDate,
			SessionsPerMonth:       req.SessionsPerMonth,
			SessionDurationMinutes: req.SessionDurationMinutes,
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		s.audit(r, "api.cohort.create", "success", "cohort_id", cohort.ID, "admin", ident.Subject)
		writeJSON(w, http.StatusCreated, cohort)
	default:
		methodNotAllowed(w)
	}
}

// handleCohortSubtree dispatches /api/cohorts/{id}, /api/cohorts/{id}/assignments
// and /api/cohorts/{id}/members.
func (s *Server) handleCohortSubtree(w http.ResponseWriter, r *http.Request, ident domain.Identity) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/cohorts/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}
	if len(parts) == 1 {
		s.handleCohortByID(w, r, ident, id)
		return
	}
	switch parts[1] {
	case "assignments":
		s.handleCohortAssignments(w, r, ident, id)
	case "members":
		s.handleCohortMembers(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

type cohortUpdateRequest struct {
	Name                   *string `json:"name"`
	Description            *string `json:"description"`
	StartDate              *string `json:"startDate"`
	EndDate                *string `json:"endDate"`
	SessionsPerMonth       *int    `json:"sessionsPerMonth"`
	SessionDurationMinutes *int    `json:"sessionDurationMinutes"`
	IsActive               *bool   `json:"isActive"`
}

func (s *Server) handleCohortByID(w http.ResponseWriter, r *http.Request, ident domain.Identity, id string) {
	switch r.Method {
	case http.MethodGet:
		cohort, err := s.app.GetCohort(id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cohort)
	case http.MethodPatch:
		var req cohortUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		update := app.CohortUpdate{
			Name:                   req.Name,
			Description:            req.Description,
			SessionsPerMonth:       req.SessionsPerMonth,
			SessionDurationMinutes: req.SessionDurationMinutes,
			IsActive:               req.IsActive,
		}
		if req.StartDate != nil {
			startDate, err := parseDate(*req.StartDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
				return
			}
			update.StartDate = &startDate
		}
		if req.EndDate != nil {
			endDate, err := parseDate(*req.EndDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "endDate must be YYYY-MM-DD")
				return
			}
			update.EndDate = &endDate
		}
		cohort, err := s.app.UpdateCohort(id, update)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cohort)
	case http.MethodDelete:
		if err := s.app.DeleteCohort(id); err != nil {
			writeAppError(w, err)
			return
		}
		s.audit(r, "api.cohort.delete", "success", "cohort_id", id, "admin", ident.Subject)
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

type assignmentRequest struct {
	MentorUserID  string `json:"mentorUserId"`
	StudentUserID string `json:"studentUserId"`
}

func (s *Server) handleCohortAssignments(w http.ResponseWriter, r *http.Request, ident domain.Identity, cohortID string) {
	switch r.Method {
	case http.MethodGet:
		assignments, err := s.app.CohortAssignments(cohortID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": assignments, "count": len(assignments)})
	case http.MethodPost:
		var req assignmentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		assignment, err := s.app.CreateAssignment(cohortID, req.MentorUserID, req.StudentUserID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		s.audit(r, "api.assignment.create", "success", "assignment_id", assignment.ID, "admin", ident.Subject)
		writeJSON(w, http.StatusCreated, assignment)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCohortMembers(w http.ResponseWriter, r *http.Request, cohortID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	members, err := s.app.CohortMembers(cohortID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": members, "count": len(members)})
}

func (s *Server) handleMentorAssignments(w http.ResponseWriter, r *http.Request, ident domain.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	account, ok := s.callerAccount(w, ident)
	if !ok {
		return
	}
	if account.Role != domain.RoleMentor && account.Role != domain.RoleAdmin {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	views, err := s.app.MentorAssignments(account.ID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": views, "count": len(views)})
}

func (s *Server) handleStudentAssignments(w http.ResponseWriter, r *http.Request, ident domain.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	account, ok := s.callerAccount(w, ident)
	if !ok {
		return
	}
	if account.Role != domain.RoleStudent && account.Role != domain.RoleAdmin {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	views, err := s.app.StudentAssignments(account.ID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": views, "count": len(views)})
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", value)
}
