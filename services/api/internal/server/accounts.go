package server

import (
	"net/http"
	"strings"

	"aspirelink/pkg/domain"
	"aspirelink/services/api/internal/app"
)

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request, ident domain.Identity) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	account, err := s.app.Register(ident, req.DisplayName)
	if err != nil {
		writeAppError(w, err)
		return
	}
	s.audit(r, "api.register", "success", "subject", ident.Subject)
	writeJSON(w, http.StatusCreated, account)
}

type linkRequest struct {
	Email            string `json:"email"`
	RegistrationID   string `json:"registrationId"`
	RegistrationType string `json:"registrationType"`
}

func (s *Server) handleLinkRegistration(w http.ResponseWriter, r *http.Request, ident domain.Identity) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req linkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := s.app.Link(ident, req.Email, req.RegistrationID, domain.ApplicationType(strings.ToLower(req.RegistrationType)))
	if err != nil {
		writeAppError(w, err)
		return
	}
	if result.Success {
		s.audit(r, "api.link", "success", "subject", ident.Subject, "role", string(result.Role))
	}
	// A miss is a valid outcome: the caller routes to manual role selection.
	writeJSON(w, http.StatusOK, result)
}

type profileUpdateRequest struct {
	FullName             *string   `json:"fullName"`
	Phone                *string   `json:"phone"`
	Headline             *string   `json:"headline"`
	Bio                  *string   `json:"bio"`
	PreferredDisciplines *[]string `json:"preferredDisciplines"`
	MentoringTopics      *[]string `json:"mentoringTopics"`
	Availability         *[]string `json:"availability"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, ident domain.Identity) {
	switch r.Method {
	case http.MethodGet:
		account, ok := s.callerAccount(w, ident)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, account)
	case http.MethodPatch:
		var req profileUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		account, err := s.app.UpdateMyProfile(ident, app.ProfileUpdate{
			FullName:             req.FullName,
			Phone:                req.Phone,
			Headline:             req.Headline,
			Bio:                  req.Bio,
			PreferredDisciplines: req.PreferredDisciplines,
			MentoringTopics:      req.MentoringTopics,
			Availability:         req.Availability,
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, account)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleMyCohorts(w http.ResponseWriter, r *http.Request, ident domain.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	cohorts, err := s.app.UserCohorts(ident.Subject)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": cohorts, "count": len(cohorts)})
}

func (s *Server) handleAdminAccounts(w http.ResponseWriter, r *http.Request, _ domain.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	accounts, err := s.app.ListAccounts()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": accounts, "count": len(accounts)})
}

type adminAccountUpdateRequest struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

func (s *Server) handleAdminAccountByID(w http.ResponseWriter, r *http.Request, ident domain.Identity) {
	id := strings.TrimPrefix(r.URL.Path, "/api/admin/accounts/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPatch:
		var req adminAccountUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		update := app.AccountUpdate{IsActive: req.IsActive}
		if req.Role != nil {
			role := domain.Role(strings.ToLower(strings.TrimSpace(*req.Role)))
			update.Role = &role
		}
		account, err := s.app.AdminUpdateAccount(id, update)
		if err != nil {
			writeAppError(w, err)
			return
		}
		s.audit(r, "api.admin.account.update", "success", "account_id", id, "admin", ident.Subject)
		writeJSON(w, http.StatusOK, account)
	case http.MethodDelete:
		if err := s.app.AdminDeleteAccount(id); err != nil {
			writeAppError(w, err)
			return
		}
		s.audit(r, "api.admin.account.delete", "success", "account_id", id, "admin", ident.Subject)
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleAdminRegistrations(w http.ResponseWriter, r *http.Request, _ domain.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	status := domain.ApplicationStatus(strings.ToLower(r.URL.Query().Get("status")))
	switch strings.ToLower(r.URL.Query().Get("type")) {
	case "student":
		apps, err := s.app.ListStudentApplications(status)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": apps, "count": len(apps)})
	case "mentor":
		apps, err := s.app.ListMentorApplications(status)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": apps, "count": len(apps)})
	default:
		writeError(w, http.StatusBadRequest, "type must be student or mentor")
	}
}

func (s *Server) handleMatchSuggestions(w http.ResponseWriter, r *http.Request, _ domain.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	studentID := r.URL.Query().Get("studentId")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "studentId is required")
		return
	}
	suggestions, err := s.app.MatchSuggestions(studentID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": suggestions, "count": len(suggestions)})
}
