package server

import (
	"net/http"

	"aspirelink/pkg/domain"
)

type checkEmailRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleCheckEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.checkEmailRate, "too many requests") {
		return
	}
	var req checkEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := s.app.CheckEmail(req.Email)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type studentRegistrationRequest struct {
	Email                string   `json:"email"`
	FullName             string   `json:"fullName"`
	Phone                string   `json:"phone"`
	Program              string   `json:"program"`
	GraduationYear       int      `json:"graduationYear"`
	Bio                  string   `json:"bio"`
	PreferredDisciplines []string `json:"preferredDisciplines"`
	MentoringTopics      []string `json:"mentoringTopics"`
	Availability         []string `json:"availability"`
}

func (s *Server) handleStudentRegistration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.registrationRate, "too many registration attempts") {
		s.audit(r, "api.registration.student", "rate_limited")
		return
	}
	var req studentRegistrationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	created, err := s.app.SubmitStudentApplication(domain.StudentApplication{
		Email:                req.Email,
		FullName:             req.FullName,
		Phone:                req.Phone,
		Program:              req.Program,
		GraduationYear:       req.GraduationYear,
		Bio:                  req.Bio,
		PreferredDisciplines: req.PreferredDisciplines,
		MentoringTopics:      req.MentoringTopics,
		Availability:         req.Availability,
	})
	if err != nil {
		s.audit(r, "api.registration.student", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "api.registration.student", "success", "application_id", created.ID)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": created.ID})
}

type mentorRegistrationRequest struct {
	Email                string   `json:"email"`
	FullName             string   `json:"fullName"`
	Phone                string   `json:"phone"`
	CurrentPosition      string   `json:"currentPosition"`
	Organization         string   `json:"organization"`
	YearsExperience      int      `json:"yearsExperience"`
	Bio                  string   `json:"bio"`
	PreferredDisciplines []string `json:"preferredDisciplines"`
	MentoringTopics      []string `json:"mentoringTopics"`
	Availability         []string `json:"availability"`
}

func (s *Server) handleMentorRegistration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.registrationRate, "too many registration attempts") {
		s.audit(r, "api.registration.mentor", "rate_limited")
		return
	}
	var req mentorRegistrationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	created, err := s.app.SubmitMentorApplication(domain.MentorApplication{
		Email:                req.Email,
		FullName:             req.FullName,
		Phone:                req.Phone,
		CurrentPosition:      req.CurrentPosition,
		Organization:         req.Organization,
		YearsExperience:      req.YearsExperience,
		Bio:                  req.Bio,
		PreferredDisciplines: req.PreferredDisciplines,
		MentoringTopics:      req.MentoringTopics,
		Availability:         req.Availability,
	})
	if err != nil {
		s.audit(r, "api.registration.mentor", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "api.registration.mentor", "success", "application_id", created.ID)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": created.ID})
}
