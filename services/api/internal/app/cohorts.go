package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"aspirelink/internal/util"
	"aspirelink/pkg/domain"
	"aspirelink/services/api/internal/store"
)

// CreateCohort creates a cohort (admin operation).
func (a *App) CreateCohort(cohort domain.Cohort) (domain.Cohort, error) {
	cohort.Name = strings.TrimSpace(cohort.Name)
	if cohort.Name == "" {
		return domain.Cohort{}, validationErr("name", "required")
	}
	now := time.Now().UTC()
	cohort.ID = util.NewID()
	cohort.IsActive = true
	cohort.CreatedAt = now
	cohort.UpdatedAt = now
	if err := a.store.SaveCohort(cohort); err != nil {
		return domain.Cohort{}, fmt.Errorf("save cohort: %w", err)
	}
	return cohort, nil
}

// CohortUpdate carries optional cohort field changes.
type CohortUpdate struct {
	Name                   *string
	Description            *string
	StartDate              *time.Time
	EndDate                *time.Time
	SessionsPerMonth       *int
	SessionDurationMinutes *int
	IsActive               *bool
}

// UpdateCohort applies a partial update (admin operation).
func (a *App) UpdateCohort(id string, update CohortUpdate) (domain.Cohort, error) {
	cohort, ok, err := a.store.GetCohort(id)
	if err != nil {
		return domain.Cohort{}, fmt.Errorf("fetch cohort: %w", err)
	}
	if !ok {
		return domain.Cohort{}, ErrNotFound
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return domain.Cohort{}, validationErr("name", "required")
		}
		cohort.Name = name
	}
	if update.Description != nil {
		cohort.Description = *update.Description
	}
	if update.StartDate != nil {
		cohort.StartDate = *update.StartDate
	}
	if update.EndDate != nil {
		cohort.EndDate = *update.EndDate
	}
	if update.SessionsPerMonth != nil {
		cohort.SessionsPerMonth = *update.SessionsPerMonth
	}
	if update.SessionDurationMinutes != nil {
		cohort.SessionDurationMinutes = *update.SessionDurationMinutes
	}
	if update.IsActive != nil {
		cohort.IsActive = *update.IsActive
	}
	cohort.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveCohort(cohort); err != nil {
		return domain.Cohort{}, fmt.Errorf("save cohort: %w", err)
	}
	return cohort, nil
}

// GetCohort fetches a cohort by id.
func (a *App) GetCohort(id string) (domain.Cohort, error) {
	cohort, ok, err := a.store.GetCohort(id)
	if err != nil {
		return domain.Cohort{}, fmt.Errorf("fetch cohort: %w", err)
	}
	if !ok {
		return domain.Cohort{}, ErrNotFound
	}
	return cohort, nil
}

// ListCohorts returns all cohorts.
func (a *App) ListCohorts() ([]domain.Cohort, error) {
	return a.store.ListCohorts()
}

// DeleteCohort deletes an empty cohort. Cohorts with assignments are
// rejected; assignments are the membership source of truth and deleting
// around them would orphan rosters.
func (a *App) DeleteCohort(id string) error {
	if _, ok, err := a.store.GetCohort(id); err != nil {
		return fmt.Errorf("fetch cohort: %w", err)
	} else if !ok {
		return ErrNotFound
	}
	count, err := a.store.CountAssignmentsByCohort(id)
	if err != nil {
		return fmt.Errorf("count assignments: %w", err)
	}
	if count > 0 {
		return ErrCohortHasAssignments
	}
	return a.store.DeleteCohort(id)
}

// CreateAssignment pairs a mentor and a student within a cohort (admin
// operation). Membership needs no separate write; it is derived from the
// assignment itself.
func (a *App) CreateAssignment(cohortID, mentorUserID, studentUserID string) (domain.Assignment, error) {
	if mentorUserID == "" {
		return domain.Assignment{}, validationErr("mentorUserId", "required")
	}
	if studentUserID == "" {
		return domain.Assignment{}, validationErr("studentUserId", "required")
	}
	if _, ok, err := a.store.GetCohort(cohortID); err != nil {
		return domain.Assignment{}, fmt.Errorf("fetch cohort: %w", err)
	} else if !ok {
		return domain.Assignment{}, ErrNotFound
	}
	mentor, ok, err := a.store.GetAccountByID(mentorUserID)
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("fetch mentor: %w", err)
	}
	if !ok || mentor.Role != domain.RoleMentor {
		return domain.Assignment{}, ErrMentorRoleRequired
	}
	student, ok, err := a.store.GetAccountByID(studentUserID)
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("fetch student: %w", err)
	}
	if !ok || student.Role != domain.RoleStudent {
		return domain.Assignment{}, ErrStudentRoleRequired
	}
	if !mentor.IsActive || !student.IsActive {
		return domain.Assignment{}, ErrAccountInactive
	}
	assignment := domain.Assignment{
		ID:            util.NewID(),
		CohortID:      cohortID,
		MentorUserID:  mentorUserID,
		StudentUserID: studentUserID,
		IsActive:      true,
		AssignedAt:    time.Now().UTC(),
	}
	if err := a.store.SaveAssignment(assignment); err != nil {
		if errors.Is(err, store.ErrDuplicateAssignment) {
			return domain.Assignment{}, ErrDuplicateAssignment
		}
		return domain.Assignment{}, fmt.Errorf("save assignment: %w", err)
	}
	return assignment, nil
}

// CohortAssignments lists the assignments of a cohort (admin operation).
func (a *App) CohortAssignments(cohortID string) ([]domain.Assignment, error) {
	if _, ok, err := a.store.GetCohort(cohortID); err != nil {
		return nil, fmt.Errorf("fetch cohort: %w", err)
	} else if !ok {
		return nil, ErrNotFound
	}
	return a.store.ListAssignmentsByCohort(cohortID)
}

// AssignmentView is an assignment enriched for a caller dashboard.
type AssignmentView struct {
	Assignment  domain.Assignment         `json:"assignment"`
	Counterpart *domain.Account           `json:"counterpart,omitempty"`
	Cohort      *domain.Cohort            `json:"cohort,omitempty"`
	Sessions    []domain.MentoringSession `json:"sessions"`
}

// MentorAssignments returns the caller's assignments as a mentor, enriched
// with the student profile, cohort and sessions.
func (a *App) MentorAssignments(userID string) ([]AssignmentView, error) {
	assignments, err := a.store.ListAssignmentsByMentor(userID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return a.enrichAssignments(assignments, func(assignment domain.Assignment) string {
		return assignment.StudentUserID
	})
}

// StudentAssignments returns the caller's assignments as a student, enriched
// with the mentor profile, cohort and sessions.
func (a *App) StudentAssignments(userID string) ([]AssignmentView, error) {
	assignments, err := a.store.ListAssignmentsByStudent(userID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return a.enrichAssignments(assignments, func(assignment domain.Assignment) string {
		return assignment.MentorUserID
	})
}

func (a *App) enrichAssignments(assignments []domain.Assignment, counterpartID func(domain.Assignment) string) ([]AssignmentView, error) {
	views := make([]AssignmentView, 0, len(assignments))
	for _, assignment := range assignments {
		view := AssignmentView{Assignment: assignment, Sessions: []domain.MentoringSession{}}
		if counterpart, ok, err := a.store.GetAccountByID(counterpartID(assignment)); err != nil {
			return nil, fmt.Errorf("fetch counterpart: %w", err)
		} else if ok {
			view.Counterpart = &counterpart
		}
		if cohort, ok, err := a.store.GetCohort(assignment.CohortID); err != nil {
			return nil, fmt.Errorf("fetch cohort: %w", err)
		} else if ok {
			view.Cohort = &cohort
		}
		sessions, err := a.store.ListSessionsByAssignment(assignment.ID)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		view.Sessions = sessions
		views = append(views, view)
	}
	return views, nil
}
