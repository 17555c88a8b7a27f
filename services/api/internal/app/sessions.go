package app

import (
	"fmt"
	"time"

	"aspirelink/internal/util"
	"aspirelink/pkg/domain"
)

// SessionInput carries the fields a mentor submits when scheduling.
type SessionInput struct {
	AssignmentID    string
	ScheduledDate   string
	ScheduledTime   string
	DurationMinutes int
	MeetingLink     string
	Notes           string
}

// CreateSession schedules a session against an assignment. The caller must
// be the assignment's mentor, or an admin.
func (a *App) CreateSession(account domain.Account, input SessionInput) (domain.MentoringSession, error) {
	if input.AssignmentID == "" {
		return domain.MentoringSession{}, validationErr("assignmentId", "required")
	}
	if err := validateSessionDate(input.ScheduledDate, input.ScheduledTime); err != nil {
		return domain.MentoringSession{}, err
	}
	assignment, ok, err := a.store.GetAssignment(input.AssignmentID)
	if err != nil {
		return domain.MentoringSession{}, fmt.Errorf("fetch assignment: %w", err)
	}
	if !ok {
		return domain.MentoringSession{}, ErrNotFound
	}
	if !canManageAssignment(account, assignment) {
		return domain.MentoringSession{}, ErrForbidden
	}
	now := time.Now().UTC()
	session := domain.MentoringSession{
		ID:              util.NewID(),
		AssignmentID:    assignment.ID,
		CohortID:        assignment.CohortID,
		ScheduledDate:   input.ScheduledDate,
		ScheduledTime:   input.ScheduledTime,
		DurationMinutes: input.DurationMinutes,
		MeetingLink:     input.MeetingLink,
		Notes:           input.Notes,
		Status:          domain.SessionScheduled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := a.store.SaveSession(session); err != nil {
		return domain.MentoringSession{}, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// SessionUpdate carries optional session field changes.
type SessionUpdate struct {
	ScheduledDate   *string
	ScheduledTime   *string
	DurationMinutes *int
	MeetingLink     *string
	Notes           *string
	Status          *domain.SessionStatus
}

// UpdateSession applies a partial update. Mentors may edit sessions on their
// own assignments; admins may edit any.
func (a *App) UpdateSession(account domain.Account, sessionID string, update SessionUpdate) (domain.MentoringSession, error) {
	session, ok, err := a.store.GetSession(sessionID)
	if err != nil {
		return domain.MentoringSession{}, fmt.Errorf("fetch session: %w", err)
	}
	if !ok {
		return domain.MentoringSession{}, ErrNotFound
	}
	if err := a.authorizeSession(account, session); err != nil {
		return domain.MentoringSession{}, err
	}
	if update.ScheduledDate != nil {
		session.ScheduledDate = *update.ScheduledDate
	}
	if update.ScheduledTime != nil {
		session.ScheduledTime = *update.ScheduledTime
	}
	if err := validateSessionDate(session.ScheduledDate, session.ScheduledTime); err != nil {
		return domain.MentoringSession{}, err
	}
	if update.DurationMinutes != nil {
		session.DurationMinutes = *update.DurationMinutes
	}
	if update.MeetingLink != nil {
		session.MeetingLink = *update.MeetingLink
	}
	if update.Notes != nil {
		session.Notes = *update.Notes
	}
	if update.Status != nil {
		switch *update.Status {
		case domain.SessionScheduled, domain.SessionCompleted, domain.SessionCancelled:
			session.Status = *update.Status
		default:
			return domain.MentoringSession{}, validationErr("status", "must be scheduled, completed or cancelled")
		}
	}
	session.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveSession(session); err != nil {
		return domain.MentoringSession{}, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// DeleteSession removes a session, under the same authorization as updates.
func (a *App) DeleteSession(account domain.Account, sessionID string) error {
	session, ok, err := a.store.GetSession(sessionID)
	if err != nil {
		return fmt.Errorf("fetch session: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	if err := a.authorizeSession(account, session); err != nil {
		return err
	}
	return a.store.DeleteSession(sessionID)
}

// CohortSessions lists every session in a cohort (admin operation).
func (a *App) CohortSessions(cohortID string) ([]domain.MentoringSession, error) {
	if _, ok, err := a.store.GetCohort(cohortID); err != nil {
		return nil, fmt.Errorf("fetch cohort: %w", err)
	} else if !ok {
		return nil, ErrNotFound
	}
	return a.store.ListSessionsByCohort(cohortID)
}

func (a *App) authorizeSession(account domain.Account, session domain.MentoringSession) error {
	if account.Role == domain.RoleAdmin {
		return nil
	}
	assignment, ok, err := a.store.GetAssignment(session.AssignmentID)
	if err != nil {
		return fmt.Errorf("fetch assignment: %w", err)
	}
	if !ok || !canManageAssignment(account, assignment) {
		return ErrForbidden
	}
	return nil
}

func canManageAssignment(account domain.Account, assignment domain.Assignment) bool {
	if account.Role == domain.RoleAdmin {
		return true
	}
	return account.Role == domain.RoleMentor && assignment.MentorUserID == account.ID
}

func validateSessionDate(date, clock string) error {
	if date == "" {
		return validationErr("scheduledDate", "required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return validationErr("scheduledDate", "must be YYYY-MM-DD")
	}
	if clock != "" {
		if _, err := time.Parse("15:04", clock); err != nil {
			return validationErr("scheduledTime", "must be HH:MM")
		}
	}
	return nil
}
