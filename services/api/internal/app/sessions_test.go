package app

import (
	"errors"
	"testing"
	"time"

	"aspirelink/pkg/domain"
)

func sessionFixture(t *testing.T) (*App, domain.Account, domain.Account, domain.Account, domain.Assignment) {
	t.Helper()
	a, st := newTestApp(t)
	mentor := seedAccount(t, st, "mentorA", domain.RoleMentor)
	other := seedAccount(t, st, "mentorB", domain.RoleMentor)
	admin := seedAccount(t, st, "root", domain.RoleAdmin)
	seedAccount(t, st, "studentX", domain.RoleStudent)
	cohort := seedCohort(t, st, "Spring 2026")
	assignment := seedAssignment(t, st, cohort.ID, mentor.ID, "studentX", time.Now().UTC())
	return a, mentor, other, admin, assignment
}

func TestCreateSessionByOwningMentor(t *testing.T) {
	a, mentor, _, _, assignment := sessionFixture(t)
	session, err := a.CreateSession(mentor, SessionInput{
		AssignmentID:    assignment.ID,
		ScheduledDate:   "2026-03-01",
		ScheduledTime:   "14:00",
		DurationMinutes: 45,
		MeetingLink:     "https://meet.example/abc",
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.Status != domain.SessionScheduled || session.CohortID != assignment.CohortID {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestCreateSessionForbiddenForOtherMentor(t *testing.T) {
	a, _, other, _, assignment := sessionFixture(t)
	_, err := a.CreateSession(other, SessionInput{
		AssignmentID:  assignment.ID,
		ScheduledDate: "2026-03-01",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCreateSessionDateValidation(t *testing.T) {
	a, mentor, _, _, assignment := sessionFixture(t)
	cases := []SessionInput{
		{AssignmentID: assignment.ID},
		{AssignmentID: assignment.ID, ScheduledDate: "03/01/2026"},
		{AssignmentID: assignment.ID, ScheduledDate: "2026-03-01", ScheduledTime: "2pm"},
	}
	for i, input := range cases {
		if _, err := a.CreateSession(mentor, input); !IsValidation(err) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
	if _, err := a.CreateSession(mentor, SessionInput{ScheduledDate: "2026-03-01"}); !IsValidation(err) {
		t.Fatalf("missing assignment id must fail validation, got %v", err)
	}
}

func TestUpdateSessionStatus(t *testing.T) {
	a, mentor, other, admin, assignment := sessionFixture(t)
	session, err := a.CreateSession(mentor, SessionInput{AssignmentID: assignment.ID, ScheduledDate: "2026-03-01"})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	completed := domain.SessionCompleted
	updated, err := a.UpdateSession(mentor, session.ID, SessionUpdate{Status: &completed})
	if err != nil {
		t.Fatalf("update session: %v", err)
	}
	if updated.Status != domain.SessionCompleted {
		t.Fatalf("status = %s, want completed", updated.Status)
	}

	bogus := domain.SessionStatus("done")
	if _, err := a.UpdateSession(mentor, session.ID, SessionUpdate{Status: &bogus}); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := a.UpdateSession(other, session.ID, SessionUpdate{Status: &completed}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for other mentor, got %v", err)
	}

	notes := "covered resume review"
	if _, err := a.UpdateSession(admin, session.ID, SessionUpdate{Notes: &notes}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestDeleteSession(t *testing.T) {
	a, mentor, other, _, assignment := sessionFixture(t)
	session, err := a.CreateSession(mentor, SessionInput{AssignmentID: assignment.ID, ScheduledDate: "2026-03-01"})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := a.DeleteSession(other, session.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := a.DeleteSession(mentor, session.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if err := a.DeleteSession(mentor, session.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCohortSessions(t *testing.T) {
	a, mentor, _, _, assignment := sessionFixture(t)
	if _, err := a.CreateSession(mentor, SessionInput{AssignmentID: assignment.ID, ScheduledDate: "2026-03-02"}); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := a.CreateSession(mentor, SessionInput{AssignmentID: assignment.ID, ScheduledDate: "2026-03-01"}); err != nil {
		t.Fatalf("create session: %v", err)
	}
	sessions, err := a.CohortSessions(assignment.CohortID)
	if err != nil {
		t.Fatalf("cohort sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	// Ordered by scheduled date.
	if sessions[0].ScheduledDate != "2026-03-01" {
		t.Fatalf("sessions out of order: %+v", sessions)
	}
	if _, err := a.CohortSessions("missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
