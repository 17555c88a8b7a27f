package app

import (
	"testing"
	"time"

	"aspirelink/internal/util"
	"aspirelink/pkg/domain"
	"aspirelink/services/api/internal/store"
)

func seedAccount(t *testing.T, st store.Store, id string, role domain.Role) domain.Account {
	t.Helper()
	now := time.Now().UTC()
	account := domain.Account{
		ID:        id,
		Email:     id + "@x.com",
		Role:      role,
		FullName:  "User " + id,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.SaveAccount(account); err != nil {
		t.Fatalf("seed account %s: %v", id, err)
	}
	return account
}

func seedCohort(t *testing.T, st store.Store, name string) domain.Cohort {
	t.Helper()
	now := time.Now().UTC()
	cohort := domain.Cohort{
		ID:        util.NewID(),
		Name:      name,
		StartDate: now,
		EndDate:   now.AddDate(0, 6, 0),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.SaveCohort(cohort); err != nil {
		t.Fatalf("seed cohort: %v", err)
	}
	return cohort
}

func seedAssignment(t *testing.T, st store.Store, cohortID, mentorID, studentID string, at time.Time) domain.Assignment {
	t.Helper()
	assignment := domain.Assignment{
		ID:            util.NewID(),
		CohortID:      cohortID,
		MentorUserID:  mentorID,
		StudentUserID: studentID,
		IsActive:      true,
		AssignedAt:    at,
	}
	if err := st.SaveAssignment(assignment); err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	return assignment
}

func TestCohortMembersDerivedRoster(t *testing.T) {
	a, st := newTestApp(t)
	seedAccount(t, st, "mentorA", domain.RoleMentor)
	seedAccount(t, st, "studentX", domain.RoleStudent)
	seedAccount(t, st, "studentY", domain.RoleStudent)
	cohort := seedCohort(t, st, "Spring 2026")
	now := time.Now().UTC()
	seedAssignment(t, st, cohort.ID, "mentorA", "studentX", now)
	seedAssignment(t, st, cohort.ID, "mentorA", "studentY", now.Add(time.Hour))

	members, err := a.CohortMembers(cohort.ID)
	if err != nil {
		t.Fatalf("cohort members: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("expected 3 members, got %d: %+v", len(members), members)
	}
	byKey := make(map[string]domain.CohortMember)
	for _, m := range members {
		byKey[m.UserID+"/"+string(m.Role)] = m
	}
	if _, ok := byKey["mentorA/mentor"]; !ok {
		t.Fatalf("mentor missing from roster: %+v", members)
	}
	if _, ok := byKey["studentX/student"]; !ok {
		t.Fatalf("studentX missing from roster: %+v", members)
	}
	if _, ok := byKey["studentY/student"]; !ok {
		t.Fatalf("studentY missing from roster: %+v", members)
	}
	if byKey["mentorA/mentor"].FullName != "User mentorA" {
		t.Fatalf("roster not enriched: %+v", byKey["mentorA/mentor"])
	}
}

func TestCohortMembersJoinedAtIsEarliestAssignment(t *testing.T) {
	a, st := newTestApp(t)
	seedAccount(t, st, "mentorA", domain.RoleMentor)
	seedAccount(t, st, "studentX", domain.RoleStudent)
	seedAccount(t, st, "studentY", domain.RoleStudent)
	cohort := seedCohort(t, st, "Spring 2026")
	early := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	late := early.Add(30 * 24 * time.Hour)
	// Later assignment saved first; joinedAt must still be the earliest.
	seedAssignment(t, st, cohort.ID, "mentorA", "studentY", late)
	seedAssignment(t, st, cohort.ID, "mentorA", "studentX", early)

	members, err := a.CohortMembers(cohort.ID)
	if err != nil {
		t.Fatalf("cohort members: %v", err)
	}
	for _, m := range members {
		if m.UserID == "mentorA" && !m.JoinedAt.Equal(early) {
			t.Fatalf("mentor joinedAt = %v, want %v", m.JoinedAt, early)
		}
	}
}

func TestCohortMembersDualRoleSurfacedPerRole(t *testing.T) {
	a, st := newTestApp(t)
	seedAccount(t, st, "dual", domain.RoleMentor)
	seedAccount(t, st, "mentorB", domain.RoleMentor)
	seedAccount(t, st, "studentX", domain.RoleStudent)
	cohort := seedCohort(t, st, "Spring 2026")
	now := time.Now().UTC()
	// "dual" mentors studentX and is mentored by mentorB.
	seedAssignment(t, st, cohort.ID, "dual", "studentX", now)
	seedAssignment(t, st, cohort.ID, "mentorB", "dual", now)

	members, err := a.CohortMembers(cohort.ID)
	if err != nil {
		t.Fatalf("cohort members: %v", err)
	}
	var dualRoles []domain.Role
	for _, m := range members {
		if m.UserID == "dual" {
			dualRoles = append(dualRoles, m.Role)
		}
	}
	if len(dualRoles) != 2 {
		t.Fatalf("dual-role user must appear once per role, got %v", dualRoles)
	}
}

func TestCohortMembersUnknownCohort(t *testing.T) {
	a, _ := newTestApp(t)
	if _, err := a.CohortMembers("missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserCohortsDeduplicated(t *testing.T) {
	a, st := newTestApp(t)
	seedAccount(t, st, "dual", domain.RoleMentor)
	seedAccount(t, st, "mentorB", domain.RoleMentor)
	seedAccount(t, st, "studentX", domain.RoleStudent)
	cohort := seedCohort(t, st, "Spring 2026")
	other := seedCohort(t, st, "Fall 2026")
	now := time.Now().UTC()
	seedAssignment(t, st, cohort.ID, "dual", "studentX", now)
	seedAssignment(t, st, cohort.ID, "mentorB", "dual", now)
	seedAssignment(t, st, other.ID, "dual", "studentX", now)

	cohorts, err := a.UserCohorts("dual")
	if err != nil {
		t.Fatalf("user cohorts: %v", err)
	}
	if len(cohorts) != 2 {
		t.Fatalf("expected 2 cohorts, got %d: %+v", len(cohorts), cohorts)
	}
}
