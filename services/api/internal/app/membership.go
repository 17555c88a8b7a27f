package app

import (
	"fmt"

	"aspirelink/pkg/domain"
)

// CohortMembers derives the roster of a cohort from its assignments. No
// membership is stored anywhere; this is recomputed on every call. A user id
// appearing as both mentor and student is surfaced once per role.
func (a *App) CohortMembers(cohortID string) ([]domain.CohortMember, error) {
	if _, ok, err := a.store.GetCohort(cohortID); err != nil {
		return nil, fmt.Errorf("fetch cohort: %w", err)
	} else if !ok {
		return nil, ErrNotFound
	}
	assignments, err := a.store.ListAssignmentsByCohort(cohortID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	type memberKey struct {
		userID string
		role   domain.Role
	}
	members := make(map[memberKey]domain.CohortMember)
	order := make([]memberKey, 0, len(assignments)*2)

	observe := func(userID string, role domain.Role, assignment domain.Assignment) {
		key := memberKey{userID: userID, role: role}
		existing, ok := members[key]
		if !ok {
			members[key] = domain.CohortMember{
				UserID:   userID,
				Role:     role,
				IsActive: assignment.IsActive,
				JoinedAt: assignment.AssignedAt,
			}
			order = append(order, key)
			return
		}
		// joinedAt is the earliest assignedAt observed for the user.
		if assignment.AssignedAt.Before(existing.JoinedAt) {
			existing.JoinedAt = assignment.AssignedAt
			existing.IsActive = assignment.IsActive
			members[key] = existing
		}
	}

	for _, assignment := range assignments {
		observe(assignment.MentorUserID, domain.RoleMentor, assignment)
		observe(assignment.StudentUserID, domain.RoleStudent, assignment)
	}

	roster := make([]domain.CohortMember, 0, len(order))
	for _, key := range order {
		member := members[key]
		account, ok, err := a.store.GetAccountByID(member.UserID)
		if err != nil {
			return nil, fmt.Errorf("fetch account: %w", err)
		}
		if ok {
			member.FullName = account.FullName
			member.Email = account.Email
		}
		roster = append(roster, member)
	}
	return roster, nil
}

// UserCohorts returns every cohort the user appears in, as mentor or
// student, deduplicated by cohort id.
func (a *App) UserCohorts(userID string) ([]domain.Cohort, error) {
	asMentor, err := a.store.ListAssignmentsByMentor(userID)
	if err != nil {
		return nil, fmt.Errorf("list mentor assignments: %w", err)
	}
	asStudent, err := a.store.ListAssignmentsByStudent(userID)
	if err != nil {
		return nil, fmt.Errorf("list student assignments: %w", err)
	}

	seen := make(map[string]struct{})
	cohorts := make([]domain.Cohort, 0)
	for _, assignment := range append(asMentor, asStudent...) {
		if _, ok := seen[assignment.CohortID]; ok {
			continue
		}
		seen[assignment.CohortID] = struct{}{}
		cohort, ok, err := a.store.GetCohort(assignment.CohortID)
		if err != nil {
			return nil, fmt.Errorf("fetch cohort: %w", err)
		}
		if ok {
			cohorts = append(cohorts, cohort)
		}
	}
	return cohorts, nil
}
