package store

import (
	"sort"
	"sync"

	"aspirelink/pkg/domain"
)

// MemoryStore is a mutex-guarded in-memory Store used in tests. It enforces
// the same uniqueness contracts as the Postgres implementation.
type MemoryStore struct {
	mu          sync.RWMutex
	accounts    map[string]domain.Account
	students    map[string]domain.StudentApplication
	mentors     map[string]domain.MentorApplication
	cohorts     map[string]domain.Cohort
	assignments map[string]domain.Assignment
	sessions    map[string]domain.MentoringSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:    make(map[string]domain.Account),
		students:    make(map[string]domain.StudentApplication),
		mentors:     make(map[string]domain.MentorApplication),
		cohorts:     make(map[string]domain.Cohort),
		assignments: make(map[string]domain.Assignment),
		sessions:    make(map[string]domain.MentoringSession),
	}
}

// accounts

func (s *MemoryStore) SaveAccount(a domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
	return nil
}

func (s *MemoryStore) GetAccountByID(id string) (domain.Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	return a, ok, nil
}

func (s *MemoryStore) GetAccountByEmail(email string) (domain.Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		found domain.Account
		ok    bool
	)
	for _, a := range s.accounts {
		if a.Email != email {
			continue
		}
		if !ok || a.CreatedAt.Before(found.CreatedAt) {
			found, ok = a, true
		}
	}
	return found, ok, nil
}

func (s *MemoryStore) ListAccounts() ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (s *MemoryStore) DeleteAccount(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
	return nil
}

// student applications

func (s *MemoryStore) SaveStudentApplication(a domain.StudentApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.Status == domain.ApplicationPending {
		for _, existing := range s.students {
			if existing.Email == a.Email && existing.Status == domain.ApplicationPending && existing.ID != a.ID {
				return ErrDuplicatePendingApplication
			}
		}
	}
	s.students[a.ID] = a
	return nil
}

func (s *MemoryStore) GetStudentApplication(id string) (domain.StudentApplication, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.students[id]
	return a, ok, nil
}

func (s *MemoryStore) GetPendingStudentApplicationByEmail(email string) (domain.StudentApplication, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.students {
		if a.Email == email && a.Status == domain.ApplicationPending {
			return a, true, nil
		}
	}
	return domain.StudentApplication{}, false, nil
}

func (s *MemoryStore) ListStudentApplications(status domain.ApplicationStatus) ([]domain.StudentApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	apps := make([]domain.StudentApplication, 0, len(s.students))
	for _, a := range s.students {
		if status != "" && a.Status != status {
			continue
		}
		apps = append(apps, a)
	}
	sort.Slice(apps, func(i, j int) bool {
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
	return apps, nil
}

func (s *MemoryStore) LinkStudentApplication(account domain.Account, applicationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.students[applicationID]
	if !ok || app.Status != domain.ApplicationPending {
		return ErrApplicationNotPending
	}
	// Account write precedes the status flip.
	s.accounts[account.ID] = account
	app.Status = domain.ApplicationLinked
	app.LinkedAccountID = account.ID
	s.students[applicationID] = app
	return nil
}

// mentor applications

func (s *MemoryStore) SaveMentorApplication(a domain.MentorApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.Status == domain.ApplicationPending {
		for _, existing := range s.mentors {
			if existing.Email == a.Email && existing.Status == domain.ApplicationPending && existing.ID != a.ID {
				return ErrDuplicatePendingApplication
			}
		}
	}
	s.mentors[a.ID] = a
	return nil
}

func (s *MemoryStore) GetMentorApplication(id string) (domain.MentorApplication, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.mentors[id]
	return a, ok, nil
}

func (s *MemoryStore) GetPendingMentorApplicationByEmail(email string) (domain.MentorApplication, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.mentors {
		if a.Email == email && a.Status == domain.ApplicationPending {
			return a, true, nil
		}
	}
	return domain.MentorApplication{}, false, nil
}

func (s *MemoryStore) ListMentorApplications(status domain.ApplicationStatus) ([]domain.MentorApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	apps := make([]domain.MentorApplication, 0, len(s.mentors))
	for _, a := range s.mentors {
		if status != "" && a.Status != status {
			continue
		}
		apps = append(apps, a)
	}
	sort.Slice(apps, func(i, j int) bool {
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
	return apps, nil
}

func (s *MemoryStore) LinkMentorApplication(account domain.Account, applicationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.mentors[applicationID]
	if !ok || app.Status != domain.ApplicationPending {
		return ErrApplicationNotPending
	}
	s.accounts[account.ID] = account
	app.Status = domain.ApplicationLinked
	app.LinkedAccountID = account.ID
	s.mentors[applicationID] = app
	return nil
}

// cohorts

func (s *MemoryStore) SaveCohort(c domain.Cohort) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cohorts[c.ID] = c
	return nil
}

func (s *MemoryStore) GetCohort(id string) (domain.Cohort, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cohorts[id]
	return c, ok, nil
}

func (s *MemoryStore) ListCohorts() ([]domain.Cohort, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cohorts := make([]domain.Cohort, 0, len(s.cohorts))
	for _, c := range s.cohorts {
		cohorts = append(cohorts, c)
	}
	sort.Slice(cohorts, func(i, j int) bool {
		return cohorts[i].StartDate.After(cohorts[j].StartDate)
	})
	return cohorts, nil
}

func (s *MemoryStore) DeleteCohort(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cohorts, id)
	return nil
}

// assignments

func (s *MemoryStore) SaveAssignment(a domain.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.assignments {
		if existing.ID == a.ID {
			continue
		}
		if existing.CohortID == a.CohortID && existing.MentorUserID == a.MentorUserID && existing.StudentUserID == a.StudentUserID {
			return ErrDuplicateAssignment
		}
	}
	s.assignments[a.ID] = a
	return nil
}

func (s *MemoryStore) GetAssignment(id string) (domain.Assignment, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[id]
	return a, ok, nil
}

func (s *MemoryStore) ListAssignmentsByCohort(cohortID string) ([]domain.Assignment, error) {
	return s.listAssignments(func(a domain.Assignment) bool { return a.CohortID == cohortID })
}

func (s *MemoryStore) ListAssignmentsByMentor(mentorUserID string) ([]domain.Assignment, error) {
	return s.listAssignments(func(a domain.Assignment) bool { return a.MentorUserID == mentorUserID })
}

func (s *MemoryStore) ListAssignmentsByStudent(studentUserID string) ([]domain.Assignment, error) {
	return s.listAssignments(func(a domain.Assignment) bool { return a.StudentUserID == studentUserID })
}

func (s *MemoryStore) listAssignments(match func(domain.Assignment) bool) ([]domain.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assignments := make([]domain.Assignment, 0)
	for _, a := range s.assignments {
		if match(a) {
			assignments = append(assignments, a)
		}
	}
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].AssignedAt.Before(assignments[j].AssignedAt)
	})
	return assignments, nil
}

func (s *MemoryStore) CountAssignmentsByCohort(cohortID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, a := range s.assignments {
		if a.CohortID == cohortID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) DeleteAssignment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assignments, id)
	return nil
}

// sessions

func (s *MemoryStore) SaveSession(sess domain.MentoringSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *MemoryStore) GetSession(id string) (domain.MentoringSession, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok, nil
}

func (s *MemoryStore) ListSessionsByAssignment(assignmentID string) ([]domain.MentoringSession, error) {
	return s.listSessions(func(sess domain.MentoringSession) bool { return sess.AssignmentID == assignmentID })
}

func (s *MemoryStore) ListSessionsByCohort(cohortID string) ([]domain.MentoringSession, error) {
	return s.listSessions(func(sess domain.MentoringSession) bool { return sess.CohortID == cohortID })
}

func (s *MemoryStore) listSessions(match func(domain.MentoringSession) bool) ([]domain.MentoringSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]domain.MentoringSession, 0)
	for _, sess := range s.sessions {
		if match(sess) {
			sessions = append(sessions, sess)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].ScheduledDate != sessions[j].ScheduledDate {
			return sessions[i].ScheduledDate < sessions[j].ScheduledDate
		}
		return sessions[i].ScheduledTime < sessions[j].ScheduledTime
	})
	return sessions, nil
}

func (s *MemoryStore) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
