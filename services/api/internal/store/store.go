package store

import (
	"errors"

	"aspirelink/pkg/domain"
)

var (
	// ErrDuplicatePendingApplication is returned when a pending application
	// already exists for the email. Backed by a partial unique index in
	// Postgres so concurrent submissions cannot both land.
	ErrDuplicatePendingApplication = errors.New("pending application already exists for email")

	// ErrDuplicateAssignment is returned when the (cohort, mentor, student)
	// triple already exists.
	ErrDuplicateAssignment = errors.New("assignment already exists for cohort, mentor and student")

	// ErrApplicationNotPending is returned by the link operations when the
	// application was consumed between resolution and the write.
	ErrApplicationNotPending = errors.New("application is not pending")
)

// Store defines persistence for accounts, applications, cohorts, assignments
// and sessions. Cohort membership is never stored; it is derived from
// assignments at read time.
type Store interface {
	// accounts
	SaveAccount(domain.Account) error
	GetAccountByID(id string) (domain.Account, bool, error)
	GetAccountByEmail(email string) (domain.Account, bool, error)
	ListAccounts() ([]domain.Account, error)
	DeleteAccount(id string) error

	// student applications
	SaveStudentApplication(domain.StudentApplication) error
	GetStudentApplication(id string) (domain.StudentApplication, bool, error)
	GetPendingStudentApplicationByEmail(email string) (domain.StudentApplication, bool, error)
	ListStudentApplications(status domain.ApplicationStatus) ([]domain.StudentApplication, error)
	// LinkStudentApplication upserts the account and flips the application to
	// linked as one unit. The account write happens first; if the application
	// is no longer pending, nothing is committed and ErrApplicationNotPending
	// is returned.
	LinkStudentApplication(account domain.Account, applicationID string) error

	// mentor applications
	SaveMentorApplication(domain.MentorApplication) error
	GetMentorApplication(id string) (domain.MentorApplication, bool, error)
	GetPendingMentorApplicationByEmail(email string) (domain.MentorApplication, bool, error)
	ListMentorApplications(status domain.ApplicationStatus) ([]domain.MentorApplication, error)
	LinkMentorApplication(account domain.Account, applicationID string) error

	// cohorts
	SaveCohort(domain.Cohort) error
	GetCohort(id string) (domain.Cohort, bool, error)
	ListCohorts() ([]domain.Cohort, error)
	DeleteCohort(id string) error

	// assignments
	SaveAssignment(domain.Assignment) error
	GetAssignment(id string) (domain.Assignment, bool, error)
	ListAssignmentsByCohort(cohortID string) ([]domain.Assignment, error)
	ListAssignmentsByMentor(mentorUserID string) ([]domain.Assignment, error)
	ListAssignmentsByStudent(studentUserID string) ([]domain.Assignment, error)
	CountAssignmentsByCohort(cohortID string) (int, error)
	DeleteAssignment(id string) error

	// sessions
	SaveSession(domain.MentoringSession) error
	GetSession(id string) (domain.MentoringSession, bool, error)
	ListSessionsByAssignment(assignmentID string) ([]domain.MentoringSession, error)
	ListSessionsByCohort(cohortID string) ([]domain.MentoringSession, error)
	DeleteSession(id string) error
}
