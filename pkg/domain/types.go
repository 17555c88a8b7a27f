package domain

import "time"

type Role string

const (
	// RoleUnset marks an account created before registration linking resolved a role.
	RoleUnset   Role = ""
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
	RoleAdmin   Role = "admin"
)

type ApplicationStatus string

const (
	ApplicationPending ApplicationStatus = "pending"
	ApplicationLinked  ApplicationStatus = "linked"
)

type ApplicationType string

const (
	ApplicationTypeStudent ApplicationType = "student"
	ApplicationTypeMentor  ApplicationType = "mentor"
)

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// Identity is the verified result of a bearer credential: a stable external
// subject plus the claims the mentorship API is allowed to trust.
type Identity struct {
	Subject     string `json:"subject"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// IdentityUser is an account at the identity provider. It carries no
// mentorship profile; the API keeps that in Account, keyed by this ID.
type IdentityUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"-"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Account is a mentorship profile keyed by the identity provider subject.
// Role stays unset until registration linking resolves it or an admin sets it.
type Account struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email"`
	Role                 Role      `json:"role"`
	FullName             string    `json:"fullName"`
	Phone                string    `json:"phone,omitempty"`
	Headline             string    `json:"headline,omitempty"`
	Bio                  string    `json:"bio,omitempty"`
	PreferredDisciplines []string  `json:"preferredDisciplines,omitempty"`
	MentoringTopics      []string  `json:"mentoringTopics,omitempty"`
	Availability         []string  `json:"availability,omitempty"`
	IsActive             bool      `json:"isActive"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// StudentApplication is a pending student submission, created before any
// authenticated account exists and consumed exactly once by linking.
type StudentApplication struct {
	ID                   string            `json:"id"`
	Email                string            `json:"email"`
	FullName             string            `json:"fullName"`
	Phone                string            `json:"phone,omitempty"`
	Program              string            `json:"program,omitempty"`
	GraduationYear       int               `json:"graduationYear,omitempty"`
	Bio                  string            `json:"bio,omitempty"`
	PreferredDisciplines []string          `json:"preferredDisciplines,omitempty"`
	MentoringTopics      []string          `json:"mentoringTopics,omitempty"`
	Availability         []string          `json:"availability,omitempty"`
	Status               ApplicationStatus `json:"status"`
	LinkedAccountID      string            `json:"linkedAccountId,omitempty"`
	CreatedAt            time.Time         `json:"createdAt"`
}

// MentorApplication mirrors StudentApplication with mentor-specific fields.
type MentorApplication struct {
	ID                   string            `json:"id"`
	Email                string            `json:"email"`
	FullName             string            `json:"fullName"`
	Phone                string            `json:"phone,omitempty"`
	CurrentPosition      string            `json:"currentPosition,omitempty"`
	Organization         string            `json:"organization,omitempty"`
	YearsExperience      int               `json:"yearsExperience,omitempty"`
	Bio                  string            `json:"bio,omitempty"`
	PreferredDisciplines []string          `json:"preferredDisciplines,omitempty"`
	MentoringTopics      []string          `json:"mentoringTopics,omitempty"`
	Availability         []string          `json:"availability,omitempty"`
	Status               ApplicationStatus `json:"status"`
	LinkedAccountID      string            `json:"linkedAccountId,omitempty"`
	CreatedAt            time.Time         `json:"createdAt"`
}

// Cohort owns no member list; membership is derived from Assignments.
type Cohort struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	Description            string    `json:"description,omitempty"`
	StartDate              time.Time `json:"startDate"`
	EndDate                time.Time `json:"endDate"`
	SessionsPerMonth       int       `json:"sessionsPerMonth"`
	SessionDurationMinutes int       `json:"sessionDurationMinutes"`
	IsActive               bool      `json:"isActive"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

// Assignment is the authoritative mentor-student-cohort relationship record.
type Assignment struct {
	ID            string    `json:"id"`
	CohortID      string    `json:"cohortId"`
	MentorUserID  string    `json:"mentorUserId"`
	StudentUserID string    `json:"studentUserId"`
	IsActive      bool      `json:"isActive"`
	AssignedAt    time.Time `json:"assignedAt"`
}

// MentoringSession is a scheduled meeting tied to an assignment.
// ScheduledDate is "2006-01-02" and ScheduledTime is "15:04", as submitted
// by the scheduling form.
type MentoringSession struct {
	ID              string        `json:"id"`
	AssignmentID    string        `json:"assignmentId"`
	CohortID        string        `json:"cohortId"`
	ScheduledDate   string        `json:"scheduledDate"`
	ScheduledTime   string        `json:"scheduledTime"`
	DurationMinutes int           `json:"durationMinutes"`
	MeetingLink     string        `json:"meetingLink,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	Status          SessionStatus `json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// CohortMember is a derived roster entry. JoinedAt is the earliest AssignedAt
// observed for the user in the cohort; IsActive mirrors that assignment.
type CohortMember struct {
	UserID   string    `json:"userId"`
	Role     Role      `json:"role"`
	IsActive bool      `json:"isActive"`
	JoinedAt time.Time `json:"joinedAt"`
	FullName string    `json:"fullName,omitempty"`
	Email    string    `json:"email,omitempty"`
}
