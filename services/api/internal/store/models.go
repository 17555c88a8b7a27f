package store

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence. String-slice profile fields are stored
// as jsonb.
type AccountModel struct {
	ID                   string `gorm:"primaryKey"`
	Email                string `gorm:"not null;index"`
	Role                 string
	FullName             string
	Phone                string
	Headline             string
	Bio                  string
	PreferredDisciplines datatypes.JSON `gorm:"type:jsonb"`
	MentoringTopics      datatypes.JSON `gorm:"type:jsonb"`
	Availability         datatypes.JSON `gorm:"type:jsonb"`
	IsActive             bool
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time
}

type StudentApplicationModel struct {
	ID                   string `gorm:"primaryKey"`
	Email                string `gorm:"not null;index"`
	FullName             string `gorm:"not null"`
	Phone                string
	Program              string
	GraduationYear       int
	Bio                  string
	PreferredDisciplines datatypes.JSON `gorm:"type:jsonb"`
	MentoringTopics      datatypes.JSON `gorm:"type:jsonb"`
	Availability         datatypes.JSON `gorm:"type:jsonb"`
	Status               string         `gorm:"not null;index"`
	LinkedAccountID      string
	CreatedAt            time.Time `gorm:"not null"`
}

type MentorApplicationModel struct {
	ID                   string `gorm:"primaryKey"`
	Email                string `gorm:"not null;index"`
	FullName             string `gorm:"not null"`
	Phone                string
	CurrentPosition      string
	Organization         string
	YearsExperience      int
	Bio                  string
	PreferredDisciplines datatypes.JSON `gorm:"type:jsonb"`
	MentoringTopics      datatypes.JSON `gorm:"type:jsonb"`
	Availability         datatypes.JSON `gorm:"type:jsonb"`
	Status               string         `gorm:"not null;index"`
	LinkedAccountID      string
	CreatedAt            time.Time `gorm:"not null"`
}

type CohortModel struct {
	ID                     string `gorm:"primaryKey"`
	Name                   string `gorm:"not null"`
	Description            string
	StartDate              time.Time
	EndDate                time.Time
	SessionsPerMonth       int
	SessionDurationMinutes int
	IsActive               bool
	CreatedAt              time.Time `gorm:"not null"`
	UpdatedAt              time.Time
}

type AssignmentModel struct {
	ID            string    `gorm:"primaryKey"`
	CohortID      string    `gorm:"not null;index;uniqueIndex:idx_assignment_triple"`
	MentorUserID  string    `gorm:"not null;index;uniqueIndex:idx_assignment_triple"`
	StudentUserID string    `gorm:"not null;index;uniqueIndex:idx_assignment_triple"`
	IsActive      bool
	AssignedAt    time.Time `gorm:"not null"`
}

type MentoringSessionModel struct {
	ID              string `gorm:"primaryKey"`
	AssignmentID    string `gorm:"not null;index"`
	CohortID        string `gorm:"not null;index"`
	ScheduledDate   string `gorm:"not null"`
	ScheduledTime   string
	DurationMinutes int
	MeetingLink     string
	Notes           string
	Status          string    `gorm:"not null"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time
}

func toJSONList(values []string) datatypes.JSON {
	if len(values) == 0 {
		return nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return data
}

func fromJSONList(data datatypes.JSON) []string {
	if len(data) == 0 {
		return nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil
	}
	return values
}
