package store

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"aspirelink/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations. Pending-application
// uniqueness is enforced with partial unique indexes so concurrent
// submissions for the same email cannot both commit.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(
		&AccountModel{},
		&StudentApplicationModel{},
		&MentorApplicationModel{},
		&CohortModel{},
		&AssignmentModel{},
		&MentoringSessionModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_student_applications_pending_email
		ON student_application_models (email) WHERE status = 'pending'`).Error; err != nil {
		return nil, fmt.Errorf("create student pending index: %w", err)
	}
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_mentor_applications_pending_email
		ON mentor_application_models (email) WHERE status = 'pending'`).Error; err != nil {
		return nil, fmt.Errorf("create mentor pending index: %w", err)
	}
	return &GormStore{db: db}, nil
}

// accounts

func (s *GormStore) SaveAccount(a domain.Account) error {
	model := accountToModel(a)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&model).Error
}

func (s *GormStore) GetAccountByID(id string) (domain.Account, bool, error) {
	var model AccountModel
	if err := s.db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, err
	}
	return accountFromModel(model), true, nil
}

func (s *GormStore) GetAccountByEmail(email string) (domain.Account, bool, error) {
	var model AccountModel
	if err := s.db.Where("email = ?", email).Order("created_at asc").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, err
	}
	return accountFromModel(model), true, nil
}

func (s *GormStore) ListAccounts() ([]domain.Account, error) {
	var models []AccountModel
	if err := s.db.Order("created_at asc").Find(&models).Error; err != nil {
		return nil, err
	}
	accounts := make([]domain.Account, 0, len(models))
	for _, m := range models {
		accounts = append(accounts, accountFromModel(m))
	}
	return accounts, nil
}

func (s *GormStore) DeleteAccount(id string) error {
	return s.db.Delete(&AccountModel{}, "id = ?", id).Error
}

// student applications

func (s *GormStore) SaveStudentApplication(a domain.StudentApplication) error {
	model := studentApplicationToModel(a)
	if err := s.db.Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicatePendingApplication
		}
		return err
	}
	return nil
}

func (s *GormStore) GetStudentApplication(id string) (domain.StudentApplication, bool, error) {
	var model StudentApplicationModel
	if err := s.db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.StudentApplication{}, false, nil
		}
		return domain.StudentApplication{}, false, err
	}
	return studentApplicationFromModel(model), true, nil
}

func (s *GormStore) GetPendingStudentApplicationByEmail(email string) (domain.StudentApplication, bool, error) {
	var model StudentApplicationModel
	err := s.db.Where("email = ? AND status = ?", email, string(domain.ApplicationPending)).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.StudentApplication{}, false, nil
		}
		return domain.StudentApplication{}, false, err
	}
	return studentApplicationFromModel(model), true, nil
}

func (s *GormStore) ListStudentApplications(status domain.ApplicationStatus) ([]domain.StudentApplication, error) {
	query := s.db.Order("created_at desc")
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	var models []StudentApplicationModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	apps := make([]domain.StudentApplication, 0, len(models))
	for _, m := range models {
		apps = append(apps, studentApplicationFromModel(m))
	}
	return apps, nil
}

func (s *GormStore) LinkStudentApplication(account domain.Account, applicationID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		model := accountToModel(account)
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&model).Error; err != nil {
			return fmt.Errorf("upsert account: %w", err)
		}
		res := tx.Model(&StudentApplicationModel{}).
			Where("id = ? AND status = ?", applicationID, string(domain.ApplicationPending)).
			Updates(map[string]any{
				"status":            string(domain.ApplicationLinked),
				"linked_account_id": account.ID,
			})
		if res.Error != nil {
			return fmt.Errorf("mark application linked: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrApplicationNotPending
		}
		return nil
	})
}

// mentor applications

func (s *GormStore) SaveMentorApplication(a domain.MentorApplication) error {
	model := mentorApplicationToModel(a)
	if err := s.db.Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicatePendingApplication
		}
		return err
	}
	return nil
}

func (s *GormStore) GetMentorApplication(id string) (domain.MentorApplication, bool, error) {
	var model MentorApplicationModel
	if err := s.db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.MentorApplication{}, false, nil
		}
		return domain.MentorApplication{}, false, err
	}
	return mentorApplicationFromModel(model), true, nil
}

func (s *GormStore) GetPendingMentorApplicationByEmail(email string) (domain.MentorApplication, bool, error) {
	var model MentorApplicationModel
	err := s.db.Where("email = ? AND status = ?", email, string(domain.ApplicationPending)).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.MentorApplication{}, false, nil
		}
		return domain.MentorApplication{}, false, err
	}
	return mentorApplicationFromModel(model), true, nil
}

func (s *GormStore) ListMentorApplications(status domain.ApplicationStatus) ([]domain.MentorApplication, error) {
	query := s.db.Order("created_at desc")
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	var models []MentorApplicationModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	apps := make([]domain.MentorApplication, 0, len(models))
	for _, m := range models {
		apps = append(apps, mentorApplicationFromModel(m))
	}
	return apps, nil
}

func (s *GormStore) LinkMentorApplication(account domain.Account, applicationID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		model := accountToModel(account)
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&model).Error; err != nil {
			return fmt.Errorf("upsert account: %w", err)
		}
		res := tx.Model(&MentorApplicationModel{}).
			Where("id = ? AND status = ?", applicationID, string(domain.ApplicationPending)).
			Updates(map[string]any{
				"status":            string(domain.ApplicationLinked),
				"linked_account_id": account.ID,
			})
		if res.Error != nil {
			return fmt.Errorf("mark application linked: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrApplicationNotPending
		}
		return nil
	})
}

// cohorts

func (s *GormStore) SaveCohort(c domain.Cohort) error {
	model := cohortToModel(c)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&model).Error
}

func (s *GormStore) GetCohort(id string) (domain.Cohort, bool, error) {
	var model CohortModel
	if err := s.db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Cohort{}, false, nil
		}
		return domain.Cohort{}, false, err
	}
	return cohortFromModel(model), true, nil
}

func (s *GormStore) ListCohorts() ([]domain.Cohort, error) {
	var models []CohortModel
	if err := s.db.Order("start_date desc").Find(&models).Error; err != nil {
		return nil, err
	}
	cohorts := make([]domain.Cohort, 0, len(models))
	for _, m := range models {
		cohorts = append(cohorts, cohortFromModel(m))
	}
	return cohorts, nil
}

func (s *GormStore) DeleteCohort(id string) error {
	return s.db.Delete(&CohortModel{}, "id = ?", id).Error
}

// assignments

func (s *GormStore) SaveAssignment(a domain.Assignment) error {
	model := assignmentToModel(a)
	if err := s.db.Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateAssignment
		}
		return err
	}
	return nil
}

func (s *GormStore) GetAssignment(id string) (domain.Assignment, bool, error) {
	var model AssignmentModel
	if err := s.db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Assignment{}, false, nil
		}
		return domain.Assignment{}, false, err
	}
	return assignmentFromModel(model), true, nil
}

func (s *GormStore) ListAssignmentsByCohort(cohortID string) ([]domain.Assignment, error) {
	return s.listAssignments("cohort_id = ?", cohortID)
}

func (s *GormStore) ListAssignmentsByMentor(mentorUserID string) ([]domain.Assignment, error) {
	return s.listAssignments("mentor_user_id = ?", mentorUserID)
}

func (s *GormStore) ListAssignmentsByStudent(studentUserID string) ([]domain.Assignment, error) {
	return s.listAssignments("student_user_id = ?", studentUserID)
}

func (s *GormStore) listAssignments(cond string, arg any) ([]domain.Assignment, error) {
	var models []AssignmentModel
	if err := s.db.Where(cond, arg).Order("assigned_at asc").Find(&models).Error; err != nil {
		return nil, err
	}
	assignments := make([]domain.Assignment, 0, len(models))
	for _, m := range models {
		assignments = append(assignments, assignmentFromModel(m))
	}
	return assignments, nil
}

func (s *GormStore) CountAssignmentsByCohort(cohortID string) (int, error) {
	var count int64
	if err := s.db.Model(&AssignmentModel{}).Where("cohort_id = ?", cohortID).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (s *GormStore) DeleteAssignment(id string) error {
	return s.db.Delete(&AssignmentModel{}, "id = ?", id).Error
}

// sessions

func (s *GormStore) SaveSession(sess domain.MentoringSession) error {
	model := sessionToModel(sess)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&model).Error
}

func (s *GormStore) GetSession(id string) (domain.MentoringSession, bool, error) {
	var model MentoringSessionModel
	if err := s.db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.MentoringSession{}, false, nil
		}
		return domain.MentoringSession{}, false, err
	}
	return sessionFromModel(model), true, nil
}

func (s *GormStore) ListSessionsByAssignment(assignmentID string) ([]domain.MentoringSession, error) {
	return s.listSessions("assignment_id = ?", assignmentID)
}

func (s *GormStore) ListSessionsByCohort(cohortID string) ([]domain.MentoringSession, error) {
	return s.listSessions("cohort_id = ?", cohortID)
}

func (s *GormStore) listSessions(cond string, arg any) ([]domain.MentoringSession, error) {
	var models []MentoringSessionModel
	if err := s.db.Where(cond, arg).Order("scheduled_date asc, scheduled_time asc").Find(&models).Error; err != nil {
		return nil, err
	}
	sessions := make([]domain.MentoringSession, 0, len(models))
	for _, m := range models {
		sessions = append(sessions, sessionFromModel(m))
	}
	return sessions, nil
}

func (s *GormStore) DeleteSession(id string) error {
	return s.db.Delete(&MentoringSessionModel{}, "id = ?", id).Error
}

// model mapping

func accountToModel(a domain.Account) AccountModel {
	return AccountModel{
		ID:                   a.ID,
		Email:                a.Email,
		Role:                 string(a.Role),
		FullName:             a.FullName,
		Phone:                a.Phone,
		Headline:             a.Headline,
		Bio:                  a.Bio,
		PreferredDisciplines: toJSONList(a.PreferredDisciplines),
		MentoringTopics:      toJSONList(a.MentoringTopics),
		Availability:         toJSONList(a.Availability),
		IsActive:             a.IsActive,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

func accountFromModel(m AccountModel) domain.Account {
	return domain.Account{
		ID:                   m.ID,
		Email:                m.Email,
		Role:                 domain.Role(m.Role),
		FullName:             m.FullName,
		Phone:                m.Phone,
		Headline:             m.Headline,
		Bio:                  m.Bio,
		PreferredDisciplines: fromJSONList(m.PreferredDisciplines),
		MentoringTopics:      fromJSONList(m.MentoringTopics),
		Availability:         fromJSONList(m.Availability),
		IsActive:             m.IsActive,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func studentApplicationToModel(a domain.StudentApplication) StudentApplicationModel {
	return StudentApplicationModel{
		ID:                   a.ID,
		Email:                a.Email,
		FullName:             a.FullName,
		Phone:                a.Phone,
		Program:              a.Program,
		GraduationYear:       a.GraduationYear,
		Bio:                  a.Bio,
		PreferredDisciplines: toJSONList(a.PreferredDisciplines),
		MentoringTopics:      toJSONList(a.MentoringTopics),
		Availability:         toJSONList(a.Availability),
		Status:               string(a.Status),
		LinkedAccountID:      a.LinkedAccountID,
		CreatedAt:            a.CreatedAt,
	}
}

func studentApplicationFromModel(m StudentApplicationModel) domain.StudentApplication {
	return domain.StudentApplication{
		ID:                   m.ID,
		Email:                m.Email,
		FullName:             m.FullName,
		Phone:                m.Phone,
		Program:              m.Program,
		GraduationYear:       m.GraduationYear,
		Bio:                  m.Bio,
		PreferredDisciplines: fromJSONList(m.PreferredDisciplines),
		MentoringTopics:      fromJSONList(m.MentoringTopics),
		Availability:         fromJSONList(m.Availability),
		Status:               domain.ApplicationStatus(m.Status),
		LinkedAccountID:      m.LinkedAccountID,
		CreatedAt:            m.CreatedAt,
	}
}

func mentorApplicationToModel(a domain.MentorApplication) MentorApplicationModel {
	return MentorApplicationModel{
		ID:                   a.ID,
		Email:                a.Email,
		FullName:             a.FullName,
		Phone:                a.Phone,
		CurrentPosition:      a.CurrentPosition,
		Organization:         a.Organization,
		YearsExperience:      a.YearsExperience,
		Bio:                  a.Bio,
		PreferredDisciplines: toJSONList(a.PreferredDisciplines),
		MentoringTopics:      toJSONList(a.MentoringTopics),
		Availability:         toJSONList(a.Availability),
		Status:               string(a.Status),
		LinkedAccountID:      a.LinkedAccountID,
		CreatedAt:            a.CreatedAt,
	}
}

func mentorApplicationFromModel(m MentorApplicationModel) domain.MentorApplication {
	return domain.MentorApplication{
		ID:                   m.ID,
		Email:                m.Email,
		FullName:             m.FullName,
		Phone:                m.Phone,
		CurrentPosition:      m.CurrentPosition,
		Organization:         m.Organization,
		YearsExperience:      m.YearsExperience,
		Bio:                  m.Bio,
		PreferredDisciplines: fromJSONList(m.PreferredDisciplines),
		MentoringTopics:      fromJSONList(m.MentoringTopics),
		Availability:         fromJSONList(m.Availability),
		Status:               domain.ApplicationStatus(m.Status),
		LinkedAccountID:      m.LinkedAccountID,
		CreatedAt:            m.CreatedAt,
	}
}

func cohortToModel(c domain.Cohort) CohortModel {
	return CohortModel{
		ID:                     c.ID,
		Name:                   c.Name,
		Description:            c.Description,
		StartDate:              c.StartDate,
		EndDate:                c.EndDate,
		SessionsPerMonth:       c.SessionsPerMonth,
		SessionDurationMinutes: c.SessionDurationMinutes,
		IsActive:               c.IsActive,
		CreatedAt:              c.CreatedAt,
		UpdatedAt:              c.UpdatedAt,
	}
}

func cohortFromModel(m CohortModel) domain.Cohort {
	return domain.Cohort{
		ID:                     m.ID,
		Name:                   m.Name,
		Description:            m.Description,
		StartDate:              m.StartDate,
		EndDate:                m.EndDate,
		SessionsPerMonth:       m.SessionsPerMonth,
		SessionDurationMinutes: m.SessionDurationMinutes,
		IsActive:               m.IsActive,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
}

func assignmentToModel(a domain.Assignment) AssignmentModel {
	return AssignmentModel{
		ID:            a.ID,
		CohortID:      a.CohortID,
		MentorUserID:  a.MentorUserID,
		StudentUserID: a.StudentUserID,
		IsActive:      a.IsActive,
		AssignedAt:    a.AssignedAt,
	}
}

func assignmentFromModel(m AssignmentModel) domain.Assignment {
	return domain.Assignment{
		ID:            m.ID,
		CohortID:      m.CohortID,
		MentorUserID:  m.MentorUserID,
		StudentUserID: m.StudentUserID,
		IsActive:      m.IsActive,
		AssignedAt:    m.AssignedAt,
	}
}

func sessionToModel(s domain.MentoringSession) MentoringSessionModel {
	return MentoringSessionModel{
		ID:              s.ID,
		AssignmentID:    s.AssignmentID,
		CohortID:        s.CohortID,
		ScheduledDate:   s.ScheduledDate,
		ScheduledTime:   s.ScheduledTime,
		DurationMinutes: s.DurationMinutes,
		MeetingLink:     s.MeetingLink,
		Notes:           s.Notes,
		Status:          string(s.Status),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func sessionFromModel(m MentoringSessionModel) domain.MentoringSession {
	return domain.MentoringSession{
		ID:              m.ID,
		AssignmentID:    m.AssignmentID,
		CohortID:        m.CohortID,
		ScheduledDate:   m.ScheduledDate,
		ScheduledTime:   m.ScheduledTime,
		DurationMinutes: m.DurationMinutes,
		MeetingLink:     m.MeetingLink,
		Notes:           m.Notes,
		Status:          domain.SessionStatus(m.Status),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
