package app

import (
	"errors"
	"fmt"
	"time"

	"aspirelink/pkg/domain"
	"aspirelink/services/api/internal/store"
)

// CheckEmailResult reports how an email is known to the system.
type CheckEmailResult struct {
	Exists        bool        `json:"exists"`
	HasAccount    bool        `json:"hasAccount"`
	Role          domain.Role `json:"role,omitempty"`
	ApplicationID string      `json:"applicationId,omitempty"`
	FullName      string      `json:"fullName,omitempty"`
}

// LinkResult is the outcome of a linking attempt. Success=false is a valid
// outcome, not an error: the caller routes the user to manual role selection.
type LinkResult struct {
	Success bool        `json:"success"`
	Role    domain.Role `json:"role,omitempty"`
}

// CheckEmail resolves an email with no side effects. Resolution order:
// account with a role, then pending student application, then pending mentor
// application.
func (a *App) CheckEmail(email string) (CheckEmailResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return CheckEmailResult{}, validationErr("email", "required")
	}
	account, ok, err := a.store.GetAccountByEmail(email)
	if err != nil {
		return CheckEmailResult{}, fmt.Errorf("fetch account: %w", err)
	}
	if ok && account.Role != domain.RoleUnset {
		return CheckEmailResult{
			Exists:     true,
			HasAccount: true,
			Role:       account.Role,
			FullName:   account.FullName,
		}, nil
	}
	student, ok, err := a.store.GetPendingStudentApplicationByEmail(email)
	if err != nil {
		return CheckEmailResult{}, fmt.Errorf("fetch student application: %w", err)
	}
	if ok {
		return CheckEmailResult{
			Exists:        true,
			Role:          domain.RoleStudent,
			ApplicationID: student.ID,
			FullName:      student.FullName,
		}, nil
	}
	mentor, ok, err := a.store.GetPendingMentorApplicationByEmail(email)
	if err != nil {
		return CheckEmailResult{}, fmt.Errorf("fetch mentor application: %w", err)
	}
	if ok {
		return CheckEmailResult{
			Exists:        true,
			Role:          domain.RoleMentor,
			ApplicationID: mentor.ID,
			FullName:      mentor.FullName,
		}, nil
	}
	return CheckEmailResult{}, nil
}

// Link reconciles an authenticated identity with a pending application. The
// application hint is honored only when its stored email matches; otherwise
// resolution falls back to lookup by email, student before mentor. A replay
// against an already-linked application falls through to success=false.
func (a *App) Link(ident domain.Identity, email, applicationID string, applicationType domain.ApplicationType) (LinkResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		email = normalizeEmail(ident.Email)
	}
	if email == "" {
		return LinkResult{}, validationErr("email", "required")
	}

	if applicationID != "" && applicationType == domain.ApplicationTypeStudent {
		app, ok, err := a.store.GetStudentApplication(applicationID)
		if err != nil {
			return LinkResult{}, fmt.Errorf("fetch student application: %w", err)
		}
		if ok && normalizeEmail(app.Email) == email && app.Status == domain.ApplicationPending {
			return a.linkStudent(ident, app)
		}
		// Stale hint; fall back to email lookup.
	}
	if applicationID != "" && applicationType == domain.ApplicationTypeMentor {
		app, ok, err := a.store.GetMentorApplication(applicationID)
		if err != nil {
			return LinkResult{}, fmt.Errorf("fetch mentor application: %w", err)
		}
		if ok && normalizeEmail(app.Email) == email && app.Status == domain.ApplicationPending {
			return a.linkMentor(ident, app)
		}
	}

	student, ok, err := a.store.GetPendingStudentApplicationByEmail(email)
	if err != nil {
		return LinkResult{}, fmt.Errorf("fetch student application: %w", err)
	}
	if ok {
		return a.linkStudent(ident, student)
	}
	mentor, ok, err := a.store.GetPendingMentorApplicationByEmail(email)
	if err != nil {
		return LinkResult{}, fmt.Errorf("fetch mentor application: %w", err)
	}
	if ok {
		return a.linkMentor(ident, mentor)
	}
	return LinkResult{Success: false}, nil
}

func (a *App) linkStudent(ident domain.Identity, app domain.StudentApplication) (LinkResult, error) {
	account, err := a.mergedAccount(ident, domain.RoleStudent, accountFields{
		Email:                app.Email,
		FullName:             app.FullName,
		Phone:                app.Phone,
		Bio:                  app.Bio,
		PreferredDisciplines: app.PreferredDisciplines,
		MentoringTopics:      app.MentoringTopics,
		Availability:         app.Availability,
	})
	if err != nil {
		return LinkResult{}, err
	}
	if err := a.store.LinkStudentApplication(account, app.ID); err != nil {
		if errors.Is(err, store.ErrApplicationNotPending) {
			return LinkResult{Success: false}, nil
		}
		return LinkResult{}, fmt.Errorf("link student application: %w", err)
	}
	return LinkResult{Success: true, Role: domain.RoleStudent}, nil
}

func (a *App) linkMentor(ident domain.Identity, app domain.MentorApplication) (LinkResult, error) {
	account, err := a.mergedAccount(ident, domain.RoleMentor, accountFields{
		Email:                app.Email,
		FullName:             app.FullName,
		Phone:                app.Phone,
		Headline:             mentorHeadline(app),
		Bio:                  app.Bio,
		PreferredDisciplines: app.PreferredDisciplines,
		MentoringTopics:      app.MentoringTopics,
		Availability:         app.Availability,
	})
	if err != nil {
		return LinkResult{}, err
	}
	if err := a.store.LinkMentorApplication(account, app.ID); err != nil {
		if errors.Is(err, store.ErrApplicationNotPending) {
			return LinkResult{Success: false}, nil
		}
		return LinkResult{}, fmt.Errorf("link mentor application: %w", err)
	}
	return LinkResult{Success: true, Role: domain.RoleMentor}, nil
}

type accountFields struct {
	Email                string
	FullName             string
	Phone                string
	Headline             string
	Bio                  string
	PreferredDisciplines []string
	MentoringTopics      []string
	Availability         []string
}

// mergedAccount builds the account to upsert for a link: application fields
// win only where they are set, anything already on the account is preserved
// otherwise.
func (a *App) mergedAccount(ident domain.Identity, role domain.Role, fields accountFields) (domain.Account, error) {
	now := time.Now().UTC()
	account, ok, err := a.store.GetAccountByID(ident.Subject)
	if err != nil {
		return domain.Account{}, fmt.Errorf("fetch account: %w", err)
	}
	if !ok {
		account = domain.Account{
			ID:        ident.Subject,
			IsActive:  true,
			CreatedAt: now,
		}
	}
	account.Role = role
	account.Email = normalizeEmail(firstNonEmpty(fields.Email, account.Email, ident.Email))
	account.FullName = firstNonEmpty(fields.FullName, account.FullName, ident.DisplayName)
	account.Phone = firstNonEmpty(fields.Phone, account.Phone)
	account.Headline = firstNonEmpty(fields.Headline, account.Headline)
	account.Bio = firstNonEmpty(fields.Bio, account.Bio)
	if len(fields.PreferredDisciplines) > 0 {
		account.PreferredDisciplines = fields.PreferredDisciplines
	}
	if len(fields.MentoringTopics) > 0 {
		account.MentoringTopics = fields.MentoringTopics
	}
	if len(fields.Availability) > 0 {
		account.Availability = fields.Availability
	}
	account.UpdatedAt = now
	return account, nil
}

func mentorHeadline(app domain.MentorApplication) string {
	switch {
	case app.CurrentPosition != "" && app.Organization != "":
		return app.CurrentPosition + " at " + app.Organization
	case app.CurrentPosition != "":
		return app.CurrentPosition
	default:
		return app.Organization
	}
}

// Register creates the bare role-unset account on first authentication. An
// existing account is returned untouched.
func (a *App) Register(ident domain.Identity, displayName string) (domain.Account, error) {
	if ident.Subject == "" {
		return domain.Account{}, validationErr("subject", "required")
	}
	account, ok, err := a.store.GetAccountByID(ident.Subject)
	if err != nil {
		return domain.Account{}, fmt.Errorf("fetch account: %w", err)
	}
	if ok {
		return account, nil
	}
	now := time.Now().UTC()
	account = domain.Account{
		ID:        ident.Subject,
		Email:     normalizeEmail(ident.Email),
		FullName:  firstNonEmpty(displayName, ident.DisplayName),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if a.isAdminEmail(account.Email) {
		account.Role = domain.RoleAdmin
	}
	if err := a.store.SaveAccount(account); err != nil {
		return domain.Account{}, fmt.Errorf("save account: %w", err)
	}
	return account, nil
}

func (a *App) isAdminEmail(email string) bool {
	_, ok := a.adminEmails[normalizeEmail(email)]
	return ok
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
