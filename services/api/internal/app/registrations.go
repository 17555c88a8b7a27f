package app

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"aspirelink/internal/util"
	"aspirelink/pkg/domain"
	"aspirelink/services/api/internal/store"
)

// SubmitStudentApplication accepts a public student registration. The email
// must not already own an account with a role or a pending application of
// either type; the storage-level unique index backstops concurrent submits.
func (a *App) SubmitStudentApplication(app domain.StudentApplication) (domain.StudentApplication, error) {
	app.Email = normalizeEmail(app.Email)
	app.FullName = strings.TrimSpace(app.FullName)
	if err := a.validateRegistration(app.Email, app.FullName); err != nil {
		return domain.StudentApplication{}, err
	}
	app.ID = util.NewID()
	app.Status = domain.ApplicationPending
	app.LinkedAccountID = ""
	app.CreatedAt = time.Now().UTC()
	if err := a.store.SaveStudentApplication(app); err != nil {
		if errors.Is(err, store.ErrDuplicatePendingApplication) {
			return domain.StudentApplication{}, ErrPendingApplicationExists
		}
		return domain.StudentApplication{}, fmt.Errorf("save student application: %w", err)
	}
	return app, nil
}

// SubmitMentorApplication is symmetric to SubmitStudentApplication.
func (a *App) SubmitMentorApplication(app domain.MentorApplication) (domain.MentorApplication, error) {
	app.Email = normalizeEmail(app.Email)
	app.FullName = strings.TrimSpace(app.FullName)
	if err := a.validateRegistration(app.Email, app.FullName); err != nil {
		return domain.MentorApplication{}, err
	}
	app.ID = util.NewID()
	app.Status = domain.ApplicationPending
	app.LinkedAccountID = ""
	app.CreatedAt = time.Now().UTC()
	if err := a.store.SaveMentorApplication(app); err != nil {
		if errors.Is(err, store.ErrDuplicatePendingApplication) {
			return domain.MentorApplication{}, ErrPendingApplicationExists
		}
		return domain.MentorApplication{}, fmt.Errorf("save mentor application: %w", err)
	}
	return app, nil
}

func (a *App) validateRegistration(email, fullName string) error {
	if email == "" {
		return validationErr("email", "required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return validationErr("email", "invalid email address")
	}
	if fullName == "" {
		return validationErr("fullName", "required")
	}
	account, ok, err := a.store.GetAccountByEmail(email)
	if err != nil {
		return fmt.Errorf("fetch account: %w", err)
	}
	if ok && account.Role != domain.RoleUnset {
		return ErrAccountExists
	}
	if _, ok, err := a.store.GetPendingStudentApplicationByEmail(email); err != nil {
		return fmt.Errorf("fetch student application: %w", err)
	} else if ok {
		return ErrPendingApplicationExists
	}
	if _, ok, err := a.store.GetPendingMentorApplicationByEmail(email); err != nil {
		return fmt.Errorf("fetch mentor application: %w", err)
	} else if ok {
		return ErrPendingApplicationExists
	}
	return nil
}

// ListStudentApplications returns student registrations, optionally filtered
// by status.
func (a *App) ListStudentApplications(status domain.ApplicationStatus) ([]domain.StudentApplication, error) {
	return a.store.ListStudentApplications(status)
}

// ListMentorApplications returns mentor registrations, optionally filtered
// by status.
func (a *App) ListMentorApplications(status domain.ApplicationStatus) ([]domain.MentorApplication, error) {
	return a.store.ListMentorApplications(status)
}
