package app

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"aspirelink/pkg/domain"
)

// AccountForIdentity fetches the caller's account, if one exists yet.
func (a *App) AccountForIdentity(ident domain.Identity) (domain.Account, bool, error) {
	return a.store.GetAccountByID(ident.Subject)
}

// ProfileUpdate carries optional profile field changes for the caller.
type ProfileUpdate struct {
	FullName             *string
	Phone                *string
	Headline             *string
	Bio                  *string
	PreferredDisciplines *[]string
	MentoringTopics      *[]string
	Availability         *[]string
}

// UpdateMyProfile applies a partial profile edit to the caller's account.
// Role, email and the active flag are not editable here.
func (a *App) UpdateMyProfile(ident domain.Identity, update ProfileUpdate) (domain.Account, error) {
	account, ok, err := a.store.GetAccountByID(ident.Subject)
	if err != nil {
		return domain.Account{}, fmt.Errorf("fetch account: %w", err)
	}
	if !ok {
		return domain.Account{}, ErrNotFound
	}
	if update.FullName != nil {
		name := strings.TrimSpace(*update.FullName)
		if name == "" {
			return domain.Account{}, validationErr("fullName", "required")
		}
		account.FullName = name
	}
	if update.Phone != nil {
		account.Phone = *update.Phone
	}
	if update.Headline != nil {
		account.Headline = *update.Headline
	}
	if update.Bio != nil {
		account.Bio = *update.Bio
	}
	if update.PreferredDisciplines != nil {
		account.PreferredDisciplines = *update.PreferredDisciplines
	}
	if update.MentoringTopics != nil {
		account.MentoringTopics = *update.MentoringTopics
	}
	if update.Availability != nil {
		account.Availability = *update.Availability
	}
	account.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveAccount(account); err != nil {
		return domain.Account{}, fmt.Errorf("save account: %w", err)
	}
	return account, nil
}

// IsAdmin reports whether the caller is an admin: either the account carries
// the admin role, or the identity email is bootstrapped as admin in config.
func (a *App) IsAdmin(ident domain.Identity) (bool, error) {
	if a.isAdminEmail(ident.Email) {
		return true, nil
	}
	account, ok, err := a.store.GetAccountByID(ident.Subject)
	if err != nil {
		return false, fmt.Errorf("fetch account: %w", err)
	}
	return ok && account.Role == domain.RoleAdmin, nil
}

// ListAccounts returns all accounts (admin operation).
func (a *App) ListAccounts() ([]domain.Account, error) {
	return a.store.ListAccounts()
}

// AccountUpdate carries admin-editable account fields.
type AccountUpdate struct {
	Role     *domain.Role
	IsActive *bool
}

// AdminUpdateAccount lets an admin set role or toggle the active flag.
func (a *App) AdminUpdateAccount(id string, update AccountUpdate) (domain.Account, error) {
	account, ok, err := a.store.GetAccountByID(id)
	if err != nil {
		return domain.Account{}, fmt.Errorf("fetch account: %w", err)
	}
	if !ok {
		return domain.Account{}, ErrNotFound
	}
	if update.Role != nil {
		switch *update.Role {
		case domain.RoleUnset, domain.RoleStudent, domain.RoleMentor, domain.RoleAdmin:
			account.Role = *update.Role
		default:
			return domain.Account{}, validationErr("role", "unknown role")
		}
	}
	if update.IsActive != nil {
		account.IsActive = *update.IsActive
	}
	account.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveAccount(account); err != nil {
		return domain.Account{}, fmt.Errorf("save account: %w", err)
	}
	return account, nil
}

// AdminDeleteAccount hard-deletes an account (explicit admin action only).
func (a *App) AdminDeleteAccount(id string) error {
	if _, ok, err := a.store.GetAccountByID(id); err != nil {
		return fmt.Errorf("fetch account: %w", err)
	} else if !ok {
		return ErrNotFound
	}
	return a.store.DeleteAccount(id)
}

// MatchSuggestion is a scored mentor candidate for a student. Advisory only;
// an admin makes the final call.
type MatchSuggestion struct {
	Mentor domain.Account `json:"mentor"`
	Score  int            `json:"score"`
	Label  string         `json:"label"`
}

// MatchSuggestions scores every active mentor account against a student and
// returns them best first.
func (a *App) MatchSuggestions(studentID string) ([]MatchSuggestion, error) {
	student, ok, err := a.store.GetAccountByID(studentID)
	if err != nil {
		return nil, fmt.Errorf("fetch student: %w", err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	if student.Role != domain.RoleStudent {
		return nil, ErrStudentRoleRequired
	}
	accounts, err := a.store.ListAccounts()
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	suggestions := make([]MatchSuggestion, 0)
	for _, account := range accounts {
		if account.Role != domain.RoleMentor || !account.IsActive {
			continue
		}
		score := domain.MatchScore(account, student)
		suggestions = append(suggestions, MatchSuggestion{
			Mentor: account,
			Score:  score,
			Label:  domain.MatchLabel(score),
		})
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	return suggestions, nil
}
