package store

import "aspirelink/pkg/domain"

// IdentityStore defines persistence operations for identity users.
type IdentityStore interface {
	SaveUser(domain.IdentityUser) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.IdentityUser, bool, error)
	GetUserByID(id string) (domain.IdentityUser, bool, error)
	ListUsers() ([]domain.IdentityUser, error)
	UserCount() (int, error)
}
