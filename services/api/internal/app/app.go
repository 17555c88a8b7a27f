package app

import (
	"fmt"
	"strings"

	"aspirelink/services/api/internal/store"
)

// Config holds runtime configuration for the mentorship application core.
type Config struct {
	DatabaseURL string
	AdminEmails []string
	Store       store.Store
}

// App wires the mentorship domain logic to storage. The identity provider is
// not a dependency here: handlers verify tokens and pass the resulting
// identity in.
type App struct {
	store       store.Store
	adminEmails map[string]struct{}
}

// New constructs the application with database storage.
func New(cfg Config) (*App, error) {
	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}
	adminEmails := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		email = normalizeEmail(email)
		if email != "" {
			adminEmails[email] = struct{}{}
		}
	}
	return &App{store: dataStore, adminEmails: adminEmails}, nil
}

// Email comparison is case-insensitive throughout; every email is trimmed and
// lower-folded on the way in.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
