package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"aspirelink/internal/util"
	"aspirelink/pkg/auth"
	"aspirelink/pkg/domain"
	"aspirelink/pkg/store"
	authstore "aspirelink/services/auth/internal/store"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL         string
	RedisAddr           string
	RedisPassword       string
	SessionTTL          time.Duration
	RefreshTTL          time.Duration
	JWTPrivateKeyPath   string
	JWTPublicKeyPath    string
	JWTKeyID            string
	JWTVerifyPublicKeys map[string]string
	JWTIssuer           string
	JWTAudience         string
	JWTLeeway           time.Duration
	Store               authstore.IdentityStore
	Sessions            store.SessionStore
	RefreshTokens       store.RefreshTokenStore
}

// App is the identity provider core wiring storage and token issuance.
type App struct {
	store         authstore.IdentityStore
	sessions      store.SessionStore
	refreshTokens store.RefreshTokenStore
	refreshTTL    time.Duration
}

// New constructs the application with database storage and session management.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = authstore.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		if strings.TrimSpace(cfg.JWTPrivateKeyPath) == "" {
			return nil, fmt.Errorf("jwtPrivateKeyPath is required")
		}
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return nil, fmt.Errorf("redisAddr is required for jwt+redis session strategy")
		}
		jwtOpts := store.JWTOptions{
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			Leeway:   cfg.JWTLeeway,
		}
		revoker := store.NewRedisTokenRevoker(cfg.RedisAddr, cfg.RedisPassword)
		rsStore, err := store.NewJWTSessionStoreFromPEM(
			cfg.JWTPrivateKeyPath,
			cfg.JWTPublicKeyPath,
			cfg.JWTKeyID,
			cfg.JWTVerifyPublicKeys,
			cfg.SessionTTL,
			revoker,
			jwtOpts,
		)
		if err != nil {
			return nil, fmt.Errorf("init rs256 jwt session store: %w", err)
		}
		sessionStore = rsStore
	}

	refreshStore := cfg.RefreshTokens
	if refreshStore == nil {
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return nil, fmt.Errorf("redisAddr is required for jwt+redis refresh token strategy")
		}
		refreshStore = store.NewRedisRefreshTokenStore(cfg.RedisAddr, cfg.RedisPassword)
	}

	return &App{
		store:         dataStore,
		sessions:      sessionStore,
		refreshTokens: refreshStore,
		refreshTTL:    cfg.RefreshTTL,
	}, nil
}

// SignUp registers a new identity user and issues a token pair.
func (a *App) SignUp(email, password, displayName string) (domain.IdentityUser, string, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	displayName = strings.TrimSpace(displayName)
	if email == "" || password == "" {
		return domain.IdentityUser{}, "", "", ErrEmailAndPasswordRequired
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.IdentityUser{}, "", "", err
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.IdentityUser{}, "", "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.IdentityUser{}, "", "", ErrEmailAlreadyExists
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.IdentityUser{}, "", "", fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	user := domain.IdentityUser{
		ID:           util.NewID(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.IdentityUser{}, "", "", fmt.Errorf("save user: %w", err)
	}
	return a.issueUserTokens(user)
}

// Login validates credentials and issues a token pair.
func (a *App) Login(email, password string) (domain.IdentityUser, string, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.IdentityUser{}, "", "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.IdentityUser{}, "", "", ErrInvalidCredentials
	}
	if user.Disabled {
		return domain.IdentityUser{}, "", "", ErrUserDisabled
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return domain.IdentityUser{}, "", "", ErrInvalidCredentials
	}
	return a.issueUserTokens(user)
}

// UserFromToken resolves an identity user from an access token.
func (a *App) UserFromToken(token string) (domain.IdentityUser, bool) {
	ident, ok, err := a.sessions.IdentityFromToken(token)
	if err != nil || !ok {
		return domain.IdentityUser{}, false
	}
	user, found, err := a.store.GetUserByID(ident.Subject)
	if err != nil || !found {
		return domain.IdentityUser{}, false
	}
	if user.Disabled {
		return domain.IdentityUser{}, false
	}
	return user, true
}

// Logout invalidates access token and optional refresh token.
func (a *App) Logout(accessToken, refreshToken string) error {
	if err := a.sessions.DeleteSession(accessToken); err != nil {
		return err
	}
	return a.RevokeRefreshToken(refreshToken)
}

// Refresh rotates refresh token and issues a new token pair.
func (a *App) Refresh(refreshToken string) (domain.IdentityUser, string, string, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return domain.IdentityUser{}, "", "", ErrRefreshTokenRequired
	}
	userID, newRefreshToken, err := a.refreshTokens.RotateToken(refreshToken, a.refreshTTL)
	if err != nil {
		if errors.Is(err, store.ErrInvalidRefreshToken) || errors.Is(err, store.ErrRefreshTokenReplay) {
			return domain.IdentityUser{}, "", "", ErrInvalidRefreshToken
		}
		return domain.IdentityUser{}, "", "", fmt.Errorf("resolve refresh token: %w", err)
	}
	user, found, err := a.store.GetUserByID(userID)
	if err != nil {
		return domain.IdentityUser{}, "", "", fmt.Errorf("fetch user: %w", err)
	}
	if !found || user.Disabled {
		_ = a.refreshTokens.DeleteToken(newRefreshToken)
		return domain.IdentityUser{}, "", "", ErrInvalidRefreshToken
	}
	accessToken, err := a.sessions.NewSession(user)
	if err != nil {
		_ = a.refreshTokens.DeleteToken(newRefreshToken)
		return domain.IdentityUser{}, "", "", fmt.Errorf("issue access token: %w", err)
	}
	return user, accessToken, newRefreshToken, nil
}

// RevokeRefreshToken invalidates a refresh token explicitly.
func (a *App) RevokeRefreshToken(refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}
	return a.refreshTokens.DeleteToken(refreshToken)
}

// UpdateDisplayName updates the user's display name. New tokens carry the
// new name on the next refresh.
func (a *App) UpdateDisplayName(user domain.IdentityUser, displayName string) (domain.IdentityUser, error) {
	user.DisplayName = strings.TrimSpace(displayName)
	user.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveUser(user); err != nil {
		return domain.IdentityUser{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// ChangePassword updates the user's password after verifying the current one.
func (a *App) ChangePassword(userID, currentPassword, newPassword string) error {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}
	user, ok, err := a.store.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return fmt.Errorf("user not found")
	}
	if user.Disabled {
		return ErrUserDisabled
	}
	if !auth.CheckPassword(currentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if currentPassword == newPassword {
		return fmt.Errorf("new password must differ from current password")
	}
	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveUser(user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// JWKS returns public signing keys when the session store supports it.
func (a *App) JWKS() []store.JWK {
	provider, ok := a.sessions.(store.JWKSProvider)
	if !ok {
		return nil
	}
	return provider.JWKS()
}

func (a *App) issueUserTokens(user domain.IdentityUser) (domain.IdentityUser, string, string, error) {
	accessToken, err := a.sessions.NewSession(user)
	if err != nil {
		return domain.IdentityUser{}, "", "", fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, err := a.refreshTokens.NewToken(user.ID, a.refreshTTL)
	if err != nil {
		return domain.IdentityUser{}, "", "", fmt.Errorf("issue refresh token: %w", err)
	}
	return user, accessToken, refreshToken, nil
}
