// Package services implements the account and document use cases on top of
// the repositories.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/textify/internal/common"
	"github.com/dmitrijs2005/textify/internal/dbx"
	"github.com/dmitrijs2005/textify/internal/logging"
	"github.com/dmitrijs2005/textify/internal/server/auth"
	"github.com/dmitrijs2005/textify/internal/server/config"
	"github.com/dmitrijs2005/textify/internal/server/models"
	"github.com/dmitrijs2005/textify/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

// Messages for profile members that can never be changed through an update.
var profileReadOnly = map[string]string{
	"password":        "Password cannot be updated through this endpoint",
	"email":           "Email cannot be updated through this endpoint",
	"id":              "",
	"created_at":      "",
	"is_active":       "",
	"hashed_password": "",
	"password_hash":   "",
}

type UserService struct {
	tx                          dbx.Transactor
	repomanager                 repomanager.RepositoryManager
	tokens                      *auth.TokenService
	hasher                      *auth.PasswordHasher
	validate                    *validator.Validate
	logger                      logging.Logger
	accessTokenValidityDuration time.Duration
	now                         func() time.Time
}

// NewUserService fails when cfg carries no secret key.
func NewUserService(tx dbx.Transactor, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) (*UserService, error) {
	tokens, err := auth.NewTokenService(cfg.SecretKey)
	if err != nil {
		return nil, err
	}

	return &UserService{
		tx:                          tx,
		repomanager:                 m,
		tokens:                      tokens,
		hasher:                      auth.NewPasswordHasher(cfg.BcryptCost),
		validate:                    newValidator(),
		logger:                      logger,
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		now:                         time.Now,
	}, nil
}

// WithClock makes the service and its token service read time from now.
func (s *UserService) WithClock(now func() time.Time) *UserService {
	c := *s
	c.now = now
	c.tokens = s.tokens.WithClock(now)
	return &c
}

// Register creates an active account. Username and email are checked in
// that order; the unique indexes catch what slips between check and insert.
func (s *UserService) Register(ctx context.Context, in models.Registration) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validate(s.validate, in); err != nil {
		return nil, err
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, common.Validation(fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes))
	}

	repo := s.repomanager.Users(s.tx.Conn())

	if _, err := repo.GetUserByLogin(ctx, in.UserName); err == nil {
		return nil, common.ErrUsernameTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error checking username: %w", err)
	}

	if _, err := repo.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, common.ErrEmailTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error checking email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UserName:     in.UserName,
		Email:        in.Email,
		PasswordHash: hash,
		Settings:     map[string]any{},
		CreatedAt:    s.timestamp(),
		IsActive:     true,
	}

	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID, "username", user.UserName)
	return user, nil
}

// Login returns an access token for valid credentials. Unknown users and
// wrong passwords produce the same error; only the log tells them apart.
func (s *UserService) Login(ctx context.Context, userName, password string) (string, error) {
	repo := s.repomanager.Users(s.tx.Conn())

	user, err := repo.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "login failed: unknown user", "username", userName)
			return "", common.ErrInvalidCredentials
		}
		return "", fmt.Errorf("error loading user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Info(ctx, "login failed: wrong password", "username", userName)
		return "", common.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.logger.Info(ctx, "login failed: inactive user", "username", userName)
		return "", common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.UserName, s.accessTokenValidityDuration)
	if err != nil {
		return "", err
	}

	return token, nil
}

// Authenticate resolves a bearer token to its active user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrMissingToken
	}

	subject, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.tx.Conn()).GetUserByLogin(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if !user.IsActive {
		return nil, common.ErrInactiveUser
	}

	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.tx.Conn()).GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrProfileNotFound
		}
		return nil, fmt.Errorf("error loading profile: %w", err)
	}
	return user, nil
}

// UpdateProfile applies username and settings changes from p. Renaming
// changes the token subject, so tokens issued for the old name stop
// resolving.
func (s *UserService) UpdateProfile(ctx context.Context, current *models.User, p models.Patch) (*models.User, error) {
	if err := checkPatch(p, profileReadOnly, "username", "settings"); err != nil {
		return nil, err
	}

	userName, err := patchString(p, "username")
	if err != nil {
		return nil, err
	}
	settings, err := patchObject(p, "settings")
	if err != nil {
		return nil, err
	}

	if userName == nil && settings == nil {
		return nil, common.Validation("No valid fields to update")
	}

	if userName != nil {
		v := struct {
			UserName string `json:"username" validate:"min=3,max=50"`
		}{*userName}
		if err := validate(s.validate, v); err != nil {
			return nil, err
		}
	}

	var upd models.ProfileUpdate
	if userName != nil && *userName != current.UserName {
		upd.UserName = userName
	}
	if settings != nil && !sameJSON(settings, current.Public().Settings) {
		upd.Settings = settings
	}
	if upd.UserName == nil && upd.Settings == nil {
		return nil, common.Validation("No changes were made")
	}

	user, err := s.repomanager.Users(s.tx.Conn()).Update(ctx, current.ID, upd)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return nil, common.ErrProfileNotFound
		case errors.Is(err, common.ErrorConflict):
			return nil, err
		}
		return nil, fmt.Errorf("error updating profile: %w", err)
	}

	if upd.UserName != nil {
		s.logger.Info(ctx, "username changed", "user_id", user.ID, "from", current.UserName, "to", user.UserName)
	}
	return user, nil
}

// DeleteProfile removes the user's documents and then the user in one
// transaction.
func (s *UserService) DeleteProfile(ctx context.Context, userID string) error {
	var removed int64

	err := s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.Documents(tx).DeleteByOwner(ctx, userID)
		if err != nil {
			return fmt.Errorf("error deleting documents: %w", err)
		}
		removed = n

		if err := s.repomanager.Users(tx).Delete(ctx, userID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrProfileNotFound
			}
			return fmt.Errorf("error deleting user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "account deleted", "user_id", userID, "documents", removed)
	return nil
}

func (s *UserService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
