package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/polkiloo/parceltrack/internal/config"
	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/domain/model"
	"github.com/polkiloo/parceltrack/internal/domain/repository"
	pkgAuth "github.com/polkiloo/parceltrack/internal/pkg/auth"
)

const maxUserPageSize = 100

// AuthUseCase handles user lifecycle and token management.
type AuthUseCase struct {
	users  repository.UserRepository
	hasher pkgAuth.PasswordHasher
	tokens pkgAuth.Strategy
	cfg    *config.Config
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy, cfg *config.Config) *AuthUseCase {
	return &AuthUseCase{users: users, hasher: hasher, tokens: strategy, cfg: cfg}
}

// Register creates a new customer account and returns an auth token.
func (u *AuthUseCase) Register(ctx context.Context, reg model.Registration) (*model.User, string, error) {
	reg.Phone = strings.TrimSpace(reg.Phone)
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Surname = strings.TrimSpace(reg.Surname)
	reg.SelectedFilial = strings.TrimSpace(reg.SelectedFilial)
	if err := validateRegistration(reg); err != nil {
		return nil, "", err
	}

	if reg.ReferrerID != nil {
		if _, err := u.users.GetByID(ctx, *reg.ReferrerID); err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				return nil, "", domainErrors.ErrReferrerNotFound
			}
			return nil, "", err
		}
	}

	count, err := u.users.CountAll(ctx)
	if err != nil {
		return nil, "", err
	}

	hash, err := u.hasher.Hash(reg.Password)
	if err != nil {
		return nil, "", err
	}

	role := model.RoleClient
	if u.cfg != nil && u.cfg.IsAdminPhone(reg.Phone) {
		role = model.RoleAdmin
	}

	usr, err := u.users.Create(ctx, model.User{
		Phone:          reg.Phone,
		PasswordHash:   hash,
		Name:           reg.Name,
		Surname:        reg.Surname,
		Email:          strings.TrimSpace(reg.Email),
		Role:           role,
		SelectedFilial: reg.SelectedFilial,
		PersonalID:     count + 1,
		ReferrerID:     reg.ReferrerID,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := u.tokens.IssueToken(pkgAuth.Claims{UserID: usr.ID, Role: usr.Role})
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

func validateRegistration(reg model.Registration) error {
	if !ValidatePhone(reg.Phone) {
		return domainErrors.ErrInvalidPhone
	}
	if err := validatePassword(reg.Password); err != nil {
		return err
	}
	if reg.Name == "" || reg.Surname == "" || reg.SelectedFilial == "" {
		return fmt.Errorf("name, surname and filial are required: %w", domainErrors.ErrInvalidArgument)
	}
	if !reg.Agreed {
		return fmt.Errorf("terms must be accepted: %w", domainErrors.ErrInvalidArgument)
	}
	return nil
}

// Authenticate validates credentials and returns auth token.
func (u *AuthUseCase) Authenticate(ctx context.Context, phone, password string) (*model.User, string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}
	u.upgradeHash(ctx, usr, password)

	token, err := u.tokens.IssueToken(pkgAuth.Claims{UserID: usr.ID, Role: usr.Role})
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// upgradeHash re-hashes the password when the configured cost changed.
// Failures leave the old hash in place and do not block login.
func (u *AuthUseCase) upgradeHash(ctx context.Context, usr *model.User, password string) {
	rh, ok := u.hasher.(pkgAuth.Rehasher)
	if !ok || !rh.NeedsRehash(usr.PasswordHash) {
		return
	}
	hash, err := u.hasher.Hash(password)
	if err != nil {
		return
	}
	if err := u.users.UpdatePasswordHash(ctx, usr.ID, hash); err == nil {
		usr.PasswordHash = hash
	}
}

// RefreshToken issues a new token for an existing user with their current role.
func (u *AuthUseCase) RefreshToken(ctx context.Context, userID int64) (*model.User, string, error) {
	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	token, err := u.tokens.IssueToken(pkgAuth.Claims{UserID: usr.ID, Role: usr.Role})
	if err != nil {
		return nil, "", err
	}
	return usr, token, nil
}

// ChangePassword replaces the password after checking the current one.
func (u *AuthUseCase) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if current == "" {
		return fmt.Errorf("current password is required: %w", domainErrors.ErrInvalidArgument)
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := u.hasher.Compare(usr.PasswordHash, current); err != nil {
		return domainErrors.ErrWrongPassword
	}

	hash, err := u.hasher.Hash(next)
	if err != nil {
		return err
	}
	return u.users.UpdatePasswordHash(ctx, usr.ID, hash)
}

// ListUsers returns one page of users with their activity counts.
func (u *AuthUseCase) ListUsers(ctx context.Context, filter model.UserListFilter) (model.UserPage, error) {
	if filter.Limit <= 0 || filter.Limit > maxUserPageSize {
		filter.Limit = maxUserPageSize
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Filial = strings.TrimSpace(filter.Filial)

	users, total, err := u.users.List(ctx, filter)
	if err != nil {
		return model.UserPage{}, err
	}
	return model.UserPage{
		Users:       users,
		TotalCount:  total,
		CurrentPage: filter.Page,
		TotalPages:  int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
	}, nil
}

// ParseToken extracts the caller identity from provided token.
func (u *AuthUseCase) ParseToken(token string) (pkgAuth.Claims, error) {
	if token == "" {
		return pkgAuth.Claims{}, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// GetByID fetches user by identifier.
func (u *AuthUseCase) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return u.users.GetByID(ctx, id)
}
