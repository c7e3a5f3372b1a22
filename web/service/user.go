package service

import (
	"context"
	"strings"

	"github.com/mhsanaei/taskpanel/database"
	"github.com/mhsanaei/taskpanel/database/model"
	"github.com/mhsanaei/taskpanel/logger"
	"github.com/mhsanaei/taskpanel/util/crypto"
	"github.com/mhsanaei/taskpanel/web/cache"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserService is the identity directory: it looks up, creates and
// authenticates accounts.
type UserService struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewUserService returns a UserService on db. A nil cache disables caching.
func NewUserService(db *gorm.DB, c *cache.Cache) *UserService {
	return &UserService{db: db, cache: c}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// FindByEmail returns the account registered under email.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := s.db.WithContext(ctx).
		Where("email = ?", normalizeEmail(email)).
		First(user).
		Error
	if database.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateLocal stores a new password account. hash must already be a bcrypt digest.
func (s *UserService) CreateLocal(ctx context.Context, name, email, hash string) (*model.User, error) {
	user := model.NewLocalUser(strings.TrimSpace(name), normalizeEmail(email), hash)
	err := s.db.WithContext(ctx).Create(user).Error
	if database.IsDuplicateKey(err) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Register validates a signup form, hashes the password and creates the account.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	if strings.TrimSpace(name) == "" || normalizeEmail(email) == "" || password == "" {
		return nil, ErrEmptyField
	}
	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, err
	}
	return s.CreateLocal(ctx, name, email, hash)
}

// CheckUser authenticates an email and password pair. Accounts created
// through OAuth have no password and never match.
func (s *UserService) CheckUser(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.HasPassword() || !crypto.CheckPasswordHash(*user.Password, password) {
		return nil, ErrWrongPassword
	}
	return user, nil
}

// FindOrCreateOAuth returns the account for email, creating a password-less
// one named name on first sign-in. The insert ignores conflicts on the unique
// email index, so concurrent first sign-ins converge on a single row.
func (s *UserService) FindOrCreateOAuth(ctx context.Context, email, name string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrEmptyField
	}
	candidate := model.NewOAuthUser(strings.TrimSpace(name), email)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(candidate).
		Error
	if err != nil {
		return nil, err
	}
	return s.FindByEmail(ctx, email)
}

// GetUser resolves a signed-in user id, serving from the cache for up to cache.TTLUser.
func (s *UserService) GetUser(ctx context.Context, id int) (*model.User, error) {
	load := func() (*model.User, error) {
		user := &model.User{}
		err := s.db.WithContext(ctx).First(user, id).Error
		if database.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		if err != nil {
			return nil, err
		}
		return user, nil
	}
	if s.cache == nil {
		return load()
	}
	user, err := cache.GetOrSet(ctx, s.cache, cache.UserKey(id), cache.TTLUser, load)
	if err != nil {
		return nil, err
	}
	if user == nil {
		logger.Warningf("cached user %d is empty", id)
		return load()
	}
	return user, nil
}
