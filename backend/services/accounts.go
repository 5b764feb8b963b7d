package services

import (
	"context"
	"errors"
	"fmt"

	"studyproject/backend/models"
	"studyproject/backend/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown user or a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

type AccountService struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewAccountService(db *gorm.DB, baseLog *utils.Logger) *AccountService {
	return &AccountService{db: db, log: baseLog.With("service", "AccountService")}
}

type RegisterForm struct {
	Username string `form:"username" json:"username" validate:"required,min=3,max=150,alphanum"`
	Email    string `form:"email" json:"email" validate:"required,email,max=254"`
	Password string `form:"password" json:"password" validate:"required,min=8,max=72"`
}

type LoginForm struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

// Register creates a regular (non-superuser) account.
func (s *AccountService) Register(ctx context.Context, form RegisterForm) (*models.User, error) {
	trimAll(&form.Username, &form.Email)
	if fields := validateForm(form); len(fields) > 0 {
		form.Password = ""
		return nil, Validation("Please correct the errors below.", fields, form)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	form.Password = ""

	user := models.User{Username: form.Username, Email: form.Email, PasswordHash: string(hash)}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, Conflict("A user with this username or email already exists.", form, err)
		}
		s.log.Error("register failed", "username", form.Username, "error", err)
		return nil, Conflict("Could not create the account. Please try again.", form, err)
	}
	s.log.Info("user registered", "user_id", user.ID, "username", user.Username)
	return &user, nil
}

// Authenticate checks a username and password pair.
func (s *AccountService) Authenticate(ctx context.Context, form LoginForm) (*models.User, error) {
	trimAll(&form.Username)
	if fields := validateForm(form); len(fields) > 0 {
		form.Password = ""
		return nil, Validation("Please enter your username and password.", fields, form)
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", form.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *AccountService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("User not found")
		}
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	return &user, nil
}

// EnsureSuperuser makes sure the named user exists and is a superuser. An existing
// user keeps its password.
func (s *AccountService) EnsureSuperuser(ctx context.Context, username, email, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, errors.New("superuser needs a username and a password")
	}
	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Where("username = ?", username).First(&user).Error
	switch {
	case err == nil:
		if !user.IsSuperuser {
			if err := db.Model(&user).Update("is_superuser", true).Error; err != nil {
				return nil, fmt.Errorf("promote %s: %w", username, err)
			}
			s.log.Info("user promoted to superuser", "username", username)
		}
		return &user, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("load %s: %w", username, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if email == "" {
		email = username + "@localhost"
	}
	user = models.User{Username: username, Email: email, PasswordHash: string(hash), IsSuperuser: true}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create superuser %s: %w", username, err)
	}
	s.log.Info("superuser created", "username", username)
	return &user, nil
}
