package service

import (
	"context"
	"errors"
	"strings"

	"blogicum/internal/forms"
	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/repository"
	"blogicum/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown user or a
// wrong password alike.
var ErrInvalidCredentials = models.NewUnauthorizedError("Invalid credentials")

type UserService struct {
	userRepo repository.UserRepository
	cost     int
}

// SignupInput is the registration payload.
type SignupInput struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, cost: bcrypt.DefaultCost}
}

// WithHashCost lowers the bcrypt cost, for tests.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.cost = cost
	return s
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetByUsername returns NOT_FOUND when no user has that username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

// UpdateProfile saves the profile form for userID. A taken username is
// reported on the form's username field.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, form *forms.UserProfileForm) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !form.Valid() {
		return user, ErrInvalidForm
	}

	updated := *user
	form.Apply(&updated)
	if err := s.userRepo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			form.AddError("username", forms.MsgUsernameTaken)
			return user, ErrInvalidForm
		}
		return nil, err
	}
	observability.RecordContentEvent("user", "update")
	return &updated, nil
}

// Register creates an account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password, in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		observability.RecordAuthEvent("signup", "failure")
		return nil, err
	}
	observability.RecordAuthEvent("signup", "success")
	return user, nil
}

// Authenticate checks a username/password pair.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		observability.RecordAuthEvent("login", "failure")
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		observability.RecordAuthEvent("login", "failure")
		return nil, ErrInvalidCredentials
	}
	observability.RecordAuthEvent("login", "success")
	return user, nil
}
