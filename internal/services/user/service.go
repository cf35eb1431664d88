package user

import (
	"errors"

	"taxgate/internal/models"
	"taxgate/internal/repositories"
	"taxgate/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken        = errors.New("user with this email already exists")
	ErrIncorrectPassword = errors.New("incorrect password")
)

type Service interface {
	GetByID(id uint) (*models.User, error)
	Register(input *models.CreateUserInput) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(role string, page, limit int) ([]*models.User, int64, error)
	ChangePassword(userID uint, oldPassword, newPassword string) error
}

type service struct {
	repo repositories.UserRepository
}

func NewService(repo repositories.UserRepository) Service {
	if repo == nil {
		panic("user repository is required")
	}
	return &service{
		repo: repo,
	}
}

func (s *service) GetByID(id uint) (*models.User, error) {
	return s.repo.GetByID(id)
}

// Register creates a new portal account. Self-registration is limited to
// bank accounts; admin, government and agent accounts are provisioned by
// an administrator.
func (s *service) Register(input *models.CreateUserInput) (*models.User, error) {
	v := validation.New()
	v.Required("name", input.Name)
	v.Email("email", input.Email)
	v.Phone("phone", input.Phone)
	v.Password("password", input.Password)
	if input.Role == models.RoleBank {
		v.Required("bank_name", input.BankName)
		v.Required("bank_code", input.BankCode)
	}
	if !v.Valid() {
		return nil, &ValidationError{Fields: v.Errors}
	}

	switch input.Role {
	case models.RoleAdmin, models.RoleBank, models.RoleGovernment, models.RoleAgent:
	case "":
		input.Role = models.RoleBank
	default:
		return nil, errors.New("unknown role")
	}

	existing, _ := s.repo.GetByEmail(input.Email)
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &models.User{
		Name:           input.Name,
		Email:          input.Email,
		Phone:          input.Phone,
		Password:       string(hashedPassword),
		Role:           input.Role,
		Status:         "active",
		BankName:       input.BankName,
		BankCode:       input.BankCode,
		ContactAddress: input.ContactAddress,
	}

	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *service) Update(user *models.User) error {
	return s.repo.Update(user)
}

func (s *service) Delete(id uint) error {
	return s.repo.Delete(id)
}

func (s *service) List(role string, page, limit int) ([]*models.User, int64, error) {
	offset := (page - 1) * limit
	return s.repo.List(role, offset, limit)
}

func (s *service) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return errors.New("user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrIncorrectPassword
	}

	v := validation.New()
	v.Password("password", newPassword)
	if !v.Valid() {
		return &ValidationError{Fields: v.Errors}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}

	user.Password = string(hashedPassword)
	user.TokenVersion++ // Invalidate existing tokens

	return s.repo.Update(user)
}
