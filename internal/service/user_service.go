package service

import (
	"errors"
	"otos_backend/internal/model"
	"otos_backend/internal/repository"
	"otos_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) GetByID(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(page, limit int, role model.UserRole, name string) ([]model.User, int64, error) {
	return s.UserRepo.List(page, limit, role, name)
}

type UpdateUserRequest struct {
	Name     string         `json:"name"`
	Password string         `json:"password"`
	Role     model.UserRole `json:"role"`
	Disabled *bool          `json:"disabled"`
}

// Update applies an admin edit. Empty fields are left untouched.
func (s *UserService) Update(id uint, req UpdateUserRequest) (*model.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.Disabled != nil {
		user.Disabled = *req.Disabled
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	return s.UserRepo.Delete(id)
}

func (s *UserService) Touch(userID uint) {
	_ = s.UserRepo.UpdateLastSeen(userID)
}
