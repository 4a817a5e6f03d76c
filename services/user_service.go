package services

import (
	"errors"

	"github.com/helpdesk-kit/support-desk-api/models"
	"gorm.io/gorm"
)

// UserService implements the admin user-management operations
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new user service instance
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// List returns all users with their roles loaded, ordered by id
func (s *UserService) List() ([]models.User, error) {
	var users []models.User
	if err := s.db.Preload("Role").Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Roles returns the fixed role table, ordered by id
func (s *UserService) Roles() ([]models.Role, error) {
	var roles []models.Role
	if err := s.db.Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// UpdateRole changes a user's role. The role must be one of the seeded
// rows; unknown role ids are rejected rather than coerced.
func (s *UserService) UpdateRole(userID, roleID uint) (*models.User, error) {
	var role models.Role
	if err := s.db.First(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.db.Model(&user).Update("role_id", role.ID).Error; err != nil {
		return nil, err
	}

	user.RoleID = role.ID
	user.Role = role
	return &user, nil
}
