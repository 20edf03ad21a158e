package service

import (
	"errors"
	"go-auth-api/model"
	"go-auth-api/repository"
)

// UserService handles the admin-facing user management logic.
type UserService struct {
	userRepo repository.IUserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.IUserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) ListUsers() ([]*model.User, error) {
	return s.userRepo.GetAllUsers()
}

// UpdateUserRole validates the role and calls the repository to update it.
func (s *UserService) UpdateUserRole(userID int, newRole model.Role) error {
	if !newRole.Valid() {
		return errors.New("invalid role specified")
	}
	return s.userRepo.UpdateUserRole(userID, string(newRole))
}

// SetUserDisabled flips the account's disabled flag. Disabling does not
// revoke outstanding tokens; the login path rejects disabled accounts.
func (s *UserService) SetUserDisabled(userID int, disabled bool) error {
	return s.userRepo.SetUserDisabled(userID, disabled)
}

func (s *UserService) DeleteUser(userID int) error {
	return s.userRepo.DeleteUser(userID)
}
