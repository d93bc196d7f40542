package interfaces

import "fleet-charging/models"

// UserRepositoryInterface defines user data access for the auth collaborator.
type UserRepositoryInterface interface {
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Create(user *models.User) (*models.User, error)
}
