package repositories

import (
	"fmt"

	"fleet-charging/models"
	"fleet-charging/repositories/base"
	"fleet-charging/repositories/interfaces"

	"gorm.io/gorm"
)

type UserRepository struct {
	*base.BaseCRUDRepository[models.User]
}

func NewUserRepository(db *gorm.DB) interfaces.UserRepositoryInterface {
	return &UserRepository{
		BaseCRUDRepository: base.NewBaseCRUDRepository[models.User](db, "users"),
	}
}

func (r *UserRepository) Create(user *models.User) (*models.User, error) {
	return r.CreateAndGet(user)
}

func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.DB().Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, base.HandleDBError("get", "users", fmt.Sprintf("username %s", username), err)
	}
	return &user, nil
}
