package database

import (
	"gorm.io/gorm"
)

// UnitOfWorkInterface brackets the engine's multi-entity writes. A fleet
// transition touches a robot, its station and an order row; all three land
// or none do.
type UnitOfWorkInterface interface {
	Begin() *gorm.DB
	Commit(tx *gorm.DB) error
	Rollback(tx *gorm.DB)
}

type unitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWorkInterface {
	return &unitOfWork{db: db}
}

func (u *unitOfWork) Begin() *gorm.DB {
	return u.db.Begin()
}

func (u *unitOfWork) Commit(tx *gorm.DB) error {
	return tx.Commit().Error
}

// Rollback becomes a no-op once the transaction committed or already rolled
// back, so callers can defer it unconditionally.
func (u *unitOfWork) Rollback(tx *gorm.DB) {
	if tx.Error == nil {
		tx.Rollback()
	}
}
