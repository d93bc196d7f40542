package base

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ===================================================================
// COMMON CRUD PATTERNS
// ===================================================================

// CRUDRepository defines the common CRUD operations interface.
type CRUDRepository[T any] interface {
	Create(entity *T) (*T, error)
	GetByID(id uint) (*T, error)
	Update(id uint, updates map[string]interface{}) (*T, error)
	Delete(id uint) error
	List(limit, offset int) ([]T, error)
}

// BaseCRUDRepository provides the common CRUD implementation.
type BaseCRUDRepository[T any] struct {
	db        *gorm.DB
	tableName string
}

func NewBaseCRUDRepository[T any](db *gorm.DB, tableName string) *BaseCRUDRepository[T] {
	return &BaseCRUDRepository[T]{
		db:        db,
		tableName: tableName,
	}
}

// DB exposes the underlying handle for query composition in the concrete
// repositories.
func (r *BaseCRUDRepository[T]) DB() *gorm.DB {
	return r.db
}

// CreateAndGet creates the entity and returns it with fresh data from the DB.
func (r *BaseCRUDRepository[T]) CreateAndGet(entity *T) (*T, error) {
	if err := r.db.Create(entity).Error; err != nil {
		return nil, WrapDBError("create", r.tableName, err)
	}

	if idGetter, ok := interface{}(entity).(IDGetter); ok {
		return r.GetByID(idGetter.GetID())
	}
	return entity, nil
}

// UpdateAndGet updates the entity and returns it with fresh data from the DB.
func (r *BaseCRUDRepository[T]) UpdateAndGet(id uint, updates map[string]interface{}) (*T, error) {
	if err := r.checkEntityExists(id); err != nil {
		return nil, err
	}

	updates["updated_at"] = time.Now()

	if err := r.db.Model(new(T)).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, WrapDBError("update", r.tableName, err)
	}

	return r.GetByID(id)
}

// GetByID retrieves the entity by ID with standard error handling.
func (r *BaseCRUDRepository[T]) GetByID(id uint) (*T, error) {
	var entity T
	err := r.db.Where("id = ?", id).First(&entity).Error
	if err != nil {
		return nil, HandleDBError("get", r.tableName, fmt.Sprintf("ID %d", id), err)
	}
	return &entity, nil
}

// ListWithPagination retrieves entities with pagination.
func (r *BaseCRUDRepository[T]) ListWithPagination(limit, offset int, orderBy string) ([]T, error) {
	var entities []T
	query := r.db.Model(new(T))

	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("created_at desc")
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&entities).Error
	if err != nil {
		return nil, WrapDBError("list", r.tableName, err)
	}

	return entities, nil
}

// DeleteWithValidation deletes the entity after an existence check.
func (r *BaseCRUDRepository[T]) DeleteWithValidation(id uint) error {
	if err := r.checkEntityExists(id); err != nil {
		return err
	}

	if err := r.db.Delete(new(T), id).Error; err != nil {
		return WrapDBError("delete", r.tableName, err)
	}

	return nil
}

// ExistsCheck checks if an entity with the given ID exists.
func (r *BaseCRUDRepository[T]) ExistsCheck(id uint) (bool, error) {
	var count int64
	err := r.db.Model(new(T)).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, WrapDBError("check existence", r.tableName, err)
	}
	return count > 0, nil
}

func (r *BaseCRUDRepository[T]) checkEntityExists(id uint) error {
	exists, err := r.ExistsCheck(id)
	if err != nil {
		return err
	}
	if !exists {
		return NewEntityNotFoundError(r.tableName, fmt.Sprintf("ID %d", id))
	}
	return nil
}

// ===================================================================
// TRANSACTION HELPERS
// ===================================================================

// UpdateWithTransaction updates the entity within the provided transaction.
// Callers that run on an injected clock pass their own updated_at stamp.
func (r *BaseCRUDRepository[T]) UpdateWithTransaction(tx *gorm.DB, id uint, updates map[string]interface{}) error {
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}

	result := tx.Model(new(T)).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return WrapDBError("update", r.tableName, result.Error)
	}

	if result.RowsAffected == 0 {
		return NewEntityNotFoundError(r.tableName, fmt.Sprintf("ID %d", id))
	}

	return nil
}

// CreateWithTransaction creates the entity within the provided transaction.
func (r *BaseCRUDRepository[T]) CreateWithTransaction(tx *gorm.DB, entity *T) error {
	if err := tx.Create(entity).Error; err != nil {
		return WrapDBError("create", r.tableName, err)
	}
	return nil
}

// ===================================================================
// INTERFACE DEFINITIONS
// ===================================================================

// IDGetter is implemented by entities that can return their ID.
type IDGetter interface {
	GetID() uint
}
