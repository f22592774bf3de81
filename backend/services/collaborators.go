package services

import (
	"context"
	"errors"

	"educprogress/backend/models"

	"gorm.io/gorm"
)

// IdentityStore is the slice of the identity subsystem the engine consumes.
type IdentityStore interface {
	FindUser(ctx context.Context, id uint) (*models.User, error)
	FindChildrenOf(ctx context.Context, parentID uint) ([]models.User, error)
	UserExists(ctx context.Context, usernameOrEmail string) (bool, error)
}

// ModuleCatalog is the read-only module lookup the engine consumes.
type ModuleCatalog interface {
	FindModule(ctx context.Context, id uint) (*models.Module, error)
}

// GormIdentityStore reads the users table owned by the identity subsystem.
type GormIdentityStore struct {
	DB *gorm.DB
}

func NewGormIdentityStore(db *gorm.DB) *GormIdentityStore {
	return &GormIdentityStore{DB: db}
}

// FindUser returns ErrLearnerNotFound when no user has the id.
func (s *GormIdentityStore) FindUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLearnerNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindChildrenOf returns only child-role accounts linked to the parent.
func (s *GormIdentityStore) FindChildrenOf(ctx context.Context, parentID uint) ([]models.User, error) {
	var children []models.User
	err := s.DB.WithContext(ctx).
		Where("parent_id = ? AND role = ?", parentID, models.RoleChild).
		Order("id").
		Find(&children).Error
	return children, err
}

func (s *GormIdentityStore) UserExists(ctx context.Context, usernameOrEmail string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", usernameOrEmail, usernameOrEmail).
		Count(&count).Error
	return count > 0, err
}

type GormModuleCatalog struct {
	DB *gorm.DB
}

func NewGormModuleCatalog(db *gorm.DB) *GormModuleCatalog {
	return &GormModuleCatalog{DB: db}
}

// FindModule returns ErrModuleNotFound when the catalog has no such module.
func (c *GormModuleCatalog) FindModule(ctx context.Context, id uint) (*models.Module, error) {
	var module models.Module
	if err := c.DB.WithContext(ctx).First(&module, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModuleNotFound
		}
		return nil, err
	}
	return &module, nil
}
