package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	pkgdb "github.com/Skotchmaster/sport_shop/pkg/db"
	"github.com/Skotchmaster/sport_shop/services/auth/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	err := r.DB.WithContext(ctx).Create(u).Error
	if pkgdb.IsUniqueViolation(err) {
		return apperr.New(apperr.ErrConflict, "User with this email already exists")
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UserByEmail returns ErrNotFound for an unknown address; callers turn that into a
// credentials error.
func (r *GormRepo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if pkgdb.IsNotFound(err) {
		return nil, apperr.New(apperr.ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &u, nil
}

func (r *GormRepo) UserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if pkgdb.IsNotFound(err) {
		return nil, apperr.New(apperr.ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &u, nil
}

func (r *GormRepo) SetRole(ctx context.Context, id, role string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return fmt.Errorf("set role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.ErrNotFound, "User not found")
	}
	return nil
}
