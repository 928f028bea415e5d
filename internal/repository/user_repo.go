package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Adeolu5678/EchoinWhispr-sub001/internal/db"
)

// UserRepository provides read access to user profiles for the matchmaking
// engine. Profiles are owned by the user-management subsystem; the engine
// treats each loaded row as an immutable snapshot.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// GetByID loads a single profile. Returns gorm.ErrRecordNotFound if absent.
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// MostRecentlyActive returns up to limit profiles ordered by last_active_at
// descending. This is the source pool for candidate selection; the cap is a
// cost bound, filtering happens after.
func (r *UserRepository) MostRecentlyActive(ctx context.Context, limit int) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Order("last_active_at DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
