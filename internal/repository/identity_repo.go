package repository

import (
	"context"
	"errors"
	"time"

	"adpilot-app/internal/domain/entitlement"
	"adpilot-app/internal/domain/users"

	"gorm.io/gorm"
)

type identityStore struct {
	db *gorm.DB
}

// NewIdentityStore returns the gorm-backed identity store the provisioner
// works against.
func NewIdentityStore(db *gorm.DB) entitlement.IdentityStore {
	return &identityStore{db: db}
}

func (s *identityStore) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	var u users.User
	err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *identityStore) Create(ctx context.Context, u *users.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *identityStore) Delete(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Delete(&users.User{}, userID).Error
}

func (s *identityStore) CreateToken(ctx context.Context, userID uint, token, tokenType string, expiresAt time.Time) error {
	// One token per user; replace whatever is there.
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&users.VerificationToken{}).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(&users.VerificationToken{
		UserID:    userID,
		Token:     token,
		Type:      tokenType,
		ExpiresAt: expiresAt,
	}).Error
}
