package repository

import (
	"errors"
	"time"

	authdomain "faktury-backend/internal/auth/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tokenRepository implements TokenRepository using GORM
type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new instance of tokenRepository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{
		db: db,
	}
}

func (r *tokenRepository) Get() (*authdomain.AuthTokens, error) {
	var tokens authdomain.AuthTokens
	err := r.db.First(&tokens).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tokens, nil
}

func (r *tokenRepository) Save(tokens *authdomain.AuthTokens) error {
	now := time.Now()
	if tokens.CreatedAt.IsZero() {
		tokens.CreatedAt = now
	}
	tokens.UpdatedAt = now

	// Single-user deployment keeps exactly one row; replace whatever is there
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id <> ?", tokens.UserID).Delete(&authdomain.AuthTokens{}).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).Create(tokens).Error
	})
}

func (r *tokenRepository) Clear() error {
	return r.db.Where("1 = 1").Delete(&authdomain.AuthTokens{}).Error
}
