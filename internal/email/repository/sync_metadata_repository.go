package repository

import (
	"errors"
	"time"

	emaildomain "faktury-backend/internal/email/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// syncMetadataRepository implements SyncMetadataRepository using GORM
type syncMetadataRepository struct {
	db *gorm.DB
}

// NewSyncMetadataRepository creates a new instance of syncMetadataRepository
func NewSyncMetadataRepository(db *gorm.DB) SyncMetadataRepository {
	return &syncMetadataRepository{
		db: db,
	}
}

func (r *syncMetadataRepository) UpdateSyncTimestamp(ts time.Time) error {
	row := emaildomain.SyncMetadata{
		ID:                1,
		LastSyncTimestamp: ts,
		UpdatedAt:         time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
}

func (r *syncMetadataRepository) GetLastSyncTimestamp() (time.Time, error) {
	var row emaildomain.SyncMetadata
	err := r.db.First(&row, 1).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return row.LastSyncTimestamp, nil
}
