package shares

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Upsert inserts a grant or updates the role of the existing grant for
	// the same (file, email) and returns the stored row.
	Upsert(ctx context.Context, s *Share) (*Share, error)
	ListByFile(ctx context.Context, fileID string) ([]Share, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, s *Share) (*Share, error) {
	var stored Share
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Omit("File").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "file_id"}, {Name: "shared_with_email"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
		}).Create(s).Error
		if err != nil {
			return err
		}
		return tx.Where("file_id = ? AND shared_with_email = ?", s.FileID, s.SharedWithEmail).First(&stored).Error
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *repository) ListByFile(ctx context.Context, fileID string) ([]Share, error) {
	var shares []Share
	err := r.db.WithContext(ctx).Where("file_id = ?", fileID).Order("created_at").Find(&shares).Error
	return shares, err
}
