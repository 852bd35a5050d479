package folders

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, f *Folder) error
	GetOwned(ctx context.Context, id, ownerID string) (*Folder, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Folder, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, f *Folder) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *repository) GetOwned(ctx context.Context, id, ownerID string) (*Folder, error) {
	var f Folder
	err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID string) ([]Folder, error) {
	folders := make([]Folder, 0)
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("name").Order("id").
		Find(&folders).Error
	return folders, err
}
