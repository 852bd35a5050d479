package files

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, f *File) error
	GetOwned(ctx context.Context, id, ownerID string) (*File, error)
	Rename(ctx context.Context, id, ownerID, name string) (*File, error)
	ToggleFavorite(ctx context.Context, id, ownerID string) (bool, error)
	SetDeleted(ctx context.Context, id, ownerID string, deleted bool) error
	ListActive(ctx context.Context, ownerID string) ([]File, error)
	ListTrash(ctx context.Context, ownerID string) ([]File, error)
	Search(ctx context.Context, ownerID, term string) ([]File, error)
	ExistsByStorageKey(ctx context.Context, key string) (bool, error)
	// DeleteWithIntent removes the file row and clears the purge intent in one transaction.
	DeleteWithIntent(ctx context.Context, fileID, intentID string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, f *File) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *repository) GetOwned(ctx context.Context, id, ownerID string) (*File, error) {
	var f File
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Rename only touches active files, so a soft-delete racing the caller's
// trash check still wins.
func (r *repository) Rename(ctx context.Context, id, ownerID, name string) (*File, error) {
	res := r.db.WithContext(ctx).Model(&File{}).
		Where("id = ? AND owner_id = ? AND is_deleted = ?", id, ownerID, false).
		Update("name", name)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		f, err := r.GetOwned(ctx, id, ownerID)
		if err != nil {
			return nil, err
		}
		if f.IsDeleted {
			return nil, ErrFileInTrash
		}
		return nil, ErrNotFound
	}
	return r.GetOwned(ctx, id, ownerID)
}

// ToggleFavorite flips is_favorite in a single UPDATE so concurrent toggles
// never read a stale value, then reads the committed flag back in the same
// transaction. Trashed files are left untouched.
func (r *repository) ToggleFavorite(ctx context.Context, id, ownerID string) (bool, error) {
	var value bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&File{}).
			Where("id = ? AND owner_id = ? AND is_deleted = ?", id, ownerID, false).
			Update("is_favorite", gorm.Expr("NOT is_favorite"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var f File
			err := tx.Select("id", "is_deleted").Where("id = ? AND owner_id = ?", id, ownerID).First(&f).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}
			return ErrFileInTrash
		}

		var f File
		if err := tx.Select("is_favorite").Where("id = ?", id).First(&f).Error; err != nil {
			return err
		}
		value = f.IsFavorite
		return nil
	})
	return value, err
}

func (r *repository) SetDeleted(ctx context.Context, id, ownerID string, deleted bool) error {
	return r.db.WithContext(ctx).Model(&File{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Update("is_deleted", deleted).Error
}

func (r *repository) ListActive(ctx context.Context, ownerID string) ([]File, error) {
	files := make([]File, 0)
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND is_deleted = ?", ownerID, false).
		Order("created_at DESC").Order("id").
		Find(&files).Error
	return files, err
}

func (r *repository) ListTrash(ctx context.Context, ownerID string) ([]File, error) {
	files := make([]File, 0)
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND is_deleted = ?", ownerID, true).
		Order("updated_at DESC").Order("id").
		Find(&files).Error
	return files, err
}

// Search matches file names. On PostgreSQL it uses the english full-text
// index with a substring fallback; elsewhere LIKE, case-insensitive for ASCII.
func (r *repository) Search(ctx context.Context, ownerID, term string) ([]File, error) {
	pattern := "%" + escapeLike(term) + "%"

	q := r.db.WithContext(ctx).Where("owner_id = ? AND is_deleted = ?", ownerID, false)
	if r.db.Dialector.Name() == "postgres" {
		q = q.Where(`(to_tsvector('english', name) @@ plainto_tsquery('english', ?) OR name ILIKE ? ESCAPE '\')`, term, pattern)
	} else {
		// SQLite LIKE folds ASCII only; the term is left as typed so both sides match alike
		q = q.Where(`name LIKE ? ESCAPE '\'`, pattern)
	}

	files := make([]File, 0)
	err := q.Order("created_at DESC").Order("id").Find(&files).Error
	return files, err
}

func (r *repository) ExistsByStorageKey(ctx context.Context, key string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&File{}).Where("storage_key = ?", key).Count(&count).Error
	return count > 0, err
}

func (r *repository) DeleteWithIntent(ctx context.Context, fileID, intentID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", fileID).Delete(&File{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", intentID).Delete(&BlobIntent{}).Error
	})
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// IntentRepository is the write-ahead log for blob operations.
type IntentRepository interface {
	Create(ctx context.Context, in *BlobIntent) error
	Delete(ctx context.Context, id string) error
	ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]BlobIntent, error)
}

type intentRepository struct {
	db *gorm.DB
}

func NewIntentRepository(db *gorm.DB) IntentRepository {
	return &intentRepository{db: db}
}

func (r *intentRepository) Create(ctx context.Context, in *BlobIntent) error {
	return r.db.WithContext(ctx).Create(in).Error
}

func (r *intentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&BlobIntent{}).Error
}

func (r *intentRepository) ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]BlobIntent, error) {
	var intents []BlobIntent
	err := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Order("created_at").
		Limit(limit).
		Find(&intents).Error
	return intents, err
}
