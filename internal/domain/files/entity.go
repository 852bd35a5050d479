package files

import "time"

// File is the metadata row of one stored binary. StorageKey and OwnerID never
// change after insert.
type File struct {
	ID         string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	OwnerID    string    `gorm:"column:owner_id;size:36;not null;index:idx_files_owner_deleted" json:"owner_id"`
	Name       string    `gorm:"column:name;not null" json:"name"`
	Size       int64     `gorm:"column:size;not null;default:0" json:"size"`
	MimeType   string    `gorm:"column:mime_type;not null" json:"mime_type"`
	StorageKey string    `gorm:"column:storage_key;not null;uniqueIndex:idx_files_storage_key" json:"storage_key"`
	IsDeleted  bool      `gorm:"column:is_deleted;not null;default:false;index:idx_files_owner_deleted" json:"is_deleted"`
	IsFavorite bool      `gorm:"column:is_favorite;not null;default:false" json:"is_favorite"`
	FolderID   *string   `gorm:"column:folder_id;size:36" json:"folder_id"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (File) TableName() string { return "files" }

const (
	IntentUpload = "upload"
	IntentPurge  = "purge"
)

// BlobIntent marks a cross-store operation (blob + row) that has started but
// not finished. Rows older than the reconcile grace period are repaired by
// the Reconciler.
type BlobIntent struct {
	ID         string    `gorm:"column:id;primaryKey;size:36"`
	Op         string    `gorm:"column:op;not null"`
	StorageKey string    `gorm:"column:storage_key;not null"`
	OwnerID    string    `gorm:"column:owner_id;size:36;not null"`
	FileID     *string   `gorm:"column:file_id;size:36"`
	CreatedAt  time.Time `gorm:"column:created_at;index:idx_blob_intents_created"`
}

func (BlobIntent) TableName() string { return "blob_intents" }

// Link is a time-bounded download URL.
type Link struct {
	URL       string
	ExpiresAt time.Time
}
