package shares

import (
	"time"

	"cloudstore/internal/domain/files"
)

const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
)

// Share grants a target email access to one file. Grants are unique per
// (file, email) and disappear with the file.
type Share struct {
	ID              string      `gorm:"column:id;primaryKey;size:36" json:"id"`
	FileID          string      `gorm:"column:file_id;size:36;not null;uniqueIndex:idx_share_file_target" json:"file_id"`
	File            *files.File `gorm:"foreignKey:FileID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	OwnerID         string      `gorm:"column:owner_id;size:36;not null" json:"owner_id"`
	SharedWithEmail string      `gorm:"column:shared_with_email;not null;uniqueIndex:idx_share_file_target" json:"shared_with_email"`
	Role            string      `gorm:"column:role;not null;default:viewer" json:"role"`
	CreatedAt       time.Time   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"column:updated_at" json:"updated_at"`
}

func (Share) TableName() string { return "shares" }
