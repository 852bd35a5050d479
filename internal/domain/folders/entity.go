package folders

import "time"

// Folder is a node in a principal's folder tree. A nil ParentID is a root folder.
type Folder struct {
	ID        string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	OwnerID   string    `gorm:"column:owner_id;size:36;not null;index:idx_folders_owner" json:"owner_id"`
	ParentID  *string   `gorm:"column:parent_id;size:36" json:"parent_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Folder) TableName() string { return "folders" }
