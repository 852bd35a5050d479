// Package events publishes file lifecycle changes for downstream consumers
// (indexers, audit, quota accounting).
package events

import (
	"context"
	"time"
)

const DefaultTopic = "file.events"

const (
	FileUploaded        = "FILE_UPLOADED"
	FileRenamed         = "FILE_RENAMED"
	FileFavoriteToggled = "FILE_FAVORITE_TOGGLED"
	FileTrashed         = "FILE_TRASHED"
	FileRestored        = "FILE_RESTORED"
	FilePurged          = "FILE_PURGED"
	FolderCreated       = "FOLDER_CREATED"
	FileShared          = "FILE_SHARED"
)

const (
	AssetFile   = "file"
	AssetFolder = "folder"
)

type Event struct {
	EventType  string         `json:"event_type"`
	AssetType  string         `json:"asset_type"`
	AssetID    string         `json:"asset_id"`
	OwnerID    string         `json:"owner_id"`
	Timestamp  time.Time      `json:"timestamp"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func New(eventType, assetType, assetID, ownerID string, attrs map[string]any) Event {
	return Event{
		EventType:  eventType,
		AssetType:  assetType,
		AssetID:    assetID,
		OwnerID:    ownerID,
		Timestamp:  time.Now().UTC(),
		Attributes: attrs,
	}
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                          { return nil }
