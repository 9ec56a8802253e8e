// internal/domain/models/group.go
package models

import "time"

// Group is a curated collection of post ids: an itinerary when sorted,
// an experience when not. A group with fewer than two member posts is
// invalid and is purged after any removal that depletes it.
type Group struct {
	ID      string   `bson:"_id" json:"id"`
	CityID  string   `bson:"city_id" json:"city_id"`
	Author  string   `bson:"author" json:"author"`
	Title   string   `bson:"title" json:"title"`
	Sorted  bool     `bson:"sorted" json:"sorted"`
	PostIDs []string `bson:"post_ids" json:"post_ids"`

	Published       bool      `bson:"published" json:"published"`
	PublicationTime time.Time `bson:"publication_time,omitempty" json:"publication_time,omitempty"`
	Persistence     bool      `bson:"persistence" json:"persistence"`

	StartTime *time.Time `bson:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime   *time.Time `bson:"end_time,omitempty" json:"end_time,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// GroupDraft carries the caller-supplied fields of a group create or edit,
// and is the snapshot embedded in a pending edit request.
type GroupDraft struct {
	Title       string     `bson:"title" json:"title"`
	Sorted      bool       `bson:"sorted" json:"sorted"`
	PostIDs     []string   `bson:"post_ids" json:"post_ids"`
	Persistence bool       `bson:"persistence" json:"persistence"`
	StartTime   *time.Time `bson:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime     *time.Time `bson:"end_time,omitempty" json:"end_time,omitempty"`
}
