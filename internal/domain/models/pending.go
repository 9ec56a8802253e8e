// internal/domain/models/pending.go
package models

import "time"

// ContentKind tells which family a pending request targets.
type ContentKind string

const (
	KindPost  ContentKind = "post"
	KindGroup ContentKind = "group"
	KindPoint ContentKind = "point"
)

// PendingRequest is a queued create or edit awaiting moderation.
//
// The request is keyed by the target content id: a create request carries
// only the id of the unpublished placeholder, an edit request additionally
// carries the full proposed snapshot. At most one request exists per
// target; a second edit submission overwrites the first (last-writer-wins).
type PendingRequest struct {
	ID     string      `bson:"_id" json:"id"`
	CityID string      `bson:"city_id" json:"city_id"`
	New    bool        `bson:"new" json:"new"`
	Kind   ContentKind `bson:"kind" json:"kind"`

	Post  *PostDraft  `bson:"post,omitempty" json:"post,omitempty"`
	Group *GroupDraft `bson:"group,omitempty" json:"group,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
