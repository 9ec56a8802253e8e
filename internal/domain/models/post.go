// internal/domain/models/post.go
package models

import "time"

// PostType is the closed set of post kinds. Creation strategies are
// dispatched on it; adding a kind means adding a creator, nothing else.
type PostType string

const (
	PostNormal        PostType = "normal"
	PostEvent         PostType = "event"
	PostContest       PostType = "contest"
	PostSocial        PostType = "social"
	PostInstitutional PostType = "institutional"
)

// Post is a single content item at a point.
//
// Published=false means the post is reachable only by its author and by
// city staff. Persistence=false requires a start/end window; such posts
// are removed by the expiry sweep once the window has passed.
type Post struct {
	ID      string   `bson:"_id" json:"id"`
	PointID string   `bson:"point_id" json:"point_id"`
	CityID  string   `bson:"city_id" json:"city_id"`
	Author  string   `bson:"author" json:"author"`
	Title   string   `bson:"title" json:"title"`
	Text    string   `bson:"text" json:"text"`
	Type    PostType `bson:"type" json:"type"`
	Pos     Position `bson:"pos" json:"pos"`

	Published       bool      `bson:"published" json:"published"`
	PublicationTime time.Time `bson:"publication_time,omitempty" json:"publication_time,omitempty"`
	Persistence     bool      `bson:"persistence" json:"persistence"`

	StartTime *time.Time `bson:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime   *time.Time `bson:"end_time,omitempty" json:"end_time,omitempty"`

	Views int64 `bson:"views" json:"views"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// PostDraft carries the caller-supplied fields of a create or edit.
// It is also the snapshot embedded in a pending edit request.
type PostDraft struct {
	Title       string     `bson:"title" json:"title"`
	Text        string     `bson:"text" json:"text"`
	Type        PostType   `bson:"type" json:"type"`
	Persistence bool       `bson:"persistence" json:"persistence"`
	StartTime   *time.Time `bson:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime     *time.Time `bson:"end_time,omitempty" json:"end_time,omitempty"`
}
