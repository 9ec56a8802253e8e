// internal/domain/models/position.go
package models

// Position is a WGS84 coordinate pair. It is embedded in cities, points
// and posts and is the basis of the point segment of content identifiers.
type Position struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lon float64 `bson:"lon" json:"lon"`
}
