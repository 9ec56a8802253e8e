// internal/app/system/ids/ids.go

// Package ids implements the hierarchical identifier scheme.
//
// The grammar is dot-delimited, one segment per ownership level:
//
//	city:  <cityId>                      (dot-free)
//	point: <cityId>.<posKey>
//	post:  <cityId>.<posKey>.<seq>
//	group: <cityId>.g.<seq>
//
// posKey encodes a coordinate pair in micro-degrees ("<lat6>x<lon6>") so
// it never contains a dot. Sequence numbers are allocated by the counters
// store, not derived here; this package only parses and formats.
package ids

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/synkteam/municipath/internal/app/content/errs"
	"github.com/synkteam/municipath/internal/domain/models"
)

const groupMarker = "g"

// CityOf returns the city segment of any content id.
func CityOf(id string) (string, error) {
	segs, err := split(id)
	if err != nil {
		return "", err
	}
	return segs[0], nil
}

// KindOf classifies an id as post, group or point by segment pattern.
// A bare city id is not a content id and is malformed here.
func KindOf(id string) (models.ContentKind, error) {
	segs, err := split(id)
	if err != nil {
		return "", err
	}
	switch {
	case len(segs) == 3 && segs[1] == groupMarker:
		return models.KindGroup, nil
	case len(segs) == 3:
		return models.KindPost, nil
	case len(segs) == 2 && segs[1] != groupMarker:
		return models.KindPoint, nil
	default:
		return "", fmt.Errorf("%w: %q", errs.ErrMalformedID, id)
	}
}

// IsGroup reports whether the id carries the group marker. Malformed ids
// are simply not groups.
func IsGroup(id string) bool {
	k, err := KindOf(id)
	return err == nil && k == models.KindGroup
}

// PointOf returns the owning point id of a post id.
func PointOf(postID string) (string, error) {
	k, err := KindOf(postID)
	if err != nil {
		return "", err
	}
	if k != models.KindPost {
		return "", fmt.Errorf("%w: %q is not a post id", errs.ErrMalformedID, postID)
	}
	return postID[:strings.LastIndex(postID, ".")], nil
}

// Seq returns the trailing sequence number of a post or group id.
func Seq(id string) (int, error) {
	k, err := KindOf(id)
	if err != nil {
		return 0, err
	}
	if k == models.KindPoint {
		return 0, fmt.Errorf("%w: %q has no sequence", errs.ErrMalformedID, id)
	}
	segs := strings.Split(id, ".")
	n, err := strconv.Atoi(segs[len(segs)-1])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", errs.ErrMalformedID, id)
	}
	return n, nil
}

// PointID formats the id of the point of a city at a position.
func PointID(cityID string, pos models.Position) string {
	return cityID + "." + PositionKey(pos)
}

// PostID formats a post id under its point.
func PostID(pointID string, seq int) string {
	return pointID + "." + strconv.Itoa(seq)
}

// GroupID formats a group id within a city.
func GroupID(cityID string, seq int) string {
	return cityID + "." + groupMarker + "." + strconv.Itoa(seq)
}

// PrimePostID is the id of a city's immutable first post: sequence zero
// at the city's own point.
func PrimePostID(city *models.City) string {
	return PostID(PointID(city.ID, city.Pos), 0)
}

// PositionKey encodes a position as micro-degree integers. The rounding
// makes keys stable across float formatting differences.
func PositionKey(pos models.Position) string {
	lat := int64(math.Round(pos.Lat * 1e6))
	lon := int64(math.Round(pos.Lon * 1e6))
	return strconv.FormatInt(lat, 10) + "x" + strconv.FormatInt(lon, 10)
}

// ParsePositionKey is the inverse of PositionKey.
func ParsePositionKey(key string) (models.Position, error) {
	parts := strings.Split(key, "x")
	if len(parts) != 2 {
		return models.Position{}, fmt.Errorf("%w: position key %q", errs.ErrMalformedID, key)
	}
	lat, err1 := strconv.ParseInt(parts[0], 10, 64)
	lon, err2 := strconv.ParseInt(parts[1], 10, 64)
	if err1 != nil || err2 != nil {
		return models.Position{}, fmt.Errorf("%w: position key %q", errs.ErrMalformedID, key)
	}
	return models.Position{Lat: float64(lat) / 1e6, Lon: float64(lon) / 1e6}, nil
}

func split(id string) ([]string, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", errs.ErrMalformedID)
	}
	segs := strings.Split(id, ".")
	if len(segs) > 3 {
		return nil, fmt.Errorf("%w: %q", errs.ErrMalformedID, id)
	}
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("%w: %q", errs.ErrMalformedID, id)
		}
	}
	return segs, nil
}
