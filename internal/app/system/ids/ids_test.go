package ids_test

import (
	"errors"
	"testing"

	"github.com/synkteam/municipath/internal/app/content/errs"
	"github.com/synkteam/municipath/internal/app/system/ids"
	"github.com/synkteam/municipath/internal/domain/models"
)

func TestCityOf(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"12345", "12345"},
		{"12345.45123456x-122654321", "12345"},
		{"12345.45123456x-122654321.3", "12345"},
		{"12345.g.0", "12345"},
	}
	for _, tt := range tests {
		got, err := ids.CityOf(tt.id)
		if err != nil {
			t.Fatalf("CityOf(%q): %v", tt.id, err)
		}
		if got != tt.want {
			t.Errorf("CityOf(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestCityOf_Malformed(t *testing.T) {
	for _, id := range []string{"", "a..b", "a.b.c.d", ".x"} {
		if _, err := ids.CityOf(id); !errors.Is(err, errs.ErrMalformedID) {
			t.Errorf("CityOf(%q): expected ErrMalformedID, got %v", id, err)
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		id   string
		want models.ContentKind
	}{
		{"12345.45000000x9000000", models.KindPoint},
		{"12345.45000000x9000000.0", models.KindPost},
		{"12345.g.7", models.KindGroup},
	}
	for _, tt := range tests {
		got, err := ids.KindOf(tt.id)
		if err != nil {
			t.Fatalf("KindOf(%q): %v", tt.id, err)
		}
		if got != tt.want {
			t.Errorf("KindOf(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}

	// A bare city id has no content kind.
	if _, err := ids.KindOf("12345"); !errors.Is(err, errs.ErrMalformedID) {
		t.Errorf("KindOf(city id): expected ErrMalformedID, got %v", err)
	}
}

func TestIsGroup(t *testing.T) {
	if !ids.IsGroup("12345.g.0") {
		t.Error("expected group id to be recognized")
	}
	if ids.IsGroup("12345.45000000x9000000.0") {
		t.Error("post id misclassified as group")
	}
	if ids.IsGroup("garbage..") {
		t.Error("malformed id misclassified as group")
	}
}

func TestPointOf(t *testing.T) {
	got, err := ids.PointOf("12345.45000000x9000000.3")
	if err != nil {
		t.Fatalf("PointOf: %v", err)
	}
	if got != "12345.45000000x9000000" {
		t.Errorf("PointOf = %q", got)
	}
	if _, err := ids.PointOf("12345.g.3"); !errors.Is(err, errs.ErrMalformedID) {
		t.Errorf("PointOf(group id): expected ErrMalformedID, got %v", err)
	}
}

func TestSeq(t *testing.T) {
	n, err := ids.Seq("12345.g.41")
	if err != nil || n != 41 {
		t.Errorf("Seq(group) = %d, %v", n, err)
	}
	n, err = ids.Seq("12345.45000000x9000000.0")
	if err != nil || n != 0 {
		t.Errorf("Seq(post) = %d, %v", n, err)
	}
	if _, err := ids.Seq("12345.45000000x9000000"); !errors.Is(err, errs.ErrMalformedID) {
		t.Errorf("Seq(point): expected ErrMalformedID, got %v", err)
	}
}

func TestPositionKeyRoundTrip(t *testing.T) {
	pos := models.Position{Lat: 45.123456, Lon: -122.654321}
	key := ids.PositionKey(pos)
	back, err := ids.ParsePositionKey(key)
	if err != nil {
		t.Fatalf("ParsePositionKey(%q): %v", key, err)
	}
	if back != pos {
		t.Errorf("round trip: got %+v, want %+v", back, pos)
	}
}

func TestPrimePostID(t *testing.T) {
	city := &models.City{ID: "98765", Pos: models.Position{Lat: 1, Lon: 2}}
	id := ids.PrimePostID(city)
	want := "98765." + ids.PositionKey(city.Pos) + ".0"
	if id != want {
		t.Errorf("PrimePostID = %q, want %q", id, want)
	}
	kind, err := ids.KindOf(id)
	if err != nil || kind != models.KindPost {
		t.Errorf("prime id kind = %v, %v", kind, err)
	}
}
