// internal/app/content/cities/engine.go

// Package cities implements the tenant family: city registration, the
// institutional prime post that anchors every city on the map, curator
// handover and full-tree teardown.
package cities

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.uber.org/zap"

	"github.com/synkteam/municipath/internal/app/content/errs"
	"github.com/synkteam/municipath/internal/app/system/auditlog"
	"github.com/synkteam/municipath/internal/domain/models"
)

// CityStore is the persistence surface the engine needs.
type CityStore interface {
	Get(ctx context.Context, id string) (*models.City, error)
	Save(ctx context.Context, city *models.City) error
	Delete(ctx context.Context, id string) error
	All(ctx context.Context) ([]*models.City, error)
	SearchByName(ctx context.Context, nameCI string) ([]*models.City, error)
}

// Coordinator is the slice of the content coordinator the city family
// calls across family boundaries.
type Coordinator interface {
	IsManager(ctx context.Context, username string) (bool, error)
	CreatePrimePost(ctx context.Context, city *models.City) (*models.Post, error)
	RehomePrimePost(ctx context.Context, city *models.City, oldPrimeID string) (*models.Post, error)
	DeleteCityPoints(ctx context.Context, cityID string) error
	RemoveAllGroupsFromCity(ctx context.Context, cityID string) error
	MatchCurator(ctx context.Context, username, cityID string) error
	DiscreditCurator(ctx context.Context, username, cityID string) error
	DropCityRoles(ctx context.Context, cityID string) error
	DropCityRequests(ctx context.Context, cityID string) error
}

type Engine struct {
	cities CityStore
	coord  Coordinator
	audit  *auditlog.Logger
	log    *zap.Logger
}

func New(cities CityStore, audit *auditlog.Logger, log *zap.Logger) *Engine {
	return &Engine{cities: cities, audit: audit, log: log}
}

func (e *Engine) Bind(c Coordinator) { e.coord = c }

// CityID derives the dot-free identifier from a city's natural key. The
// hash keeps the id short enough to lead every content id in the city.
func CityID(name string, postalCode int) string {
	h := fnv.New32a()
	h.Write([]byte(text.Fold(name)))
	h.Write([]byte(strconv.Itoa(postalCode)))
	return strconv.FormatUint(uint64(h.Sum32()), 10)
}

// Create registers a city, publishes its prime post and installs the
// curator. Manager only.
func (e *Engine) Create(ctx context.Context, actor, name string, postalCode int, curator string, pos models.Position) (*models.City, error) {
	if err := e.requireManager(ctx, actor); err != nil {
		return nil, err
	}
	if name == "" || curator == "" {
		return nil, fmt.Errorf("%w: name and curator", errs.ErrMissingField)
	}

	id := CityID(name, postalCode)
	if _, err := e.cities.Get(ctx, id); err == nil {
		return nil, fmt.Errorf("%w: city %q", errs.ErrDuplicate, name)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	city := &models.City{
		ID:         id,
		Name:       name,
		NameCI:     text.Fold(name),
		PostalCode: postalCode,
		Curator:    curator,
		Pos:        pos,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.cities.Save(ctx, city); err != nil {
		return nil, err
	}

	prime, err := e.coord.CreatePrimePost(ctx, city)
	if err != nil {
		return nil, err
	}
	city.PrimePostID = prime.ID
	if err := e.cities.Save(ctx, city); err != nil {
		return nil, err
	}

	if err := e.coord.MatchCurator(ctx, curator, id); err != nil {
		return nil, err
	}

	e.audit.CityCreated(ctx, actor, id, name)
	e.log.Info("city created",
		zap.String("city", id),
		zap.String("name", name),
		zap.String("curator", curator))
	return city, nil
}

// Update edits a city's details in place. The id never changes: it was
// fixed at registration. A position change re-homes the prime post; a
// curator change hands the role over.
func (e *Engine) Update(ctx context.Context, actor, cityID, name string, curator string, pos models.Position) (*models.City, error) {
	if err := e.requireManager(ctx, actor); err != nil {
		return nil, err
	}
	city, err := e.cities.Get(ctx, cityID)
	if err != nil {
		return nil, err
	}
	if name == "" || curator == "" {
		return nil, fmt.Errorf("%w: name and curator", errs.ErrMissingField)
	}

	var changed []string
	if name != city.Name {
		city.Name = name
		city.NameCI = text.Fold(name)
		changed = append(changed, "name")
	}
	if pos != city.Pos {
		city.Pos = pos
		changed = append(changed, "pos")
		prime, err := e.coord.RehomePrimePost(ctx, city, city.PrimePostID)
		if err != nil {
			return nil, err
		}
		city.PrimePostID = prime.ID
	}
	if curator != city.Curator {
		old := city.Curator
		if err := e.coord.DiscreditCurator(ctx, old, cityID); err != nil {
			return nil, err
		}
		if err := e.coord.MatchCurator(ctx, curator, cityID); err != nil {
			return nil, err
		}
		city.Curator = curator
		changed = append(changed, "curator")
		e.audit.CuratorChanged(ctx, actor, cityID, old, curator)
	}
	if len(changed) == 0 {
		return city, nil
	}

	city.UpdatedAt = time.Now()
	if err := e.cities.Save(ctx, city); err != nil {
		return nil, err
	}
	e.audit.CityUpdated(ctx, actor, cityID, strings.Join(changed, ","))
	return city, nil
}

// Delete tears down a city and everything under it. Order matters: the
// content tree first (posts take their points, groups and satellites with
// them), then the remaining groups, then the moderation queue, then the
// people, and the city row last.
func (e *Engine) Delete(ctx context.Context, actor, cityID string) error {
	if err := e.requireManager(ctx, actor); err != nil {
		return err
	}
	city, err := e.cities.Get(ctx, cityID)
	if err != nil {
		return err
	}

	if err := e.coord.DeleteCityPoints(ctx, cityID); err != nil {
		return err
	}
	if err := e.coord.RemoveAllGroupsFromCity(ctx, cityID); err != nil {
		return err
	}
	if err := e.coord.DropCityRequests(ctx, cityID); err != nil {
		return err
	}
	if err := e.coord.DiscreditCurator(ctx, city.Curator, cityID); err != nil {
		return err
	}
	if err := e.coord.DropCityRoles(ctx, cityID); err != nil {
		return err
	}
	if err := e.cities.Delete(ctx, cityID); err != nil {
		return err
	}

	e.audit.CityDeleted(ctx, actor, cityID, city.Name)
	e.log.Info("city deleted", zap.String("city", cityID), zap.String("name", city.Name))
	return nil
}

// Get returns a city by id.
func (e *Engine) Get(ctx context.Context, cityID string) (*models.City, error) {
	return e.cities.Get(ctx, cityID)
}

// List returns all registered cities.
func (e *Engine) List(ctx context.Context) ([]*models.City, error) {
	return e.cities.All(ctx)
}

// Search finds cities by case-insensitive name prefix.
func (e *Engine) Search(ctx context.Context, query string) ([]*models.City, error) {
	return e.cities.SearchByName(ctx, text.Fold(query))
}

func (e *Engine) requireManager(ctx context.Context, actor string) error {
	ok, err := e.coord.IsManager(ctx, actor)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrUnauthorized
	}
	return nil
}
