// internal/app/store/memory/memory.go

// Package memory provides map-backed implementations of the engine store
// interfaces. They exist for tests and local experiments; production
// wiring uses the Mongo stores.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/synkteam/municipath/internal/app/content/errs"
	"github.com/synkteam/municipath/internal/domain/models"
)

// --- cities ---

type Cities struct {
	mu sync.RWMutex
	m  map[string]models.City
}

func NewCities() *Cities { return &Cities{m: make(map[string]models.City)} }

func (s *Cities) Get(_ context.Context, id string) (*models.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	city, ok := s.m[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &city, nil
}

func (s *Cities) Save(_ context.Context, city *models.City) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[city.ID] = *city
	return nil
}

func (s *Cities) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.m, id)
	return nil
}

func (s *Cities) All(_ context.Context) ([]*models.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.City, 0, len(s.m))
	for _, city := range s.m {
		c := city
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NameCI < out[j].NameCI })
	return out, nil
}

func (s *Cities) SearchByName(_ context.Context, nameCI string) ([]*models.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.City
	for _, city := range s.m {
		if len(city.NameCI) >= len(nameCI) && city.NameCI[:len(nameCI)] == nameCI {
			c := city
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NameCI < out[j].NameCI })
	return out, nil
}

// --- posts ---

type Posts struct {
	mu sync.RWMutex
	m  map[string]models.Post
}

func NewPosts() *Posts { return &Posts{m: make(map[string]models.Post)} }

func clonePost(p models.Post) *models.Post {
	return &p
}

func (s *Posts) Get(_ context.Context, id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	post, ok := s.m[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return clonePost(post), nil
}

func (s *Posts) Save(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[post.ID] = *post
	return nil
}

func (s *Posts) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.m, id)
	return nil
}

func (s *Posts) ByPoint(_ context.Context, pointID string) ([]*models.Post, error) {
	return s.filter(func(p models.Post) bool { return p.PointID == pointID }), nil
}

func (s *Posts) ByCity(_ context.Context, cityID string) ([]*models.Post, error) {
	return s.filter(func(p models.Post) bool { return p.CityID == cityID }), nil
}

func (s *Posts) IncrementViews(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.m[id]
	if !ok {
		return errs.ErrNotFound
	}
	post.Views++
	s.m[id] = post
	return nil
}

func (s *Posts) Expired(_ context.Context, cutoff time.Time) ([]*models.Post, error) {
	return s.filter(func(p models.Post) bool {
		return !p.Persistence && p.EndTime != nil && p.EndTime.Before(cutoff)
	}), nil
}

func (s *Posts) filter(keep func(models.Post) bool) []*models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Post
	for _, post := range s.m {
		if keep(post) {
			out = append(out, clonePost(post))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// --- points ---

type Points struct {
	mu sync.RWMutex
	m  map[string]models.Point
}

func NewPoints() *Points { return &Points{m: make(map[string]models.Point)} }

func clonePoint(p models.Point) *models.Point {
	p.PostIDs = append([]string(nil), p.PostIDs...)
	return &p
}

func (s *Points) Get(_ context.Context, id string) (*models.Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	point, ok := s.m[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return clonePoint(point), nil
}

func (s *Points) Save(_ context.Context, point *models.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[point.ID] = *clonePoint(*point)
	return nil
}

func (s *Points) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.m, id)
	return nil
}

func (s *Points) ByCity(_ context.Context, cityID string) ([]*models.Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Point
	for _, point := range s.m {
		if point.CityID == cityID {
			out = append(out, clonePoint(point))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- groups ---

type Groups struct {
	mu sync.RWMutex
	m  map[string]models.Group
}

func NewGroups() *Groups { return &Groups{m: make(map[string]models.Group)} }

func cloneGroup(g models.Group) *models.Group {
	g.PostIDs = append([]string(nil), g.PostIDs...)
	return &g
}

func (s *Groups) Get(_ context.Context, id string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	group, ok := s.m[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneGroup(group), nil
}

func (s *Groups) Save(_ context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[group.ID] = *cloneGroup(*group)
	return nil
}

func (s *Groups) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.m, id)
	return nil
}

func (s *Groups) ByCity(_ context.Context, cityID string) ([]*models.Group, error) {
	return s.filter(func(g models.Group) bool { return g.CityID == cityID }), nil
}

func (s *Groups) ContainingPost(_ context.Context, postID string) ([]*models.Group, error) {
	return s.filter(func(g models.Group) bool {
		for _, id := range g.PostIDs {
			if id == postID {
				return true
			}
		}
		return false
	}), nil
}

func (s *Groups) Expired(_ context.Context, cutoff time.Time) ([]*models.Group, error) {
	return s.filter(func(g models.Group) bool {
		return !g.Persistence && g.EndTime != nil && g.EndTime.Before(cutoff)
	}), nil
}

func (s *Groups) filter(keep func(models.Group) bool) []*models.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Group
	for _, group := range s.m {
		if keep(group) {
			out = append(out, cloneGroup(group))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- pending requests ---

type Requests struct {
	mu sync.RWMutex
	m  map[string]models.PendingRequest
}

func NewRequests() *Requests { return &Requests{m: make(map[string]models.PendingRequest)} }

func cloneRequest(r models.PendingRequest) *models.PendingRequest {
	if r.Post != nil {
		post := *r.Post
		r.Post = &post
	}
	if r.Group != nil {
		group := *r.Group
		group.PostIDs = append([]string(nil), group.PostIDs...)
		r.Group = &group
	}
	return &r
}

func (s *Requests) Get(_ context.Context, id string) (*models.PendingRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.m[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneRequest(req), nil
}

func (s *Requests) Save(_ context.Context, req *models.PendingRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[req.ID] = *cloneRequest(*req)
	return nil
}

func (s *Requests) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.m, id)
	return nil
}

func (s *Requests) ByCity(_ context.Context, cityID string) ([]*models.PendingRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.PendingRequest
	for _, req := range s.m {
		if req.CityID == cityID {
			out = append(out, cloneRequest(req))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Requests) DropCity(_ context.Context, cityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, req := range s.m {
		if req.CityID == cityID {
			delete(s.m, id)
		}
	}
	return nil
}

// --- contributions ---

type Contributions struct {
	mu sync.RWMutex
	m  map[string]models.Contribution
}

func NewContributions() *Contributions {
	return &Contributions{m: make(map[string]models.Contribution)}
}

func cloneContribution(c models.Contribution) *models.Contribution {
	c.Content = append([]string(nil), c.Content...)
	return &c
}

func (s *Contributions) Get(_ context.Context, id string) (*models.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.m[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneContribution(c), nil
}

func (s *Contributions) Save(_ context.Context, c *models.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[c.ID] = *cloneContribution(*c)
	return nil
}

func (s *Contributions) ByContest(_ context.Context, contestID string) ([]*models.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Contribution
	for _, c := range s.m {
		if c.ContestID == contestID {
			out = append(out, cloneContribution(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Contributions) DeleteByContest(_ context.Context, contestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.m {
		if c.ContestID == contestID {
			delete(s.m, id)
		}
	}
	return nil
}

// --- feedback ---

type Feedback struct {
	mu sync.RWMutex
	m  map[string]models.Feedback
}

func NewFeedback() *Feedback { return &Feedback{m: make(map[string]models.Feedback)} }

func (s *Feedback) Upsert(_ context.Context, f *models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.m[f.ID]; ok {
		row := *f
		row.CreatedAt = existing.CreatedAt
		s.m[f.ID] = row
		return nil
	}
	s.m[f.ID] = *f
	return nil
}

func (s *Feedback) ByContent(_ context.Context, contentID string) ([]*models.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Feedback
	for _, f := range s.m {
		if f.ContentID == contentID {
			row := f
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Feedback) DropContent(_ context.Context, contentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, f := range s.m {
		if f.ContentID == contentID {
			delete(s.m, id)
		}
	}
	return nil
}

// --- saved content ---

type Saved struct {
	mu sync.RWMutex
	m  map[string]models.SavedContent
}

func NewSaved() *Saved { return &Saved{m: make(map[string]models.SavedContent)} }

func (s *Saved) Save(_ context.Context, entry *models.SavedContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[entry.ID]; ok {
		return errs.ErrDuplicate
	}
	s.m[entry.ID] = *entry
	return nil
}

func (s *Saved) Delete(_ context.Context, contentID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.m {
		if entry.ContentID == contentID && entry.Username == username {
			delete(s.m, id)
			return nil
		}
	}
	return errs.ErrNotFound
}

func (s *Saved) ByUser(_ context.Context, username string) ([]*models.SavedContent, error) {
	return s.filter(func(e models.SavedContent) bool { return e.Username == username }), nil
}

func (s *Saved) ByContent(_ context.Context, contentID string) ([]*models.SavedContent, error) {
	return s.filter(func(e models.SavedContent) bool { return e.ContentID == contentID }), nil
}

func (s *Saved) DropContent(_ context.Context, contentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.m {
		if entry.ContentID == contentID {
			delete(s.m, id)
		}
	}
	return nil
}

func (s *Saved) DropUser(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.m {
		if entry.Username == username {
			delete(s.m, id)
		}
	}
	return nil
}

func (s *Saved) filter(keep func(models.SavedContent) bool) []*models.SavedContent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.SavedContent
	for _, entry := range s.m {
		if keep(entry) {
			e := entry
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- users ---

type Users struct {
	mu sync.RWMutex
	m  map[string]models.User
}

func NewUsers() *Users { return &Users{m: make(map[string]models.User)} }

func cloneUser(u models.User) *models.User {
	u.Following = append([]string(nil), u.Following...)
	return &u
}

func (s *Users) Get(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.m[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneUser(user), nil
}

func (s *Users) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[user.Username] = *cloneUser(*user)
	return nil
}

func (s *Users) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[username]; !ok {
		return errs.ErrNotFound
	}
	delete(s.m, username)
	return nil
}

func (s *Users) FollowersOf(_ context.Context, cityID string) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.User
	for _, user := range s.m {
		for _, id := range user.Following {
			if id == cityID {
				out = append(out, cloneUser(user))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *Users) RemoveFollowing(_ context.Context, cityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for username, user := range s.m {
		kept := user.Following[:0:0]
		for _, id := range user.Following {
			if id != cityID {
				kept = append(kept, id)
			}
		}
		user.Following = kept
		s.m[username] = user
	}
	return nil
}

// --- role assignments ---

type Roles struct {
	mu sync.RWMutex
	m  map[string]models.RoleAssignment
}

func NewRoles() *Roles { return &Roles{m: make(map[string]models.RoleAssignment)} }

func roleKey(cityID, username string) string { return cityID + "#" + username }

func (s *Roles) RoleOf(_ context.Context, cityID, username string) (models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assignment, ok := s.m[roleKey(cityID, username)]
	if !ok {
		return models.RoleNone, nil
	}
	return assignment.Role, nil
}

func (s *Roles) Set(_ context.Context, cityID, username string, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	key := roleKey(cityID, username)
	assignment, ok := s.m[key]
	if !ok {
		assignment = models.RoleAssignment{ID: key, CityID: cityID, Username: username, CreatedAt: now}
	}
	assignment.Role = role
	assignment.UpdatedAt = now
	s.m[key] = assignment
	return nil
}

func (s *Roles) Unset(_ context.Context, cityID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, roleKey(cityID, username))
	return nil
}

func (s *Roles) DropCity(_ context.Context, cityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, assignment := range s.m {
		if assignment.CityID == cityID {
			delete(s.m, key)
		}
	}
	return nil
}

func (s *Roles) DropUser(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, assignment := range s.m {
		if assignment.Username == username {
			delete(s.m, key)
		}
	}
	return nil
}

// --- notifications ---

type Notifications struct {
	mu sync.RWMutex
	m  map[string]models.Notification
}

func NewNotifications() *Notifications {
	return &Notifications{m: make(map[string]models.Notification)}
}

func (s *Notifications) Save(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[n.ID] = *n
	return nil
}

func (s *Notifications) ByRecipient(_ context.Context, username string) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Notification
	for _, n := range s.m {
		if n.Recipient == username {
			row := n
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Notifications) MarkRead(_ context.Context, username, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.m[id]
	if !ok || n.Recipient != username {
		return errs.ErrNotFound
	}
	n.Read = true
	s.m[id] = n
	return nil
}

func (s *Notifications) DropRecipient(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.m {
		if n.Recipient == username {
			delete(s.m, id)
		}
	}
	return nil
}

// --- sequence counters ---

type Counters struct {
	mu sync.Mutex
	m  map[string]int
}

func NewCounters() *Counters { return &Counters{m: make(map[string]int)} }

func (s *Counters) Next(_ context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.m[prefix]
	s.m[prefix] = n + 1
	return n, nil
}
